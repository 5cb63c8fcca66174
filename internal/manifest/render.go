package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// Output formats understood by Write.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Write renders m to w in the given format.
func (m *Manifest) Write(w io.Writer, format string) error {
	switch format {
	case FormatText, "":
		return m.WriteText(w)
	case FormatJSON:
		return m.WriteJSON(w)
	default:
		return fmt.Errorf("unknown manifest format %q", format)
	}
}

// WriteJSON writes m as indented JSON.
func (m *Manifest) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// WriteText writes m as an aligned table followed by a summary line.
func (m *Manifest) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NODE\tSTATE\tDURATION\tERROR")
	for _, n := range m.Nodes {
		fmt.Fprintf(tw, "%s\t%s\t%.3fs\t%s\n", n.ID, n.State, n.DurationSeconds, n.Error)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	c := m.Counts
	_, err := fmt.Fprintf(w, "\nrun %s: %d ready, %d failed, %d not run; jobs: %d finished, %d errored\n",
		m.RunID, c.Ready, c.Failed, c.NotRun, c.Finished, c.Errored)
	return err
}
