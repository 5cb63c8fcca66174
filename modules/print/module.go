// Package print implements the "print" kind: it writes its message and any
// extra fields to the module's writer.
package print

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/specialistvlad/gridwalk/internal/ctxlog"
	"github.com/specialistvlad/gridwalk/internal/handlers"
)

// Module implements the handlers.Module interface for this package.
type Module struct {
	// Out receives the printed lines. Defaults to os.Stdout.
	Out io.Writer

	mu sync.Mutex
}

// Input defines the arguments for the print kind.
type Input struct {
	Message string            `arg:"message"`
	Fields  map[string]string `arg:"fields"`
}

// Run is the handler for the print kind.
func (m *Module) Run(ctx context.Context, input *Input) error {
	ctxlog.FromContext(ctx).Info("Printing input.", "message", input.Message)

	out := m.Out
	if out == nil {
		out = os.Stdout
	}

	// Sort keys for consistent output
	keys := make([]string, 0, len(input.Fields))
	for k := range input.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Lines from concurrent nodes must not interleave.
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := fmt.Fprintln(out, input.Message); err != nil {
		return err
	}
	for _, k := range keys {
		if _, err := fmt.Fprintf(out, "      %s = %q\n", k, input.Fields[k]); err != nil {
			return err
		}
	}
	return nil
}

// Register registers the handler with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.RegisterHandler("print", &handlers.RegisteredHandler{
		NewInput: func() any { return new(Input) },
		Fn: func(ctx context.Context, input any) error {
			return m.Run(ctx, input.(*Input))
		},
	})
}
