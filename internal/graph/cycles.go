package graph

import (
	"fmt"

	"github.com/specialistvlad/gridwalk/internal/nodeid"
)

// DetectCycles checks the repository for any cycle. It returns an error
// wrapping ErrCycle that names the first node found on a cycle. Dangling
// edges are ignored here; Validate reports them.
func (r *Repository) DetectCycles() error {
	// permanent: fully visited and not on a cycle.
	// temporary: on the current DFS path.
	permanent := make(map[nodeid.Ref]bool, len(r.nodes))
	temporary := make(map[nodeid.Ref]bool)

	var visit func(ref nodeid.Ref) error
	visit = func(ref nodeid.Ref) error {
		if permanent[ref] {
			return nil
		}
		if temporary[ref] {
			return fmt.Errorf("%w involving node '%s'", ErrCycle, ref)
		}

		n, ok := r.nodes[ref]
		if !ok {
			return nil
		}

		temporary[ref] = true
		for _, child := range n.Downstream() {
			if err := visit(child); err != nil {
				return err
			}
		}
		delete(temporary, ref)
		permanent[ref] = true
		return nil
	}

	for _, ref := range r.order {
		if err := visit(ref); err != nil {
			return err
		}
	}
	return nil
}
