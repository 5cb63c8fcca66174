package graph

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/gridwalk/internal/nodeid"
)

var (
	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("node not found in repository")
	// ErrCycle is returned by DetectCycles.
	ErrCycle = errors.New("cycle detected")
)

// NotFoundError reports a ref the repository cannot resolve. Referrer is set
// when the ref came from another node's downstream list (a dangling edge).
type NotFoundError struct {
	Ref      nodeid.Ref
	Referrer nodeid.Ref
}

func (e *NotFoundError) Error() string {
	if e.Referrer.IsZero() {
		return fmt.Sprintf("node '%s' not found in repository", e.Ref)
	}
	return fmt.Sprintf("node '%s' referenced by '%s' not found in repository", e.Ref, e.Referrer)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
