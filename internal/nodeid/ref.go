// internal/nodeid/ref.go
package nodeid

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Ref is the stable identity of a graph node. The zero value is not a valid
// reference; use Parse, MustParse or New.
type Ref struct {
	id string
}

// New mints a fresh, random reference. It is intended for graphs that are
// assembled in code rather than loaded from configuration.
func New() Ref {
	return Ref{id: uuid.NewString()}
}

// MustParse is like Parse but panics on a malformed identifier. It is meant
// for tests and static tables.
func MustParse(rawID string) Ref {
	ref, err := Parse(rawID)
	if err != nil {
		panic(fmt.Sprintf("nodeid: %v", err))
	}
	return ref
}

// String returns the canonical identifier.
func (r Ref) String() string {
	return r.id
}

// IsZero reports whether r is the zero Ref.
func (r Ref) IsZero() bool {
	return r.id == ""
}

// Segments splits the identifier back into its path segments.
func (r Ref) Segments() []PathSegment {
	if r.IsZero() {
		return nil
	}
	segments := make([]PathSegment, 0, strings.Count(r.id, ".")+1)
	for _, raw := range strings.Split(r.id, ".") {
		segment, err := parseSegment(raw)
		if err != nil {
			// Unreachable for refs built through Parse or New.
			return nil
		}
		segments = append(segments, segment)
	}
	return segments
}

// Less orders refs by identifier. Useful for deterministic output.
func (r Ref) Less(other Ref) bool {
	return r.id < other.id
}
