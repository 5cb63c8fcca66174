// internal/nodeid/parser.go
package nodeid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// segmentRegex is used to parse a single segment of a path, e.g., `name` or `name[1]`.
var segmentRegex = regexp.MustCompile(`^([a-zA-Z0-9_-]+)(?:\[(\d+)\])?$`)

// PathSegment represents a single component of an identifier path, e.g., `name[index]`.
type PathSegment struct {
	Name  string
	Index int // -1 indicates no index is present.
}

// NewPathSegment creates a new path segment without an index.
func NewPathSegment(name string) PathSegment {
	return PathSegment{Name: name, Index: -1}
}

// NewPathSegmentWithIndex creates a new path segment that includes an index.
func NewPathSegmentWithIndex(name string, index int) PathSegment {
	return PathSegment{Name: name, Index: index}
}

// HasIndex returns true if the path segment has an explicit index.
func (ps PathSegment) HasIndex() bool {
	return ps.Index != -1
}

// String renders the segment in canonical form.
func (ps PathSegment) String() string {
	if !ps.HasIndex() {
		return ps.Name
	}
	return fmt.Sprintf("%s[%d]", ps.Name, ps.Index)
}

// isValidSegmentName checks for undesirable but technically valid names.
func isValidSegmentName(name string) bool {
	return name != "-"
}

// Parse creates a Ref by validating its canonical string representation.
func Parse(rawID string) (Ref, error) {
	if rawID == "" {
		return Ref{}, fmt.Errorf("identifier cannot be empty")
	}

	for _, segmentStr := range strings.Split(rawID, ".") {
		if segmentStr == "" {
			return Ref{}, fmt.Errorf("identifier path contains empty segment: %q", rawID)
		}
		if _, err := parseSegment(segmentStr); err != nil {
			return Ref{}, err
		}
	}

	return Ref{id: rawID}, nil
}

func parseSegment(segmentStr string) (PathSegment, error) {
	matches := segmentRegex.FindStringSubmatch(segmentStr)
	if matches == nil {
		return PathSegment{}, fmt.Errorf("invalid path segment format: %q", segmentStr)
	}

	name := matches[1]
	if !isValidSegmentName(name) {
		return PathSegment{}, fmt.Errorf("invalid segment name: %q", name)
	}

	segment := NewPathSegment(name)
	if matches[2] != "" {
		index, err := strconv.Atoi(matches[2])
		if err != nil {
			// Unreachable due to regex `\d+`
			return PathSegment{}, fmt.Errorf("internal error parsing index: %w", err)
		}
		segment.Index = index
	}
	return segment, nil
}
