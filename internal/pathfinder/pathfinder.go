// Package pathfinder enumerates every path from a source node to a target
// node. It is a read-only diagnostic over a graph repository and is never on
// the execution path.
package pathfinder

import (
	"slices"
	"strings"

	"github.com/specialistvlad/gridwalk/internal/node"
	"github.com/specialistvlad/gridwalk/internal/nodeid"
)

// Graph is the read side of a repository the finder needs.
type Graph interface {
	ListAllRefs() []nodeid.Ref
	GetNode(ref nodeid.Ref) (*node.RuntimeNode, error)
}

// Path is an ordered sequence of refs from a source node to a target.
type Path []nodeid.Ref

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, ref := range p {
		parts[i] = ref.String()
	}
	return strings.Join(parts, " -> ")
}

// Finder answers path queries against one graph.
type Finder struct {
	graph Graph
}

// New creates a Finder over g.
func New(g Graph) *Finder {
	return &Finder{graph: g}
}

type frame struct {
	ref  nodeid.Ref
	path Path
}

// FindAllPathsTo returns every simple path from a source node to target.
// A node reachable through k distinct parent chains yields k paths. An
// unknown target yields an empty result.
//
// The walk uses an explicit stack, so depth is bounded by memory rather than
// the goroutine stack. Paths come out in declaration order: sources in
// listing order, children in downstream order.
func (f *Finder) FindAllPathsTo(target nodeid.Ref) []Path {
	if _, err := f.graph.GetNode(target); err != nil {
		return nil
	}

	sources := f.sources()
	stack := make([]frame, 0, len(sources))
	for i := len(sources) - 1; i >= 0; i-- {
		stack = append(stack, frame{ref: sources[i]})
	}

	var paths []Path
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		path := append(slices.Clone(top.path), top.ref)
		if top.ref == target {
			paths = append(paths, path)
			continue
		}

		n, err := f.graph.GetNode(top.ref)
		if err != nil {
			// Dangling edge: nothing to expand.
			continue
		}
		children := n.Downstream()
		for i := len(children) - 1; i >= 0; i-- {
			if slices.Contains(path, children[i]) {
				continue
			}
			stack = append(stack, frame{ref: children[i], path: path})
		}
	}
	return paths
}

// Explain is FindAllPathsTo for callers that need an unknown target to be an
// error. The lookup error is returned unchanged.
func (f *Finder) Explain(target nodeid.Ref) ([]Path, error) {
	if _, err := f.graph.GetNode(target); err != nil {
		return nil, err
	}
	return f.FindAllPathsTo(target), nil
}

// sources returns all refs minus the union of every downstream list.
func (f *Finder) sources() []nodeid.Ref {
	refs := f.graph.ListAllRefs()
	hasParent := make(map[nodeid.Ref]struct{}, len(refs))
	for _, ref := range refs {
		n, err := f.graph.GetNode(ref)
		if err != nil {
			continue
		}
		for _, child := range n.Downstream() {
			hasParent[child] = struct{}{}
		}
	}

	var out []nodeid.Ref
	for _, ref := range refs {
		if _, ok := hasParent[ref]; !ok {
			out = append(out, ref)
		}
	}
	return out
}
