package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/specialistvlad/gridwalk/internal/node"
	"github.com/specialistvlad/gridwalk/internal/nodeid"
	"github.com/specialistvlad/gridwalk/internal/topologystore"
)

// Repository maps node refs to the RuntimeNodes of one run. It is
// write-once: all maps are filled by the constructor and only read
// afterwards, so every method is safe for concurrent use.
type Repository struct {
	nodes    map[nodeid.Ref]*node.RuntimeNode
	order    []nodeid.Ref
	upstream map[nodeid.Ref][]nodeid.Ref
	sources  []nodeid.Ref
}

// NewFromSource materializes one RuntimeNode per node in src. Listing order
// is preserved. Dangling downstream edges are not an error here.
func NewFromSource(ctx context.Context, src topologystore.Source) (*Repository, error) {
	refs, err := src.ListAllRefs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list topology nodes: %w", err)
	}

	nodes := make(map[nodeid.Ref]*node.RuntimeNode, len(refs))
	order := make([]nodeid.Ref, 0, len(refs))
	for _, ref := range refs {
		if _, dup := nodes[ref]; dup {
			return nil, fmt.Errorf("topology lists node '%s' more than once", ref)
		}
		d, err := src.GetNode(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("failed to read topology node '%s': %w", ref, err)
		}
		n, err := node.New(ref, d.Downstream, node.Meta{Name: d.Name, Kind: d.Kind, Args: d.Args})
		if err != nil {
			return nil, fmt.Errorf("invalid topology node '%s': %w", ref, err)
		}
		nodes[ref] = n
		order = append(order, ref)
	}
	return build(nodes, order), nil
}

// NewFromNodes builds a repository around already constructed nodes. Every
// key must equal its node's Ref. Iteration order is the refs' lexical order.
func NewFromNodes(nodes map[nodeid.Ref]*node.RuntimeNode) (*Repository, error) {
	copied := make(map[nodeid.Ref]*node.RuntimeNode, len(nodes))
	order := make([]nodeid.Ref, 0, len(nodes))
	for ref, n := range nodes {
		if n == nil {
			return nil, fmt.Errorf("node '%s' is nil", ref)
		}
		if n.Ref() != ref {
			return nil, fmt.Errorf("node keyed as '%s' reports ref '%s'", ref, n.Ref())
		}
		copied[ref] = n
		order = append(order, ref)
	}
	sort.Slice(order, func(i, j int) bool { return order[i].Less(order[j]) })
	return build(copied, order), nil
}

func build(nodes map[nodeid.Ref]*node.RuntimeNode, order []nodeid.Ref) *Repository {
	upstream := make(map[nodeid.Ref][]nodeid.Ref, len(nodes))
	for _, ref := range order {
		for _, child := range nodes[ref].Downstream() {
			upstream[child] = append(upstream[child], ref)
		}
	}

	var sources []nodeid.Ref
	for _, ref := range order {
		if len(upstream[ref]) == 0 {
			sources = append(sources, ref)
		}
	}

	return &Repository{
		nodes:    nodes,
		order:    order,
		upstream: upstream,
		sources:  sources,
	}
}

// ListAllRefs returns every ref known to this run.
func (r *Repository) ListAllRefs() []nodeid.Ref {
	out := make([]nodeid.Ref, len(r.order))
	copy(out, r.order)
	return out
}

// Nodes returns every node, in the same order as ListAllRefs.
func (r *Repository) Nodes() []*node.RuntimeNode {
	out := make([]*node.RuntimeNode, 0, len(r.order))
	for _, ref := range r.order {
		out = append(out, r.nodes[ref])
	}
	return out
}

// Len returns the number of nodes.
func (r *Repository) Len() int {
	return len(r.nodes)
}

// GetNode returns the node for ref or a *NotFoundError.
func (r *Repository) GetNode(ref nodeid.Ref) (*node.RuntimeNode, error) {
	n, ok := r.nodes[ref]
	if !ok {
		return nil, &NotFoundError{Ref: ref}
	}
	return n, nil
}

// GetDownstream resolves the children of ref in declaration order. A child
// missing from the repository yields a *NotFoundError naming ref as the
// referrer.
func (r *Repository) GetDownstream(ref nodeid.Ref) ([]*node.RuntimeNode, error) {
	n, err := r.GetNode(ref)
	if err != nil {
		return nil, err
	}
	children := n.Downstream()
	out := make([]*node.RuntimeNode, 0, len(children))
	for _, child := range children {
		c, ok := r.nodes[child]
		if !ok {
			return nil, &NotFoundError{Ref: child, Referrer: ref}
		}
		out = append(out, c)
	}
	return out, nil
}

// GetUpstream returns the direct parents of ref.
func (r *Repository) GetUpstream(ref nodeid.Ref) ([]*node.RuntimeNode, error) {
	if _, ok := r.nodes[ref]; !ok {
		return nil, &NotFoundError{Ref: ref}
	}
	parents := r.upstream[ref]
	out := make([]*node.RuntimeNode, 0, len(parents))
	for _, p := range parents {
		out = append(out, r.nodes[p])
	}
	return out, nil
}

// Sources returns the refs that appear in no downstream list.
func (r *Repository) Sources() []nodeid.Ref {
	out := make([]nodeid.Ref, len(r.sources))
	copy(out, r.sources)
	return out
}

// Validate reports every dangling edge at once. It returns nil when all
// downstream refs resolve.
func (r *Repository) Validate() error {
	var errs []error
	for _, ref := range r.order {
		for _, child := range r.nodes[ref].Downstream() {
			if _, ok := r.nodes[child]; !ok {
				errs = append(errs, &NotFoundError{Ref: child, Referrer: ref})
			}
		}
	}
	return errors.Join(errs...)
}
