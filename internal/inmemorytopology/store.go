package inmemorytopology

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/gridwalk/internal/nodeid"
	"github.com/specialistvlad/gridwalk/internal/topologystore"
)

// Store implements topologystore.Source using a map and a mutex for
// thread-safe concurrent access. Insertion order is remembered so listings
// are deterministic.
type Store struct {
	mu    sync.RWMutex
	nodes map[nodeid.Ref]*topologystore.Descriptor
	order []nodeid.Ref
}

var _ topologystore.Source = (*Store)(nil)

// New creates a new, empty in-memory topology store.
func New() *Store {
	return &Store{
		nodes: make(map[nodeid.Ref]*topologystore.Descriptor),
	}
}

// AddNode registers a node. The descriptor's downstream list is stored as
// given and is not checked against known nodes, so a store may describe a
// topology with dangling edges.
func (s *Store) AddNode(ctx context.Context, d topologystore.Descriptor) error {
	if d.ID.IsZero() {
		return fmt.Errorf("cannot add node with empty id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[d.ID]; exists {
		return fmt.Errorf("node '%s' already exists in topology", d.ID)
	}
	stored := d
	stored.Downstream = append([]nodeid.Ref(nil), d.Downstream...)
	s.nodes[d.ID] = &stored
	s.order = append(s.order, d.ID)
	return nil
}

// AddEdge records that `to` is a child of `from`. Both nodes must already
// exist. Adding the same edge twice is a no-op.
func (s *Store) AddEdge(ctx context.Context, from, to nodeid.Ref) error {
	if from == to {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", from, to)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fromNode, exists := s.nodes[from]
	if !exists {
		return fmt.Errorf("edge source node '%s' not found in topology", from)
	}
	if _, exists := s.nodes[to]; !exists {
		return fmt.Errorf("edge target node '%s' not found in topology", to)
	}

	for _, existing := range fromNode.Downstream {
		if existing == to {
			return nil
		}
	}
	fromNode.Downstream = append(fromNode.Downstream, to)
	return nil
}

// ListAllRefs returns every node ref in insertion order.
func (s *Store) ListAllRefs(ctx context.Context) ([]nodeid.Ref, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refs := make([]nodeid.Ref, len(s.order))
	copy(refs, s.order)
	return refs, nil
}

// GetNode returns a copy of the descriptor for ref.
func (s *Store) GetNode(ctx context.Context, ref nodeid.Ref) (topologystore.Descriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.nodes[ref]
	if !ok {
		return topologystore.Descriptor{}, fmt.Errorf("%w: %s", topologystore.ErrNodeNotFound, ref)
	}
	out := *d
	out.Downstream = append([]nodeid.Ref(nil), d.Downstream...)
	return out, nil
}

// Len returns the number of nodes in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}
