package manifest

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an ephemeral Store backed by sync.Map. Saved manifests are
// shared, not copied; callers must not modify a manifest after saving it.
type MemoryStore struct {
	runs sync.Map // Key: run id, Value: *Manifest
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save stores m under its run id, replacing any earlier manifest.
func (s *MemoryStore) Save(ctx context.Context, m *Manifest) error {
	if m == nil || m.RunID == "" {
		return fmt.Errorf("manifest must have a run id")
	}
	s.runs.Store(m.RunID, m)
	return nil
}

// Load returns the manifest for runID.
func (s *MemoryStore) Load(ctx context.Context, runID string) (*Manifest, error) {
	v, ok := s.runs.Load(runID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return v.(*Manifest), nil
}

// List returns run ids, most recently finished first.
func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	var all []*Manifest
	s.runs.Range(func(_, v any) bool {
		all = append(all, v.(*Manifest))
		return true
	})
	sort.Slice(all, func(i, j int) bool {
		return all[i].FinishedAt.After(all[j].FinishedAt)
	})

	ids := make([]string, len(all))
	for i, m := range all {
		ids[i] = m.RunID
	}
	return ids, nil
}
