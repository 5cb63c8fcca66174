package manifest

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Load for an unknown run id.
	ErrNotFound = errors.New("manifest not found")
	// ErrNotSaved marks a run whose manifest was built but could not be
	// persisted. The run itself is unaffected.
	ErrNotSaved = errors.New("manifest not saved")
)

// Store keeps manifests of past runs.
type Store interface {
	Save(ctx context.Context, m *Manifest) error
	Load(ctx context.Context, runID string) (*Manifest, error)
	// List returns run ids, most recently finished first.
	List(ctx context.Context) ([]string, error)
}
