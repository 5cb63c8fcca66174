// Package session defines the interfaces for preparing and running one
// execution of a topology. It abstracts away how the engine is wired.
package session

import (
	"context"
	"fmt"

	"github.com/specialistvlad/gridwalk/internal/graph"
	"github.com/specialistvlad/gridwalk/internal/manifest"
	"github.com/specialistvlad/gridwalk/internal/topologystore"
)

// Mode selects how a session turns sources into jobs.
type Mode string

const (
	// PerSource runs one job per source node.
	PerSource Mode = "per-source"
	// WholeGraph runs a single job that walks from every source.
	WholeGraph Mode = "whole-graph"
)

// ParseMode validates s. The empty string selects PerSource.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", PerSource:
		return PerSource, nil
	case WholeGraph:
		return WholeGraph, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want %s or %s)", s, PerSource, WholeGraph)
	}
}

// SessionFactory creates a Session for a topology. Everything that can be
// checked before execution is checked here.
type SessionFactory interface {
	NewSession(ctx context.Context, src topologystore.Source) (Session, error)
}

// Session represents a single execution run and manages its lifecycle.
type Session interface {
	// Repository returns the run's node repository.
	Repository() *graph.Repository
	// Run executes every job and returns the run's manifest. Node and job
	// failures are reported in the manifest, not as an error.
	Run(ctx context.Context) (*manifest.Manifest, error)
	// Close releases any resources held by the session.
	Close(ctx context.Context) error
}
