// Package localsession provides a concrete implementation of the
// session.Session and session.SessionFactory interfaces for local,
// in-process execution.
package localsession

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/gridwalk/internal/ctxlog"
	"github.com/specialistvlad/gridwalk/internal/graph"
	"github.com/specialistvlad/gridwalk/internal/handlers"
	"github.com/specialistvlad/gridwalk/internal/manifest"
	"github.com/specialistvlad/gridwalk/internal/node"
	"github.com/specialistvlad/gridwalk/internal/scheduler"
	"github.com/specialistvlad/gridwalk/internal/session"
	"github.com/specialistvlad/gridwalk/internal/topologystore"
	"github.com/specialistvlad/gridwalk/internal/traversal"
	"github.com/specialistvlad/gridwalk/internal/workerpool"
)

// SessionFactory implements session.SessionFactory for local runs.
type SessionFactory struct {
	// Handlers resolves node kinds to business logic. Required.
	Handlers *handlers.Handlers
	// Workers bounds concurrent node execution. Required, at least 1.
	Workers int
	// Mode selects how sources become jobs. Defaults to session.PerSource.
	Mode session.Mode
	// Observer receives job and node events. Optional.
	Observer scheduler.Observer
	// Store keeps the manifest of every run. Optional.
	Store manifest.Store
}

var _ session.SessionFactory = (*SessionFactory)(nil)

// NewSession builds the run's repository from src, checks it, and wires the
// pool, traverser and scheduler for it.
func (f *SessionFactory) NewSession(ctx context.Context, src topologystore.Source) (session.Session, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Creating local session.", "workers", f.Workers, "mode", f.Mode)

	if f.Handlers == nil {
		return nil, errors.New("local session requires handlers")
	}
	mode := f.Mode
	if mode == "" {
		mode = session.PerSource
	}
	observer := f.Observer
	if observer == nil {
		observer = scheduler.NopObserver{}
	}

	repo, err := graph.NewFromSource(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := repo.Validate(); err != nil {
		return nil, fmt.Errorf("invalid topology: %w", err)
	}
	if err := repo.DetectCycles(); err != nil {
		return nil, fmt.Errorf("invalid topology: %w", err)
	}
	if err := f.Handlers.Validate(kindsOf(repo)); err != nil {
		return nil, err
	}

	// --- Dependency injection wiring ---
	pool, err := workerpool.New(f.Workers)
	if err != nil {
		return nil, err
	}
	trav, err := traversal.New(repo, pool, handlers.NewDispatcher(f.Handlers), traversal.WithObserver(observer))
	if err != nil {
		pool.Close()
		return nil, err
	}
	sched := scheduler.New(scheduler.WithObserver(observer), scheduler.WithPool(pool))
	// --- End of dependency injection ---

	var jobs []*scheduler.JobDetail
	sources := repo.Sources()
	switch mode {
	case session.WholeGraph:
		if len(sources) > 0 {
			var job *scheduler.JobDetail
			job, err = scheduler.NewGraphJob(trav, sources)
			jobs = append(jobs, job)
		}
	case session.PerSource:
		jobs, err = scheduler.JobsForSources(trav, sources)
	default:
		err = fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		sched.Cleanup()
		return nil, err
	}
	for _, job := range jobs {
		if err := sched.AddJob(job); err != nil {
			sched.Cleanup()
			return nil, err
		}
	}

	logger.Debug("Local session ready.", "nodes", repo.Len(), "sources", len(sources), "jobs", len(jobs))
	return &Session{
		repo:  repo,
		sched: sched,
		store: f.Store,
	}, nil
}

func kindsOf(repo *graph.Repository) []string {
	seen := make(map[string]struct{})
	var kinds []string
	for _, n := range repo.Nodes() {
		k := n.Meta().Kind
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		kinds = append(kinds, k)
	}
	return kinds
}

// Session implements session.Session for local runs.
type Session struct {
	repo  *graph.Repository
	sched *scheduler.JobScheduler
	store manifest.Store
}

var _ session.Session = (*Session)(nil)

// Repository returns the run's node repository.
func (s *Session) Repository() *graph.Repository {
	return s.repo
}

// Run executes every job once and builds the manifest. When a Store is
// configured the manifest is saved before it is returned; a failed save
// still returns the manifest, with an error wrapping manifest.ErrNotSaved.
func (s *Session) Run(ctx context.Context) (*manifest.Manifest, error) {
	runID := uuid.NewString()
	ctx, logger := ctxlog.With(ctx, "run", runID)

	startedAt := time.Now()
	if err := s.sched.RunAllJobs(ctx); err != nil {
		return nil, err
	}
	finishedAt := time.Now()

	nodes := s.repo.Nodes()
	statuses := make([]node.Status, 0, len(nodes))
	for _, n := range nodes {
		statuses = append(statuses, n.Snapshot())
	}
	m := manifest.Build(runID, startedAt, finishedAt, statuses, s.sched.Jobs())

	c := m.Counts
	logger.Info("Run finished.",
		"ready", c.Ready, "failed", c.Failed, "not_run", c.NotRun,
		"jobs_finished", c.Finished, "jobs_errored", c.Errored,
		"duration", finishedAt.Sub(startedAt))

	if s.store != nil {
		if err := s.store.Save(ctx, m); err != nil {
			logger.Warn("Failed to save manifest.", "error", err)
			return m, fmt.Errorf("%w: %w", manifest.ErrNotSaved, err)
		}
		logger.Debug("Manifest saved.")
	}
	return m, nil
}

// Close cleans up the scheduler, which closes the worker pool.
func (s *Session) Close(ctx context.Context) error {
	ctxlog.FromContext(ctx).Debug("Closing local session.")
	s.sched.Cleanup()
	return nil
}
