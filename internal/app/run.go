package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/gridwalk/internal/ctxlog"
	"github.com/specialistvlad/gridwalk/internal/graph"
	"github.com/specialistvlad/gridwalk/internal/localsession"
	"github.com/specialistvlad/gridwalk/internal/manifest"
	"github.com/specialistvlad/gridwalk/internal/nodeid"
	"github.com/specialistvlad/gridwalk/internal/pathfinder"
	"github.com/specialistvlad/gridwalk/internal/session"
)

// Run loads the grid, executes it and writes the manifest to the app's
// output. Node failures do not make Run fail; check Manifest.OK. A manifest
// that could not be persisted is still written, and the save failure is
// returned afterwards wrapping manifest.ErrNotSaved.
func (a *App) Run(ctx context.Context) (*manifest.Manifest, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	a.healthCheckServer()
	defer a.closeHealthCheckServer()

	src, err := a.loader.Load(ctx, a.config.GridPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load grid: %w", err)
	}
	mode, err := session.ParseMode(a.config.Mode)
	if err != nil {
		return nil, err
	}

	factory := &localsession.SessionFactory{
		Handlers: a.handlers,
		Workers:  a.config.Workers,
		Mode:     mode,
		Store:    a.store,
	}
	if a.collector != nil {
		factory.Observer = a.collector
	}
	var sf session.SessionFactory = factory

	sess, err := sf.NewSession(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare run: %w", err)
	}
	defer sess.Close(ctx)

	if sess.Repository().Len() == 0 {
		a.logger.Warn("No nodes found in grid, execution not required.")
	}

	a.logger.Info("Starting concurrent execution.", "nodes", sess.Repository().Len(), "workers", a.config.Workers, "mode", mode)
	m, err := sess.Run(ctx)
	var saveErr error
	if errors.Is(err, manifest.ErrNotSaved) {
		saveErr, err = err, nil
	}
	if err != nil {
		return m, fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("Execution finished.", "ok", m.OK())

	if err := m.Write(a.outW, a.config.ManifestFormat); err != nil {
		return m, fmt.Errorf("failed to write manifest: %w", err)
	}
	return m, saveErr
}

// Validate loads the grid and reports every structural problem: dangling
// edges, cycles and kinds without a handler.
func (a *App) Validate(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	repo, err := a.repository(ctx)
	if err != nil {
		return err
	}

	var kinds []string
	for _, n := range repo.Nodes() {
		kinds = append(kinds, n.Meta().Kind)
	}
	if err := repo.Validate(); err != nil {
		return err
	}
	if err := repo.DetectCycles(); err != nil {
		return err
	}
	if err := a.handlers.Validate(kinds); err != nil {
		return err
	}
	a.logger.Debug("Grid is valid.", "nodes", repo.Len(), "sources", len(repo.Sources()))
	return nil
}

// Paths returns every path from a source to target.
func (a *App) Paths(ctx context.Context, target string) ([]pathfinder.Path, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	ref, err := nodeid.Parse(target)
	if err != nil {
		return nil, err
	}
	repo, err := a.repository(ctx)
	if err != nil {
		return nil, err
	}
	return pathfinder.New(repo).Explain(ref)
}

// History returns the stored run ids, most recent first.
func (a *App) History(ctx context.Context) ([]string, error) {
	return a.store.List(ctx)
}

// Manifest returns the stored manifest of a past run.
func (a *App) Manifest(ctx context.Context, runID string) (*manifest.Manifest, error) {
	return a.store.Load(ctx, runID)
}

func (a *App) repository(ctx context.Context) (*graph.Repository, error) {
	src, err := a.loader.Load(ctx, a.config.GridPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load grid: %w", err)
	}
	return graph.NewFromSource(ctx, src)
}
