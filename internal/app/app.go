package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/gridwalk/internal/ctxlog"
	"github.com/specialistvlad/gridwalk/internal/handlers"
	"github.com/specialistvlad/gridwalk/internal/hcltopology"
	"github.com/specialistvlad/gridwalk/internal/manifest"
	"github.com/specialistvlad/gridwalk/internal/metrics"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	ctx      context.Context
	config   *Config
	loader   *hcltopology.Loader
	handlers *handlers.Handlers
	store    manifest.Store

	// Set only when metrics are enabled.
	registry  *prometheus.Registry
	collector *metrics.Collector

	httpServer *http.Server
}

// NewApp is the constructor for the main application. Manifests and printed
// output go to outW, logs to logW. With no modules given the core modules
// are registered.
func NewApp(outW, logW io.Writer, cfg *Config, modules ...handlers.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules(outW)
	}
	h := handlers.NewWithModules(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "kinds", h.Kinds())

	a := &App{
		outW:     outW,
		logger:   logger,
		ctx:      ctx,
		config:   cfg,
		loader:   hcltopology.NewLoader(),
		handlers: h,
	}

	if cfg.MetricsEnabled {
		a.registry = prometheus.NewRegistry()
		collector, err := metrics.NewCollector(a.registry)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		a.collector = collector
		logger.Debug("Metrics collector registered.")
	}

	if cfg.RedisAddr != "" {
		var opts []manifest.RedisOption
		if cfg.RedisKeyPrefix != "" {
			opts = append(opts, manifest.WithPrefix(cfg.RedisKeyPrefix))
		}
		a.store = manifest.NewRedisStore(cfg.RedisAddr, opts...)
		logger.Debug("Using Redis manifest store.", "addr", cfg.RedisAddr)
	} else {
		a.store = manifest.NewMemoryStore()
	}

	return a, nil
}

// Handlers returns the application's handler registry.
func (a *App) Handlers() *handlers.Handlers {
	return a.handlers
}

// Store returns the manifest store runs are saved to.
func (a *App) Store() manifest.Store {
	return a.store
}

// Registry returns the metrics registry, or nil when metrics are disabled.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

// Close releases the manifest store's connection, if it holds one.
func (a *App) Close() error {
	if closer, ok := a.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
