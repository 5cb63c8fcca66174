package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/gridwalk/internal/app"
	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// usageError marks bad input; it exits with code 2.
func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// options holds the raw flag values shared by every subcommand.
type options struct {
	configFile      string
	workers         int
	mode            string
	logLevel        string
	logFormat       string
	healthcheckPort int
	metrics         bool
	manifestFormat  string
	redisAddr       string
	redisPrefix     string
}

// NewRootCommand builds the gridwalk command tree. Manifests and printed
// output go to outW, logs and errors to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	opts := &options{}
	def := app.DefaultConfig()

	root := &cobra.Command{
		Use:   "gridwalk",
		Short: "Run a dependency graph of steps concurrently",
		Long: `gridwalk loads a graph of steps from HCL files and runs every step once
all of its dependencies are ready, with bounded concurrency. A failed step
fails everything downstream of it and nothing else.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configFile, "config", "c", "", "Path to a YAML config file. Flags override its values.")
	pf.IntVar(&opts.workers, "workers", def.Workers, "Maximum number of steps running at once.")
	pf.StringVar(&opts.mode, "mode", def.Mode, "Job layout: 'per-source' or 'whole-graph'.")
	pf.StringVar(&opts.logLevel, "log-level", def.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&opts.logFormat, "log-format", def.LogFormat, "Log output format. Options: 'text' or 'json'.")
	pf.IntVar(&opts.healthcheckPort, "healthcheck-port", def.HealthcheckPort, "Port for the HTTP health check server. 0 is disabled.")
	pf.BoolVar(&opts.metrics, "metrics", def.MetricsEnabled, "Collect Prometheus metrics, served on the health check port.")
	pf.StringVar(&opts.manifestFormat, "manifest-format", def.ManifestFormat, "Run manifest format. Options: 'text' or 'json'.")
	pf.StringVar(&opts.redisAddr, "redis-addr", def.RedisAddr, "Redis address for storing run manifests. Empty keeps them in memory.")
	pf.StringVar(&opts.redisPrefix, "redis-prefix", def.RedisKeyPrefix, "Key prefix for stored manifests.")

	root.AddCommand(
		newRunCommand(opts),
		newValidateCommand(opts),
		newPathsCommand(opts),
		newHistoryCommand(opts),
	)
	return root
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// buildConfig layers defaults, the config file, explicitly set flags and
// finally gridPath, then validates the result.
func buildConfig(cmd *cobra.Command, opts *options, gridPath string) (*app.Config, error) {
	cfg := app.DefaultConfig()
	if opts.configFile != "" {
		var err error
		cfg, err = app.LoadConfigFile(opts.configFile)
		if err != nil {
			return nil, usageError(err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("mode") {
		cfg.Mode = opts.mode
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = opts.logFormat
	}
	if flags.Changed("healthcheck-port") {
		cfg.HealthcheckPort = opts.healthcheckPort
	}
	if flags.Changed("metrics") {
		cfg.MetricsEnabled = opts.metrics
	}
	if flags.Changed("manifest-format") {
		cfg.ManifestFormat = opts.manifestFormat
	}
	if flags.Changed("redis-addr") {
		cfg.RedisAddr = opts.redisAddr
	}
	if flags.Changed("redis-prefix") {
		cfg.RedisKeyPrefix = opts.redisPrefix
	}
	if gridPath != "" {
		cfg.GridPath = gridPath
	}

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError(err)
	}
	slog.Debug("CLI configuration resolved.", "config", config)
	return config, nil
}

// newApp builds the App for a subcommand. The caller must Close it.
func newApp(cmd *cobra.Command, config *app.Config) (*app.App, error) {
	a, err := app.NewApp(cmd.OutOrStdout(), cmd.ErrOrStderr(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to start: %w", err)
	}
	return a, nil
}
