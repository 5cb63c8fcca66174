package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run [GRID_PATH]",
		Short: "Execute a grid and print its run manifest",
		Long: `Execute every step of the grid at GRID_PATH (a .hcl file or a directory of
them) and print the run manifest. Exits with code 1 if any step failed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var gridPath string
			if len(args) > 0 {
				gridPath = args[0]
			}
			config, err := buildConfig(cmd, opts, gridPath)
			if err != nil {
				return err
			}
			a, err := newApp(cmd, config)
			if err != nil {
				return err
			}
			defer a.Close()

			m, err := a.Run(cmd.Context())
			if err != nil {
				return err
			}
			if !m.OK() {
				return &ExitError{
					Code:    1,
					Message: fmt.Sprintf("run %s failed: %d step(s) failed, %d not run", m.RunID, m.Counts.Failed, m.Counts.NotRun),
				}
			}
			return nil
		},
	}
}

func newValidateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate GRID_PATH",
		Short: "Check a grid for dangling references, cycles and unknown kinds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := buildConfig(cmd, opts, args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd, config)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Validate(cmd.Context()); err != nil {
				return &ExitError{Code: 1, Message: fmt.Sprintf("validation failed:\n%v", err)}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Grid is valid.")
			return nil
		},
	}
}

func newPathsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "paths GRID_PATH NODE",
		Short: "Print every path from a source step to NODE",
		Long: `Print every dependency chain that leads from a step with no dependencies
to NODE, one per line. NODE is a full step id such as step.print.hello.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := buildConfig(cmd, opts, args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd, config)
			if err != nil {
				return err
			}
			defer a.Close()

			paths, err := a.Paths(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}

func newHistoryCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "history [RUN_ID]",
		Short: "List stored runs, or print the manifest of one",
		Long: `Without arguments, list the ids of stored runs, most recent first. With a
RUN_ID, print that run's manifest. Needs --redis-addr; in-memory manifests
do not outlive the process.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No grid is loaded; the path only satisfies validation.
			config, err := buildConfig(cmd, opts, ".")
			if err != nil {
				return err
			}
			if config.RedisAddr == "" {
				return usageError(fmt.Errorf("history requires --redis-addr"))
			}
			a, err := newApp(cmd, config)
			if err != nil {
				return err
			}
			defer a.Close()

			if len(args) == 1 {
				m, err := a.Manifest(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return m.Write(cmd.OutOrStdout(), config.ManifestFormat)
			}

			ids, err := a.History(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}
