package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"offgascli/internal/config"
	"offgascli/internal/infrastructure"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	OutputDir  string

	// logPath is where a failure is appended; set once config is loaded.
	logPath string
}

// NewRootCommand creates the root command for the offgas CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{logPath: config.DefaultLogFile}
	return newRootCommand(opts)
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offgas",
		Short: "Off-gas fermentation run processor",
		Long: `Aligns off-gas analyzer and process controller logs from a run workbook
onto a common time grid, derives gas uptake and evolution rates, and
summarizes the growth and production phases.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default offgas.yaml if present)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "override the output directory")

	cmd.AddCommand(NewProcessCommand(opts))
	cmd.AddCommand(NewSummaryCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// loadConfig loads the configuration and applies the global flags
func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "configuration error", err)
	}
	if o.Verbose {
		cfg.Logging.Level = "debug"
	}
	if o.OutputDir != "" {
		cfg.Output.Directory = o.OutputDir
	}
	if paths, err := cfg.Paths(""); err == nil && paths.LogFile != "" {
		o.logPath = paths.LogFile
	}
	return cfg, nil
}

// Execute runs the CLI and returns the process exit code. Failures are
// printed to stderr and appended to the log file.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{logPath: config.DefaultLogFile}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	if ferr := infrastructure.AppendFatal(opts.logPath, err); ferr != nil {
		fmt.Fprintf(stderr, "failed to write log file: %v\n", ferr)
	}
	return GetExitCode(err)
}
