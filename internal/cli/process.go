package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"offgascli/internal/app"
	"offgascli/internal/config"
	"offgascli/internal/exporter"
	"offgascli/internal/operations"
)

// ProcessOptions holds the process command flags.
type ProcessOptions struct {
	XLSX bool
	BOM  bool
}

// NewProcessCommand creates the process command.
func NewProcessCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProcessOptions{}

	cmd := &cobra.Command{
		Use:   "process <workbook> <run-start>",
		Short: "Run the full pipeline and write the output tables",
		Long: `Run the full pipeline over a run workbook and write the averaged table,
the run table and the phase summary to the output directory.

The run start is the inoculation time, for example "2023-10-25 13:47".`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, rootOpts, args[0], args[1], func(cfg *config.Config) {
				if cmd.Flags().Changed("xlsx") {
					cfg.Output.WriteXLSX = opts.XLSX
				}
				if cmd.Flags().Changed("bom") {
					cfg.Output.IncludeBOM = opts.BOM
				}
			}, false)
		},
	}

	cmd.Flags().BoolVar(&opts.XLSX, "xlsx", false, "also write both tables to one workbook")
	cmd.Flags().BoolVar(&opts.BOM, "bom", false, "prefix CSV files with a UTF-8 byte order mark")
	return cmd
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "summary <workbook> <run-start>",
		Short:         "Run the pipeline and print the phase summary without writing files",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, rootOpts, args[0], args[1], nil, true)
		},
	}
}

func runProcess(cmd *cobra.Command, rootOpts *RootOptions, workbook, runStart string, adjust func(*config.Config), noExport bool) error {
	cfg, err := rootOpts.loadConfig()
	if err != nil {
		return err
	}
	if adjust != nil {
		adjust(cfg)
	}

	a, state, err := process(cmd.Context(), cmd, cfg, workbook, runStart, noExport)
	if a != nil {
		defer a.Close(context.Background())
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	exporter.SummaryTable(out, state.Data.Summary)
	if len(state.Data.Written) > 0 {
		fmt.Fprintln(out)
		for _, path := range state.Data.Written {
			fmt.Fprintf(out, "wrote %s\n", path)
		}
	}
	return nil
}

// process builds the application and runs the pipeline once. The returned
// application is non-nil whenever it was built and must be closed.
func process(ctx context.Context, cmd *cobra.Command, cfg *config.Config, workbook, runStart string, noExport bool) (*app.Application, *operations.OperationState, error) {
	start, err := config.ParseRunStart(runStart)
	if err != nil {
		return nil, nil, WrapExitError(ExitFailure, "invalid run start", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.NewApplication(cfg, app.Options{
		Console:  cmd.ErrOrStderr(),
		NoExport: noExport,
	})
	if err != nil {
		return nil, nil, WrapExitError(ExitFailure, "startup failed", err)
	}

	state, err := a.Process(ctx, workbook, start)
	if err != nil {
		return a, state, WrapExitError(ExitFailure, "run failed", err)
	}
	return a, state, nil
}
