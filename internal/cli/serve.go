package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// ServeOptions holds the serve command flags.
type ServeOptions struct {
	Port int
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve <workbook> <run-start>",
		Short: "Process a run then serve it over HTTP",
		Long: `Run the full pipeline once, then serve the result as a read-only JSON API
until interrupted. Prometheus metrics are exposed on /metrics.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			if opts.Port > 0 {
				cfg.Server.Port = opts.Port
			}

			a, _, err := process(cmd.Context(), cmd, cfg, args[0], args[1], false)
			if err != nil {
				if a != nil {
					a.Close(context.Background())
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "serving run on port %d\n", cfg.Server.Port)
			if err := a.Run(cmd.Context()); err != nil {
				return WrapExitError(ExitFailure, "server failed", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}
