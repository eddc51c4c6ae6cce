package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/dat/internal/cliutil"
)

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <file>",
		Short: "Download a single path, update local",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := mustCLIContext(cmd.Context())

			report, err := cc.Orchestrator.Checkout(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			cliutil.Section(os.Stdout, "downloaded", report.Actionable)

			return nil
		},
	}
}
