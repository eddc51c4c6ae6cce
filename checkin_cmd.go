package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/dat/internal/cliutil"
)

func newCheckinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkin <file>",
		Short: "Upload a single path and the master object, update local",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := mustCLIContext(cmd.Context())

			report, err := cc.Orchestrator.Checkin(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			cliutil.Section(os.Stdout, "uploaded", report.Actionable)

			return nil
		},
	}
}
