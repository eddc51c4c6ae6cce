package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/dat/internal/cliutil"
)

func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Upload local changes to the remote master",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := mustCLIContext(cmd.Context())

			report, err := cc.Orchestrator.Push(cmd.Context(), cc.DryRun)
			if err != nil {
				return err
			}

			if report.UpToDate {
				cc.Statusf("Everything up-to-date\n")
				return nil
			}

			for _, p := range report.Conflicts {
				cliutil.Conflict(os.Stderr, p)
			}

			if len(report.Conflicts) > 0 {
				fmt.Fprintln(os.Stderr, "Unable to push the conflicting files above: conflict with master")
			}

			cliutil.Section(os.Stdout, "uploaded", report.Actionable)

			if cc.DryRun {
				cc.Statusf("Resolved: %v\n", report.Resolved)
			}

			return nil
		},
	}
}
