package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/dat/internal/cliutil"
)

func newPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Download remote changes into the working tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := mustCLIContext(cmd.Context())

			report, err := cc.Orchestrator.Pull(cmd.Context(), cc.DryRun)
			if err != nil {
				return err
			}

			for _, p := range report.Conflicts {
				cliutil.Conflict(os.Stderr, p)
			}

			if len(report.Conflicts) > 0 {
				fmt.Fprintln(os.Stderr, "Unable to pull the conflicting files above: conflict with current")
			}

			if report.UpToDate {
				cc.Statusf("Everything up-to-date\n")
				return nil
			}

			cliutil.Section(os.Stdout, "downloaded", report.Actionable)

			if cc.DryRun {
				cc.Statusf("Resolved: %v\n", report.Resolved)
			}

			return nil
		},
	}
}
