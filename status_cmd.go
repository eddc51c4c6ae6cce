package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/dat/internal/cliutil"
)

func newStatusCmd() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report what push/pull would do",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := mustCLIContext(cmd.Context())

			if !remote {
				report, err := cc.Orchestrator.Status(cmd.Context())
				if err != nil {
					return err
				}

				if report.UpToDate {
					cc.Statusf("Everything up-to-date\n")
					return nil
				}

				cliutil.Section(os.Stdout, "needs push", report.Actionable)

				if !cc.Config.Pushed {
					cc.Statusf("This repository has never been pushed\n")
				}

				return nil
			}

			remoteReport, err := cc.Orchestrator.StatusRemote(cmd.Context())
			if err != nil {
				return err
			}

			cliutil.Section(os.Stdout, "modified remotely", remoteReport.ModifiedRemotely)
			cliutil.Section(os.Stdout, "modified locally", remoteReport.ModifiedLocally)
			cliutil.Section(os.Stdout, "deleted remotely", remoteReport.DeletedRemotely)
			cliutil.Section(os.Stdout, "deleted locally", remoteReport.DeletedLocally)
			cliutil.Section(os.Stdout, "deleted remotely but modified locally", remoteReport.DeletedRemoteModifiedLocal)

			for _, p := range remoteReport.Conflicts {
				cliutil.Conflict(os.Stdout, p)
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&remote, "remote", "r", false, "compare against the remote master as well")

	return cmd
}
