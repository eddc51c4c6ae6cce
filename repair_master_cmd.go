package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/dat/internal/cliutil"
)

func newRepairMasterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair-master",
		Short: "Rebuild the master object by walking the remote tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := mustCLIContext(cmd.Context())

			report, err := cc.Orchestrator.RepairMaster(cmd.Context())
			if err != nil {
				return err
			}

			cliutil.Section(os.Stdout, "repaired", report.Actionable)

			return nil
		},
	}
}
