package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/dat/internal/cliutil"
	"github.com/tonimelisma/dat/internal/daterrors"
)

func newOverwriteMasterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overwrite-master",
		Short: "Unconditionally replace the remote with the local tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := mustCLIContext(cmd.Context())

			if !cliutil.ConfirmTyped(os.Stdin, os.Stdout,
				"This will unconditionally replace the remote master for "+cc.Config.Aws+" with the local working tree, ignoring any conflicts.",
				cc.Config.Aws) {
				return daterrors.Wrap(daterrors.ErrUserAbort, "")
			}

			report, err := cc.Orchestrator.OverwriteMaster(cmd.Context())
			if err != nil {
				return err
			}

			cliutil.Section(os.Stdout, "uploaded", report.Actionable)

			return nil
		},
	}
}
