package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/dat/internal/cliutil"
	"github.com/tonimelisma/dat/internal/daterrors"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Remove remote and local state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := mustCLIContext(cmd.Context())

			if !cliutil.ConfirmTyped(os.Stdin, os.Stdout,
				"This will permanently delete the remote bucket/prefix and the local .dat/local snapshot for "+cc.Config.Aws+".",
				cc.Config.Aws) {
				return daterrors.Wrap(daterrors.ErrUserAbort, "")
			}

			if err := cc.Orchestrator.Delete(cmd.Context()); err != nil {
				return err
			}

			cc.Statusf("Deleted %s\n", cc.Config.Aws)

			return nil
		},
	}
}
