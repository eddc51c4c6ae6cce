package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/dat/internal/cliutil"
)

func newStashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stash",
		Short: "Move conflicting files aside into .dat/stash",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := mustCLIContext(cmd.Context())

			report, err := cc.Orchestrator.Stash(cmd.Context())
			if err != nil {
				return err
			}

			if report.UpToDate {
				cc.Statusf("Nothing to stash\n")
				return nil
			}

			cliutil.Section(os.Stdout, "stashed", report.Actionable)

			return nil
		},
	}

	cmd.AddCommand(newStashPopCmd())

	return cmd
}

func newStashPopCmd() *cobra.Command {
	var hard bool

	cmd := &cobra.Command{
		Use:   "pop",
		Short: "Move stashed files back to their original paths",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := mustCLIContext(cmd.Context())

			report, err := cc.Orchestrator.StashPop(cmd.Context(), hard)
			if err != nil {
				return err
			}

			cliutil.Section(os.Stdout, "restored", report.Actionable)

			return nil
		},
	}

	cmd.Flags().BoolVar(&hard, "hard", false, "overwrite existing files at the stashed paths")

	return cmd
}
