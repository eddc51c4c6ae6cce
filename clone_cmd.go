package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/dat/internal/cliutil"
	"github.com/tonimelisma/dat/internal/orchestrator"
	"github.com/tonimelisma/dat/internal/store"
)

func newCloneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "clone <bucket> [folder]",
		Short:       "Download the full remote prefix into a new folder",
		Args:        cobra.RangeArgs(1, 2),
		Annotations: map[string]string{skipRepoAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket := args[0]

			folder := store.ParseID(bucket).Bucket
			if len(args) == 2 {
				folder = args[1]
			}

			logger := buildLogger()

			report, err := orchestrator.Clone(cmd.Context(), func(id store.ID, profile, region string, logger *slog.Logger) store.Adapter {
				return store.New(id, profile, region, logger)
			}, orchestrator.CloneOptions{
				Bucket:  bucket,
				Folder:  folder,
				Profile: flagProfile,
				Region:  flagRegion,
				Subdir:  flagSubdir,
			}, logger)
			if err != nil {
				return err
			}

			cliutil.Section(os.Stdout, "downloaded", report.Actionable)

			return nil
		},
	}

	return cmd
}
