package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/dat/internal/orchestrator"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "init [bucket]",
		Short:       "Create .dat/ and write its config",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{skipRepoAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.Getwd()
			if err != nil {
				return err
			}

			var bucket string
			if len(args) == 1 {
				bucket = args[0]
			}

			cfg, err := orchestrator.Init(orchestrator.InitOptions{
				Root:    root,
				Bucket:  bucket,
				Profile: flagProfile,
				Region:  flagRegion,
				Subdir:  flagSubdir,
			})
			if err != nil {
				return err
			}

			statusf(flagQuiet, "Initialized dat repository with id %s\n", cfg.Aws)

			return nil
		},
	}

	return cmd
}
