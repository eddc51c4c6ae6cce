package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/dat/internal/config"
	"github.com/tonimelisma/dat/internal/history"
	"github.com/tonimelisma/dat/internal/orchestrator"
	"github.com/tonimelisma/dat/internal/store"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagProfile string
	flagRegion  string
	flagSubdir  string
	flagConfig  string
	flagVerbose bool
	flagDryRun  bool
	flagQuiet   bool
)

// skipRepoAnnotation marks commands that run before a .dat repository
// exists (init, clone) and therefore skip the automatic repo-config
// load in PersistentPreRunE.
const skipRepoAnnotation = "skipRepo"

// CLIContext bundles everything a command's RunE needs: the resolved
// repository root and config, user-level preferences, a ready
// Orchestrator, and a logger, threaded via the command's context
// instead of package globals so commands stay testable in isolation.
type CLIContext struct {
	Root         string
	Config       *config.RepoConfig
	Prefs        *config.Preferences
	Orchestrator *orchestrator.Orchestrator
	Logger       *slog.Logger
	DryRun       bool
	Quiet        bool
}

type cliContextKey struct{}

// cliContextFrom extracts the CLIContext from the command's context.
// Returns nil for commands annotated skipRepoAnnotation.
func cliContextFrom(ctx context.Context) *CLIContext {
	cc, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok {
		return nil
	}

	return cc
}

// mustCLIContext extracts the CLIContext or panics with an actionable
// message. Panics here are always a programmer error: every RunE that
// calls this must NOT carry skipRepoAnnotation.
func mustCLIContext(ctx context.Context) *CLIContext {
	cc := cliContextFrom(ctx)
	if cc == nil {
		panic("BUG: CLIContext not found in context — command should not carry skipRepoAnnotation")
	}

	return cc
}

// newRootCmd builds and returns the fully-assembled root command with
// every dat subcommand registered.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dat",
		Short:         "Three-way directory/object-store reconciler",
		Long:          "dat synchronizes a local working tree against a remote S3 master using a three-way reconciliation model.",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipRepoAnnotation] == "true" {
				return nil
			}

			return loadCLIContext(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&flagProfile, "profile", "", "AWS shared-credentials profile")
	cmd.PersistentFlags().StringVar(&flagRegion, "region", "", "AWS region (default us-east-1)")
	cmd.PersistentFlags().StringVar(&flagSubdir, "subdir", "", "working subtree relative to the repository root")
	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to the user-level preferences.toml")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "show detailed output")
	cmd.PersistentFlags().BoolVarP(&flagDryRun, "dry-run", "d", false, "print intended actions without changing any state")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newCloneCmd())
	cmd.AddCommand(newPushCmd())
	cmd.AddCommand(newPullCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newStashCmd())
	cmd.AddCommand(newCheckinCmd())
	cmd.AddCommand(newCheckoutCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newOverwriteMasterCmd())
	cmd.AddCommand(newRepairMasterCmd())

	return cmd
}

// loadCLIContext resolves the repository config and user preferences,
// builds the store adapter and Orchestrator, and stashes the result on
// the command's context, split out of PersistentPreRunE so tests can
// call it directly.
func loadCLIContext(cmd *cobra.Command) error {
	logger := buildLogger()

	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	repoCfg, err := config.LoadRepoConfig(config.ConfigPath(root))
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("profile") {
		repoCfg.Profile = flagProfile
	}

	if cmd.Flags().Changed("region") {
		repoCfg.Region = flagRegion
	}

	if cmd.Flags().Changed("subdir") {
		repoCfg.Subdir = flagSubdir
	}

	prefsPath := flagConfig
	if prefsPath == "" {
		prefsPath = config.DefaultPreferencesPath()
	}

	prefs, err := config.LoadPreferences(prefsPath)
	if err != nil {
		return fmt.Errorf("loading preferences: %w", err)
	}

	if repoCfg.Profile == "" {
		repoCfg.Profile = prefs.DefaultProfile
	}

	id := store.ParseID(repoCfg.Aws)
	adapter := store.New(id, repoCfg.Profile, repoCfg.Region, logger)

	ledger, err := history.Open(cmd.Context(), config.HistoryDBPath(root), logger)
	if err != nil {
		logger.Warn("root: history ledger unavailable", "error", err)

		ledger = nil
	}

	orch := &orchestrator.Orchestrator{
		Root:   root,
		Config: repoCfg,
		Store:  adapter,
		Logger: logger,
		Ledger: ledger,
	}

	cc := &CLIContext{
		Root:         root,
		Config:       repoCfg,
		Prefs:        prefs,
		Orchestrator: orch,
		Logger:       logger,
		DryRun:       flagDryRun,
		Quiet:        flagQuiet,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cc))

	return nil
}

// buildLogger creates an slog.Logger whose level reflects --verbose and
// --quiet, mutually exclusive per cmd.MarkFlagsMutuallyExclusive above.
func buildLogger() *slog.Logger {
	level := slog.LevelWarn

	switch {
	case flagVerbose:
		level = slog.LevelDebug
	case flagQuiet:
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
