package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/tonimelisma/dat/internal/config"
	"github.com/tonimelisma/dat/internal/daterrors"
	"github.com/tonimelisma/dat/internal/inventory"
	"github.com/tonimelisma/dat/internal/store"
)

// InitOptions configures `dat init`.
type InitOptions struct {
	Root    string // repository root, usually the current directory
	Bucket  string // bucket or bucket/prefix; empty derives a default id
	Profile string
	Region  string
	Subdir  string
}

// Init creates .dat/ under opts.Root and writes its config, defaulting
// the bucket id to <user>.<cwd-path-dotted> when none is given. It does
// not contact the store: a bucket is created lazily on first push.
func Init(opts InitOptions) (*config.RepoConfig, error) {
	dotDir := config.RepoDotDir(opts.Root)

	if _, err := os.Stat(dotDir); err == nil {
		return nil, fmt.Errorf("%w: %s already exists", daterrors.ErrLocalIO, dotDir)
	}

	if err := os.MkdirAll(dotDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %w", daterrors.ErrLocalIO, dotDir, err)
	}

	bucket := opts.Bucket
	if bucket == "" {
		bucket = config.DefaultID(opts.Root)
	}

	cfg := &config.RepoConfig{
		Aws:     bucket,
		Pushed:  false,
		Profile: opts.Profile,
		Region:  opts.Region,
		Subdir:  opts.Subdir,
	}

	if cfg.Region == "" {
		cfg.Region = config.DefaultRegion
	}

	if err := config.WriteRepoConfig(config.ConfigPath(opts.Root), cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	return cfg, nil
}

// CloneOptions configures `dat clone`.
type CloneOptions struct {
	Bucket  string
	Folder  string
	Profile string
	Region  string
	Subdir  string
}

// Clone downloads the full remote prefix into a new folder and writes
// config with pushed=True: folder-must-not-exist check, full prefix
// sync, then writing the config.
func Clone(ctx context.Context, newStore func(id store.ID, profile, region string, logger *slog.Logger) store.Adapter, opts CloneOptions, logger *slog.Logger) (*Report, error) {
	if _, err := os.Stat(opts.Folder); err == nil {
		return nil, fmt.Errorf("%w: directory %q already exists", daterrors.ErrLocalIO, opts.Folder)
	}

	if err := os.MkdirAll(opts.Folder, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %w", daterrors.ErrLocalIO, opts.Folder, err)
	}

	id := store.ParseID(opts.Bucket)
	adapter := newStore(id, opts.Profile, opts.Region, logger)

	master, err := adapter.FetchMaster(ctx)
	if err != nil {
		_ = os.RemoveAll(opts.Folder)
		return nil, err
	}

	if err := adapter.SyncDownload(ctx, opts.Folder, master.Paths()); err != nil {
		_ = os.RemoveAll(opts.Folder)
		return nil, err
	}

	dotDir := config.RepoDotDir(opts.Folder)
	if err := os.MkdirAll(dotDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	cfg := &config.RepoConfig{
		Aws:     opts.Bucket,
		Pushed:  true,
		Profile: opts.Profile,
		Region:  opts.Region,
		Subdir:  opts.Subdir,
	}

	if cfg.Region == "" {
		cfg.Region = config.DefaultRegion
	}

	if err := config.WriteRepoConfig(config.ConfigPath(opts.Folder), cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	if err := inventory.Write(config.LocalPath(opts.Folder), master); err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	return &Report{Actionable: master.Paths()}, nil
}
