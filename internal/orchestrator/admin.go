package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/tonimelisma/dat/internal/config"
	"github.com/tonimelisma/dat/internal/daterrors"
	"github.com/tonimelisma/dat/internal/fingerprint"
	"github.com/tonimelisma/dat/internal/inventory"
	"github.com/tonimelisma/dat/internal/walker"
)

// Checkin uploads a single path and the master object, updating local.
// It builds the smallest possible include-list sync rather than routing
// through the full reconciliation engine.
func (o *Orchestrator) Checkin(ctx context.Context, path string) (*Report, error) {
	started := time.Now()

	report, err := o.checkin(ctx, path)
	o.record(ctx, "checkin", started, report, err)

	return report, err
}

func (o *Orchestrator) checkin(ctx context.Context, path string) (*Report, error) {
	root, err := o.workRoot()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	digest, ok, err := fingerprint.AtRoot(root, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	if !ok {
		return nil, fmt.Errorf("%w: %s is a symlink outside the working root", daterrors.ErrLocalIO, path)
	}

	local, err := inventory.Read(o.localPath())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	master, err := o.Store.FetchMaster(ctx)
	if err != nil {
		if !errorsIsNotFound(err) {
			return nil, err
		}

		if err := o.Store.CreatePrefix(ctx); err != nil {
			return nil, err
		}

		master = inventory.New()
	}

	newMaster := master.Clone()
	if err := newMaster.Set(path, digest); err != nil {
		return nil, err
	}

	if err := o.Store.SyncUpload(ctx, root, []string{path}, newMaster); err != nil {
		return nil, err
	}

	newLocal := local.Clone()
	if err := newLocal.Set(path, digest); err != nil {
		return nil, err
	}

	if err := inventory.Write(o.localPath(), newLocal); err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	return &Report{Actionable: []string{path}}, nil
}

// Checkout downloads a single path, updating local: a single-object
// fetch followed by a local manifest update.
func (o *Orchestrator) Checkout(ctx context.Context, path string) (*Report, error) {
	started := time.Now()

	report, err := o.checkout(ctx, path)
	o.record(ctx, "checkout", started, report, err)

	return report, err
}

func (o *Orchestrator) checkout(ctx context.Context, path string) (*Report, error) {
	root, err := o.workRoot()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	master, err := o.Store.FetchMaster(ctx)
	if err != nil {
		return nil, err
	}

	digest, ok := master.Get(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s not found in master", daterrors.ErrBucketMissing, path)
	}

	if err := o.Store.SyncDownload(ctx, root, []string{path}); err != nil {
		return nil, err
	}

	local, err := inventory.Read(o.localPath())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	newLocal := local.Clone()
	if err := newLocal.Set(path, digest); err != nil {
		return nil, err
	}

	if err := inventory.Write(o.localPath(), newLocal); err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	return &Report{Actionable: []string{path}}, nil
}

// Delete removes the remote prefix/bucket and empties the local
// .dat/local snapshot, leaving .dat/config marked as never-pushed. Confirmation is
// the caller's (CLI) responsibility; Delete executes unconditionally
// once called.
func (o *Orchestrator) Delete(ctx context.Context) error {
	started := time.Now()

	err := o.delete(ctx)
	o.record(ctx, "delete", started, nil, err)

	return err
}

func (o *Orchestrator) delete(ctx context.Context) error {
	if err := o.Store.RemovePrefix(ctx); err != nil {
		return err
	}

	if err := inventory.Write(o.localPath(), inventory.New()); err != nil {
		return fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	o.Config.Pushed = false

	if err := config.WriteRepoConfig(o.configPath(), o.Config); err != nil {
		return fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	return nil
}

// OverwriteMaster unconditionally replaces the remote with the local
// tree: walk the working root, upload everything, replace the master
// object with the walked inventory. Confirmation is the caller's
// responsibility.
func (o *Orchestrator) OverwriteMaster(ctx context.Context) (*Report, error) {
	started := time.Now()

	report, err := o.overwriteMaster(ctx)
	o.record(ctx, "overwrite-master", started, report, err)

	return report, err
}

func (o *Orchestrator) overwriteMaster(ctx context.Context) (*Report, error) {
	root, err := o.workRoot()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	current, err := walker.Walk(ctx, root, o.Logger)
	if err != nil {
		return nil, err
	}

	if _, err := o.Store.FetchMaster(ctx); err != nil {
		if !errorsIsNotFound(err) {
			return nil, err
		}

		if err := o.Store.CreatePrefix(ctx); err != nil {
			return nil, err
		}
	}

	if err := o.Store.SyncUpload(ctx, root, current.Paths(), current); err != nil {
		return nil, err
	}

	if err := inventory.Write(o.localPath(), current); err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	if !o.Config.Pushed {
		o.Config.Pushed = true

		if err := config.WriteRepoConfig(o.configPath(), o.Config); err != nil {
			return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
		}
	}

	return &Report{Actionable: current.Paths()}, nil
}

// RepairMaster rebuilds the master object by walking the remote tree
// and downloading every object to fingerprint it locally (S3 ETags
// aren't guaranteed MD5 for multipart uploads, so the remote listing
// alone can't produce fingerprints).
func (o *Orchestrator) RepairMaster(ctx context.Context) (*Report, error) {
	started := time.Now()

	report, err := o.repairMaster(ctx)
	o.record(ctx, "repair-master", started, report, err)

	return report, err
}

func (o *Orchestrator) repairMaster(ctx context.Context) (*Report, error) {
	root, err := o.workRoot()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	remotePaths, err := o.Store.ListRemote(ctx)
	if err != nil {
		return nil, err
	}

	if err := o.Store.SyncDownload(ctx, root, remotePaths); err != nil {
		return nil, err
	}

	rebuilt, err := walker.Walk(ctx, root, o.Logger)
	if err != nil {
		return nil, err
	}

	if err := o.Store.SyncUpload(ctx, root, rebuilt.Paths(), rebuilt); err != nil {
		return nil, err
	}

	return &Report{Actionable: rebuilt.Paths()}, nil
}
