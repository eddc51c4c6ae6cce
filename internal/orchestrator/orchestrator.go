// Package orchestrator implements one method per command, composing the
// fingerprinter, inventory, walker, classifier, resolver, and store
// adapter the same way an internal/sync orchestrator composes a
// Scanner, Reconciler, and TransferManager.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tonimelisma/dat/internal/config"
	"github.com/tonimelisma/dat/internal/daterrors"
	"github.com/tonimelisma/dat/internal/history"
	"github.com/tonimelisma/dat/internal/inventory"
	"github.com/tonimelisma/dat/internal/reconcile"
	"github.com/tonimelisma/dat/internal/store"
	"github.com/tonimelisma/dat/internal/walker"
)

// Orchestrator holds everything a command needs: the repository root,
// its parsed config, the store adapter for that config's remote id, and
// a logger. One Orchestrator serves one command invocation.
type Orchestrator struct {
	Root   string
	Config *config.RepoConfig
	Store  store.Adapter
	Logger *slog.Logger
	Ledger *history.Ledger // nil when history is unavailable; Record becomes a no-op
}

// Report is the shared result shape returned by Push/Pull/Status, the
// fields a CLI RunE needs to print the command's outcome.
type Report struct {
	UpToDate   bool
	Conflicts  []string
	Resolved   []string
	Actionable []string
}

func (r *Report) recordOutcome() string {
	switch {
	case len(r.Conflicts) > 0:
		return "conflicts"
	default:
		return "ok"
	}
}

func (o *Orchestrator) record(ctx context.Context, command string, started time.Time, r *Report, err error) {
	if o.Ledger == nil {
		return
	}

	run := history.Run{
		Command:    command,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}

	switch {
	case err != nil:
		run.Outcome = "error"
		run.Detail = err.Error()
	case r != nil:
		run.Outcome = r.recordOutcome()
		run.ActionableCount = len(r.Actionable)
		run.ConflictCount = len(r.Conflicts)
	default:
		run.Outcome = "ok"
	}

	if rerr := o.Ledger.Record(ctx, run); rerr != nil {
		o.Logger.Warn("orchestrator: recording history", "command", command, "error", rerr)
	}
}

func (o *Orchestrator) workRoot() (string, error) {
	return walker.ResolveRoot(o.Root, o.Config.Subdir)
}

func (o *Orchestrator) localPath() string {
	return config.LocalPath(o.Root)
}

func (o *Orchestrator) configPath() string {
	return config.ConfigPath(o.Root)
}

// Push walks the working tree, classifies and resolves the push/purge
// candidates against the remote master, and applies the result unless
// dryRun is set.
func (o *Orchestrator) Push(ctx context.Context, dryRun bool) (*Report, error) {
	started := time.Now()

	report, err := o.push(ctx, dryRun)
	o.record(ctx, "push", started, report, err)

	return report, err
}

func (o *Orchestrator) push(ctx context.Context, dryRun bool) (*Report, error) {
	root, err := o.workRoot()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	current, err := walker.Walk(ctx, root, o.Logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	local, err := inventory.Read(o.localPath())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	pushSet := reconcile.Push(current, local)
	purgeSet := reconcile.Purge(current, local)

	if len(pushSet) == 0 && len(purgeSet) == 0 {
		return &Report{UpToDate: true}, nil
	}

	master, err := o.Store.FetchMaster(ctx)
	if err != nil {
		if !errorsIsNotFound(err) {
			return nil, err
		}

		if !dryRun {
			if err := o.Store.CreatePrefix(ctx); err != nil {
				return nil, err
			}
		}

		master = local.Clone()
	}

	pushDelta := reconcile.ResolvePush(current, local, master, pushSet)
	purgeDelta := reconcile.ResolvePurge(local, master, purgeSet)

	report := &Report{
		Conflicts:  append(append([]string{}, pushDelta.Conflicts...), purgeDelta.Conflicts...),
		Resolved:   append(append([]string{}, pushDelta.Resolved...), purgeDelta.Resolved...),
		Actionable: append(append([]string{}, pushDelta.Actionable...), purgeDelta.Actionable...),
	}

	newLocal := local.Clone()
	allSet := mergeSet(pushDelta.LocalSet, purgeDelta.LocalSet)
	allDelete := append(append([]string{}, pushDelta.LocalDelete...), purgeDelta.LocalDelete...)

	if err := reconcile.Apply(newLocal, allSet, allDelete); err != nil {
		return nil, err
	}

	if len(report.Actionable) == 0 {
		if !dryRun {
			if err := inventory.Write(o.localPath(), newLocal); err != nil {
				return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
			}
		}

		report.UpToDate = len(report.Conflicts) == 0

		return report, nil
	}

	// master as it will read once this push lands: start from the
	// fetched master, apply both deltas' MasterSet/MasterDelete.
	newMaster := master.Clone()
	if err := reconcile.Apply(newMaster, pushDelta.MasterSet, purgeDelta.MasterDelete); err != nil {
		return nil, err
	}

	if dryRun {
		return report, nil
	}

	if err := o.Store.SyncUpload(ctx, root, report.Actionable, newMaster); err != nil {
		return nil, err
	}

	if err := inventory.Write(o.localPath(), newLocal); err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	if !o.Config.Pushed {
		o.Config.Pushed = true

		if err := config.WriteRepoConfig(o.configPath(), o.Config); err != nil {
			return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
		}
	}

	return report, nil
}

// Pull fetches the remote master, classifies and resolves the
// pull/kill candidates against the local tree, and applies the result
// unless dryRun is set.
func (o *Orchestrator) Pull(ctx context.Context, dryRun bool) (*Report, error) {
	started := time.Now()

	report, err := o.pull(ctx, dryRun)
	o.record(ctx, "pull", started, report, err)

	return report, err
}

func (o *Orchestrator) pull(ctx context.Context, dryRun bool) (*Report, error) {
	root, err := o.workRoot()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	local, err := inventory.Read(o.localPath())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	master, err := o.Store.FetchMaster(ctx)
	if err != nil {
		return nil, err
	}

	current, err := walker.Walk(ctx, root, o.Logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	pullSet := reconcile.Pull(master, local)
	killSet := reconcile.Kill(master, local)

	pullDelta := reconcile.ResolvePull(current, local, master, pullSet)
	killDelta := reconcile.ResolveKill(current, local, killSet)

	report := &Report{
		Conflicts:  append(append([]string{}, pullDelta.Conflicts...), killDelta.Conflicts...),
		Resolved:   append(append([]string{}, pullDelta.Resolved...), killDelta.Resolved...),
		Actionable: append(append([]string{}, pullDelta.Actionable...), killDelta.Actionable...),
	}

	newLocal := local.Clone()
	allSet := mergeSet(pullDelta.LocalSet, killDelta.LocalSet)
	allDelete := append(append([]string{}, pullDelta.LocalDelete...), killDelta.LocalDelete...)

	if err := reconcile.Apply(newLocal, allSet, allDelete); err != nil {
		return nil, err
	}

	if len(report.Actionable) == 0 {
		report.UpToDate = len(report.Conflicts) == 0

		if !dryRun {
			if err := inventory.Write(o.localPath(), newLocal); err != nil {
				return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
			}
		}

		return report, nil
	}

	if dryRun {
		return report, nil
	}

	if err := o.Store.SyncDownload(ctx, root, report.Actionable); err != nil {
		return nil, err
	}

	if err := inventory.Write(o.localPath(), newLocal); err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	return report, nil
}

// Status implements local `dat status`: classify push/purge against the
// working tree with no network call, no mutation.
func (o *Orchestrator) Status(ctx context.Context) (*Report, error) {
	root, err := o.workRoot()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	current, err := walker.Walk(ctx, root, o.Logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	local, err := inventory.Read(o.localPath())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	pushSet := reconcile.Push(current, local)
	purgeSet := reconcile.Purge(current, local)

	report := &Report{
		Actionable: append(pushSet.Sorted(), purgeSet.Sorted()...),
		UpToDate:   len(pushSet) == 0 && len(purgeSet) == 0,
	}

	return report, nil
}

// RemoteReport is StatusRemote's richer partition of a remote status
// check: modified/deleted in each direction, generic conflicts, and the
// cross-category deleted-remotely-but-modified-locally paths that must
// never appear in the generic conflict list.
type RemoteReport struct {
	ModifiedRemotely           []string
	ModifiedLocally            []string
	DeletedRemotely            []string
	DeletedLocally             []string
	Conflicts                  []string
	DeletedRemoteModifiedLocal []string
}

// StatusRemote implements `dat status -r`: pull+push classification
// combined, in dry form. Never mutates local state or the remote, by
// construction: it only calls the pure classifiers/resolvers and never
// Apply, SyncUpload, SyncDownload, or inventory.Write.
func (o *Orchestrator) StatusRemote(ctx context.Context) (*RemoteReport, error) {
	root, err := o.workRoot()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	current, err := walker.Walk(ctx, root, o.Logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	local, err := inventory.Read(o.localPath())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	master, err := o.Store.FetchMaster(ctx)
	if err != nil {
		return nil, err
	}

	pushSet := reconcile.Push(current, local)
	purgeSet := reconcile.Purge(current, local)
	pullSet := reconcile.Pull(master, local)
	killSet := reconcile.Kill(master, local)

	pushDelta := reconcile.ResolvePush(current, local, master, pushSet)
	purgeDelta := reconcile.ResolvePurge(local, master, purgeSet)
	pullDelta := reconcile.ResolvePull(current, local, master, pullSet)
	killDelta := reconcile.ResolveKill(current, local, killSet)

	// The cross-category: deleted remotely (kill) but the same path also
	// wants pushing (modified/created locally). Must be pulled out of
	// the generic conflict report before it's built.
	crossCategory := killSet.Intersect(pushSet.Sorted())
	crossSet := reconcile.NewPathSet(crossCategory...)

	genericConflicts := dedupe(filterOut(append(append([]string{}, pushDelta.Conflicts...), purgeDelta.Conflicts...), crossSet),
		filterOut(append(append([]string{}, pullDelta.Conflicts...), killDelta.Conflicts...), crossSet))

	return &RemoteReport{
		ModifiedRemotely:           pullDelta.Actionable,
		ModifiedLocally:            pushDelta.Actionable,
		DeletedRemotely:            killDelta.Actionable,
		DeletedLocally:             purgeDelta.Actionable,
		Conflicts:                  genericConflicts,
		DeletedRemoteModifiedLocal: crossCategory,
	}, nil
}

func filterOut(paths []string, exclude reconcile.PathSet) []string {
	out := make([]string, 0, len(paths))

	for _, p := range paths {
		if !exclude.Has(p) {
			out = append(out, p)
		}
	}

	return out
}

func dedupe(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))

	var out []string

	for _, p := range append(append([]string{}, a...), b...) {
		if _, ok := seen[p]; ok {
			continue
		}

		seen[p] = struct{}{}

		out = append(out, p)
	}

	return reconcile.NewPathSet(out...).Sorted()
}

func mergeSet(a, b map[string]string) map[string]string {
	out := make(map[string]string, len(a)+len(b))

	for k, v := range a {
		out[k] = v
	}

	for k, v := range b {
		out[k] = v
	}

	return out
}

func errorsIsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
