package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tonimelisma/dat/internal/config"
	"github.com/tonimelisma/dat/internal/daterrors"
	"github.com/tonimelisma/dat/internal/inventory"
	"github.com/tonimelisma/dat/internal/reconcile"
	"github.com/tonimelisma/dat/internal/walker"
)

// Stash runs the pull+kill resolvers to derive the conflict set, moves
// each conflicted file into .dat/stash/, drops it from local, and
// rewrites local. Refuses when a stash already exists.
func (o *Orchestrator) Stash(ctx context.Context) (*Report, error) {
	started := time.Now()

	report, err := o.stash(ctx)
	o.record(ctx, "stash", started, report, err)

	return report, err
}

func (o *Orchestrator) stash(ctx context.Context) (*Report, error) {
	stashDir := config.StashDir(o.Root)

	if _, err := os.Stat(stashDir); err == nil {
		return nil, daterrors.Wrap(daterrors.ErrStashExists, "run 'dat stash pop' first")
	}

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

	if local.Len() == 0 {
		local = current
	}

	master, err := o.Store.FetchMaster(ctx)
	if err != nil {
		return nil, err
	}

	pullSet := reconcile.Pull(master, local)
	killSet := reconcile.Kill(master, local)

	pullDelta := reconcile.ResolvePull(current, local, master, pullSet)
	killDelta := reconcile.ResolveKill(current, local, killSet)

	conflicts := reconcile.NewPathSet(append(append([]string{}, pullDelta.Conflicts...), killDelta.Conflicts...)...).Sorted()

	if len(conflicts) == 0 {
		return &Report{UpToDate: true}, nil
	}

	if err := os.MkdirAll(stashDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %w", daterrors.ErrLocalIO, stashDir, err)
	}

	newLocal := local.Clone()

	for _, p := range conflicts {
		src := filepath.Join(root, p)
		dst := filepath.Join(stashDir, p)

		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
		}

		if err := os.Rename(src, dst); err != nil {
			return nil, fmt.Errorf("%w: stashing %s: %w", daterrors.ErrLocalIO, p, err)
		}

		newLocal.Delete(p)
	}

	if err := inventory.Write(o.localPath(), newLocal); err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	return &Report{Actionable: conflicts}, nil
}

// StashPop moves every entry in .dat/stash/ back to its original path.
// Refuses (unless hard) if it would overwrite an existing file.
func (o *Orchestrator) StashPop(ctx context.Context, hard bool) (*Report, error) {
	started := time.Now()

	report, err := o.stashPop(hard)
	o.record(ctx, "stash-pop", started, report, err)

	return report, err
}

func (o *Orchestrator) stashPop(hard bool) (*Report, error) {
	root, err := o.workRoot()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	stashDir := config.StashDir(o.Root)

	if _, err := os.Stat(stashDir); err != nil {
		return nil, daterrors.Wrap(daterrors.ErrStashMissing, "")
	}

	var popped []string

	err = filepath.WalkDir(stashDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path == stashDir || d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(stashDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		dst := filepath.Join(root, rel)

		if !hard {
			if _, err := os.Stat(dst); err == nil {
				return daterrors.Wrap(daterrors.ErrStashWouldOverwrite, "retry with --hard to overwrite")
			}
		}

		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}

		if err := os.Rename(path, dst); err != nil {
			return err
		}

		popped = append(popped, rel)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	if err := removeEmptyDirs(stashDir); err != nil {
		return nil, fmt.Errorf("%w: %w", daterrors.ErrLocalIO, err)
	}

	return &Report{Actionable: popped}, nil
}

// removeEmptyDirs removes stashDir and any now-empty subdirectories left
// behind after every file has been moved out of it.
func removeEmptyDirs(stashDir string) error {
	var dirs []string

	err := filepath.WalkDir(stashDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			dirs = append(dirs, path)
		}

		return nil
	})
	if err != nil {
		return err
	}

	for i := len(dirs) - 1; i >= 0; i-- {
		if err := os.Remove(dirs[i]); err != nil {
			return err
		}
	}

	return nil
}
