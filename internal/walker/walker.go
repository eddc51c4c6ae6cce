// Package walker enumerates a working tree into a fresh Inventory,
// applying the exclusion rules and following symlinks only within the
// walk root. Fingerprinting is parallelized across files, bounded by
// available cores via an errgroup-limited worker pool.
package walker

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	gosync "sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/tonimelisma/dat/internal/fingerprint"
	"github.com/tonimelisma/dat/internal/inventory"
)

// excludedTopComponents names path first-components that are always
// excluded from the walk.
var excludedTopComponents = map[string]bool{
	".dat": true,
	".git": true,
}

// excludedNames lists literal file names excluded wherever they occur.
var excludedNames = map[string]bool{
	".DS_Store": true,
}

// rootOnlyExcludedNames lists literal file names excluded only at the
// top of the walk root, not in nested directories (e.g. vendor/.gitignore
// is real project content, not tool-owned state).
var rootOnlyExcludedNames = map[string]bool{
	".gitignore": true,
}

// ResolveRoot returns the directory the walker should treat as the
// working root: subdir if non-empty, else repoRoot/_site if that
// directory exists (auto-detecting a Jekyll-style built-output
// directory), else repoRoot itself.
func ResolveRoot(repoRoot, subdir string) (string, error) {
	if subdir != "" {
		return filepath.Join(repoRoot, subdir), nil
	}

	siteDir := filepath.Join(repoRoot, "_site")

	info, err := os.Stat(siteDir)
	if err == nil && info.IsDir() {
		return siteDir, nil
	}

	return repoRoot, nil
}

// Walk enumerates root into a fresh Inventory. Not incremental: always
// a complete tree walk.
func Walk(ctx context.Context, root string, logger *slog.Logger) (*inventory.Inventory, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var paths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walker: walking %s: %w", path, err)
		}

		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("walker: relativizing %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		if excluded(rel, d) {
			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() {
			return nil
		}

		paths = append(paths, norm.NFC.String(rel))

		return nil
	})
	if err != nil {
		return nil, err
	}

	return fingerprintAll(ctx, root, paths, logger)
}

// excluded reports whether rel should be skipped by the exclusion
// rules above.
func excluded(rel string, d fs.DirEntry) bool {
	first, _, _ := strings.Cut(rel, "/")
	if excludedTopComponents[first] {
		return true
	}

	if !d.IsDir() {
		if excludedNames[filepath.Base(rel)] {
			return true
		}

		if rootOnlyExcludedNames[rel] {
			return true
		}
	}

	return false
}

// fingerprintAll computes fingerprints for every path concurrently,
// bounded by GOMAXPROCS, merging results into a single Inventory under
// a mutex.
func fingerprintAll(ctx context.Context, root string, paths []string, logger *slog.Logger) (*inventory.Inventory, error) {
	inv := inventory.New()

	var mu gosync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, p := range paths {
		p := p

		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			digest, ok, err := fingerprint.AtRoot(root, p)
			if err != nil {
				return fmt.Errorf("walker: fingerprinting %s: %w", p, err)
			}

			if !ok {
				logger.Debug("walker: excluding symlink outside root", "path", p)
				return nil
			}

			mu.Lock()
			defer mu.Unlock()

			return inv.Set(p, digest)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return inv, nil
}
