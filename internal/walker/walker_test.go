package walker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()

	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalk_IncludesPlainFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "a.txt", "a")
	writeFile(t, root, "sub/b.txt", "b")

	inv, err := Walk(context.Background(), root, nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a.txt", "sub/b.txt"}, inv.Paths())
}

// TestWalk_ExcludesReservedNames is universal property #6: .dat, .git,
// .DS_Store, and the root .gitignore never appear in a walked inventory.
func TestWalk_ExcludesReservedNames(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "keep.txt", "k")
	writeFile(t, root, ".dat/local", "should not appear")
	writeFile(t, root, ".dat/config", "should not appear")
	writeFile(t, root, ".git/HEAD", "should not appear")
	writeFile(t, root, ".DS_Store", "should not appear")
	writeFile(t, root, "sub/.DS_Store", "should not appear")
	writeFile(t, root, ".gitignore", "should not appear")

	inv, err := Walk(context.Background(), root, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"keep.txt"}, inv.Paths())
}

// TestWalk_NestedGitignoreIsKept covers the real-project case (e.g.
// vendor/.gitignore): the .gitignore exclusion only applies at the
// repository root, not to nested directories.
func TestWalk_NestedGitignoreIsKept(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "keep.txt", "k")
	writeFile(t, root, "vendor/.gitignore", "nested, not tool-owned")

	inv, err := Walk(context.Background(), root, nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"keep.txt", "vendor/.gitignore"}, inv.Paths())
}

func TestWalk_EmptyDirectoryYieldsEmptyInventory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	inv, err := Walk(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Len())
}

func TestWalk_DeepNesting(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "a/b/c/d/deep.txt", "deep")

	inv, err := Walk(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b/c/d/deep.txt"}, inv.Paths())
}

func TestResolveRoot_ExplicitSubdir(t *testing.T) {
	t.Parallel()

	repoRoot := t.TempDir()

	got, err := ResolveRoot(repoRoot, "public")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repoRoot, "public"), got)
}

func TestResolveRoot_AutoDetectsSiteDir(t *testing.T) {
	t.Parallel()

	repoRoot := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(repoRoot, "_site"), 0o755))

	got, err := ResolveRoot(repoRoot, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repoRoot, "_site"), got)
}

func TestResolveRoot_FallsBackToRepoRoot(t *testing.T) {
	t.Parallel()

	repoRoot := t.TempDir()

	got, err := ResolveRoot(repoRoot, "")
	require.NoError(t, err)
	assert.Equal(t, repoRoot, got)
}
