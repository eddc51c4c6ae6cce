package inventory

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/dat/internal/daterrors"
)

func TestSetAndGet(t *testing.T) {
	t.Parallel()

	inv := New()
	require.NoError(t, inv.Set("a/b.txt", "deadbeef"))

	got, ok := inv.Get("a/b.txt")
	assert.True(t, ok)
	assert.Equal(t, "deadbeef", got)

	_, ok = inv.Get("missing")
	assert.False(t, ok)
}

func TestSet_RejectsTabAndNewline(t *testing.T) {
	t.Parallel()

	inv := New()

	err := inv.Set("has\ttab", "x")
	assert.ErrorIs(t, err, daterrors.ErrInvalidPath)

	err = inv.Set("has\nnewline", "x")
	assert.ErrorIs(t, err, daterrors.ErrInvalidPath)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	inv := New()
	require.NoError(t, inv.Set("p", "d"))
	inv.Delete("p")

	assert.False(t, inv.Has("p"))
	inv.Delete("p") // no-op on absent key
}

func TestPaths_SortedAscending(t *testing.T) {
	t.Parallel()

	inv := New()
	require.NoError(t, inv.Set("zebra", "1"))
	require.NoError(t, inv.Set("apple", "2"))
	require.NoError(t, inv.Set("mango", "3"))

	assert.Equal(t, []string{"apple", "mango", "zebra"}, inv.Paths())
}

func TestClone_IsIndependent(t *testing.T) {
	t.Parallel()

	inv := New()
	require.NoError(t, inv.Set("a", "1"))

	clone := inv.Clone()
	require.NoError(t, clone.Set("b", "2"))

	assert.Equal(t, 1, inv.Len())
	assert.Equal(t, 2, clone.Len())
}

// TestRoundTrip_WriteThenParse is the inventory format's property #4:
// serializing and reparsing must yield an identical map.
func TestRoundTrip_WriteThenParse(t *testing.T) {
	t.Parallel()

	inv := New()
	require.NoError(t, inv.Set("dir/file one.txt", "aaaa"))
	require.NoError(t, inv.Set("dir/file two.txt", "bbbb"))
	require.NoError(t, inv.Set("top.txt", "cccc"))

	var buf bytes.Buffer
	_, err := inv.WriteTo(&buf)
	require.NoError(t, err)

	parsed, err := Parse(&buf)
	require.NoError(t, err)

	require.Equal(t, inv.Len(), parsed.Len())
	for _, p := range inv.Paths() {
		want, _ := inv.Get(p)
		got, ok := parsed.Get(p)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestWriteTo_FormatIsTabSeparated(t *testing.T) {
	t.Parallel()

	inv := New()
	require.NoError(t, inv.Set("a.txt", "digest1"))

	var buf bytes.Buffer
	_, err := inv.WriteTo(&buf)
	require.NoError(t, err)

	assert.Equal(t, "a.txt\tdigest1\n", buf.String())
}

func TestParse_TrimsTrailingCR(t *testing.T) {
	t.Parallel()

	inv, err := Parse(strings.NewReader("a.txt\tdigest1\r\n"))
	require.NoError(t, err)

	got, ok := inv.Get("a.txt")
	assert.True(t, ok)
	assert.Equal(t, "digest1", got)
}

func TestParse_SkipsBlankLines(t *testing.T) {
	t.Parallel()

	inv, err := Parse(strings.NewReader("a.txt\tdigest1\n\nb.txt\tdigest2\n"))
	require.NoError(t, err)

	assert.Equal(t, 2, inv.Len())
}

func TestParse_RejectsMalformedLine(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader("no-tab-here\n"))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader("too\tmany\ttabs\n"))
	assert.Error(t, err)
}

func TestReadWrite_AtomicFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "inventory")

	inv := New()
	require.NoError(t, inv.Set("a.txt", "digest1"))
	require.NoError(t, inv.Set("b/c.txt", "digest2"))

	require.NoError(t, Write(path, inv))

	reloaded, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, inv.Paths(), reloaded.Paths())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind after rename")
}

func TestRead_MissingFileYieldsEmptyInventory(t *testing.T) {
	t.Parallel()

	inv, err := Read(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Len())
}
