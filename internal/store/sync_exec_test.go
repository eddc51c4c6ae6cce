package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/dat/internal/inventory"
)

func TestIncludeFlags(t *testing.T) {
	t.Parallel()

	got := includeFlags([]string{"a.txt", "b/c.txt"})
	assert.Equal(t, []string{"--include", "a.txt", "--include", "b/c.txt"}, got)
}

func TestIncludeFlags_Empty(t *testing.T) {
	t.Parallel()

	got := includeFlags(nil)
	assert.Empty(t, got)
}

func TestBaseSyncArgs_WithProfileAndRegion(t *testing.T) {
	t.Parallel()

	a := &S3Adapter{id: ID{Bucket: "b"}, profile: "work", region: "eu-west-1"}
	args := a.baseSyncArgs("sync", "src", "dst")
	assert.Equal(t, []string{"s3", "sync", "src", "dst", "--profile", "work", "--region", "eu-west-1"}, args)
}

func TestBaseSyncArgs_NoProfileOrRegion(t *testing.T) {
	t.Parallel()

	a := &S3Adapter{id: ID{Bucket: "b"}}
	args := a.baseSyncArgs("sync", "src", "dst")
	assert.Equal(t, []string{"s3", "sync", "src", "dst"}, args)
}

func TestDestURI_Bare(t *testing.T) {
	t.Parallel()

	a := &S3Adapter{id: ID{Bucket: "b"}}
	assert.Equal(t, "s3://b", a.destURI())
}

func TestDestURI_WithPrefix(t *testing.T) {
	t.Parallel()

	a := &S3Adapter{id: ID{Bucket: "b", Prefix: "sub/dir"}}
	assert.Equal(t, "s3://b/sub/dir", a.destURI())
}

func TestLooksLikeAuthFailure(t *testing.T) {
	t.Parallel()

	assert.True(t, looksLikeAuthFailure("An error occurred: ExpiredToken"))
	assert.True(t, looksLikeAuthFailure("Unable to locate credentials"))
	assert.False(t, looksLikeAuthFailure("NoSuchBucket: the specified bucket does not exist"))
}

func TestWriteTransientMaster_WritesSerializedInventory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	master := inventory.New()
	require.NoError(t, master.Set("a.txt", "digest-a"))
	require.NoError(t, master.Set("b.txt", "digest-b"))

	path := filepath.Join(root, filepath.FromSlash(MasterKey))
	require.NoError(t, writeTransientMaster(path, master))

	roundTripped, err := inventory.Read(path)
	require.NoError(t, err)
	assert.Equal(t, master.Paths(), roundTripped.Paths())

	d, ok := roundTripped.Get("a.txt")
	assert.True(t, ok)
	assert.Equal(t, "digest-a", d)
}

func TestWriteTransientMaster_CreatesParentDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, filepath.FromSlash(MasterKey))

	_, err := os.Stat(filepath.Dir(path))
	require.True(t, os.IsNotExist(err), "parent directory must not exist before writeTransientMaster")

	require.NoError(t, writeTransientMaster(path, inventory.New()))

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
