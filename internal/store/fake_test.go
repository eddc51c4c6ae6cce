package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/dat/internal/inventory"
)

func TestFake_FetchMaster_NotFoundInitially(t *testing.T) {
	t.Parallel()

	f := NewFake()
	_, err := f.FetchMaster(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFake_SyncUpload_StoresMasterAndIncludedFiles(t *testing.T) {
	t.Parallel()

	f := NewFake()
	f.Files["a.txt"] = []byte("A")
	f.Files["b.txt"] = []byte("B")

	master := inventory.New()
	require.NoError(t, master.Set("a.txt", "digestA"))

	require.NoError(t, f.SyncUpload(context.Background(), "", []string{"a.txt"}, master))

	assert.Equal(t, []byte("A"), f.Bucket["a.txt"])
	_, ok := f.Bucket["b.txt"]
	assert.False(t, ok, "file not in include list must not be uploaded")

	got, err := f.FetchMaster(context.Background())
	require.NoError(t, err)
	d, ok := got.Get("a.txt")
	assert.True(t, ok)
	assert.Equal(t, "digestA", d)
}

func TestFake_SyncUpload_DeletesRemoteNotInIncludeList(t *testing.T) {
	t.Parallel()

	f := NewFake()
	f.Bucket["stale.txt"] = []byte("old")

	require.NoError(t, f.SyncUpload(context.Background(), "", nil, inventory.New()))

	_, ok := f.Bucket["stale.txt"]
	assert.False(t, ok)
}

func TestFake_SyncDownload_PopulatesFilesAndPrunesExtras(t *testing.T) {
	t.Parallel()

	f := NewFake()
	f.Bucket["a.txt"] = []byte("A")
	f.Files["stale.txt"] = []byte("stale")

	require.NoError(t, f.SyncDownload(context.Background(), "", []string{"a.txt"}))

	assert.Equal(t, []byte("A"), f.Files["a.txt"])
	_, ok := f.Files["stale.txt"]
	assert.False(t, ok)
}

func TestFake_ListRemote(t *testing.T) {
	t.Parallel()

	f := NewFake()
	f.Bucket["a.txt"] = []byte("A")
	f.Bucket["b.txt"] = []byte("B")

	keys, err := f.ListRemote(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, keys)
}

func TestFake_RemovePrefix_ClearsEverything(t *testing.T) {
	t.Parallel()

	f := NewFake()
	f.Bucket["a.txt"] = []byte("A")
	f.MasterInv = inventory.New()
	f.BucketExists = true

	require.NoError(t, f.RemovePrefix(context.Background()))

	assert.Empty(t, f.Bucket)
	assert.Nil(t, f.MasterInv)
	assert.False(t, f.BucketExists)
}
