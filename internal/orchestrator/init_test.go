package orchestrator

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/dat/internal/config"
	"github.com/tonimelisma/dat/internal/inventory"
	"github.com/tonimelisma/dat/internal/store"
)

func TestInit_CreatesConfigWithGivenBucket(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	cfg, err := Init(InitOptions{Root: root, Bucket: "my-bucket"})
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", cfg.Aws)
	assert.False(t, cfg.Pushed)
	assert.Equal(t, config.DefaultRegion, cfg.Region)

	reloaded, err := config.LoadRepoConfig(config.ConfigPath(root))
	require.NoError(t, err)
	assert.Equal(t, cfg, reloaded)
}

func TestInit_DerivesDefaultBucketWhenEmpty(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	cfg, err := Init(InitOptions{Root: root})
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Aws)
}

func TestInit_RefusesIfAlreadyInitialized(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	_, err := Init(InitOptions{Root: root, Bucket: "b"})
	require.NoError(t, err)

	_, err = Init(InitOptions{Root: root, Bucket: "b"})
	assert.Error(t, err)
}

func TestClone_DownloadsFullMasterAndWritesConfig(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	folder := filepath.Join(parent, "cloned")

	fake := store.NewFake()
	master := inventory.New()
	require.NoError(t, master.Set("a.txt", "digest-a"))
	require.NoError(t, master.Set("b.txt", "digest-b"))
	fake.MasterInv = master
	fake.Bucket["a.txt"] = []byte("A")
	fake.Bucket["b.txt"] = []byte("B")

	factory := func(store.ID, string, string, *slog.Logger) store.Adapter { return fake }

	report, err := Clone(context.Background(), factory, CloneOptions{Bucket: "my-bucket", Folder: folder}, slog.Default())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, report.Actionable)

	cfg, err := config.LoadRepoConfig(config.ConfigPath(folder))
	require.NoError(t, err)
	assert.True(t, cfg.Pushed)
	assert.Equal(t, "my-bucket", cfg.Aws)

	local, err := inventory.Read(config.LocalPath(folder))
	require.NoError(t, err)
	assert.Equal(t, 2, local.Len())
}

func TestClone_RefusesIfFolderExists(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	folder := filepath.Join(parent, "exists")
	require.NoError(t, os.MkdirAll(folder, 0o755))

	fake := store.NewFake()
	factory := func(store.ID, string, string, *slog.Logger) store.Adapter { return fake }

	_, err := Clone(context.Background(), factory, CloneOptions{Bucket: "b", Folder: folder}, slog.Default())
	assert.Error(t, err)
}

func TestClone_RollsBackFolderOnFetchFailure(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	folder := filepath.Join(parent, "failed-clone")

	fake := store.NewFake() // no MasterInv set: FetchMaster returns ErrNotFound
	factory := func(store.ID, string, string, *slog.Logger) store.Adapter { return fake }

	_, err := Clone(context.Background(), factory, CloneOptions{Bucket: "b", Folder: folder}, slog.Default())
	assert.Error(t, err)

	_, statErr := os.Stat(folder)
	assert.True(t, os.IsNotExist(statErr), "failed clone must not leave a partial folder behind")
}
