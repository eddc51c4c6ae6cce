package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/dat/internal/daterrors"
)

func TestLoadRepoConfig_MissingFileYieldsNotARepo(t *testing.T) {
	t.Parallel()

	_, err := LoadRepoConfig(filepath.Join(t.TempDir(), "config"))
	assert.ErrorIs(t, err, daterrors.ErrNotARepo)
}

func TestLoadRepoConfig_MinimalValid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte("aws: my-bucket\npushed: True\n"), 0o644))

	cfg, err := LoadRepoConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", cfg.Aws)
	assert.True(t, cfg.Pushed)
	assert.Equal(t, DefaultRegion, cfg.Region)
}

func TestLoadRepoConfig_AllFields(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config")
	content := "aws: my-bucket/prefix\n" +
		"pushed: False\n" +
		"profile: work\n" +
		"region: eu-west-1\n" +
		"subdir: public\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadRepoConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "my-bucket/prefix", cfg.Aws)
	assert.False(t, cfg.Pushed)
	assert.Equal(t, "work", cfg.Profile)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, "public", cfg.Subdir)
}

func TestLoadRepoConfig_MissingAwsIsMalformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte("pushed: True\n"), 0o644))

	_, err := LoadRepoConfig(path)
	assert.ErrorIs(t, err, daterrors.ErrConfigMalformed)
}

func TestLoadRepoConfig_UnknownKeyIsMalformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte("aws: b\nbogus: x\n"), 0o644))

	_, err := LoadRepoConfig(path)
	assert.ErrorIs(t, err, daterrors.ErrConfigMalformed)
}

func TestLoadRepoConfig_InvalidPushedValue(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte("aws: b\npushed: maybe\n"), 0o644))

	_, err := LoadRepoConfig(path)
	assert.ErrorIs(t, err, daterrors.ErrConfigMalformed)
}

func TestLoadRepoConfig_IgnoresBlankLinesAndComments(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config")
	content := "# this is a comment\n\naws: b\n\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadRepoConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "b", cfg.Aws)
}

func TestWriteRepoConfig_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config")
	cfg := &RepoConfig{
		Aws:     "bucket",
		Pushed:  true,
		Profile: "work",
		Region:  "eu-west-1",
		Subdir:  "public",
	}

	require.NoError(t, WriteRepoConfig(path, cfg))

	reloaded, err := LoadRepoConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, reloaded)
}

func TestWriteRepoConfig_OmitsEmptyOptionalFields(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config")
	cfg := &RepoConfig{Aws: "bucket"}

	require.NoError(t, WriteRepoConfig(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "profile:")
	assert.NotContains(t, string(data), "subdir:")
}
