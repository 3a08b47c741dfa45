package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fnctui/fnc/pkg/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Repository.Path)
	assert.Equal(t, config.DefaultDiffContextLines, cfg.Diff.ContextLines)
	assert.True(t, cfg.Diff.ColorEnabled)
	assert.Equal(t, config.DefaultBlobCacheSize, cfg.Cache.BlobCacheSize)
	assert.Equal(t, config.DefaultDiffCacheSize, cfg.Cache.DiffCacheSize)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	configContent := `
repository:
  path: "/srv/repo"

diff:
  context_lines: 12
  color_enabled: false

cache:
  blob_cache_size: 512
  diff_cache_size: 64
`

	tmpDir := t.TempDir()

	tmpFile, err := os.CreateTemp(tmpDir, "test-config-*.yaml")
	require.NoError(t, err)

	_, writeErr := tmpFile.WriteString(configContent)
	require.NoError(t, writeErr)

	require.NoError(t, tmpFile.Close())

	cfg, loadErr := config.LoadConfig(tmpFile.Name())
	require.NoError(t, loadErr)

	assert.Equal(t, "/srv/repo", cfg.Repository.Path)
	assert.Equal(t, 12, cfg.Diff.ContextLines)
	assert.False(t, cfg.Diff.ColorEnabled)
	assert.Equal(t, 512, cfg.Cache.BlobCacheSize)
	assert.Equal(t, 64, cfg.Cache.DiffCacheSize)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("FNC_REPOSITORY_PATH", "/srv/other")
	t.Setenv("FNC_DIFF_CONTEXT_LINES", "20")
	t.Setenv("FNC_CACHE_BLOB_CACHE_SIZE", "1024")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "/srv/other", cfg.Repository.Path)
	assert.Equal(t, 20, cfg.Diff.ContextLines)
	assert.Equal(t, 1024, cfg.Cache.BlobCacheSize)
}

func TestValidateConfigRejectsNegativeContextLines(t *testing.T) {
	t.Parallel()

	configContent := "diff:\n  context_lines: -1\n"

	tmpDir := t.TempDir()
	tmpFile, err := os.CreateTemp(tmpDir, "test-config-*.yaml")
	require.NoError(t, err)

	_, writeErr := tmpFile.WriteString(configContent)
	require.NoError(t, writeErr)
	require.NoError(t, tmpFile.Close())

	_, loadErr := config.LoadConfig(tmpFile.Name())
	require.ErrorIs(t, loadErr, config.ErrInvalidContextLines)
}

func TestValidateConfigRejectsExcessiveContextLines(t *testing.T) {
	t.Parallel()

	configContent := "diff:\n  context_lines: 100\n"

	tmpDir := t.TempDir()
	tmpFile, err := os.CreateTemp(tmpDir, "test-config-*.yaml")
	require.NoError(t, err)

	_, writeErr := tmpFile.WriteString(configContent)
	require.NoError(t, writeErr)
	require.NoError(t, tmpFile.Close())

	_, loadErr := config.LoadConfig(tmpFile.Name())
	require.ErrorIs(t, loadErr, config.ErrContextLinesTooHigh)
}
