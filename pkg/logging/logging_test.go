package logging_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fnctui/fnc/pkg/config"
	"github.com/fnctui/fnc/pkg/logging"
)

func TestNewDefaultsToInfoTextStderr(t *testing.T) {
	logger, err := logging.New(config.LoggingConfig{})
	require.NoError(t, err)
	require.NotNil(t, logger)

	assert.True(t, logger.Enabled(nil, slog.LevelInfo))
	assert.False(t, logger.Enabled(nil, slog.LevelDebug))
}

func TestNewParsesLevel(t *testing.T) {
	logger, err := logging.New(config.LoggingConfig{Level: "debug"})
	require.NoError(t, err)
	assert.True(t, logger.Enabled(nil, slog.LevelDebug))

	logger, err = logging.New(config.LoggingConfig{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, logger.Enabled(nil, slog.LevelInfo))
	assert.True(t, logger.Enabled(nil, slog.LevelWarn))
}

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := logging.New(config.LoggingConfig{Level: "not-a-level"})
	assert.Error(t, err)
}

func TestNewWritesJSONFormatToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fnc.log")

	logger, err := logging.New(config.LoggingConfig{Format: "json", Output: path})
	require.NoError(t, err)

	logger.Info("hello", "key", "value")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"key":"value"`)
}

func TestNewRejectsUnwritableOutput(t *testing.T) {
	_, err := logging.New(config.LoggingConfig{Output: filepath.Join(t.TempDir(), "missing-dir", "fnc.log")})
	assert.Error(t, err)
}
