package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FrenchMajesty/complaint-clusterer/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel(" warning "))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
	assert.Equal(t, slog.LevelInfo+2, parseLevel("info+2"))
}

func TestNewLogger_ConsoleOnly(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	logger, err := newLoggerTo(&buf, config.LoggingConfig{Level: "warn"})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("domain_without_categories", "domain", "ward-3")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "domain_without_categories")
	assert.Contains(t, buf.String(), "ward-3")
}

func TestNewLogger_FileRotation(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	dir := filepath.Join(t.TempDir(), "logs")
	var buf bytes.Buffer
	logger, err := newLoggerTo(&buf, config.LoggingConfig{
		Level:      "info",
		LogDir:     dir,
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
	})
	require.NoError(t, err)

	logger.Info("run_completed", "domains", 3)

	data, err := os.ReadFile(filepath.Join(dir, defaultLogFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "run_completed")
	assert.Contains(t, buf.String(), "run_completed")
}

func TestNewLogger_InvalidRotation(t *testing.T) {
	_, err := newLoggerTo(&bytes.Buffer{}, config.LoggingConfig{LogDir: t.TempDir()})
	assert.ErrorContains(t, err, "max size")

	_, err = newLoggerTo(&bytes.Buffer{}, config.LoggingConfig{LogDir: t.TempDir(), MaxSizeMB: 1, MaxBackups: 1})
	assert.ErrorContains(t, err, "max age")
}

func TestRotatingFile_DisabledWithoutDir(t *testing.T) {
	file, err := rotatingFile(config.LoggingConfig{LogDir: "  "})
	require.NoError(t, err)
	assert.Nil(t, file)
}
