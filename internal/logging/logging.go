// Package logging builds the slog logger used by the categorize command.
// Console output goes through tint; with a log directory configured, the same
// records are also written uncolored to a lumberjack-rotated file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/FrenchMajesty/complaint-clusterer/internal/config"
)

const defaultLogFileName = "categorize.log"

// NewLogger creates the logger for a categorize run, writing to stderr so
// that --stdout output stays clean JSON. The logger becomes the slog default.
func NewLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	return newLoggerTo(os.Stderr, cfg)
}

func newLoggerTo(console io.Writer, cfg config.LoggingConfig) (*slog.Logger, error) {
	opts := &tint.Options{
		Level:      parseLevel(cfg.Level),
		TimeFormat: time.RFC3339,
	}

	file, err := rotatingFile(cfg)
	if err != nil {
		return nil, err
	}
	writer := console
	if file != nil {
		// Color escapes would end up in the file
		opts.NoColor = true
		writer = io.MultiWriter(console, file)
	}

	logger := slog.New(tint.NewHandler(writer, opts))
	slog.SetDefault(logger)
	if file != nil {
		logger.Info("file_logging_enabled",
			"path", file.Filename,
			"max_size_mb", file.MaxSize,
			"max_backups", file.MaxBackups,
		)
	}
	return logger, nil
}

// rotatingFile returns nil when file logging is off
func rotatingFile(cfg config.LoggingConfig) (*lumberjack.Logger, error) {
	dir := strings.TrimSpace(cfg.LogDir)
	if dir == "" {
		return nil, nil
	}
	switch {
	case cfg.MaxSizeMB <= 0:
		return nil, fmt.Errorf("log rotation needs a positive max size, got %d MB", cfg.MaxSizeMB)
	case cfg.MaxBackups <= 0:
		return nil, fmt.Errorf("log rotation needs a positive backup count, got %d", cfg.MaxBackups)
	case cfg.MaxAgeDays <= 0:
		return nil, fmt.Errorf("log rotation needs a positive max age, got %d days", cfg.MaxAgeDays)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, defaultLogFileName),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}, nil
}

func parseLevel(level string) slog.Level {
	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(strings.TrimSpace(level))); err == nil {
		return parsed
	}
	if strings.EqualFold(strings.TrimSpace(level), "warning") {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}
