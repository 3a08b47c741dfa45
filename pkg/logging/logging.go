// Package logging builds the browser's structured logger from configuration,
// the way pkg/observability/init.go's buildLogger does for its host, minus
// the OpenTelemetry trace-context wrapper this process has no tracer for.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fnctui/fnc/pkg/config"
)

// New builds an *slog.Logger from a LoggingConfig. An empty Level defaults to
// info, an empty Format defaults to text, and an empty Output defaults to
// stderr so the rendered TUI on stdout is never interleaved with log lines.
func New(cfg config.LoggingConfig) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	w, err := parseOutput(cfg.Output)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler), nil
}

func parseLevel(raw string) (slog.Level, error) {
	if raw == "" {
		return slog.LevelInfo, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return 0, fmt.Errorf("parse log level %q: %w", raw, err)
	}

	return level, nil
}

func parseOutput(raw string) (io.Writer, error) {
	switch strings.ToLower(raw) {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	default:
		f, err := os.OpenFile(raw, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log output %q: %w", raw, err)
		}

		return f, nil
	}
}
