// Package logging installs the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps "debug", "info", "warn"/"warning" and "error" to a slog level.
// Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a text logger. A sink of the form "file:/path" appends to that file;
// any other sink writes to stderr. The returned closer releases the file, if any.
func New(level, sink string) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if path, ok := strings.CutPrefix(sink, "file:"); ok && path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		return slog.New(slog.NewTextHandler(f, opts)), f, nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), io.NopCloser(nil), nil
}

// Init installs the logger as slog's default. On a bad file sink it falls back to stderr
// and reports the failure there.
func Init(level, sink string) io.Closer {
	logger, closer, err := New(level, sink)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v; logging to stderr\n", err)
		logger, closer, _ = New(level, "")
	}
	slog.SetDefault(logger)
	return closer
}
