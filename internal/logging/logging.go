package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds the process logger: JSON to stderr, mirrored to logFile when set,
// and installed as the slog default. The returned cleanup closes the file.
func New(level, logFile string) (*slog.Logger, func(), error) {
	return newLogger(os.Stderr, level, logFile)
}

func newLogger(stderr io.Writer, level, logFile string) (*slog.Logger, func(), error) {
	writers := []io.Writer{stderr}
	cleanup := func() {}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, f)
		cleanup = func() { _ = f.Close() }
	}

	handler := slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: ParseLevel(level)})
	logger := slog.New(handler).With("app", "neuropost")
	slog.SetDefault(logger)
	return logger, cleanup, nil
}

// ParseLevel maps LOG_LEVEL values to slog levels, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
