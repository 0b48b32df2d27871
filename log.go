package sway

import (
	"io"
	"log/slog"
	"os"
)

var logger = newLogger(os.Stderr, slog.LevelInfo)

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("component", "sway")
}

// SetLogger replaces the package logger. Passing nil restores the default
// stderr logger.
func SetLogger(l *slog.Logger) {
	if l == nil {
		logger = newLogger(os.Stderr, slog.LevelInfo)
		return
	}
	logger = l.With("component", "sway")
}

// Logger returns the package logger so adapters can share its handler.
func Logger() *slog.Logger {
	return logger
}
