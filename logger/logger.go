// SPDX-License-Identifier: MIT

// Package logger configures the process logger once; LOG_LEVEL and LOG_FORMAT
// select the level and the handler.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var defaultLogger atomic.Pointer[slog.Logger]

// Setup builds the process logger from LOG_LEVEL (debug|info|warn|error,
// default info) and LOG_FORMAT (json|text, default text), writing to stderr.
func Setup() *slog.Logger {
	l := New(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	defaultLogger.Store(l)

	return l
}

// New builds a logger on w. Unknown levels fall back to info, unknown formats
// to text.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	return slog.New(h)
}

// ParseLevel maps a level name to slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	return slog.LevelInfo
}

// L returns the process logger, running Setup on first use.
func L() *slog.Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}

	return Setup()
}

// Discard is a logger that drops every record; handy as a default for
// library types whose caller supplied none.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
