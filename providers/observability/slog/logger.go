package slog

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns a logger writing to w in format at level. A nil w writes
// to stderr, keeping stdout free for command output.
func NewLogger(w io.Writer, level slog.Level, format Format) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case FormatCompact:
		handler = NewCompactHandler(w, level)
	default:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// NewLoggerFromEnv returns a stderr logger configured from the environment.
func NewLoggerFromEnv() *slog.Logger {
	return NewLogger(os.Stderr, GetLogLevelFromEnv(), GetFormatFromEnv())
}
