// Package logging configures the process-wide slog logger from LOG_LEVEL and LOG_FORMAT.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// ParseLevel maps debug, info, warn and error (case-insensitive) to a slog level.
// Anything else is info.
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

// New returns a logger writing to w. format is FormatJSON or anything else for text.
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, FormatJSON) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Setup installs the logger described by the environment as slog's default and returns it.
func Setup() *slog.Logger {
	l := New(os.Stderr, ParseLevel(os.Getenv("LOG_LEVEL")), os.Getenv("LOG_FORMAT"))
	slog.SetDefault(l)
	return l
}
