// Package logging builds the process-wide slog logger and the attribute keys
// used across packages.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

const (
	FieldSessionID = "session_id"
	FieldPhase     = "phase"
	FieldEvent     = "event"
	FieldQuestion  = "question"
	FieldDuration  = "duration_ms"
	FieldService   = "service"
)

// New returns a logger writing to w. format is "json" or "text"; level is one
// of debug, info, warn, error (case-insensitive, default info).
func New(w io.Writer, format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// ParseLevel maps a level name to a slog.Level.
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
