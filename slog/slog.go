// Package slog provides logging decorators for animgen services and the
// CLI's handler setup.
package slog

import (
	"io"
	"log/slog"
	"strings"

	"github.com/fwojciec/animgen"
	slogmulti "github.com/samber/slog-multi"
)

// ParseLevel converts a level name (debug, info, warn, error) to a
// slog.Level. Returns EINVALID for unknown names.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, animgen.Errorf(animgen.EINVALID, "unknown log level %q", s)
	}
	return level, nil
}

// NewLogger writes human-readable text to console and, when file is not
// nil, JSON records to file. Both handlers share level.
func NewLogger(console, file io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	handlers := []slog.Handler{slog.NewTextHandler(console, opts)}
	if file != nil {
		handlers = append(handlers, slog.NewJSONHandler(file, opts))
	}
	if len(handlers) == 1 {
		return slog.New(handlers[0])
	}
	return slog.New(slogmulti.Fanout(handlers...))
}
