// Package logging builds the structured logger shared by every pipeline stage.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Options selects level, encoding and destination.
type Options struct {
	Level  string // debug|info|warn|error
	Format string // text|json
	Debug  bool   // forces debug level and source locations
	Output io.Writer
}

// New creates a logger. Progress output goes to stderr by default so stdout
// stays free for command results.
func New(opt Options) *slog.Logger {
	out := opt.Output
	if out == nil {
		out = os.Stderr
	}
	level := ParseLevel(opt.Level)
	if opt.Debug {
		level = slog.LevelDebug
	}
	ho := &slog.HandlerOptions{Level: level, AddSource: opt.Debug}

	var h slog.Handler
	switch strings.ToLower(opt.Format) {
	case "json":
		h = slog.NewJSONHandler(out, ho)
	default:
		h = slog.NewTextHandler(out, ho)
	}
	return slog.New(h)
}

// WithRunID tags every record of one invocation with a fresh run id.
func WithRunID(l *slog.Logger) (*slog.Logger, string) {
	id := uuid.NewString()
	return l.With(slog.String("run_id", id)), id
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a config string onto a slog level, defaulting to info.
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
