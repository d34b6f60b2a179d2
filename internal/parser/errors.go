package parser

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/KaramelBytes/bcgmatrix-cli/internal/utils"
)

// LoadError indicates that no strategy could turn the input into a table.
type LoadError struct {
	Path        string
	Attempts    []error
	Diagnostics utils.FileDiagnostics
}

func (e *LoadError) Error() string {
	if e == nil {
		return "load failed"
	}
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("load %s: no parse strategy available", e.Path)
	}
	msgs := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		msgs = append(msgs, a.Error())
	}
	return fmt.Sprintf("load %s: all parse strategies failed: %s", e.Path, strings.Join(msgs, "; "))
}

// Unwrap exposes the last attempt so errors.Is(err, fs.ErrNotExist) works.
func (e *LoadError) Unwrap() error {
	if e == nil || len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1]
}

func newLoadError(path string, attempts []error, logger *slog.Logger) *LoadError {
	d := utils.Diagnose(path, 5)
	attrs := []any{
		slog.String("path", path),
		slog.Bool("exists", d.Exists),
		slog.Int64("size", d.Size),
	}
	if d.ReadErr != nil {
		attrs = append(attrs, slog.String("read_error", d.ReadErr.Error()))
	}
	logger.Error("input could not be parsed", attrs...)
	for i, line := range d.FirstLines {
		logger.Debug("input line", slog.Int("n", i+1), slog.String("text", line))
	}
	return &LoadError{Path: path, Attempts: attempts, Diagnostics: d}
}
