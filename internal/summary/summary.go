// Package summary writes the classification results next to the chart.
package summary

import (
	"fmt"

	"github.com/KaramelBytes/bcgmatrix-cli/internal/analysis"
	"github.com/KaramelBytes/bcgmatrix-cli/internal/utils"
)

// Summary is the JSON document written beside the chart.
type Summary struct {
	Thresholds  analysis.Thresholds   `json:"thresholds"`
	Counts      analysis.Counts       `json:"counts"`
	TopProducts []analysis.TopProduct `json:"top_products"`
	Error       string                `json:"error,omitempty"`
}

// New assembles a summary; a nil top list is written as [].
func New(th analysis.Thresholds, counts analysis.Counts, top []analysis.TopProduct) *Summary {
	if top == nil {
		top = []analysis.TopProduct{}
	}
	return &Summary{Thresholds: th, Counts: counts, TopProducts: top}
}

// Minimal is the stand-in summary for a run that produced no results.
func Minimal(cause error) *Summary {
	s := New(analysis.DefaultThresholds(), analysis.Counts{}, nil)
	if cause != nil {
		s.Error = cause.Error()
	}
	return s
}

// EmitError reports a summary that could not be written as requested.
type EmitError struct {
	Path     string
	Err      error
	Fallback error
}

func (e *EmitError) Error() string {
	if e == nil || e.Err == nil {
		return "emit summary failed"
	}
	if e.Fallback != nil {
		return fmt.Sprintf("write summary %s: %v (minimal summary failed: %v)", e.Path, e.Err, e.Fallback)
	}
	return fmt.Sprintf("write summary %s: %v", e.Path, e.Err)
}

func (e *EmitError) Unwrap() error { return e.Err }

// Write marshals s as indented JSON and writes it atomically.
func Write(path string, s *Summary) error {
	b, err := utils.PrettyJSON(s)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(path, append(b, '\n'))
}

// WriteMinimal writes the stand-in summary for cause.
func WriteMinimal(path string, cause error) error {
	return Write(path, Minimal(cause))
}

// WriteWithFallback writes s, or a minimal summary carrying the failure if s
// cannot be written. Any failure is returned as an *EmitError.
func WriteWithFallback(path string, s *Summary) error {
	err := Write(path, s)
	if err == nil {
		return nil
	}
	return &EmitError{Path: path, Err: err, Fallback: WriteMinimal(path, err)}
}
