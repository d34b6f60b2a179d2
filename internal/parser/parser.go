// Package parser loads a delimited text file into an in-memory table,
// falling back through progressively more permissive parse strategies.
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Options controls how the loader reads a file.
type Options struct {
	// Delimiter forces a separator for the strict and permissive strategies.
	// If 0, it is derived from the file extension (.tsv -> tab, else comma).
	Delimiter rune
}

// Source is the raw input handed to every strategy.
type Source struct {
	Path string
	Data []byte
}

// Strategy turns raw bytes into a header row followed by data rows.
type Strategy interface {
	Name() string
	Parse(src Source, opt Options) (*Records, error)
}

// Records is the output of a successful strategy.
type Records struct {
	Header    []string
	Rows      [][]string
	Delimiter rune
	// Skipped counts malformed lines dropped by permissive strategies.
	Skipped int
}

// Table is the loaded row-set.
type Table struct {
	Path      string
	Strategy  string
	Delimiter rune
	Skipped   int
	Frame     dataframe.DataFrame

	cells map[string][]string
}

var registry []Strategy

// Register appends a strategy to the fallback chain.
func Register(s Strategy) {
	registry = append(registry, s)
}

// Strategies returns the fallback chain in evaluation order.
func Strategies() []Strategy {
	out := make([]Strategy, len(registry))
	copy(out, registry)
	return out
}

func init() {
	Register(standardStrategy{})
	Register(skipBadLinesStrategy{})
	Register(pythonStyleStrategy{})
	Register(autoDetectStrategy{})
}

// ErrNoColumns indicates a file without a header line.
var ErrNoColumns = errors.New("no columns to parse from file")

// Load reads path and tries each registered strategy in order until one
// succeeds. A *LoadError is returned only when every strategy failed.
func Load(path string, opt Options, logger *slog.Logger) (*Table, error) {
	return LoadWith(path, opt, Strategies(), logger)
}

// LoadWith is Load with an explicit strategy chain.
func LoadWith(path string, opt Options, chain []Strategy, logger *slog.Logger) (*Table, error) {
	logger.Info("reading input", slog.String("path", path))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newLoadError(path, []error{fmt.Errorf("read file: %w", err)}, logger)
	}
	src := Source{Path: path, Data: data}

	var attempts []error
	for _, s := range chain {
		rec, err := s.Parse(src, opt)
		if err == nil {
			var (
				df    dataframe.DataFrame
				cells map[string][]string
			)
			df, cells, err = buildFrame(rec)
			if err == nil {
				t := &Table{
					Path:      path,
					Strategy:  s.Name(),
					Delimiter: rec.Delimiter,
					Skipped:   rec.Skipped,
					Frame:     df,
					cells:     cells,
				}
				logger.Info("parsed input",
					slog.String("strategy", t.Strategy),
					slog.Int("rows", df.Nrow()),
					slog.Int("columns", df.Ncol()),
					slog.Int("skipped_lines", rec.Skipped))
				logger.Debug("columns", slog.Any("names", df.Names()))
				return t, nil
			}
		}
		attempt := fmt.Errorf("%s: %w", s.Name(), err)
		attempts = append(attempts, attempt)
		logger.Warn("parse strategy failed", slog.String("strategy", s.Name()), slog.String("error", err.Error()))
	}
	return nil, newLoadError(path, attempts, logger)
}

// Nrow is the number of data rows.
func (t *Table) Nrow() int { return t.Frame.Nrow() }

// Headers returns column labels in file order.
func (t *Table) Headers() []string { return t.Frame.Names() }

// IsNumeric reports whether the column was detected as int or float.
func (t *Table) IsNumeric(col string) bool {
	s := t.Frame.Col(col)
	if s.Err != nil {
		return false
	}
	return s.Type() == series.Int || s.Type() == series.Float
}

// IsText reports whether the column was detected as free text.
func (t *Table) IsText(col string) bool {
	s := t.Frame.Col(col)
	if s.Err != nil {
		return false
	}
	return s.Type() == series.String
}

// Cells returns the trimmed raw cell text of col as read from the file;
// missing values are "".
func (t *Table) Cells(col string) []string {
	raw, ok := t.cells[col]
	if !ok {
		return nil
	}
	out := make([]string, len(raw))
	copy(out, raw)
	return out
}

// Floats returns the numeric values of col with NaN for missing cells.
func (t *Table) Floats(col string) []float64 {
	s := t.Frame.Col(col)
	if s.Err != nil {
		return nil
	}
	return s.Float()
}

// FromRecords builds a table from in-memory records.
func FromRecords(header []string, rows [][]string) (*Table, error) {
	df, cells, err := buildFrame(&Records{Header: header, Rows: rows, Delimiter: ','})
	if err != nil {
		return nil, err
	}
	return &Table{Strategy: "memory", Delimiter: ',', Frame: df, cells: cells}, nil
}
