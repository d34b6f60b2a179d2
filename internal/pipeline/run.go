// Package pipeline wires loading, inference, classification and output
// together. Only a load failure stops a run; every later stage degrades to a
// default value and logs why.
package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/bcgmatrix-cli/internal/analysis"
	"github.com/KaramelBytes/bcgmatrix-cli/internal/parser"
	"github.com/KaramelBytes/bcgmatrix-cli/internal/render"
	"github.com/KaramelBytes/bcgmatrix-cli/internal/summary"
	"github.com/KaramelBytes/bcgmatrix-cli/internal/utils"
)

// Options describes one invocation.
type Options struct {
	Input  string
	Output string

	Delimiter rune
	Format    analysis.NumberFormat
	Seed      int64
	TopN      int

	DPI       int
	MaxLabels int

	// ExportXLSX, when set, also writes the classified rows to a workbook.
	ExportXLSX string
}

// Result is what a completed run produced.
type Result struct {
	Strategy    string
	Dataset     *analysis.Dataset
	Thresholds  analysis.Thresholds
	Counts      analysis.Counts
	Summary     *summary.Summary
	ImagePath   string
	SummaryPath string
	// WorkbookPath is set only when the workbook export succeeded.
	WorkbookPath string
	// Degraded collects recovered stage failures, including render and
	// summary errors.
	Degraded []error
}

// Run executes the full pipeline. The returned error is non-nil only when
// the input could not be loaded; fallback artefacts are still written then.
func Run(opt Options, logger *slog.Logger) (*Result, error) {
	summaryPath := utils.SummaryPath(opt.Output)
	logger.Info("starting analysis", slog.String("input", opt.Input), slog.String("output", opt.Output))

	tbl, err := parser.Load(opt.Input, parser.Options{Delimiter: opt.Delimiter}, logger)
	if err != nil {
		writeFailureArtefacts(opt.Output, summaryPath, err, logger)
		return nil, err
	}

	res := &Result{Strategy: tbl.Strategy, ImagePath: opt.Output, SummaryPath: summaryPath}

	var ds *analysis.Dataset
	res.stage(logger, "resolve", func() {
		ds = analysis.Resolve(tbl, analysis.ResolveOptions{Seed: opt.Seed, Format: opt.Format}, logger)
	}, func() { ds = sampleDataset() })

	res.stage(logger, "sanitize", func() {
		analysis.Sanitize(ds, opt.Format, logger)
	}, func() { ds.Rows = analysis.SampleRows() })
	res.Dataset = ds
	logger.Debug("data profile\n" + analysis.NewProfile(opt.Input, tbl.Strategy, ds).Markdown())

	res.stage(logger, "thresholds", func() {
		res.Thresholds = analysis.ComputeThresholds(ds.Rows)
	}, func() { res.Thresholds = analysis.DefaultThresholds() })
	logger.Info("thresholds",
		slog.String("market_share", fmt.Sprintf("%.2f", res.Thresholds.Share)),
		slog.String("market_growth", fmt.Sprintf("%.2f", res.Thresholds.Growth)))

	res.stage(logger, "classify", func() {
		res.Counts = analysis.ClassifyAll(ds.Rows, res.Thresholds)
	}, func() { res.Counts = analysis.AssignCycling(ds.Rows) })
	logger.Info("classification",
		slog.Int("stars", res.Counts.Star),
		slog.Int("cash_cows", res.Counts.CashCow),
		slog.Int("question_marks", res.Counts.QuestionMark),
		slog.Int("dogs", res.Counts.Dog),
		slog.Int("total", res.Counts.Total))

	var top []analysis.TopProduct
	res.stage(logger, "rank", func() {
		top = analysis.Rank(ds.Rows, opt.TopN)
	}, func() { top = analysis.SampleTopProducts() })

	res.Summary = summary.New(res.Thresholds, res.Counts, top)
	if err := summary.WriteWithFallback(summaryPath, res.Summary); err != nil {
		res.degrade(logger, "summary", err)
	} else {
		logger.Info("summary written", slog.String("path", summaryPath))
	}

	if err := render.Render(opt.Output, ds.Rows, res.Thresholds, render.Options{DPI: opt.DPI, MaxLabels: opt.MaxLabels}); err != nil {
		res.degrade(logger, "render", err)
	} else {
		logger.Info("chart written", slog.String("path", opt.Output))
	}

	if opt.ExportXLSX != "" {
		if err := summary.ExportXLSX(opt.ExportXLSX, ds.Rows, res.Summary); err != nil {
			res.degrade(logger, "export", err)
		} else {
			res.WorkbookPath = opt.ExportXLSX
			logger.Info("workbook written", slog.String("path", opt.ExportXLSX))
		}
	}
	return res, nil
}

// stage runs fn, and on panic records the failure and runs fallback.
func (r *Result) stage(logger *slog.Logger, name string, fn, fallback func()) {
	if err := guard(fn); err != nil {
		r.degrade(logger, name, err)
		fallback()
	}
}

func (r *Result) degrade(logger *slog.Logger, stage string, err error) {
	r.Degraded = append(r.Degraded, fmt.Errorf("%s: %w", stage, err))
	logger.Warn("stage degraded", slog.String("stage", stage), slog.String("error", err.Error()))
}

func guard(fn func()) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("recovered: %v", rec)
		}
	}()
	fn()
	return nil
}

func sampleDataset() *analysis.Dataset {
	return &analysis.Dataset{
		Rows:        analysis.SampleRows(),
		Columns:     map[analysis.Role]string{},
		Synthesized: map[analysis.Role]bool{},
		NameColumn:  analysis.SynthesizedNameColumn,
	}
}

func writeFailureArtefacts(imagePath, summaryPath string, cause error, logger *slog.Logger) {
	if err := render.ErrorImage(imagePath, cause); err != nil {
		logger.Error("could not write error image", slog.String("path", imagePath), slog.String("error", err.Error()))
	} else {
		logger.Info("error image written", slog.String("path", imagePath))
	}
	if err := summary.WriteMinimal(summaryPath, cause); err != nil {
		logger.Error("could not write summary", slog.String("path", summaryPath), slog.String("error", err.Error()))
	} else {
		logger.Info("minimal summary written", slog.String("path", summaryPath))
	}
}
