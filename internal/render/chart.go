// Package render draws the growth-share scatter chart.
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/KaramelBytes/bcgmatrix-cli/internal/analysis"
	"github.com/KaramelBytes/bcgmatrix-cli/internal/utils"
)

const (
	Title         = "BCG Matrix Analysis"
	DefaultDPI    = 300
	DefaultLabels = 15
	labelLen      = 15
)

// Canvas size in inches.
var (
	Width  = 12 * vg.Inch
	Height = 8 * vg.Inch
)

// Options controls chart output.
type Options struct {
	DPI int
	// MaxLabels caps how many points get a name tag; the first rows win.
	MaxLabels int
}

func (o Options) withDefaults() Options {
	if o.DPI <= 0 {
		o.DPI = DefaultDPI
	}
	if o.MaxLabels < 0 {
		o.MaxLabels = DefaultLabels
	}
	return o
}

type categoryStyle struct {
	color color.RGBA
	shape draw.GlyphDrawer
}

var styles = map[analysis.Category]categoryStyle{
	analysis.Star:         {color.RGBA{R: 0xFF, G: 0xD7, A: 0xFF}, draw.PyramidGlyph{}},
	analysis.CashCow:      {color.RGBA{R: 0x32, G: 0xCD, B: 0x32, A: 0xFF}, draw.BoxGlyph{}},
	analysis.QuestionMark: {color.RGBA{R: 0x1E, G: 0x90, B: 0xFF, A: 0xFF}, draw.CircleGlyph{}},
	analysis.Dog:          {color.RGBA{R: 0xFF, G: 0x63, B: 0x47, A: 0xFF}, draw.CrossGlyph{}},
}

var quadrantNames = map[analysis.Category]string{
	analysis.Star:         "STARS",
	analysis.CashCow:      "CASH COWS",
	analysis.QuestionMark: "QUESTION MARKS",
	analysis.Dog:          "DOGS",
}

// Render draws rows into a PNG at path. On failure it writes a fallback
// error image instead and returns a *RenderError.
func Render(path string, rows []analysis.Row, th analysis.Thresholds, opt Options) (err error) {
	opt = opt.withDefaults()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while drawing: %v", r)
		}
		if err != nil {
			err = &RenderError{Path: path, Err: err, Fallback: ErrorImage(path, err)}
		}
	}()

	p, err := buildPlot(rows, th, opt)
	if err != nil {
		return err
	}
	b, err := encodePNG(p, opt.DPI)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(path, b)
}

func buildPlot(rows []analysis.Row, th analysis.Thresholds, opt Options) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = Title
	p.X.Label.Text = fmt.Sprintf("Market Share (Threshold: %.2f)", th.Share)
	p.Y.Label.Text = fmt.Sprintf("Market Growth Rate (Threshold: %.2f)", th.Growth)
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for _, cat := range analysis.Categories {
		var pts plotter.XYs
		for _, r := range rows {
			if r.Category == cat && finite(r.MarketShare) && finite(r.MarketGrowth) {
				pts = append(pts, plotter.XY{X: r.MarketShare, Y: r.MarketGrowth})
			}
		}
		if len(pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("scatter %s: %w", cat, err)
		}
		st := styles[cat]
		s.GlyphStyle.Color = st.color
		s.GlyphStyle.Shape = st.shape
		s.GlyphStyle.Radius = vg.Points(5)
		p.Add(s)
		p.Legend.Add(cat.String(), s)
	}

	xmin, xmax := axisRange(rows, func(r analysis.Row) float64 { return r.MarketShare })
	ymin, ymax := axisRange(rows, func(r analysis.Row) float64 { return r.MarketGrowth })

	if err := addThresholdLines(p, th, xmin, xmax, ymin, ymax); err != nil {
		return nil, err
	}
	if err := addPointLabels(p, rows, opt.MaxLabels); err != nil {
		return nil, err
	}
	if err := addQuadrantLabels(p, th, xmin, xmax, ymin, ymax); err != nil {
		return nil, err
	}

	p.X.Min, p.X.Max = xmin, xmax
	p.Y.Min, p.Y.Max = ymin, ymax
	return p, nil
}

func addThresholdLines(p *plot.Plot, th analysis.Thresholds, xmin, xmax, ymin, ymax float64) error {
	grey := color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0x99}
	for _, pts := range []plotter.XYs{
		{{X: th.Share, Y: ymin}, {X: th.Share, Y: ymax}},
		{{X: xmin, Y: th.Growth}, {X: xmax, Y: th.Growth}},
	} {
		l, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("threshold line: %w", err)
		}
		l.LineStyle.Color = grey
		l.LineStyle.Width = vg.Points(1)
		l.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		p.Add(l)
	}
	return nil
}

func addPointLabels(p *plot.Plot, rows []analysis.Row, limit int) error {
	if limit > len(rows) {
		limit = len(rows)
	}
	if limit <= 0 {
		return nil
	}
	lbl := plotter.XYLabels{XYs: make(plotter.XYs, 0, limit), Labels: make([]string, 0, limit)}
	for i := 0; i < limit; i++ {
		r := rows[i]
		if !finite(r.MarketShare) || !finite(r.MarketGrowth) {
			continue
		}
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("Product %d", i+1)
		}
		lbl.XYs = append(lbl.XYs, plotter.XY{X: r.MarketShare, Y: r.MarketGrowth})
		lbl.Labels = append(lbl.Labels, shorten(name, labelLen))
	}
	if len(lbl.Labels) == 0 {
		return nil
	}
	labels, err := plotter.NewLabels(lbl)
	if err != nil {
		return fmt.Errorf("point labels: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Font.Size = vg.Points(8)
	}
	labels.Offset = vg.Point{X: vg.Points(5), Y: vg.Points(5)}
	p.Add(labels)
	return nil
}

func addQuadrantLabels(p *plot.Plot, th analysis.Thresholds, xmin, xmax, ymin, ymax float64) error {
	left := xmin + (th.Share-xmin)*0.05
	right := th.Share + (xmax-th.Share)*0.55
	top := ymax - (ymax-th.Growth)*0.1
	bottom := ymin + (th.Growth-ymin)*0.1
	order := []analysis.Category{analysis.Star, analysis.CashCow, analysis.QuestionMark, analysis.Dog}
	pos := map[analysis.Category]plotter.XY{
		analysis.Star:         {X: right, Y: top},
		analysis.CashCow:      {X: right, Y: bottom},
		analysis.QuestionMark: {X: left, Y: top},
		analysis.Dog:          {X: left, Y: bottom},
	}
	lbl := plotter.XYLabels{}
	for _, c := range order {
		lbl.XYs = append(lbl.XYs, pos[c])
		lbl.Labels = append(lbl.Labels, quadrantNames[c])
	}
	labels, err := plotter.NewLabels(lbl)
	if err != nil {
		return fmt.Errorf("quadrant labels: %w", err)
	}
	for i, c := range order {
		labels.TextStyle[i].Color = styles[c].color
		labels.TextStyle[i].Font.Size = vg.Points(14)
	}
	p.Add(labels)
	return nil
}

// axisRange spans the finite values with 10% padding. A flat or empty axis
// falls back to [0, 10], widened to keep the data in view.
func axisRange(rows []analysis.Row, pick func(analysis.Row) float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range rows {
		v := pick(r)
		if !finite(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 0) {
		lo, hi = 0, 10
	} else if lo >= hi {
		v := lo
		lo, hi = 0, 10
		if v < lo || v > hi {
			lo, hi = v-5, v+5
		}
	}
	pad := (hi - lo) * 0.1
	return lo - pad, hi + pad
}

func encodePNG(p *plot.Plot, dpi int) ([]byte, error) {
	c := vgimg.NewWith(vgimg.UseWH(Width, Height), vgimg.UseDPI(dpi))
	p.Draw(draw.New(c))
	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// shorten keeps the first n runes and marks the cut.
func shorten(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n]) + "..."
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
