package render

import (
	"errors"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/bcgmatrix-cli/internal/analysis"
)

func sampleRows() []analysis.Row {
	rows := analysis.SampleRows()
	analysis.ClassifyAll(rows, analysis.ComputeThresholds(rows))
	return rows
}

func decodeSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestRenderWritesPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "chart.png")
	rows := sampleRows()
	err := Render(out, rows, analysis.ComputeThresholds(rows), Options{DPI: 72, MaxLabels: 15})
	require.NoError(t, err)

	w, h := decodeSize(t, out)
	assert.InDelta(t, 12*72, w, 1)
	assert.InDelta(t, 8*72, h, 1)
}

func TestRenderToleratesDegenerateData(t *testing.T) {
	out := filepath.Join(t.TempDir(), "flat.png")
	rows := []analysis.Row{
		{Name: "same", MarketShare: 20, MarketGrowth: 20, Category: analysis.Star},
		{Name: "same", MarketShare: 20, MarketGrowth: 20, Category: analysis.Star},
		{Name: "bad", MarketShare: math.NaN(), MarketGrowth: 1, Category: analysis.Dog},
	}
	require.NoError(t, Render(out, rows, analysis.Thresholds{Share: 20, Growth: 20}, Options{DPI: 72}))
	_, _ = decodeSize(t, out)
}

func TestRenderFailureReturnsRenderError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	rows := sampleRows()
	err := Render(filepath.Join(blocker, "chart.png"), rows, analysis.ComputeThresholds(rows), Options{DPI: 72})
	var re *RenderError
	require.True(t, errors.As(err, &re))
	assert.Error(t, re.Fallback)
}

func TestErrorImage(t *testing.T) {
	out := filepath.Join(t.TempDir(), "err.png")
	require.NoError(t, ErrorImage(out, errors.New("all parse strategies failed")))
	w, h := decodeSize(t, out)
	assert.Equal(t, errWidth, w)
	assert.GreaterOrEqual(t, h, errHeight)
}

func TestAxisRange(t *testing.T) {
	rows := []analysis.Row{{MarketShare: 0}, {MarketShare: 10}}
	lo, hi := axisRange(rows, func(r analysis.Row) float64 { return r.MarketShare })
	assert.InDelta(t, -1, lo, 1e-9)
	assert.InDelta(t, 11, hi, 1e-9)

	lo, hi = axisRange(nil, func(r analysis.Row) float64 { return r.MarketShare })
	assert.InDelta(t, -1, lo, 1e-9)
	assert.InDelta(t, 11, hi, 1e-9)

	rows = []analysis.Row{{MarketShare: 50}}
	lo, hi = axisRange(rows, func(r analysis.Row) float64 { return r.MarketShare })
	assert.Less(t, lo, 50.0)
	assert.Greater(t, hi, 50.0)
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "short", shorten("short", 15))
	assert.Equal(t, "A very long pro...", shorten("A very long product name", 15))
}
