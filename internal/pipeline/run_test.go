package pipeline

import (
	"encoding/json"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/bcgmatrix-cli/internal/analysis"
	"github.com/KaramelBytes/bcgmatrix-cli/internal/logging"
	"github.com/KaramelBytes/bcgmatrix-cli/internal/parser"
)

func writeInput(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func readSummary(t *testing.T, path string) map[string]any {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	return m
}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.DecodeConfig(f)
	require.NoError(t, err)
}

func TestRunWidget(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "in.csv", "Item,Share %,Growth Rate,Units Sold\nWidget,8,15,100\n")
	out := filepath.Join(dir, "out", "bcg.png")

	res, err := Run(Options{Input: in, Output: out, DPI: 72, MaxLabels: 15}, logging.Discard())
	require.NoError(t, err)
	assert.Empty(t, res.Degraded)

	assert.Equal(t, "standard", res.Strategy)
	assert.Equal(t, analysis.Thresholds{Share: 8, Growth: 15}, res.Thresholds)
	assert.Equal(t, analysis.Star, res.Dataset.Rows[0].Category)
	assert.Equal(t, 4, res.Counts.Total)

	assertPNG(t, out)
	assert.Equal(t, filepath.Join(dir, "out", "bcg_summary.json"), res.SummaryPath)
	m := readSummary(t, res.SummaryPath)
	counts := m["counts"].(map[string]any)
	assert.Equal(t, 2.0, counts["star"])
	assert.Equal(t, 4.0, counts["total"])
	assert.Len(t, m["top_products"], 4)
}

func TestRunMissingInput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "bcg.png")

	res, err := Run(Options{Input: filepath.Join(dir, "missing.csv"), Output: out}, logging.Discard())
	require.Error(t, err)
	assert.Nil(t, res)

	var le *parser.LoadError
	assert.True(t, errors.As(err, &le))

	assertPNG(t, out)
	m := readSummary(t, filepath.Join(dir, "bcg_summary.json"))
	assert.Contains(t, m, "error")
	assert.Equal(t, 0.0, m["counts"].(map[string]any)["total"])
}

func TestRunSemicolonWithWorkbook(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "eu.csv", "product;share;growth;units\n"+
		"Alpha;1,5;10,2;100\n"+
		"Beta;2,5;-1,0;40\n"+
		"Gamma;0,5;3,0;70\n"+
		"Delta;4,0;12,0;10\n"+
		"Epsilon;3,0;8,0;55\n")
	out := filepath.Join(dir, "chart")
	xlsx := filepath.Join(dir, "rows.xlsx")

	res, err := Run(Options{Input: in, Output: out, DPI: 72, TopN: 3, ExportXLSX: xlsx}, logging.Discard())
	require.NoError(t, err)
	assert.Empty(t, res.Degraded)

	assert.Equal(t, "auto-detect", res.Strategy)
	assert.Equal(t, "product", res.Dataset.NameColumn)
	assert.Equal(t, 1.5, res.Dataset.Rows[0].MarketShare)
	assert.Equal(t, analysis.Thresholds{Share: 2.5, Growth: 8}, res.Thresholds)

	assert.Equal(t, filepath.Join(dir, "chart_summary.json"), res.SummaryPath)
	m := readSummary(t, res.SummaryPath)
	top := m["top_products"].([]any)
	require.Len(t, top, 3)
	assert.Equal(t, "Alpha", top[0].(map[string]any)["name"])

	_, err = os.Stat(xlsx)
	assert.NoError(t, err)
}

func TestRunEmptyTableUsesSamples(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "hdr.csv", "name,share,growth,qty\n")
	res, err := Run(Options{Input: in, Output: filepath.Join(dir, "o.png"), DPI: 72}, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, analysis.Counts{Star: 1, CashCow: 1, QuestionMark: 1, Dog: 1, Total: 4}, res.Counts)
}

func TestRunAllRowsMalformedUsesSamples(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "wide.csv", "name,share,growth\nWidget,1,200,15,100\nGadget,2,300,5,80\n")
	out := filepath.Join(dir, "o.png")

	res, err := Run(Options{Input: in, Output: out, DPI: 72}, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, "auto-detect", res.Strategy)
	assert.Equal(t, 4, res.Counts.Total)
	for _, r := range res.Dataset.Rows {
		assert.True(t, r.Sample)
	}

	assertPNG(t, out)
	m := readSummary(t, res.SummaryPath)
	assert.NotContains(t, m, "error")
	assert.Equal(t, 4.0, m["counts"].(map[string]any)["total"])
}

func TestRunBareCarriageReturnsKeepsRows(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "mac.csv", "name,share,growth,qty\rA,1,2,3\rB,2,3,4\rC,3,4,5\rD,4,5,6\r")

	res, err := Run(Options{Input: in, Output: filepath.Join(dir, "o.png"), DPI: 72}, logging.Discard())
	require.NoError(t, err)
	require.Len(t, res.Dataset.Rows, 4)
	assert.Equal(t, "qty", res.Dataset.Columns[analysis.RoleQuantity])
	assert.Equal(t, "A", res.Dataset.Rows[0].Name)
	assert.False(t, res.Dataset.Rows[0].Sample)
}

func TestStageRecoversPanics(t *testing.T) {
	res := &Result{}
	fellBack := false
	res.stage(logging.Discard(), "boom", func() { panic("bad row") }, func() { fellBack = true })
	assert.True(t, fellBack)
	require.Len(t, res.Degraded, 1)
	assert.Contains(t, res.Degraded[0].Error(), "boom: recovered: bad row")
}
