package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/bcgmatrix-cli/internal/parser"
)

func TestMain(m *testing.M) {
	// Execute registers this in production; tests drive rootCmd directly.
	cobra.OnInitialize(loadConfig)
	os.Exit(m.Run())
}

// runCmd executes the root command with args and returns what it printed.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Reset sticky flags that may persist Changed state across invocations
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	for _, c := range []*pflag.FlagSet{
		rootCmd.PersistentFlags(), rootCmd.Flags(),
		inspectCmd.Flags(), configShowCmd.Flags(), configSetCmd.Flags(),
	} {
		c.VisitAll(reset)
	}
	cfg = nil

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

const widgetCSV = "Item,Share %,Growth Rate,Units Sold\nWidget,8,15,100\n"

func TestCLI_RunWritesArtefacts(t *testing.T) {
	home := isolateHome(t)
	in := filepath.Join(home, "in.csv")
	writeFile(t, in, widgetCSV)
	chart := filepath.Join(home, "out", "chart.png")
	book := filepath.Join(home, "out", "rows.xlsx")

	out, err := runCmd(t, in, chart, "--dpi", "72", "--top", "2", "--xlsx", book)
	require.NoError(t, err)
	assert.Contains(t, out, "Thresholds: market share 8.00, market growth 15.00")
	assert.Contains(t, out, "Stars: 2  Cash Cows: 1  Question Marks: 1  Dogs: 0  (total 4)")
	assert.Contains(t, out, "✓ Wrote chart to "+chart)
	assert.Contains(t, out, "✓ Wrote workbook to "+book)

	for _, p := range []string{chart, book} {
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}

	b, err := os.ReadFile(filepath.Join(home, "out", "chart_summary.json"))
	require.NoError(t, err)
	var s struct {
		TopProducts []struct {
			Name     string `json:"name"`
			Quantity int    `json:"quantity"`
		} `json:"top_products"`
	}
	require.NoError(t, json.Unmarshal(b, &s))
	require.Len(t, s.TopProducts, 2)
	assert.Equal(t, "Sample Product 2", s.TopProducts[0].Name)
	assert.Equal(t, "Widget", s.TopProducts[1].Name)
}

func TestCLI_MissingInputFails(t *testing.T) {
	home := isolateHome(t)
	chart := filepath.Join(home, "bcg.png")

	_, err := runCmd(t, filepath.Join(home, "nope.csv"), chart)
	require.Error(t, err)
	var le *parser.LoadError
	assert.True(t, errors.As(err, &le))

	_, err = os.Stat(chart)
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(home, "bcg_summary.json"))
	assert.NoError(t, err)
}

func TestCLI_RejectsInvalidFlags(t *testing.T) {
	home := isolateHome(t)
	in := filepath.Join(home, "in.csv")
	writeFile(t, in, widgetCSV)

	_, err := runCmd(t, in, filepath.Join(home, "o.png"), "--dpi", "10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DPI")

	_, err = runCmd(t, in, filepath.Join(home, "o.png"), "--decimal", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported --decimal")

	_, err = runCmd(t, "a", "b", "c")
	assert.Error(t, err)
}

func TestCLI_UsesConfiguredDefaults(t *testing.T) {
	home := isolateHome(t)
	in := filepath.Join(home, "data", "products.csv")
	writeFile(t, in, widgetCSV)
	chart := filepath.Join(home, "charts", "m.png")
	writeFile(t, filepath.Join(home, ".bcgmatrix", "config.yaml"),
		"input: "+in+"\noutput: "+chart+"\ndpi: 72\n")

	out, err := runCmd(t)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Wrote summary to "+filepath.Join(home, "charts", "m_summary.json"))
	_, err = os.Stat(chart)
	assert.NoError(t, err)
}

func TestCLI_Inspect(t *testing.T) {
	home := isolateHome(t)
	in := filepath.Join(home, "eu.csv")
	writeFile(t, in, "product;share;growth;units\nAlpha;1,5;10,2;100\nBeta;2,5;-1,0;40\nGamma;0,5;3,0;70\nDelta;4,0;12,0;10\n")

	out, err := runCmd(t, "inspect", in, "--classify")
	require.NoError(t, err)
	assert.Contains(t, out, "Parsed with: auto-detect")
	assert.Contains(t, out, "- Name: product")
	assert.Contains(t, out, "- MarketShare: share")
	assert.Contains(t, out, "- Quantity: units")
	assert.Contains(t, out, "[CLASSIFICATION]")

	report := filepath.Join(home, "reports", "eu.md")
	out, err = runCmd(t, "inspect", in, "-o", report)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Wrote analysis to "+report)
	b, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(b), "[DATA SUMMARY]")
	assert.NotContains(t, string(b), "[CLASSIFICATION]")
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := isolateHome(t)

	out, err := runCmd(t, "config", "set", "dpi", "150")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved config")
	_, err = os.Stat(filepath.Join(home, ".bcgmatrix", "config.yaml"))
	require.NoError(t, err)

	_, err = runCmd(t, "config", "set", "decimal", ",")
	require.NoError(t, err)

	out, err = runCmd(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "dpi: 150")
	assert.Contains(t, out, "decimal: comma")
	assert.Contains(t, out, "delimiter: auto")

	_, err = runCmd(t, "config", "set", "dpi", "5")
	assert.Error(t, err)
	_, err = runCmd(t, "config", "set", "colour", "red")
	assert.Error(t, err)

	out, err = runCmd(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "dpi: 150")
}

func TestSeparatorNames(t *testing.T) {
	cases := []struct {
		in, dec, thou string
	}{
		{".", "dot", "dot"},
		{",", "comma", "comma"},
		{"comma", "comma", "comma"},
		{"", "", ""},
	}
	for _, c := range cases {
		d, err := decimalName(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.dec, d)
		th, err := thousandsName(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.thou, th)
	}
	th, err := thousandsName("space")
	require.NoError(t, err)
	assert.Equal(t, "space", th)
	_, err = decimalName("space")
	assert.Error(t, err)
}
