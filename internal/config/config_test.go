package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sample.csv", c.Input)
	assert.Equal(t, "bcg_matrix_output.png", c.Output)
	assert.Equal(t, 10, c.TopN)
	assert.Equal(t, 300, c.DPI)
	assert.Equal(t, 15, c.MaxLabels)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, *Defaults(), *c)
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BCGMATRIX_DPI", "150")

	p := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte("top_n: 5\ndelimiter: semicolon\ndecimal: comma\n"), 0o644))

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 5, c.TopN)
	assert.Equal(t, "semicolon", c.Delimiter)
	assert.Equal(t, "comma", c.Decimal)
	assert.Equal(t, 150, c.DPI)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte("dpi: 10\n"), 0o644))

	_, err := Load(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DPI")
}

func TestValidateDelimiter(t *testing.T) {
	c := Defaults()
	for _, d := range []string{"", ",", ";", "tab", "pipe", "|"} {
		c.Delimiter = d
		assert.NoError(t, c.Validate(), d)
	}
	c.Delimiter = "#"
	assert.Error(t, c.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	p := filepath.Join(t.TempDir(), "nested", "config.yaml")

	c := Defaults()
	c.TopN = 7
	c.ExportXLSX = "out.xlsx"
	require.NoError(t, Save(c, p))

	got, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 7, got.TopN)
	assert.Equal(t, "out.xlsx", got.ExportXLSX)
}
