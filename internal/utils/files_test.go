package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryPath(t *testing.T) {
	cases := map[string]string{
		"bcg_matrix_output.png": "bcg_matrix_output_summary.json",
		"out/chart.PNG":         "out/chart_summary.json",
		"out.png.d/chart.png":   "out.png.d/chart_summary.json",
		"chart":                 "chart_summary.json",
	}
	for in, want := range cases {
		assert.Equal(t, want, SummaryPath(in), in)
	}
}

func TestSafeWriteFileCreatesParent(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "dir", "a.json")
	require.NoError(t, SafeWriteFile(p, []byte("{}")))
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(b))
	_, err = os.Stat(p + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestDiagnose(t *testing.T) {
	dir := t.TempDir()
	missing := Diagnose(filepath.Join(dir, "nope.csv"), 5)
	assert.False(t, missing.Exists)
	assert.Error(t, missing.ReadErr)

	p := filepath.Join(dir, "x.csv")
	require.NoError(t, os.WriteFile(p, []byte("a,b\r\n1,2\n3,4\n5,6\n7,8\n9,10\n"), 0o644))
	d := Diagnose(p, 5)
	assert.True(t, d.Exists)
	assert.EqualValues(t, 26, d.Size)
	assert.Equal(t, []string{"a,b", "1,2", "3,4", "5,6", "7,8"}, d.FirstLines)
	assert.NoError(t, d.ReadErr)
}
