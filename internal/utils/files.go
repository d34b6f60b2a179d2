package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureParentDir creates the directory that will hold path, if any.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// SafeWriteFile writes data to a temp file and atomically renames it into place.
func SafeWriteFile(path string, data []byte) error {
	if err := EnsureParentDir(path); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

// PrettyJSON marshals a value as indented JSON.
func PrettyJSON(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return b, nil
}

// SummaryPath derives the JSON summary location from the chart path:
// "out/chart.png" becomes "out/chart_summary.json". Paths without a .png
// suffix get "_summary.json" appended.
func SummaryPath(imagePath string) string {
	if strings.HasSuffix(strings.ToLower(imagePath), ".png") {
		return imagePath[:len(imagePath)-len(".png")] + "_summary.json"
	}
	return imagePath + "_summary.json"
}

// FileDiagnostics describes an input file that could not be parsed.
type FileDiagnostics struct {
	Path       string
	Exists     bool
	Size       int64
	FirstLines []string
	ReadErr    error
}

// Diagnose stats path and, when readable, captures up to n raw lines.
func Diagnose(path string, n int) FileDiagnostics {
	d := FileDiagnostics{Path: path}
	info, err := os.Stat(path)
	if err != nil {
		d.ReadErr = err
		return d
	}
	d.Exists = true
	d.Size = info.Size()
	if info.IsDir() {
		d.ReadErr = fmt.Errorf("%s is a directory", path)
		return d
	}
	b, err := os.ReadFile(path)
	if err != nil {
		d.ReadErr = err
		return d
	}
	text := strings.ReplaceAll(string(b), "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		if len(d.FirstLines) >= n {
			break
		}
		d.FirstLines = append(d.FirstLines, strings.ToValidUTF8(line, "�"))
	}
	return d
}
