package parser

import (
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// nanTokens are cells treated as missing.
var nanTokens = map[string]struct{}{
	"": {}, "na": {}, "nan": {}, "n/a": {}, "null": {}, "none": {}, "<nil>": {},
}

// IsMissing reports whether a raw cell denotes a missing value.
func IsMissing(s string) bool {
	_, ok := nanTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// normalizeHeader fills blank labels and de-duplicates repeats.
func normalizeHeader(h []string) []string {
	out := make([]string, len(h))
	seen := make(map[string]int, len(h))
	for i, name := range h {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if _, dup := seen[name]; dup {
			base := name
			for k := seen[base] + 1; ; k++ {
				cand := fmt.Sprintf("%s.%d", base, k)
				if _, taken := seen[cand]; !taken {
					seen[base] = k
					name = cand
					break
				}
			}
		}
		if _, ok := seen[name]; !ok {
			seen[name] = 0
		}
		out[i] = name
	}
	return out
}

// buildFrame loads records into a typed frame and also returns the cleaned
// cell text per column, keyed by normalized header.
func buildFrame(rec *Records) (dataframe.DataFrame, map[string][]string, error) {
	if len(rec.Header) == 0 {
		return dataframe.DataFrame{}, nil, ErrNoColumns
	}
	header := normalizeHeader(rec.Header)
	width := len(header)
	cells := make(map[string][]string, width)
	for _, h := range header {
		cells[h] = make([]string, 0, len(rec.Rows))
	}

	if len(rec.Rows) == 0 {
		cols := make([]series.Series, width)
		for i, h := range header {
			cols[i] = series.New([]string{}, series.String, h)
		}
		df := dataframe.New(cols...)
		if df.Err != nil {
			return df, nil, fmt.Errorf("build table: %w", df.Err)
		}
		return df, cells, nil
	}

	records := make([][]string, 0, len(rec.Rows)+1)
	records = append(records, header)
	for _, row := range rec.Rows {
		r := make([]string, width)
		for i := 0; i < width; i++ {
			cell := ""
			if i < len(row) {
				cell = strings.TrimSpace(row[i])
			}
			if IsMissing(cell) {
				cells[header[i]] = append(cells[header[i]], "")
				cell = "NaN"
			} else {
				cells[header[i]] = append(cells[header[i]], cell)
			}
			r[i] = cell
		}
		records = append(records, r)
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return df, nil, fmt.Errorf("build table: %w", df.Err)
	}
	return df, cells, nil
}
