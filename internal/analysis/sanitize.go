package analysis

import (
	"fmt"
	"log/slog"
)

// MinRows is the smallest dataset the classifier works on without padding.
const MinRows = 4

// sampleRows span all four quadrants around their own medians.
var sampleRows = []Row{
	{Name: "Sample Product 1", MarketShare: 8, MarketGrowth: 15, Quantity: 100, Sample: true},
	{Name: "Sample Product 2", MarketShare: 12, MarketGrowth: 5, Quantity: 200, Sample: true},
	{Name: "Sample Product 3", MarketShare: 3, MarketGrowth: 20, Quantity: 50, Sample: true},
	{Name: "Sample Product 4", MarketShare: 5, MarketGrowth: -2, Quantity: 80, Sample: true},
}

// SampleRows returns a copy of the built-in demonstration rows.
func SampleRows() []Row {
	out := make([]Row, len(sampleRows))
	copy(out, sampleRows)
	return out
}

// Sanitize coerces the numeric roles to finite floats and fills missing
// names, then pads tiny datasets with sample rows. Bad values become 0; a
// column with no readable value at all becomes constant 1.
func Sanitize(ds *Dataset, nf NumberFormat, logger *slog.Logger) {
	if ds.raw == nil && ds.synth == nil {
		// already sanitized
		return
	}
	n := ds.size
	values := make(map[Role][]float64, len(numericRoles))
	for _, r := range numericRoles {
		if v, ok := ds.synth[r]; ok {
			values[r] = v
			continue
		}
		values[r] = ds.coerce(r, nf, logger)
	}

	names := ds.raw[RoleName]
	rows := make([]Row, n)
	for i := range rows {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		if name == "" {
			name = fmt.Sprintf("Product %d", i+1)
		}
		rows[i] = Row{
			Name:         name,
			MarketShare:  at(values[RoleMarketShare], i),
			MarketGrowth: at(values[RoleMarketGrowth], i),
			Quantity:     at(values[RoleQuantity], i),
		}
	}

	switch {
	case n == 0:
		logger.Warn("dataset is empty; using sample data")
		rows = SampleRows()
	case n < MinRows:
		logger.Warn("too few data points; adding sample rows", slog.Int("rows", n))
		rows = append(rows, SampleRows()[:MinRows-1]...)
	}
	ds.Rows = rows
	ds.raw, ds.synth = nil, nil
}

func (ds *Dataset) coerce(r Role, nf NumberFormat, logger *slog.Logger) []float64 {
	cells := ds.raw[r]
	nf = columnFormat(cells, nf)
	out := make([]float64, ds.size)
	parsed, bad, empty := 0, 0, 0
	for i := range out {
		if i >= len(cells) || cells[i] == "" {
			empty++
			continue
		}
		if v, ok := parseNumeric(cells[i], nf); ok {
			out[i] = v
			parsed++
		} else {
			bad++
		}
	}
	col := ds.Columns[r]
	if parsed == 0 && bad > 0 {
		for i := range out {
			out[i] = 1
		}
		ds.warn(logger, &CoercionWarning{Role: r, Column: col, Count: bad, Msg: "no numeric values; defaulted to 1"})
		return out
	}
	if bad+empty > 0 {
		ds.warn(logger, &CoercionWarning{Role: r, Column: col, Count: bad + empty,
			Msg: fmt.Sprintf("%d non-numeric and %d missing values set to 0", bad, empty)})
	}
	return out
}

func at(vals []float64, i int) float64 {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}
