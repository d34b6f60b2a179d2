package analysis

import (
	"math"
	"strconv"
	"strings"
)

// NumberFormat selects how numeric cells are read. Zero values auto-detect.
type NumberFormat struct {
	Decimal   rune
	Thousands rune
}

// ParseNumberFormat maps config names (dot, comma, space) onto runes.
func ParseNumberFormat(decimal, thousands string) NumberFormat {
	return NumberFormat{Decimal: separator(decimal), Thousands: separator(thousands)}
}

func separator(s string) rune {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dot", ".":
		return '.'
	case "comma", ",":
		return ','
	case "space", " ":
		return ' '
	default:
		return 0
	}
}

// parseNumeric reads a locale-formatted number, tolerating a trailing %,
// thousands separators and non-breaking spaces. NaN and Inf are rejected.
func parseNumeric(s string, nf NumberFormat) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, false
	}
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)

	dec := nf.Decimal
	thou := nf.Thousands
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0:
			// A lone comma followed by exactly three digits groups thousands.
			if strings.Count(raw, ",") > 1 || len(raw)-cpos-1 == 3 {
				dec, thou = '.', ','
			} else {
				dec = ','
			}
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// columnFormat fixes the decimal separator for a whole column when nf leaves
// it on auto. The first cell whose separators are unambiguous decides; a
// column with none keeps per-value detection.
func columnFormat(cells []string, nf NumberFormat) NumberFormat {
	if nf.Decimal != 0 {
		return nf
	}
	for _, c := range cells {
		if d := decimalOf(c); d != 0 {
			nf.Decimal = d
			return nf
		}
	}
	return nf
}

// decimalOf returns the decimal separator a single value implies, or 0 when
// it could be read either way (no separator, or one followed by three digits).
func decimalOf(s string) rune {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "%", ""))
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	switch {
	case cpos >= 0 && dpos >= 0:
		if cpos > dpos {
			return ','
		}
		return '.'
	case cpos >= 0:
		if strings.Count(raw, ",") > 1 {
			return '.'
		}
		if len(raw)-cpos-1 != 3 {
			return ','
		}
	case dpos >= 0:
		if strings.Count(raw, ".") > 1 {
			return ','
		}
		if len(raw)-dpos-1 != 3 {
			return '.'
		}
	}
	return 0
}

// looksNumeric reports whether every non-empty cell parses and at least one does.
func looksNumeric(cells []string, nf NumberFormat) bool {
	nf = columnFormat(cells, nf)
	seen := false
	for _, c := range cells {
		if c == "" {
			continue
		}
		if _, ok := parseNumeric(c, nf); !ok {
			return false
		}
		seen = true
	}
	return seen
}
