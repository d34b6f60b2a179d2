package analysis

import (
	"math"

	"github.com/go-gota/gota/series"
)

// DefaultThreshold replaces a median that cannot be computed.
const DefaultThreshold = 5.0

// Thresholds split each axis into high and low halves.
type Thresholds struct {
	Share  float64 `json:"market_share"`
	Growth float64 `json:"growth_rate"`
}

// DefaultThresholds is used when no data is available at all.
func DefaultThresholds() Thresholds {
	return Thresholds{Share: DefaultThreshold, Growth: DefaultThreshold}
}

// Counts tallies rows per category.
type Counts struct {
	Star         int `json:"star"`
	CashCow      int `json:"cash_cow"`
	QuestionMark int `json:"question_mark"`
	Dog          int `json:"dog"`
	Total        int `json:"total"`
}

// Of returns the count for one category.
func (c Counts) Of(cat Category) int {
	switch cat {
	case Star:
		return c.Star
	case CashCow:
		return c.CashCow
	case QuestionMark:
		return c.QuestionMark
	case Dog:
		return c.Dog
	default:
		return 0
	}
}

// ComputeThresholds returns the medians of share and growth over rows.
func ComputeThresholds(rows []Row) Thresholds {
	share := make([]float64, len(rows))
	growth := make([]float64, len(rows))
	for i, r := range rows {
		share[i] = r.MarketShare
		growth[i] = r.MarketGrowth
	}
	return Thresholds{
		Share:  median(share, "MarketShare"),
		Growth: median(growth, "MarketGrowth"),
	}
}

func median(vals []float64, name string) float64 {
	if len(vals) == 0 {
		return DefaultThreshold
	}
	m := series.New(vals, series.Float, name).Median()
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return DefaultThreshold
	}
	return m
}

// Classify places one point in its quadrant. Values on a threshold count as
// high. Non-finite input is a Dog.
func Classify(share, growth float64, th Thresholds) Category {
	if !finite(share) || !finite(growth) {
		return Dog
	}
	highShare := share >= th.Share
	highGrowth := growth >= th.Growth
	switch {
	case highShare && highGrowth:
		return Star
	case highShare:
		return CashCow
	case highGrowth:
		return QuestionMark
	default:
		return Dog
	}
}

// ClassifyAll assigns a category to every row in place and tallies them.
func ClassifyAll(rows []Row, th Thresholds) Counts {
	for i := range rows {
		rows[i].Category = Classify(rows[i].MarketShare, rows[i].MarketGrowth, th)
	}
	return Count(rows)
}

// Count tallies the categories already assigned to rows. Unclassified rows
// count toward Total only.
func Count(rows []Row) Counts {
	c := Counts{Total: len(rows)}
	for _, r := range rows {
		switch r.Category {
		case Star:
			c.Star++
		case CashCow:
			c.CashCow++
		case QuestionMark:
			c.QuestionMark++
		case Dog:
			c.Dog++
		}
	}
	return c
}

// AssignCycling labels rows Star, Cash Cow, Question Mark, Dog in turn. It is
// the placeholder when real classification could not run.
func AssignCycling(rows []Row) Counts {
	for i := range rows {
		rows[i].Category = Categories[i%len(Categories)]
	}
	return Count(rows)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
