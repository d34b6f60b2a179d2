package analysis

import (
	"fmt"
	"math"
	"sort"
)

const (
	// DefaultTopN is how many products the summary lists.
	DefaultTopN = 10
	// MaxNameLen bounds product names in the summary, in runes.
	MaxNameLen = 50
)

// TopProduct is the compact projection of a ranked row.
type TopProduct struct {
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	Category    string  `json:"category"`
	MarketShare float64 `json:"market_share"`
	GrowthRate  float64 `json:"growth_rate"`
}

// Rank orders rows by quantity, highest first, keeping input order among
// equal quantities, and projects the first n. n <= 0 means DefaultTopN.
func Rank(rows []Row, n int) []TopProduct {
	if n <= 0 {
		n = DefaultTopN
	}
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return quantityKey(rows[idx[a]].Quantity) > quantityKey(rows[idx[b]].Quantity)
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	out := make([]TopProduct, 0, len(idx))
	for _, i := range idx {
		out = append(out, project(rows[i], i))
	}
	return out
}

// quantityKey sorts non-finite quantities last.
func quantityKey(q float64) float64 {
	if math.IsNaN(q) {
		return math.Inf(-1)
	}
	return q
}

func project(r Row, i int) TopProduct {
	name := r.Name
	if name == "" {
		name = fmt.Sprintf("Product %d", i+1)
	}
	return TopProduct{
		Name:        truncateRunes(name, MaxNameLen),
		Quantity:    toInt(r.Quantity),
		Category:    r.Category.String(),
		MarketShare: finiteOrZero(r.MarketShare),
		GrowthRate:  finiteOrZero(r.MarketGrowth),
	}
}

// SampleTopProducts is the placeholder list used when ranking fails.
func SampleTopProducts() []TopProduct {
	return []TopProduct{
		{Name: "Sample Product 1", Quantity: 100, Category: Star.String(), MarketShare: 8, GrowthRate: 15},
		{Name: "Sample Product 2", Quantity: 80, Category: CashCow.String(), MarketShare: 12, GrowthRate: 5},
		{Name: "Sample Product 3", Quantity: 60, Category: QuestionMark.String(), MarketShare: 3, GrowthRate: 20},
		{Name: "Sample Product 4", Quantity: 40, Category: Dog.String(), MarketShare: 5, GrowthRate: -2},
	}
}

func truncateRunes(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n])
}

func toInt(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	default:
		return int(f)
	}
}

func finiteOrZero(f float64) float64 {
	if finite(f) {
		return f
	}
	return 0
}
