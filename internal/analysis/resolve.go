package analysis

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/KaramelBytes/bcgmatrix-cli/internal/parser"
)

// SynthesizedNameColumn labels generated product names.
const SynthesizedNameColumn = "ProductName"

// Row is one classified product.
type Row struct {
	Name         string
	MarketShare  float64
	MarketGrowth float64
	Quantity     float64
	Category     Category
	// Sample marks rows injected to reach a minimum dataset size.
	Sample bool
}

// Dataset is the resolved (and, after Sanitize, cleaned) set of rows.
type Dataset struct {
	Rows []Row
	// Columns maps each role to the source column label it came from.
	// Synthesized roles carry a generated label.
	Columns     map[Role]string
	Synthesized map[Role]bool
	NameColumn  string
	Warnings    []error

	size  int
	raw   map[Role][]string
	synth map[Role][]float64
}

// ResolveOptions tunes column inference.
type ResolveOptions struct {
	// Seed drives synthetic share/growth values; 0 uses the clock.
	Seed   int64
	Format NumberFormat
}

// Resolve maps the table's headers onto the four semantic roles, falling back
// to positional numeric columns or synthetic values when headers don't say.
func Resolve(t *parser.Table, opt ResolveOptions, logger *slog.Logger) *Dataset {
	n := t.Nrow()
	ds := &Dataset{
		Columns:     make(map[Role]string, 4),
		Synthesized: make(map[Role]bool, 4),
		size:        n,
		raw:         make(map[Role][]string, 4),
		synth:       make(map[Role][]float64, 3),
	}
	headers := t.Headers()

	assigned := make(map[string]bool, len(headers))
	for _, h := range headers {
		if role, ok := matchRole(h, ds.Columns); ok {
			ds.Columns[role] = h
			assigned[h] = true
			logger.Info("identified column", slog.String("column", h), slog.String("role", role.String()))
		}
	}
	if len(ds.Columns) == 0 {
		ds.warn(logger, &ResolutionWarning{Role: RoleMarketShare, Msg: "no standard column headers recognised; using numeric columns"})
	}

	ds.resolveName(t, headers, assigned, opt.Format, logger)

	numeric := make([]string, 0, len(headers))
	for _, h := range headers {
		if assigned[h] {
			continue
		}
		if t.IsNumeric(h) || looksNumeric(t.Cells(h), opt.Format) {
			numeric = append(numeric, h)
		}
	}

	var missing []Role
	for _, r := range []Role{RoleMarketShare, RoleMarketGrowth} {
		if _, ok := ds.Columns[r]; !ok {
			missing = append(missing, r)
		}
	}
	if len(missing) > 0 {
		if len(numeric) >= len(missing) {
			for i, r := range missing {
				ds.Columns[r] = numeric[i]
				assigned[numeric[i]] = true
				ds.warn(logger, &ResolutionWarning{Role: r, Msg: fmt.Sprintf("using numeric column %q", numeric[i])})
			}
			numeric = numeric[len(missing):]
		} else {
			seed := opt.Seed
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			rng := rand.New(rand.NewSource(seed))
			for _, r := range missing {
				vals := make([]float64, n)
				for i := range vals {
					if r == RoleMarketShare {
						vals[i] = rng.Float64() * 10
					} else {
						vals[i] = -5 + rng.Float64()*20
					}
				}
				ds.synth[r] = vals
				ds.Columns[r] = r.String()
				ds.Synthesized[r] = true
				ds.warn(logger, &ResolutionWarning{Role: r, Msg: "not enough numeric columns; synthesized random values"})
			}
		}
	}

	if _, ok := ds.Columns[RoleQuantity]; !ok {
		ds.resolveQuantity(t, numeric, opt.Format, logger)
	}

	for _, r := range numericRoles {
		if !ds.Synthesized[r] {
			ds.raw[r] = t.Cells(ds.Columns[r])
		}
	}
	if !ds.Synthesized[RoleName] {
		ds.raw[RoleName] = t.Cells(ds.NameColumn)
	}

	logger.Info("column mapping",
		slog.String("name", ds.NameColumn),
		slog.String("market_share", ds.Columns[RoleMarketShare]),
		slog.String("market_growth", ds.Columns[RoleMarketGrowth]),
		slog.String("quantity", ds.Columns[RoleQuantity]))
	return ds
}

func (ds *Dataset) resolveName(t *parser.Table, headers []string, assigned map[string]bool, nf NumberFormat, logger *slog.Logger) {
	var candidates []string
	for _, h := range headers {
		if !isPlaceholderHeader(h) && !assigned[h] {
			candidates = append(candidates, h)
		}
	}
	for _, p := range namePatterns {
		for _, h := range candidates {
			if containsFold(h, p) {
				ds.bindName(h, assigned)
				logger.Info("identified column", slog.String("column", h), slog.String("role", RoleName.String()))
				return
			}
		}
	}

	for _, h := range candidates {
		if indexHeaders[normalizeHeader(h)] || !t.IsText(h) || looksNumeric(t.Cells(h), nf) {
			continue
		}
		cells := t.Cells(h)
		distinct := make(map[string]struct{}, len(cells))
		nonEmpty := 0
		for _, c := range cells {
			if c == "" {
				continue
			}
			nonEmpty++
			distinct[c] = struct{}{}
		}
		if nonEmpty == 0 || len(distinct) == len(cells) {
			continue
		}
		ds.bindName(h, assigned)
		ds.warn(logger, &ResolutionWarning{Role: RoleName, Msg: fmt.Sprintf("using text column %q", h)})
		return
	}

	ds.NameColumn = SynthesizedNameColumn
	ds.Columns[RoleName] = SynthesizedNameColumn
	ds.Synthesized[RoleName] = true
	ds.warn(logger, &ResolutionWarning{Role: RoleName, Msg: "no label column found; generating product names"})
}

func (ds *Dataset) bindName(h string, assigned map[string]bool) {
	ds.NameColumn = h
	ds.Columns[RoleName] = h
	assigned[h] = true
}

func (ds *Dataset) resolveQuantity(t *parser.Table, numeric []string, nf NumberFormat, logger *slog.Logger) {
	for _, h := range numeric {
		if looksLikeCount(t.Cells(h), nf) {
			ds.Columns[RoleQuantity] = h
			ds.warn(logger, &ResolutionWarning{Role: RoleQuantity, Msg: fmt.Sprintf("selected %q as quantity", h)})
			return
		}
	}
	if len(numeric) > 0 {
		ds.Columns[RoleQuantity] = numeric[0]
		ds.warn(logger, &ResolutionWarning{Role: RoleQuantity, Msg: fmt.Sprintf("using %q as quantity (fallback)", numeric[0])})
		return
	}
	ones := make([]float64, ds.size)
	for i := range ones {
		ones[i] = 1
	}
	ds.synth[RoleQuantity] = ones
	ds.Columns[RoleQuantity] = RoleQuantity.String()
	ds.Synthesized[RoleQuantity] = true
	ds.warn(logger, &ResolutionWarning{Role: RoleQuantity, Msg: "no numeric column available; using 1"})
}

// looksLikeCount holds when every cell is a non-negative number and the mean
// exceeds 1.
func looksLikeCount(cells []string, nf NumberFormat) bool {
	if len(cells) == 0 {
		return false
	}
	nf = columnFormat(cells, nf)
	sum := 0.0
	for _, c := range cells {
		v, ok := parseNumeric(c, nf)
		if !ok || v < 0 {
			return false
		}
		sum += v
	}
	return sum/float64(len(cells)) > 1
}

func (ds *Dataset) warn(logger *slog.Logger, w error) {
	ds.Warnings = append(ds.Warnings, w)
	logger.Warn(w.Error())
}
