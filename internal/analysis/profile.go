package analysis

import (
	"fmt"
	"strings"

	"github.com/go-gota/gota/series"
)

// Profile describes a sanitized dataset: where each role came from and the
// spread of every numeric role.
type Profile struct {
	Name     string
	Strategy string
	Rows     int
	Samples  int
	Columns  []RoleColumn
	Stats    []NumSummary
	Warnings []string
}

// RoleColumn pairs a role with its source column.
type RoleColumn struct {
	Role        Role
	Column      string
	Synthesized bool
}

// NumSummary holds descriptive statistics for one numeric role.
type NumSummary struct {
	Role                   Role
	Min, Max, Mean, Median float64
}

// NewProfile summarizes ds. Call it after Sanitize.
func NewProfile(name, strategy string, ds *Dataset) *Profile {
	p := &Profile{Name: name, Strategy: strategy, Rows: len(ds.Rows)}
	for _, r := range ds.Rows {
		if r.Sample {
			p.Samples++
		}
	}
	for _, role := range append([]Role{RoleName}, numericRoles...) {
		p.Columns = append(p.Columns, RoleColumn{Role: role, Column: ds.Columns[role], Synthesized: ds.Synthesized[role]})
	}
	for _, role := range numericRoles {
		p.Stats = append(p.Stats, summarize(role, ds.Rows))
	}
	for _, w := range ds.Warnings {
		p.Warnings = append(p.Warnings, w.Error())
	}
	return p
}

func summarize(role Role, rows []Row) NumSummary {
	out := NumSummary{Role: role}
	if len(rows) == 0 {
		return out
	}
	vals := make([]float64, len(rows))
	for i, r := range rows {
		switch role {
		case RoleMarketShare:
			vals[i] = r.MarketShare
		case RoleMarketGrowth:
			vals[i] = r.MarketGrowth
		case RoleQuantity:
			vals[i] = r.Quantity
		}
	}
	s := series.New(vals, series.Float, role.String())
	out.Min = s.Min()
	out.Max = s.Max()
	out.Mean = s.Mean()
	out.Median = s.Median()
	return out
}

// Markdown renders the profile in the same bracketed-section layout used for
// dataset summaries.
func (p *Profile) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if p.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", p.Name))
	}
	if p.Strategy != "" {
		b.WriteString(fmt.Sprintf("Parsed with: %s\n", p.Strategy))
	}
	if p.Samples > 0 {
		b.WriteString(fmt.Sprintf("Rows: %d (%d sample)\n", p.Rows, p.Samples))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d\n", p.Rows))
	}

	b.WriteString("\n[COLUMN MAPPING]\n")
	for _, c := range p.Columns {
		b.WriteString(fmt.Sprintf("- %s: %s", c.Role, safeName(c.Column)))
		if c.Synthesized {
			b.WriteString(" (synthesized)")
		}
		b.WriteString("\n")
	}

	b.WriteString("\n[DATA SUMMARY]\n")
	for _, s := range p.Stats {
		b.WriteString(fmt.Sprintf("- %s: min %.2f, max %.2f, mean %.2f, median %.2f\n", s.Role, s.Min, s.Max, s.Mean, s.Median))
	}

	if len(p.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range p.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
