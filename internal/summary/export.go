package summary

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/bcgmatrix-cli/internal/analysis"
	"github.com/KaramelBytes/bcgmatrix-cli/internal/utils"
)

const (
	RowsSheet    = "BCG"
	SummarySheet = "Summary"
)

// Frame lays the classified rows out as a table.
func Frame(rows []analysis.Row) dataframe.DataFrame {
	n := len(rows)
	names := make([]string, n)
	share := make([]float64, n)
	growth := make([]float64, n)
	qty := make([]float64, n)
	cat := make([]string, n)
	sample := make([]bool, n)
	for i, r := range rows {
		names[i] = r.Name
		share[i] = r.MarketShare
		growth[i] = r.MarketGrowth
		qty[i] = r.Quantity
		cat[i] = r.Category.String()
		sample[i] = r.Sample
	}
	return dataframe.New(
		series.New(names, series.String, "Name"),
		series.New(share, series.Float, "MarketShare"),
		series.New(growth, series.Float, "MarketGrowth"),
		series.New(qty, series.Float, "Quantity"),
		series.New(cat, series.String, "Category"),
		series.New(sample, series.Bool, "Sample"),
	)
}

// ExportXLSX writes every classified row to the "BCG" sheet and the
// thresholds and counts to "Summary".
func ExportXLSX(path string, rows []analysis.Row, s *Summary) error {
	if err := utils.EnsureParentDir(path); err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RowsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	df := Frame(rows)
	if df.Err != nil {
		return fmt.Errorf("build rows table: %w", df.Err)
	}
	colNames := df.Names()
	for i, name := range colNames {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(RowsSheet, cell, name); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for rowIdx := 0; rowIdx < df.Nrow(); rowIdx++ {
		for colIdx, colName := range colNames {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(RowsSheet, cell, df.Col(colName).Val(rowIdx)); err != nil {
				return fmt.Errorf("write row %d: %w", rowIdx+1, err)
			}
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("add summary sheet: %w", err)
	}
	lines := [][]any{
		{"Metric", "Value"},
		{"Market share threshold", s.Thresholds.Share},
		{"Market growth threshold", s.Thresholds.Growth},
		{analysis.Star.String(), s.Counts.Star},
		{analysis.CashCow.String(), s.Counts.CashCow},
		{analysis.QuestionMark.String(), s.Counts.QuestionMark},
		{analysis.Dog.String(), s.Counts.Dog},
		{"Total", s.Counts.Total},
	}
	for i, l := range lines {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &l); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
