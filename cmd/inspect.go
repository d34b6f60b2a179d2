package cmd

import (
	"fmt"

	"github.com/KaramelBytes/bcgmatrix-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/bcgmatrix-cli/internal/config"
	"github.com/KaramelBytes/bcgmatrix-cli/internal/parser"
	"github.com/KaramelBytes/bcgmatrix-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	insOutputPath string
	insDelimiter  string
	insDecimal    string
	insThousands  string
	insSeed       int64
	insClassify   bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show how a file's columns map to BCG roles, without writing a chart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		base := cfg
		if base == nil {
			base = cfgpkg.Defaults()
		}

		delim := base.Delimiter
		if cmd.Flags().Changed("delimiter") {
			delim = insDelimiter
		}
		if delim != "" && parser.ParseDelimiter(delim) == 0 {
			return fmt.Errorf("unsupported --delimiter: %s", delim)
		}
		decimal, thousands := base.Decimal, base.Thousands
		if cmd.Flags().Changed("decimal") {
			d, err := decimalName(insDecimal)
			if err != nil {
				return err
			}
			decimal = d
		}
		if cmd.Flags().Changed("thousands") {
			t, err := thousandsName(insThousands)
			if err != nil {
				return err
			}
			thousands = t
		}
		seed := base.Seed
		if cmd.Flags().Changed("seed") {
			seed = insSeed
		}

		c := *base
		c.LogFormat = logFormatOr(cmd, c.LogFormat)
		logger := newLogger(cmd, &c)

		nf := analysis.ParseNumberFormat(decimal, thousands)
		tbl, err := parser.Load(path, parser.Options{Delimiter: parser.ParseDelimiter(delim)}, logger)
		if err != nil {
			return err
		}
		ds := analysis.Resolve(tbl, analysis.ResolveOptions{Seed: seed, Format: nf}, logger)
		analysis.Sanitize(ds, nf, logger)

		md := analysis.NewProfile(path, tbl.Strategy, ds).Markdown()
		if insClassify {
			md += classificationSection(ds.Rows)
		}

		if insOutputPath != "" {
			if err := utils.SafeWriteFile(insOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", insOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVarP(&insOutputPath, "output", "o", "", "optional path to write the report")
	inspectCmd.Flags().StringVar(&insDelimiter, "delimiter", "", "field delimiter: ',' | ';' | 'tab' | '|'")
	inspectCmd.Flags().StringVar(&insDecimal, "decimal", "", "decimal separator: '.'|'comma' (auto-detect if omitted)")
	inspectCmd.Flags().StringVar(&insThousands, "thousands", "", "thousands separator: ','|'.'|'space' (auto-detect if omitted)")
	inspectCmd.Flags().Int64Var(&insSeed, "seed", 0, "seed for synthesized columns")
	inspectCmd.Flags().BoolVar(&insClassify, "classify", false, "append thresholds and quadrant counts")
}

// classificationSection classifies a copy of rows so the report does not
// change the dataset it describes.
func classificationSection(rows []analysis.Row) string {
	cp := append([]analysis.Row(nil), rows...)
	th := analysis.ComputeThresholds(cp)
	counts := analysis.ClassifyAll(cp, th)
	s := "\n[CLASSIFICATION]\n"
	s += fmt.Sprintf("Thresholds: market share %.2f, market growth %.2f\n", th.Share, th.Growth)
	for _, cat := range analysis.Categories {
		s += fmt.Sprintf("- %s: %d\n", cat, counts.Of(cat))
	}
	return s
}

func logFormatOr(cmd *cobra.Command, fallback string) string {
	if cmd.Flags().Changed("log-format") {
		return logFormat
	}
	return fallback
}
