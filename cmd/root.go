package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/KaramelBytes/bcgmatrix-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/bcgmatrix-cli/internal/config"
	"github.com/KaramelBytes/bcgmatrix-cli/internal/logging"
	"github.com/KaramelBytes/bcgmatrix-cli/internal/parser"
	"github.com/KaramelBytes/bcgmatrix-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string

	// Run flags (override config if set)
	flagDelimiter string
	flagDecimal   string
	flagThousands string
	flagDPI       int
	flagTopN      int
	flagSeed      int64
	flagLabels    int
	flagXLSX      string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "bcgmatrix [input] [output]",
	Short: "Classify products into a BCG growth-share matrix",
	Long: `bcgmatrix reads a delimited product file, works out which columns hold market
share, market growth and quantity, and classifies every product as a Star, Cash Cow,
Question Mark or Dog. It writes a scatter chart and a JSON summary next to it.`,
	Args:         cobra.MaximumNArgs(2),
	SilenceUsage: true,
	RunE:         runMatrix,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.bcgmatrix/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text|json (overrides config)")

	f := rootCmd.Flags()
	f.StringVar(&flagDelimiter, "delimiter", "", "field delimiter: ',' | ';' | 'tab' | '|' (auto if omitted)")
	f.StringVar(&flagDecimal, "decimal", "", "decimal separator: '.'|'comma' (auto-detect if omitted)")
	f.StringVar(&flagThousands, "thousands", "", "thousands separator: ','|'.'|'space' (auto-detect if omitted)")
	f.IntVar(&flagDPI, "dpi", 0, "chart resolution in dots per inch (overrides config)")
	f.IntVar(&flagTopN, "top", 0, "number of top products in the summary (overrides config)")
	f.Int64Var(&flagSeed, "seed", 0, "seed for synthesized columns, 0 = time based (overrides config)")
	f.IntVar(&flagLabels, "labels", 0, "maximum point labels drawn on the chart (overrides config)")
	f.StringVar(&flagXLSX, "xlsx", "", "also write classified rows to this .xlsx workbook")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c
}

// effectiveConfig copies the loaded config and applies positional args and
// any flag the user set explicitly.
func effectiveConfig(cmd *cobra.Command, args []string) (*cfgpkg.Global, error) {
	base := cfg
	if base == nil {
		base = cfgpkg.Defaults()
	}
	c := *base
	if len(args) > 0 {
		c.Input = args[0]
	}
	if len(args) > 1 {
		c.Output = args[1]
	}

	f := cmd.Flags()
	if f.Changed("log-format") {
		c.LogFormat = strings.ToLower(strings.TrimSpace(logFormat))
	}
	if f.Changed("delimiter") {
		c.Delimiter = flagDelimiter
	}
	if f.Changed("decimal") {
		d, err := decimalName(flagDecimal)
		if err != nil {
			return nil, err
		}
		c.Decimal = d
	}
	if f.Changed("thousands") {
		t, err := thousandsName(flagThousands)
		if err != nil {
			return nil, err
		}
		c.Thousands = t
	}
	if f.Changed("dpi") {
		c.DPI = flagDPI
	}
	if f.Changed("top") {
		c.TopN = flagTopN
	}
	if f.Changed("seed") {
		c.Seed = flagSeed
	}
	if f.Changed("labels") {
		c.MaxLabels = flagLabels
	}
	if f.Changed("xlsx") {
		c.ExportXLSX = flagXLSX
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func decimalName(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ".", "dot":
		return "dot", nil
	case ",", "comma":
		return "comma", nil
	case "":
		return "", nil
	default:
		return "", fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", s)
	}
}

func thousandsName(s string) (string, error) {
	switch strings.ToLower(s) {
	case ",", "comma":
		return "comma", nil
	case ".", "dot":
		return "dot", nil
	case " ", "space":
		return "space", nil
	case "":
		return "", nil
	default:
		return "", fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", s)
	}
}

func newLogger(cmd *cobra.Command, c *cfgpkg.Global) *slog.Logger {
	l := logging.New(logging.Options{
		Level:  c.LogLevel,
		Format: c.LogFormat,
		Debug:  debug,
		Output: cmd.ErrOrStderr(),
	})
	l, _ = logging.WithRunID(l)
	return l
}

func runMatrix(cmd *cobra.Command, args []string) error {
	c, err := effectiveConfig(cmd, args)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, c)

	res, err := pipeline.Run(pipeline.Options{
		Input:      c.Input,
		Output:     c.Output,
		Delimiter:  parser.ParseDelimiter(c.Delimiter),
		Format:     analysis.ParseNumberFormat(c.Decimal, c.Thousands),
		Seed:       c.Seed,
		TopN:       c.TopN,
		DPI:        c.DPI,
		MaxLabels:  c.MaxLabels,
		ExportXLSX: c.ExportXLSX,
	}, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Thresholds: market share %.2f, market growth %.2f\n", res.Thresholds.Share, res.Thresholds.Growth)
	fmt.Fprintf(out, "Stars: %d  Cash Cows: %d  Question Marks: %d  Dogs: %d  (total %d)\n",
		res.Counts.Star, res.Counts.CashCow, res.Counts.QuestionMark, res.Counts.Dog, res.Counts.Total)
	for _, d := range res.Degraded {
		fmt.Fprintf(out, "⚠ Warning: %v\n", d)
	}
	fmt.Fprintf(out, "✓ Wrote chart to %s\n", res.ImagePath)
	fmt.Fprintf(out, "✓ Wrote summary to %s\n", res.SummaryPath)
	if res.WorkbookPath != "" {
		fmt.Fprintf(out, "✓ Wrote workbook to %s\n", res.WorkbookPath)
	}
	return nil
}
