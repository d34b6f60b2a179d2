package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/bcgmatrix-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set bcgmatrix configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "input: %s\n", cfg.Input)
		fmt.Fprintf(out, "output: %s\n", cfg.Output)
		fmt.Fprintf(out, "delimiter: %s\n", orAuto(cfg.Delimiter))
		fmt.Fprintf(out, "decimal: %s\n", orAuto(cfg.Decimal))
		fmt.Fprintf(out, "thousands: %s\n", orAuto(cfg.Thousands))
		fmt.Fprintf(out, "top_n: %d\n", cfg.TopN)
		fmt.Fprintf(out, "seed: %d\n", cfg.Seed)
		fmt.Fprintf(out, "dpi: %d\n", cfg.DPI)
		fmt.Fprintf(out, "max_labels: %d\n", cfg.MaxLabels)
		if cfg.ExportXLSX != "" {
			fmt.Fprintf(out, "export_xlsx: %s\n", cfg.ExportXLSX)
		}
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		next := *cfg
		switch key {
		case "input":
			next.Input = val
		case "output":
			next.Output = val
		case "delimiter":
			next.Delimiter = val
		case "decimal":
			d, err := decimalName(val)
			if err != nil {
				return err
			}
			next.Decimal = d
		case "thousands":
			t, err := thousandsName(val)
			if err != nil {
				return err
			}
			next.Thousands = t
		case "top_n":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for top_n: %w", err)
			}
			next.TopN = i
		case "seed":
			i, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid int for seed: %w", err)
			}
			next.Seed = i
		case "dpi":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for dpi: %w", err)
			}
			next.DPI = i
		case "max_labels":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for max_labels: %w", err)
			}
			next.MaxLabels = i
		case "export_xlsx":
			next.ExportXLSX = val
		case "log_level":
			next.LogLevel = val
		case "log_format":
			next.LogFormat = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		cfg = &next
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func orAuto(s string) string {
	if s == "" {
		return "auto"
	}
	return s
}
