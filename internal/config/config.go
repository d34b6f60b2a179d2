package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Default artefact locations when the CLI receives no positional args.
	Input  string `mapstructure:"input" yaml:"input" validate:"required"`
	Output string `mapstructure:"output" yaml:"output" validate:"required"`

	// Parsing
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	Decimal   string `mapstructure:"decimal" yaml:"decimal" validate:"omitempty,oneof=dot comma"`
	Thousands string `mapstructure:"thousands" yaml:"thousands" validate:"omitempty,oneof=comma dot space"`

	// Classification and ranking
	TopN int   `mapstructure:"top_n" yaml:"top_n" validate:"min=1,max=100"`
	Seed int64 `mapstructure:"seed" yaml:"seed"`

	// Chart
	DPI       int `mapstructure:"dpi" yaml:"dpi" validate:"min=72,max=1200"`
	MaxLabels int `mapstructure:"max_labels" yaml:"max_labels" validate:"min=0,max=100"`

	// Optional classified workbook next to the chart.
	ExportXLSX string `mapstructure:"export_xlsx" yaml:"export_xlsx"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`
}

var defaults = map[string]any{
	"input":       "sample.csv",
	"output":      "bcg_matrix_output.png",
	"delimiter":   "",
	"decimal":     "",
	"thousands":   "",
	"top_n":       10,
	"seed":        0,
	"dpi":         300,
	"max_labels":  15,
	"export_xlsx": "",
	"log_level":   "info",
	"log_format":  "text",
}

// Defaults returns the built-in configuration without touching disk or env.
func Defaults() *Global {
	return &Global{
		Input:     defaults["input"].(string),
		Output:    defaults["output"].(string),
		TopN:      defaults["top_n"].(int),
		DPI:       defaults["dpi"].(int),
		MaxLabels: defaults["max_labels"].(int),
		LogLevel:  defaults["log_level"].(string),
		LogFormat: defaults["log_format"].(string),
	}
}

// Validate checks value ranges and enumerations.
func (c *Global) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(c.Delimiter)) {
	case "", ",", "comma", ";", "semicolon", "\t", "tab", "|", "pipe":
	default:
		return fmt.Errorf("invalid config: unsupported delimiter %q", c.Delimiter)
	}
	return nil
}

func defaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".bcgmatrix", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.bcgmatrix/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := defaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. CLI flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("BCGMATRIX")
	v.AutomaticEnv()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		path, err := defaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
