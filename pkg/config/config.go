/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: config.go
Description: Typed configuration for Hexaminer. Defaults are registered on a viper
instance so config files, HEXAMINER_* environment variables and bound flags all
override them, then the merged tree is decoded and validated.
*/

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/kleascm/hexaminer/pkg/logging"
	"github.com/kleascm/hexaminer/pkg/patterns"
)

// EnvPrefix is the prefix for environment overrides, e.g. HEXAMINER_DUMP_WIDTH
const EnvPrefix = "HEXAMINER"

const (
	// DefaultAnalysisMaxSize caps how much of a file the analyze command reads
	DefaultAnalysisMaxSize = 10 * 1024 * 1024
	// DefaultPatternsMaxSize caps how much of a file the patterns command reads
	DefaultPatternsMaxSize = 100 * 1024 * 1024
)

// AnalysisConfig configures the analyze command
type AnalysisConfig struct {
	MaxSize int64 `mapstructure:"max_size"`
	Verbose bool  `mapstructure:"verbose"`
	Workers int   `mapstructure:"workers"` // 0 = one per CPU
}

// PatternsConfig configures the pattern scanner
type PatternsConfig struct {
	MaxSize              int64   `mapstructure:"max_size"`
	MinStringLength      int     `mapstructure:"min_string_length"`
	EntropyWindow        int     `mapstructure:"entropy_window"`
	HighEntropyThreshold float64 `mapstructure:"high_entropy_threshold"`
	LowEntropyThreshold  float64 `mapstructure:"low_entropy_threshold"`
	DisplayLimit         int     `mapstructure:"display_limit"`
}

// ScanConfig converts the section into scanner settings
func (p PatternsConfig) ScanConfig() patterns.ScanConfig {
	return patterns.ScanConfig{
		MinStringLength:      p.MinStringLength,
		EntropyWindow:        p.EntropyWindow,
		HighEntropyThreshold: p.HighEntropyThreshold,
		LowEntropyThreshold:  p.LowEntropyThreshold,
	}
}

// DumpConfig configures hex dumps
type DumpConfig struct {
	Length int  `mapstructure:"length"`
	Width  int  `mapstructure:"width"`
	Colors bool `mapstructure:"colors"`
}

// PluginsConfig lists the built-in plugins to load
type PluginsConfig struct {
	Enabled []string `mapstructure:"enabled"`
}

// ExportConfig configures report export
type ExportConfig struct {
	Format    string `mapstructure:"format"`
	OutputDir string `mapstructure:"output_dir"`
}

// Config is the complete application configuration
type Config struct {
	Analysis AnalysisConfig       `mapstructure:"analysis"`
	Patterns PatternsConfig       `mapstructure:"patterns"`
	Dump     DumpConfig           `mapstructure:"dump"`
	Logging  logging.LoggerConfig `mapstructure:"logging"`
	Plugins  PluginsConfig        `mapstructure:"plugins"`
	Export   ExportConfig         `mapstructure:"export"`
}

// Default returns the stock configuration
func Default() *Config {
	scan := patterns.DefaultScanConfig()
	return &Config{
		Analysis: AnalysisConfig{
			MaxSize: DefaultAnalysisMaxSize,
		},
		Patterns: PatternsConfig{
			MaxSize:              DefaultPatternsMaxSize,
			MinStringLength:      scan.MinStringLength,
			EntropyWindow:        scan.EntropyWindow,
			HighEntropyThreshold: scan.HighEntropyThreshold,
			LowEntropyThreshold:  scan.LowEntropyThreshold,
			DisplayLimit:         20,
		},
		Dump: DumpConfig{
			Length: 512,
			Width:  16,
			Colors: true,
		},
		Logging: *logging.DefaultLoggerConfig(),
		Plugins: PluginsConfig{
			Enabled: []string{"mime", "json", "yaml", "text", "html", "highlight"},
		},
		Export: ExportConfig{
			Format:    "json",
			OutputDir: "./reports",
		},
	}
}

// SetDefaults registers the stock values on v so every key is known to viper
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("analysis.max_size", d.Analysis.MaxSize)
	v.SetDefault("analysis.verbose", d.Analysis.Verbose)
	v.SetDefault("analysis.workers", d.Analysis.Workers)

	v.SetDefault("patterns.max_size", d.Patterns.MaxSize)
	v.SetDefault("patterns.min_string_length", d.Patterns.MinStringLength)
	v.SetDefault("patterns.entropy_window", d.Patterns.EntropyWindow)
	v.SetDefault("patterns.high_entropy_threshold", d.Patterns.HighEntropyThreshold)
	v.SetDefault("patterns.low_entropy_threshold", d.Patterns.LowEntropyThreshold)
	v.SetDefault("patterns.display_limit", d.Patterns.DisplayLimit)

	v.SetDefault("dump.length", d.Dump.Length)
	v.SetDefault("dump.width", d.Dump.Width)
	v.SetDefault("dump.colors", d.Dump.Colors)

	v.SetDefault("logging.level", string(d.Logging.Level))
	v.SetDefault("logging.format", string(d.Logging.Format))
	v.SetDefault("logging.dir", d.Logging.OutputDir)
	v.SetDefault("logging.max_files", d.Logging.MaxFiles)
	v.SetDefault("logging.timestamp", d.Logging.Timestamp)
	v.SetDefault("logging.caller", d.Logging.Caller)
	v.SetDefault("logging.colors", d.Logging.Colors)

	v.SetDefault("plugins.enabled", d.Plugins.Enabled)

	v.SetDefault("export.format", d.Export.Format)
	v.SetDefault("export.output_dir", d.Export.OutputDir)
}

// Load decodes and validates the configuration held by v. Callers bind flags and read
// config files first; Load adds the defaults and environment overrides.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the Config for invalid values
func (c *Config) Validate() error {
	if c.Analysis.MaxSize <= 0 {
		return fmt.Errorf("analysis.max_size must be positive")
	}
	if c.Analysis.Workers < 0 {
		return fmt.Errorf("analysis.workers must not be negative")
	}
	if c.Patterns.MaxSize <= 0 {
		return fmt.Errorf("patterns.max_size must be positive")
	}
	if c.Patterns.DisplayLimit < 0 {
		return fmt.Errorf("patterns.display_limit must not be negative")
	}
	if err := c.Patterns.ScanConfig().Validate(); err != nil {
		return fmt.Errorf("patterns: %w", err)
	}
	if c.Dump.Length <= 0 {
		return fmt.Errorf("dump.length must be positive")
	}
	if c.Dump.Width <= 0 || c.Dump.Width > 64 {
		return fmt.Errorf("dump.width must be between 1 and 64")
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.Export.Format == "" {
		return fmt.Errorf("export.format must not be empty")
	}
	return nil
}
