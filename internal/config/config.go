// Package config provides configuration types and defaults for vlist.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/vlist/internal/log"
)

// Size strategy names accepted in list.strategy.
const (
	StrategyFixed    = "fixed"
	StrategyComputed = "computed"
	StrategyMeasured = "measured"
)

// Config holds all configuration options for vlist.
type Config struct {
	List    ListConfig    `mapstructure:"list"`
	Demo    DemoConfig    `mapstructure:"demo"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Log     LogConfig     `mapstructure:"log"`
}

// ListConfig configures the virtualizer behind the list.
type ListConfig struct {
	Strategy       string        `mapstructure:"strategy"`        // "fixed", "computed" or "measured" (default)
	Overscan       int           `mapstructure:"overscan"`        // rows rendered beyond each visible edge
	ScrollingDelay time.Duration `mapstructure:"scrolling_delay"` // quiet period before scrolling is over
	FixedHeight    float64       `mapstructure:"fixed_height"`    // row height for the fixed strategy
	EstimateHeight float64       `mapstructure:"estimate_height"` // placeholder height for the measured strategy
	WrapWidth      int           `mapstructure:"wrap_width"`      // body wrap width for the computed strategy
}

// DemoConfig configures the interactive demo list.
type DemoConfig struct {
	Items         int    `mapstructure:"items"`          // number of generated items
	Seed          int64  `mapstructure:"seed"`           // fixture generator seed
	MarkdownStyle string `mapstructure:"markdown_style"` // "dark" (default) or "light"
	ShowScrollbar bool   `mapstructure:"show_scrollbar"`
}

// TracingConfig holds span export configuration.
type TracingConfig struct {
	// Enabled controls whether a span is recorded per range computation.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/vlist/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate"`
}

// LogConfig controls debug logging.
type LogConfig struct {
	Path  string `mapstructure:"path"`  // debug log file, used with --debug
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// DefaultTracesFilePath returns ~/.config/vlist/traces/traces.jsonl, or an
// empty string if the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "vlist", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		List: ListConfig{
			Strategy:       StrategyMeasured,
			Overscan:       3,
			ScrollingDelay: 150 * time.Millisecond,
			FixedHeight:    2,
			EstimateHeight: 4,
			WrapWidth:      60,
		},
		Demo: DemoConfig{
			Items:         10000,
			Seed:          1,
			MarkdownStyle: "dark",
			ShowScrollbar: true,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from home dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Log: LogConfig{
			Path:  "debug.log",
			Level: "debug",
		},
	}
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if err := ValidateList(c.List); err != nil {
		return err
	}
	if err := ValidateDemo(c.Demo); err != nil {
		return err
	}
	if err := ValidateTracing(c.Tracing); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// ValidateList checks list configuration for errors.
func ValidateList(list ListConfig) error {
	switch list.Strategy {
	case StrategyFixed:
		if list.FixedHeight <= 0 {
			return fmt.Errorf("list.fixed_height must be positive for the fixed strategy, got %v", list.FixedHeight)
		}
	case StrategyComputed:
		if list.WrapWidth <= 0 {
			return fmt.Errorf("list.wrap_width must be positive for the computed strategy, got %d", list.WrapWidth)
		}
	case StrategyMeasured, "":
		if list.EstimateHeight < 0 {
			return fmt.Errorf("list.estimate_height must not be negative, got %v", list.EstimateHeight)
		}
	default:
		return fmt.Errorf("list.strategy must be \"fixed\", \"computed\" or \"measured\", got %q", list.Strategy)
	}

	if list.Overscan < 0 {
		return fmt.Errorf("list.overscan must not be negative, got %d", list.Overscan)
	}
	if list.ScrollingDelay < 0 {
		return fmt.Errorf("list.scrolling_delay must not be negative, got %s", list.ScrollingDelay)
	}
	return nil
}

// ValidateDemo checks demo configuration for errors.
func ValidateDemo(demo DemoConfig) error {
	if demo.Items < 0 {
		return fmt.Errorf("demo.items must not be negative, got %d", demo.Items)
	}
	switch demo.MarkdownStyle {
	case "", "dark", "light":
	default:
		return fmt.Errorf("demo.markdown_style must be \"dark\" or \"light\", got %q", demo.MarkdownStyle)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	if tracing.Enabled && tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# vlist configuration

# Virtualized list settings
list:
  # How item heights are known:
  #   fixed    - every row is fixed_height lines tall
  #   computed - heights derived from the wrapped body (wrap_width columns)
  #   measured - rows are measured after rendering; estimate_height until then
  strategy: measured
  overscan: 3               # rows rendered beyond each visible edge
  scrolling_delay: 150ms    # quiet period before scrolling is considered over
  fixed_height: 2
  estimate_height: 4
  wrap_width: 60

# Demo list
demo:
  items: 10000
  seed: 1
  markdown_style: dark      # "dark" (default) or "light"
  show_scrollbar: true

# Span per range computation
# tracing:
#   enabled: false
#   exporter: file          # none, file, stdout, otlp
#   file_path: ~/.config/vlist/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0

# Debug logging (enable with --debug or VLIST_DEBUG=1)
log:
  path: debug.log
  level: debug
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
