package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/vlist/internal/config"
	"github.com/zjrosen/vlist/internal/log"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts, so the OSC 11 reply cannot race
	// with Bubble Tea's input loop.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

// localConfigPath is used when present. The demo writes a default config
// here when no config exists anywhere.
const localConfigPath = ".vlist/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config

	// configReadErr holds a config file that exists but could not be read.
	configReadErr error
)

var rootCmd = &cobra.Command{
	Use:   "vlist",
	Short: "A virtualized terminal list",
	Long: `vlist renders very long lists in the terminal by drawing only the rows
inside the viewport plus a few overscan rows. Row heights can be fixed,
computed from wrapped text, or measured from rendered markdown.`,
	Version:           version,
	PersistentPreRunE: setup,
	RunE:              runDemo,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/vlist/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write debug logs (also enabled by VLIST_DEBUG)")
	rootCmd.PersistentFlags().String("strategy", "",
		"size strategy: fixed, computed or measured")
	rootCmd.PersistentFlags().Int("overscan", 0,
		"rows rendered beyond each visible edge")
	rootCmd.PersistentFlags().Int("items", 0,
		"number of generated items")

	_ = viper.BindPFlag("list.strategy", rootCmd.PersistentFlags().Lookup("strategy"))
	_ = viper.BindPFlag("list.overscan", rootCmd.PersistentFlags().Lookup("overscan"))
	_ = viper.BindPFlag("demo.items", rootCmd.PersistentFlags().Lookup("items"))
}

func setDefaults(v *viper.Viper) {
	defaults := config.Defaults()
	v.SetDefault("list.strategy", defaults.List.Strategy)
	v.SetDefault("list.overscan", defaults.List.Overscan)
	v.SetDefault("list.scrolling_delay", defaults.List.ScrollingDelay)
	v.SetDefault("list.fixed_height", defaults.List.FixedHeight)
	v.SetDefault("list.estimate_height", defaults.List.EstimateHeight)
	v.SetDefault("list.wrap_width", defaults.List.WrapWidth)
	v.SetDefault("demo.items", defaults.Demo.Items)
	v.SetDefault("demo.seed", defaults.Demo.Seed)
	v.SetDefault("demo.markdown_style", defaults.Demo.MarkdownStyle)
	v.SetDefault("demo.show_scrollbar", defaults.Demo.ShowScrollbar)
	v.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	v.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	v.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	v.SetDefault("log.path", defaults.Log.Path)
	v.SetDefault("log.level", defaults.Log.Level)
}

func initConfig() {
	setDefaults(viper.GetViper())
	viper.SetEnvPrefix("vlist")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .vlist/config.yaml (current directory)
		// 2. ~/.config/vlist/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "vlist"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine; the demo writes one. Anything else is
		// reported once logging is up.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			configReadErr = err
		}
	}
}

// loadConfig decodes and validates the settings held by v.
func loadConfig(v *viper.Viper) (config.Config, error) {
	var c config.Config
	if err := v.Unmarshal(&c); err != nil {
		return config.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

// cleanupLog closes the debug log opened by setup.
var cleanupLog = func() {}

func setup(_ *cobra.Command, _ []string) error {
	if configReadErr != nil {
		return fmt.Errorf("reading config: %w", configReadErr)
	}

	var err error
	cfg, err = loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	// Initialize logging if debug mode enabled (via flag or env var)
	if os.Getenv("VLIST_DEBUG") != "" || debugFlag {
		cleanup, err := log.InitWithTeaLog(cfg.Log.Path, "vlist")
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		cleanupLog = cleanup
		level, _ := log.ParseLevel(cfg.Log.Level)
		log.SetMinLevel(level)
		log.Info(log.CatConfig, "vlist starting", "version", version, "config", viper.ConfigFileUsed())
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	defer func() { cleanupLog() }()
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
