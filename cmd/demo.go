package cmd

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/vlist/internal/config"
	"github.com/zjrosen/vlist/internal/log"
	"github.com/zjrosen/vlist/internal/tracing"
	"github.com/zjrosen/vlist/internal/ui/vlist"
	"github.com/zjrosen/vlist/internal/watcher"
)

// configErrMsg reports a config reload that failed to parse or validate.
type configErrMsg struct {
	err error
}

// demoApp hosts the list and applies config file edits while it runs.
type demoApp struct {
	list       vlist.Model
	changes    <-chan struct{}
	configPath string
	err        error
}

func (a demoApp) Init() tea.Cmd {
	return tea.Batch(a.list.Init(), waitForConfig(a.changes, a.configPath))
}

func (a demoApp) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case configErrMsg:
		a.err = msg.err
		log.ErrorErr(log.CatConfig, "Ignoring invalid config change", msg.err, "path", a.configPath)
		return a, waitForConfig(a.changes, a.configPath)
	case vlist.ConfigChangedMsg:
		a.err = nil
		var cmd tea.Cmd
		a.list, cmd = a.list.Update(msg)
		return a, tea.Batch(cmd, waitForConfig(a.changes, a.configPath))
	}

	var cmd tea.Cmd
	a.list, cmd = a.list.Update(msg)
	return a, cmd
}

func (a demoApp) View() string {
	view := a.list.View()
	if a.err != nil {
		view += "\n" + a.err.Error()
	}
	return zone.Scan(view)
}

// waitForConfig blocks until the watcher reports a change, then rereads the
// file. A nil channel means no file is being watched.
func waitForConfig(changes <-chan struct{}, path string) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		c, err := readConfigFile(path)
		if err != nil {
			return configErrMsg{err: err}
		}
		log.Info(log.CatConfig, "Config reloaded", "path", path)
		return vlist.ConfigChangedMsg{List: c.List}
	}
}

// readConfigFile loads path over the defaults with a fresh viper instance.
func readConfigFile(path string) (config.Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return config.Config{}, fmt.Errorf("reading config: %w", err)
	}
	return loadConfig(v)
}

func tracingConfig(c config.TracingConfig) tracing.Config {
	filePath := c.FilePath
	if filePath == "" {
		filePath = config.DefaultTracesFilePath()
	}
	return tracing.Config{
		Enabled:      c.Enabled,
		Exporter:     c.Exporter,
		FilePath:     filePath,
		OTLPEndpoint: c.OTLPEndpoint,
		SampleRate:   c.SampleRate,
		ServiceName:  tracing.DefaultServiceName,
	}
}

func runDemo(_ *cobra.Command, _ []string) error {
	provider, err := tracing.NewProvider(tracingConfig(cfg.Tracing))
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "Failed to flush traces", err)
		}
	}()

	opts := vlist.DefaultOptions()
	opts.List = cfg.List
	opts.MarkdownStyle = cfg.Demo.MarkdownStyle
	opts.ShowScrollbar = cfg.Demo.ShowScrollbar
	opts.Tracer = provider.Tracer()

	list, err := vlist.New(vlist.Fixtures(cfg.Demo.Items, cfg.Demo.Seed), opts)
	if err != nil {
		return fmt.Errorf("creating list: %w", err)
	}
	defer list.Close()

	app := demoApp{list: list, configPath: viper.ConfigFileUsed()}
	if app.configPath == "" {
		// No config file found anywhere - create default at .vlist/config.yaml
		// so edits can be picked up live. If write fails, run without one.
		if err := config.WriteDefaultConfig(localConfigPath); err == nil {
			app.configPath = localConfigPath
		}
	}
	if app.configPath != "" {
		w, err := watcher.New(watcher.DefaultConfig(app.configPath))
		if err != nil {
			return fmt.Errorf("creating config watcher: %w", err)
		}
		defer func() { _ = w.Stop() }()
		app.changes, err = w.Start()
		if err != nil {
			// Live reload is optional; run without it.
			log.ErrorErr(log.CatWatcher, "Failed to watch config", err, "path", app.configPath)
		}
	}

	zone.NewGlobal()
	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
