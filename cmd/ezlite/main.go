// cmd/ezlite/main.go
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhath/ezlite/internal/config"
	"github.com/nhath/ezlite/internal/db"
	"github.com/nhath/ezlite/internal/history"
	"github.com/nhath/ezlite/internal/layout"
	"github.com/nhath/ezlite/internal/logger"
	"github.com/nhath/ezlite/internal/registry"
	"github.com/nhath/ezlite/internal/ui"
	"github.com/nhath/ezlite/internal/viewstate"
	"github.com/nhath/ezlite/internal/watch"
)

var (
	// Version info (set by ldflags)
	version = "dev"

	// Flags
	configPath string
	logPath    string
	debug      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ezlite [database.db]",
		Short: "Browse a SQLite database in the terminal",
		Long: `ezlite opens a SQLite database and shows its tables, their structure,
ad hoc query results and the statements run against it.

Without an argument the first stored connection is opened, or you are
asked for a database file when there is none.`,
		Version:      version,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var file string
			if len(args) == 1 {
				file = args[0]
			}
			return run(file)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default $XDG_CONFIG_HOME/ezlite/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log-file", "", "log file path (default $XDG_STATE_HOME/ezlite/ezlite.log)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newAddCmd(), newListCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

func run(file string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Options{Debug: debug, Path: logPath})
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer log.Close()

	store, err := history.NewStore()
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	opts := viewstate.Options{
		Registry: registry.New(cfg.Path()),
		Opener: db.NewOpener(db.Options{
			RowLimit: cfg.RowLimit,
			LogLimit: cfg.LogLimit,
			Log:      store,
		}),
		Layout: layout.New(layout.Bounds{
			Sidebar: cfg.Layout.SidebarWidth,
			Min:     cfg.Layout.MinSidebar,
			Max:     cfg.Layout.MaxSidebar,
		}, layout.TerminalViewport()),
		Logger:       log.Logger,
		PollInterval: time.Duration(cfg.LogPollSeconds) * time.Second,
		QueryTimeout: time.Duration(cfg.QueryTimeoutSeconds) * time.Second,
	}
	if cfg.WatchFiles {
		opts.Watch = func(path string) (viewstate.FileWatcher, error) {
			w, err := watch.New(path, log.Logger)
			if err != nil {
				return nil, err
			}
			return w, nil
		}
	}
	coord := viewstate.New(opts)
	defer coord.Teardown()

	// Both are held until the stored connections are known
	switch {
	case file != "":
		coord.Update(viewstate.OpenFileMsg{Path: file})
	case cfg.DefaultConnection != "":
		if conn, err := cfg.GetConnection(cfg.DefaultConnection); err == nil {
			coord.Update(viewstate.OpenFileMsg{Path: conn.Path})
		} else {
			log.Warn("default connection not found", "name", cfg.DefaultConnection)
		}
	}

	log.Info("starting", "version", version, "config", cfg.Path(), "file", file)
	p := tea.NewProgram(ui.NewModel(cfg, coord, log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
