package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/marcus/tdialog/internal/config"
	"github.com/marcus/tdialog/internal/logging"
)

var (
	version    string
	configPath string

	// cfg and logger are populated by the root PersistentPreRunE.
	cfg       config.Config
	logger    = slog.Default()
	closeLogs = func() error { return nil }
)

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "tdialog",
	Short: "Promise-based dialogs for terminal apps",
	Long: `tdialog - open modal dialogs from anywhere in a bubbletea program and
await their outcome.

Each dialog resolves exactly once with a success value or a cancellation,
and lingers briefly after resolving so it can animate out.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLogs()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "core", Title: "Commands:"},
		&cobra.Group{ID: "system", Title: "System Commands:"},
	)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default "+config.DefaultPath()+")")
	flags.Duration("grace-delay", 0, "How long resolved dialogs stay on screen")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-file", "", "Write logs to this file")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return err
	}
	cfg = c

	l, closeFn, err := logging.Setup(cfg.Log)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	logger = l.With("version", version)
	closeLogs = closeFn
	slog.SetDefault(logger)
	return nil
}
