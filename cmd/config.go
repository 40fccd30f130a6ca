package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marcus/tdialog/internal/config"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Inspect and create the config file",
	GroupID: "system",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-20s  %s\n", "dialog.grace_delay", cfg.Dialog.GraceDelay)
		fmt.Fprintf(out, "%-20s  %d\n", "dialog.width", cfg.Dialog.Width)
		fmt.Fprintf(out, "%-20s  %s\n", "log.level", cfg.Log.Level)
		fmt.Fprintf(out, "%-20s  %s\n", "log.format", cfg.Log.Format)
		fmt.Fprintf(out, "%-20s  %s\n", "log.file", cfg.Log.File)
		fmt.Fprintf(out, "%-20s  %s\n", "ui.markdown_style", cfg.UI.MarkdownStyle)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the resolved configuration to the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config: %w", err)
		}

		if err := config.Save(path, cfg); err != nil {
			return err
		}
		logger.Info("config written", "path", path)
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}
