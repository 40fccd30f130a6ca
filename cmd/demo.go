package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/marcus/tdialog/internal/demo"
)

var errNotTerminal = errors.New("demo needs an interactive terminal")

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the interactive dialog demo",
	Long: `Open a small file list and drive every built-in dialog against it:
delete (confirm), rename (confirm, then an async prompt that rejects
existing names), jump (fuzzy select) and new (huh form).`,
	GroupID: "core",
	RunE:    runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().Duration("latency", 400*time.Millisecond, "Simulated backend latency for async submits")
	demoCmd.Flags().Bool("no-alt-screen", false, "Render inline instead of using the alternate screen")
}

func runDemo(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNotTerminal
	}

	latency, _ := cmd.Flags().GetDuration("latency")
	inline, _ := cmd.Flags().GetBool("no-alt-screen")

	model := demo.New(demo.Options{
		GraceDelay:    cfg.Dialog.GraceDelay,
		Width:         cfg.Dialog.Width,
		MarkdownStyle: cfg.UI.MarkdownStyle,
		Logger:        logger,
		Latency:       latency,
	})
	defer func() {
		if err := model.Close(); err != nil {
			logger.Error("close provider", "err", err)
		}
	}()

	var opts []tea.ProgramOption
	if !inline {
		opts = append(opts, tea.WithAltScreen())
	}
	logger.Info("demo started", "provider", model.Provider().ID(), "grace_delay", cfg.Dialog.GraceDelay)
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		return fmt.Errorf("run demo: %w", err)
	}
	return nil
}
