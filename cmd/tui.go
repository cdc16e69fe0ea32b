package cmd

import (
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/edcost/internal/logging"
	"github.com/theirongolddev/edcost/internal/tui"
	"github.com/theirongolddev/edcost/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	// Log lines would tear the alt screen.
	slog.SetDefault(logging.New(io.Discard, slog.LevelError, "text"))

	app := tui.NewApp(tui.Options{
		DataPath: flagData,
		Filter:   currentFilter(),
		UseCache: !flagNoCache,
		Defaults: baseParams(),
		Engine:   engineOptions(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
