package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/edcost/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar. info sits on the right edge.
func RenderStatusBar(width int, info string, busy bool) string {
	t := theme.Active

	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	busyStyle := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface)

	left := textStyle.Render(" ") +
		keyStyle.Render("?") + textStyle.Render(" help  ") +
		keyStyle.Render("q") + textStyle.Render(" quit")
	if busy {
		left += busyStyle.Render("  computing…")
	}
	right := textStyle.Render(info + " ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}
	fill := lipgloss.NewStyle().Background(t.Surface).Render(strings.Repeat(" ", padding))

	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(left + fill + right)
}
