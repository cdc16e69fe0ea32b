package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/edcost/internal/cli"
	"github.com/theirongolddev/edcost/internal/tui/components"
	"github.com/theirongolddev/edcost/internal/tui/theme"
)

func (a App) renderGapsTab(cw, h int) string {
	t := theme.Active
	if a.result == nil {
		return ""
	}
	gaps := a.result.Gaps

	header := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	bad := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
	good := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	// Program gap table
	inner := components.CardInnerWidth(cw)
	nameW := max(12, inner-10-12-12-3)
	var progs strings.Builder
	if len(gaps.Programs) == 0 {
		progs.WriteString(good.Render("Every program is within the target."))
	} else {
		progs.WriteString(header.Render(fmt.Sprintf("%-*s %-10s %12s %12s", nameW, "Program", "Level", "Annual", "Over target")))
		for _, g := range gaps.Programs {
			label := g.Institution + " (" + g.Country + ")"
			progs.WriteString("\n")
			progs.WriteString(row.Render(fmt.Sprintf("%-*s %-10s %12s ",
				nameW, cli.Truncate(label, nameW), g.Level, cli.FormatCost(g.TotalAnnualUSD))))
			progs.WriteString(bad.Render(fmt.Sprintf("%12s", cli.FormatSignedCost(g.GapToTargetUSD))))
		}
	}
	title := fmt.Sprintf("Above %s (top %d)", cli.FormatCost(gaps.TargetAnnualUSD), a.engine.TopN())
	progCard := components.ContentCard(title, progs.String(), cw)

	// Aggregate table, trimmed to what fits below the program table
	remaining := h - lipgloss.Height(progCard) - 4
	aggRows := gaps.Aggregate
	if remaining < len(aggRows) {
		aggRows = aggRows[:max(0, remaining)]
	}

	shareW := 12
	countryW := max(10, inner-10-7-12-12-(shareW+5)-10-6)
	var agg strings.Builder
	agg.WriteString(header.Render(fmt.Sprintf("%-*s %-10s %7s %12s %12s %-*s %10s",
		countryW, "Country", "Level", "Progs", "Mean total", "Mean gap", shareW+5, "Above target", "Tuition")))
	for _, g := range aggRows {
		gapStyle := good
		if g.MeanGapToTargetUSD > 0 {
			gapStyle = bad
		}
		agg.WriteString("\n")
		agg.WriteString(row.Render(fmt.Sprintf("%-*s %-10s %7d %12s ",
			countryW, cli.Truncate(g.Country, countryW), g.Level, g.Programs, cli.FormatCost(g.MeanTotalAnnualUSD))))
		agg.WriteString(gapStyle.Render(fmt.Sprintf("%12s", cli.FormatSignedCost(g.MeanGapToTargetUSD))))
		agg.WriteString(row.Render(" "))
		agg.WriteString(components.ShareBar(g.ShareAboveTarget, shareW))
		agg.WriteString(row.Render(fmt.Sprintf(" %10s", cli.FormatPercent(g.TuitionShare))))
	}
	if hidden := len(gaps.Aggregate) - len(aggRows); hidden > 0 {
		agg.WriteString("\n")
		agg.WriteString(muted.Render(fmt.Sprintf("… %d more groups (edcost scenario shows all)", hidden)))
	}
	aggCard := components.ContentCard("By Country & Level", agg.String(), cw)

	return progCard + "\n" + aggCard
}
