package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/edcost/internal/cli"
	"github.com/theirongolddev/edcost/internal/model"
	"github.com/theirongolddev/edcost/internal/tui/components"
	"github.com/theirongolddev/edcost/internal/tui/theme"
)

// countAbove counts rows whose annual total exceeds target.
func countAbove[R model.CostRow](rows []R, target float64) int {
	n := 0
	for _, r := range rows {
		if r.Normalized().TotalAnnualUSD > target {
			n++
		}
	}
	return n
}

// costTone is good when a cost went down.
func costTone(after, before float64) components.Tone {
	switch {
	case after < before:
		return components.ToneGood
	case after > before:
		return components.ToneBad
	default:
		return components.ToneNeutral
	}
}

func (a App) renderScenarioTab(cw int) string {
	t := theme.Active
	if a.result == nil {
		return ""
	}
	base := a.base.Summary
	adj := a.result.Summary
	p := a.result.Params
	var b strings.Builder

	// Levers
	inner := components.CardInnerWidth(cw)
	barW := max(10, min(50, inner-30))
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	text := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)

	var levers strings.Builder
	levers.WriteString(components.LeverBar("Tuition cut", p.Levers.TuitionCutPct, 16, barW))
	levers.WriteString(dim.Render("   t / T"))
	levers.WriteString("\n")
	levers.WriteString(components.LeverBar("Living subsidy", p.Levers.LivingSubsidyPct, 16, barW))
	levers.WriteString(dim.Render("   l / L"))
	levers.WriteString("\n")
	levers.WriteString(lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(fmt.Sprintf("%-16s ", "Target")))
	levers.WriteString(text.Render(cli.FormatCost(p.TargetAnnualUSD)))
	levers.WriteString(dim.Render("   + / -    0 resets levers"))
	b.WriteString(components.ContentCard("Policy Levers", levers.String(), cw))
	b.WriteString("\n")

	// Base vs adjusted
	baseAbove := countAbove(a.base.Table, p.TargetAnnualUSD)
	adjAbove := countAbove(a.result.Adjusted, p.TargetAnnualUSD)
	share := 0.0
	if len(a.result.Adjusted) > 0 {
		share = float64(adjAbove) / float64(len(a.result.Adjusted))
	}
	b.WriteString(components.MetricCardRow([]components.Metric{
		{
			Label: "Median annual cost",
			Value: cli.FormatCost(adj.TotalAnnual.Median),
			Delta: cli.FormatDelta(adj.TotalAnnual.Median, base.TotalAnnual.Median),
			Tone:  costTone(adj.TotalAnnual.Median, base.TotalAnnual.Median),
		},
		{
			Label: "Mean annual cost",
			Value: cli.FormatCost(adj.TotalAnnual.Mean),
			Delta: cli.FormatDelta(adj.TotalAnnual.Mean, base.TotalAnnual.Mean),
			Tone:  costTone(adj.TotalAnnual.Mean, base.TotalAnnual.Mean),
		},
		{
			Label: "Median affordability",
			Value: cli.FormatIndex(adj.Affordability.Median),
			Delta: fmt.Sprintf("was %s", cli.FormatIndex(base.Affordability.Median)),
			Tone:  costTone(base.Affordability.Median, adj.Affordability.Median),
		},
		{
			Label: "Above target",
			Value: fmt.Sprintf("%d (%s)", adjAbove, cli.FormatPercent(share)),
			Delta: fmt.Sprintf("%+d programs", adjAbove-baseAbove),
			Tone:  costTone(float64(adjAbove), float64(baseAbove)),
		},
	}, cw))
	b.WriteString("\n")

	// Per-level comparison
	header := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	good := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)

	baseByLevel := make(map[model.Level]model.LevelInsight, len(base.ByLevel))
	for _, l := range base.ByLevel {
		baseByLevel[l.Level] = l
	}

	var levels strings.Builder
	levels.WriteString(header.Render(fmt.Sprintf("%-10s %9s %14s %14s %12s %12s",
		"Level", "Programs", "Base median", "Adj. median", "Change", "Adj. afford.")))
	for _, l := range adj.ByLevel {
		bl := baseByLevel[l.Level]
		levels.WriteString("\n")
		levels.WriteString(row.Render(fmt.Sprintf("%-10s %9d %14s %14s ",
			l.Level, l.Programs, cli.FormatCost(bl.MedianTotalAnnualUSD), cli.FormatCost(l.MedianTotalAnnualUSD))))
		levels.WriteString(good.Render(fmt.Sprintf("%12s", cli.FormatDelta(l.MedianTotalAnnualUSD, bl.MedianTotalAnnualUSD))))
		levels.WriteString(row.Render(fmt.Sprintf(" %12s", cli.FormatIndex(l.MeanAffordability))))
	}
	b.WriteString(components.ContentCard("By Level", levels.String(), cw))
	return b.String()
}
