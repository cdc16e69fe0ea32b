package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/edcost/internal/cli"
	"github.com/theirongolddev/edcost/internal/policy"
	"github.com/theirongolddev/edcost/internal/tui/components"
	"github.com/theirongolddev/edcost/internal/tui/theme"
)

const (
	overviewCountries  = 8
	overviewAffordable = 6
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	s := a.base.Summary
	var b strings.Builder

	// Row 1: metric cards
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Programs", Value: cli.FormatNumber(int64(s.Programs)), Delta: fmt.Sprintf("%d countries", len(s.ByCountry))},
		{Label: "Median annual cost", Value: cli.FormatCost(s.TotalAnnual.Median), Delta: "mean " + cli.FormatCost(s.TotalAnnual.Mean)},
		{Label: "Affordability", Value: cli.FormatIndex(s.Affordability.Median), Delta: "mean " + cli.FormatIndex(s.Affordability.Mean)},
		{Label: "Range", Value: cli.FormatCost(s.TotalAnnual.Min), Delta: "to " + cli.FormatCost(s.TotalAnnual.Max)},
	}, cw))
	b.WriteString("\n")

	// Row 2: level medians + priciest countries
	halves := components.LayoutRow(cw, 2)
	if a.isCompactLayout() {
		halves = []int{cw, cw}
	}

	levelVals := make([]float64, len(s.ByLevel))
	levelLabels := make([]string, len(s.ByLevel))
	for i, l := range s.ByLevel {
		levelVals[i] = l.MedianTotalAnnualUSD
		levelLabels[i] = string(l.Level)
	}
	levelCard := components.ContentCard("Median Annual Cost by Level",
		components.BarChart(levelVals, levelLabels, t.Blue, components.CardInnerWidth(halves[0]), 8),
		halves[0])

	n := min(overviewCountries, len(s.ByCountry))
	countryRows := make([]components.HBar, n)
	for i, c := range s.ByCountry[:n] {
		countryRows[i] = components.HBar{Label: c.Country, Value: c.MeanTotalAnnualUSD}
	}
	countryCard := components.ContentCard("Highest Mean Annual Cost",
		components.HBars(countryRows, t.Orange, components.CardInnerWidth(halves[1])),
		halves[1])

	b.WriteString(a.layoutPair(levelCard, countryCard))
	b.WriteString("\n")

	// Row 3: cost components + most affordable
	comps := a.base.Charts.Components
	compRows := make([]components.HBar, len(comps))
	for i, c := range comps {
		compRows[i] = components.HBar{
			Label: c.Label,
			Value: c.TotalAnnualUSD,
			Text:  fmt.Sprintf("%s  %2.0f%% direct", cli.FormatCost(c.TotalAnnualUSD), c.DirectShare*100),
		}
	}
	compCard := components.ContentCard("Cost Components, Top Programs",
		components.HBars(compRows, t.Magenta, components.CardInnerWidth(halves[0])),
		halves[0])

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	goodStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	innerW := components.CardInnerWidth(halves[1])
	var cheap strings.Builder
	ranked := policy.RankByAffordability(a.base.Table)
	for i, r := range ranked[:min(overviewAffordable, len(ranked))] {
		if i > 0 {
			cheap.WriteString("\n")
		}
		idx := cli.FormatIndex(r.AffordabilityIndex)
		cost := cli.FormatCost(r.TotalAnnualUSD)
		nameW := max(8, innerW-len(idx)-len(cost)-3)
		cheap.WriteString(nameStyle.Render(fmt.Sprintf("%-*s ", nameW, cli.Truncate(r.Program.Label(), nameW))))
		cheap.WriteString(nameStyle.Render(fmt.Sprintf("%s ", cost)))
		cheap.WriteString(goodStyle.Render(idx))
	}
	cheapCard := components.ContentCard("Most Affordable", cheap.String(), halves[1])

	b.WriteString(a.layoutPair(compCard, cheapCard))
	return b.String()
}

// layoutPair stacks cards in compact layouts and places them side by side otherwise.
func (a App) layoutPair(left, right string) string {
	if a.isCompactLayout() {
		return left + "\n" + right
	}
	return components.CardRow([]string{left, right})
}
