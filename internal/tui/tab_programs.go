package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/edcost/internal/cli"
	"github.com/theirongolddev/edcost/internal/model"
	"github.com/theirongolddev/edcost/internal/policy"
	"github.com/theirongolddev/edcost/internal/tui/components"
	"github.com/theirongolddev/edcost/internal/tui/theme"
)

// programSort is the ordering of the programs list.
type programSort int

const (
	sortByTotal programSort = iota // cheapest first
	sortByAffordability
	sortByPolicyGap
	programSortCount
)

func (s programSort) String() string {
	switch s {
	case sortByAffordability:
		return "affordability"
	case sortByPolicyGap:
		return "policy gap"
	default:
		return "total"
	}
}

// programsState holds the programs tab state.
type programsState struct {
	sortBy programSort
	ranked []model.NormalizedRecord

	cursor int
	offset int

	searching   bool
	searchInput textinput.Model
	searchQuery string
}

func (s *programsState) moveCursor(delta, n int) {
	s.cursor = max(0, min(n-1, s.cursor+delta))
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "country, city, institution or program"
	ti.Prompt = "/ "
	ti.CharLimit = 80
	ti.Width = 40
	return ti
}

// rankPrograms re-sorts the base table after a recompute or sort change.
func (a *App) rankPrograms() {
	if a.base == nil {
		a.progState.ranked = nil
		return
	}
	switch a.progState.sortBy {
	case sortByAffordability:
		a.progState.ranked = policy.RankByAffordability(a.base.Table)
	case sortByPolicyGap:
		a.progState.ranked = policy.RankByPolicyGap(a.base.Table)
	default:
		a.progState.ranked = policy.RankByTotal(a.base.Table)
	}
	a.progState.cursor = max(0, min(a.progState.cursor, len(a.visiblePrograms())-1))
}

// visiblePrograms applies the search query to the ranked list.
func (a App) visiblePrograms() []model.NormalizedRecord {
	q := strings.ToLower(strings.TrimSpace(a.progState.searchQuery))
	if q == "" {
		return a.progState.ranked
	}
	var out []model.NormalizedRecord
	for _, r := range a.progState.ranked {
		if matchesQuery(r.Program, q) {
			out = append(out, r)
		}
	}
	return out
}

func matchesQuery(p *model.Program, lowerQuery string) bool {
	for _, field := range []string{p.Country, p.City, p.Institution, p.Program, string(p.Level)} {
		if strings.Contains(strings.ToLower(field), lowerQuery) {
			return true
		}
	}
	return false
}

func (a App) updateProgramsKey(key string) (tea.Model, tea.Cmd, bool) {
	ps := &a.progState
	n := len(a.visiblePrograms())
	halfPage := max(minHalfPageScroll, (a.height-scrollOverhead)/2)

	switch key {
	case "/":
		ps.searching = true
		ps.searchInput = newSearchInput()
		ps.searchInput.SetValue(ps.searchQuery)
		ps.searchInput.Focus()
		return a, textinput.Blink, true
	case "esc":
		ps.searchQuery = ""
		ps.cursor, ps.offset = 0, 0
	case "j", "down":
		ps.moveCursor(1, n)
	case "k", "up":
		ps.moveCursor(-1, n)
	case "home":
		ps.cursor, ps.offset = 0, 0
	case "end":
		ps.cursor = max(0, n-1)
	case "ctrl+d":
		ps.moveCursor(halfPage, n)
	case "ctrl+u":
		ps.moveCursor(-halfPage, n)
	case "c":
		ps.sortBy = (ps.sortBy + 1) % programSortCount
		ps.cursor, ps.offset = 0, 0
		a.rankPrograms()
	default:
		return a, nil, false
	}
	return a, nil, true
}

// updateProgramsSearch handles key events while in search mode.
func (a App) updateProgramsSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.progState.searchQuery = strings.TrimSpace(a.progState.searchInput.Value())
		a.progState.searching = false
		a.progState.cursor, a.progState.offset = 0, 0
		return a, nil
	case "esc":
		a.progState.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.progState.searchInput, cmd = a.progState.searchInput.Update(msg)
	return a, cmd
}

func (a App) renderProgramsTab(cw, h int) string {
	t := theme.Active
	ps := a.progState
	rows := a.visiblePrograms()

	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var top string
	if ps.searching {
		top = ps.searchInput.View() + "\n"
	} else if ps.searchQuery != "" {
		top = muted.Render(fmt.Sprintf("matching %q · esc to clear", ps.searchQuery)) + "\n"
	}

	if len(rows) == 0 {
		return components.ContentCard("Programs", top+muted.Render("No programs match."), cw)
	}

	leftW := cw
	var rightW int
	if !a.isCompactLayout() {
		leftW = cw * 3 / 5
		rightW = cw - leftW
	}

	inner := components.CardInnerWidth(leftW)
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)

	numW := 10
	levelW := 9
	nameW := max(10, inner-3*numW-levelW-4)

	visible := max(5, h-6) // card border (2) + title (1) + header (1) + hint (2)
	offset := ps.offset
	if ps.cursor < offset {
		offset = ps.cursor
	}
	if ps.cursor >= offset+visible {
		offset = ps.cursor - visible + 1
	}
	end := min(len(rows), offset+visible)

	var body strings.Builder
	body.WriteString(top)
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-*s %*s %*s %*s",
		nameW, "Program", levelW, "Level", numW, "Annual", numW, "Afford.", numW, "Gap")))
	body.WriteString("\n")
	for i := offset; i < end; i++ {
		r := rows[i]
		line := fmt.Sprintf("%-*s %-*s %*s %*s %*s",
			nameW, cli.Truncate(r.Program.Label(), nameW),
			levelW, string(r.Program.Level),
			numW, cli.FormatCost(r.TotalAnnualUSD),
			numW, cli.FormatIndex(r.AffordabilityIndex),
			numW, cli.FormatSignedCost(r.PolicyGapUSD))
		if i == ps.cursor {
			body.WriteString(selectedStyle.Render(line))
		} else {
			body.WriteString(rowStyle.Render(line))
		}
		body.WriteString("\n")
	}
	body.WriteString(muted.Render(fmt.Sprintf("%d-%d of %d · sort: %s · [c] cycle  [/] search",
		offset+1, end, len(rows), ps.sortBy)))

	list := components.ContentCard("Programs", body.String(), leftW)
	if rightW == 0 {
		return list
	}

	cursor := min(ps.cursor, len(rows)-1)
	detail := components.ContentCard(rows[cursor].Program.Program,
		a.renderProgramDetail(rows[cursor], components.CardInnerWidth(rightW)), rightW)
	return components.CardRow([]string{list, detail})
}

func (a App) renderProgramDetail(r model.NormalizedRecord, w int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	section := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	p := r.Program
	kv := func(k, v string) string {
		return label.Render(fmt.Sprintf("%-18s", k)) + value.Render(v) + "\n"
	}

	var b strings.Builder
	b.WriteString(kv("Institution", cli.Truncate(p.Institution, w-18)))
	b.WriteString(kv("Location", cli.Truncate(p.City+", "+p.Country, w-18)))
	b.WriteString(kv("Level", string(p.Level)))
	b.WriteString(kv("Duration", cli.FormatYears(p.DurationYears)))
	b.WriteString("\n")
	b.WriteString(section.Render("Annual cost"))
	b.WriteString("\n")
	b.WriteString(kv("Tuition", cli.FormatCost(r.TuitionAnnualUSD)))
	b.WriteString(kv("Visa + insurance", cli.FormatCost(p.VisaFeeUSD+p.InsuranceUSD)))
	b.WriteString(kv("Rent", cli.FormatCost(r.RentAnnualUSD)))
	b.WriteString(kv("Living (indexed)", cli.FormatCost(r.LivingIndexAnnualUSD)))
	b.WriteString(kv("Direct", cli.FormatCost(r.DirectAnnualUSD)))
	b.WriteString(kv("Indirect", cli.FormatCost(r.IndirectAnnualUSD)))
	b.WriteString(kv("Total", cli.FormatCost(r.TotalAnnualUSD)))
	b.WriteString("\n")
	b.WriteString(kv("Whole program", cli.FormatCost(policy.ProgramCostUSD(r))))
	b.WriteString(kv("Affordability", cli.FormatIndex(r.AffordabilityIndex)))
	b.WriteString(kv("vs level median", cli.FormatSignedCost(r.PolicyGapUSD)))

	if r.TotalAnnualUSD > 0 {
		b.WriteString("\n")
		b.WriteString(label.Render("direct "))
		b.WriteString(components.ShareBar(r.DirectAnnualUSD/r.TotalAnnualUSD, max(8, w-14)))
	}
	return b.String()
}
