// Package tui provides the interactive Bubble Tea dashboard for edcost.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/edcost/internal/cli"
	"github.com/theirongolddev/edcost/internal/config"
	"github.com/theirongolddev/edcost/internal/model"
	"github.com/theirongolddev/edcost/internal/pipeline"
	"github.com/theirongolddev/edcost/internal/policy"
	"github.com/theirongolddev/edcost/internal/store"
	"github.com/theirongolddev/edcost/internal/tui/components"
	"github.com/theirongolddev/edcost/internal/tui/theme"
)

// Options configures the dashboard's data source and starting scenario.
type Options struct {
	DataPath string
	Filter   pipeline.Filter
	UseCache bool
	Defaults policy.Params
	Engine   policy.Options
}

// DataLoadedMsg is sent when the data pipeline finishes.
type DataLoadedMsg struct {
	Dataset  *model.Dataset
	LoadTime time.Duration
	Err      error
}

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// ComputedMsg carries engine output for one parameter set.
type ComputedMsg struct {
	Params policy.Params
	Base   *policy.Snapshot
	Result *policy.Result
	Err    error
}

// App is the root Bubble Tea model.
type App struct {
	opts Options

	// Data
	engine   *policy.Engine
	dataset  *model.Dataset
	loaded   bool
	loadErr  error
	loadTime time.Duration

	// Scenario state
	params     policy.Params
	base       *policy.Snapshot
	result     *policy.Result
	computing  bool
	computeErr error

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	progState programsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals SetupValues
	needSetup bool

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	scrollOverhead    = 10 // approximate header + status bar height for half-page calc
	minHalfPageScroll = 1
	minContentHeight  = 5

	tuitionStep = 5
	subsidyStep = 5
	targetStep  = 1000
)

const (
	tabOverview = iota
	tabPrograms
	tabScenario
	tabGaps
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	if opts.Defaults == (policy.Params{}) {
		opts.Defaults = policy.DefaultParams()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		opts:      opts,
		params:    opts.Defaults,
		needSetup: !config.Exists(),
		spinner:   sp,
		loadSub:   make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.opts, a.loadSub),
		a.spinner.Tick,
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		if msg.Err != nil {
			a.loadErr = msg.Err
			return a, nil
		}
		engine, err := policy.NewEngine(msg.Dataset, a.opts.Engine)
		if err != nil {
			a.loadErr = err
			return a, nil
		}
		a.engine = engine
		a.dataset = msg.Dataset
		a.computing = true
		cmds := []tea.Cmd{computeCmd(a.engine, a.params)}

		if a.needSetup {
			a.setupVals = setupValuesFrom(a.params, theme.Active.Name)
			a.setupForm = NewSetupForm(&a.setupVals, a.dataset.Len(), a.opts.DataPath)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			cmds = append(cmds, a.setupForm.Init())
		}
		return a, tea.Batch(cmds...)

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case ComputedMsg:
		// A newer lever change is already in flight.
		if msg.Params != a.params {
			return a, nil
		}
		a.computing = false
		a.computeErr = msg.Err
		if msg.Err == nil {
			a.base = msg.Base
			a.result = msg.Result
			a.rankPrograms()
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !a.ready() || a.showHelp {
		return a, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == tabPrograms && !a.progState.searching {
			a.progState.moveCursor(-1, len(a.visiblePrograms()))
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == tabPrograms && !a.progState.searching {
			a.progState.moveCursor(1, len(a.visiblePrograms()))
		}
	case tea.MouseButtonLeft:
		if msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}
	if a.loadErr != nil {
		if key == "q" || key == "esc" {
			return a, tea.Quit
		}
		return a, nil
	}

	// First-run setup wizard intercepts all keys
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	// Programs search mode intercepts all keys when active
	if a.activeTab == tabPrograms && a.progState.searching {
		return a.updateProgramsSearch(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	if a.activeTab == tabPrograms {
		if next, cmd, handled := a.updateProgramsKey(key); handled {
			return next, cmd
		}
	}

	if p, ok := adjustParams(a.params, key); ok {
		return a.setParams(p)
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if len(msg.Runes) == 1 {
			if tab := components.TabIdxByKey(msg.Runes[0]); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

// adjustParams applies one lever key. ok is false when key is not a lever
// key or the lever is already at its bound.
func adjustParams(p policy.Params, key string) (policy.Params, bool) {
	next := p
	switch key {
	case "t":
		next.Levers.TuitionCutPct = clampPct(p.Levers.TuitionCutPct + tuitionStep)
	case "T":
		next.Levers.TuitionCutPct = clampPct(p.Levers.TuitionCutPct - tuitionStep)
	case "l":
		next.Levers.LivingSubsidyPct = clampPct(p.Levers.LivingSubsidyPct + subsidyStep)
	case "L":
		next.Levers.LivingSubsidyPct = clampPct(p.Levers.LivingSubsidyPct - subsidyStep)
	case "+", "=":
		next.TargetAnnualUSD = p.TargetAnnualUSD + targetStep
	case "-", "_":
		next.TargetAnnualUSD = max(0, p.TargetAnnualUSD-targetStep)
	case "0":
		next.Levers = model.Levers{}
	default:
		return p, false
	}
	return next, next != p
}

func clampPct(v float64) float64 {
	return min(100, max(0, v))
}

func (a App) setParams(p policy.Params) (tea.Model, tea.Cmd) {
	a.params = p
	if a.engine == nil {
		return a, nil
	}
	a.computing = true
	return a, computeCmd(a.engine, p)
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		p, err := a.setupVals.Apply(a.params)
		a.needSetup = false
		a.setupForm = nil
		if err != nil {
			a.computeErr = err
			return a, nil
		}
		_ = SaveSetup(a.setupVals)
		theme.SetActive(a.setupVals.Theme)
		return a.setParams(p)
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) ready() bool {
	return a.loaded && a.loadErr == nil && !(a.needSetup && a.setupForm != nil)
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.loadErr != nil {
		return a.viewLoadError()
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  edcost needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ edcost"))
	b.WriteString(subtitleStyle.Render(" · Education Cost Policy"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := max(20, min(40, a.width-30))
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Parsing tables\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
		b.WriteString(subtitleStyle.Render(" files"))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Discovering tables..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewLoadError() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Red).
		Background(t.Surface).
		Padding(1, 3).
		Width(min(a.width-4, 90))
	titleStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	body := titleStyle.Render("Could not load programs") + "\n\n" +
		textStyle.Render(a.loadErr.Error()) + "\n\n" +
		dimStyle.Render("Press q to quit")

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"o p s g", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move through programs"},
			{"^d ^u", "Half-page scroll"},
		}},
		{"Scenario", []struct{ key, desc string }{
			{"t T", "Tuition cut +5 / -5 pts"},
			{"l L", "Living subsidy +5 / -5 pts"},
			{"+ -", "Target +$1,000 / -$1,000"},
			{"0", "Reset levers"},
		}},
		{"Programs", []struct{ key, desc string }{
			{"/", "Search"},
			{"c", "Cycle sort"},
			{"Esc", "Clear search"},
		}},
		{"General", []struct{ key, desc string }{
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

// leverPill summarizes the active scenario under the tab bar.
func (a App) leverPill() string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	sep := dim.Render(" │ ")

	p := a.params
	s := dim.Render(" baseline ") + accent.Render(cli.FormatCost(p.NYBaselineUSD)) +
		sep + dim.Render("tuition cut ") + accent.Render(cli.FormatLever(p.Levers.TuitionCutPct)) +
		sep + dim.Render("subsidy ") + accent.Render(cli.FormatLever(p.Levers.LivingSubsidyPct)) +
		sep + dim.Render("target ") + accent.Render(cli.FormatCost(p.TargetAnnualUSD))

	f := a.opts.Filter
	for _, v := range []string{f.Country, f.Level, f.Query} {
		if v != "" {
			s += sep + accent.Render(v)
		}
	}
	return s + dim.Render(" ")
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(a.leverPill())

	info := fmt.Sprintf("%s programs · loaded in %.1fs", cli.FormatNumber(int64(a.dataset.Len())), a.loadTime.Seconds())
	if a.engine != nil {
		st := a.engine.Stats()
		info += fmt.Sprintf(" · memo %d/%d", st.Hits, st.Hits+st.Misses)
	}
	statusBar := components.RenderStatusBar(w, info, a.computing)

	contentH := max(minContentHeight, h-lipgloss.Height(header)-lipgloss.Height(statusBar))

	var content string
	switch {
	case a.computeErr != nil:
		content = components.ContentCard("Error",
			lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Render(a.computeErr.Error()), cw)
	case a.base == nil:
		content = components.ContentCard("", lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render("Computing…"), cw)
	case len(a.base.Table) == 0:
		content = components.ContentCard("", lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render("No programs found."), cw)
	default:
		switch a.activeTab {
		case tabOverview:
			content = a.renderOverviewTab(cw)
		case tabPrograms:
			content = a.renderProgramsTab(cw, contentH)
		case tabScenario:
			content = a.renderScenarioTab(cw)
		case tabGaps:
			content = a.renderGapsTab(cw, contentH)
		}
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

// loadDataCmd starts the data loading pipeline in a background goroutine.
// It streams ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(opts Options, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send so workers aren't stalled; the next update catches up.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			ds, err := loadDataset(opts, progressFn)
			if err == nil {
				ds = opts.Filter.Apply(ds)
			}
			sub <- DataLoadedMsg{Dataset: ds, LoadTime: time.Since(start), Err: err}
		}()

		// Block until the first message (either ProgressMsg or DataLoadedMsg)
		return <-sub
	}
}

// loadDataset prefers the parse cache and falls back to a full parse when
// the cache is unavailable.
func loadDataset(opts Options, progressFn pipeline.ProgressFunc) (*model.Dataset, error) {
	if opts.UseCache {
		if cache, err := store.Open(pipeline.CachePath()); err == nil {
			cr, loadErr := pipeline.LoadWithCache(opts.DataPath, cache, progressFn)
			_ = cache.Close()
			if loadErr == nil {
				return cr.Dataset, nil
			}
		}
	}
	result, err := pipeline.Load(opts.DataPath, progressFn)
	if err != nil {
		return nil, err
	}
	return result.Dataset, nil
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// computeCmd runs the engine off the update loop.
func computeCmd(engine *policy.Engine, p policy.Params) tea.Cmd {
	return func() tea.Msg {
		base, err := engine.Snapshot(p.NYBaselineUSD)
		if err != nil {
			return ComputedMsg{Params: p, Err: err}
		}
		res, err := engine.Scenario(p)
		return ComputedMsg{Params: p, Base: base, Result: res, Err: err}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
