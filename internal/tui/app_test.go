package tui

import (
	"errors"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/edcost/internal/model"
	"github.com/theirongolddev/edcost/internal/policy"
)

func init() {
	// Plain output keeps rendered text searchable.
	lipgloss.SetColorProfile(termenv.Ascii)
}

func testDataset() *model.Dataset {
	return &model.Dataset{ID: "tui-test", Programs: []model.Program{
		{
			Country: "Germany", City: "Munich", Institution: "TU Munich", Program: "Computer Science",
			Level: model.LevelMaster, DurationYears: 2, TuitionUSD: 20000, RentUSD: 1000,
			VisaFeeUSD: 500, InsuranceUSD: 800, LivingCostIndex: 80, ExchangeRate: 1,
		},
		{
			Country: "India", City: "Pune", Institution: "Pune University", Program: "Economics",
			Level: model.LevelMaster, DurationYears: 2, TuitionUSD: 3000, RentUSD: 300,
			VisaFeeUSD: 100, InsuranceUSD: 200, LivingCostIndex: 30, ExchangeRate: 1,
		},
		{
			Country: "USA", City: "Boston", Institution: "Boston College", Program: "Biology",
			Level: model.LevelBachelor, DurationYears: 4, TuitionUSD: 40000, RentUSD: 2000,
			VisaFeeUSD: 160, InsuranceUSD: 1500, LivingCostIndex: 100, ExchangeRate: 1,
		},
	}}
}

// loadedApp returns an app that has loaded ds and computed its first scenario.
func loadedApp(t *testing.T, ds *model.Dataset) App {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	a := NewApp(Options{})
	a.needSetup = false
	a.width, a.height = 140, 60

	m, _ := a.Update(DataLoadedMsg{Dataset: ds})
	a = m.(App)
	if a.loadErr != nil {
		t.Fatalf("load: %v", a.loadErr)
	}
	m, _ = a.Update(computeCmd(a.engine, a.params)())
	return m.(App)
}

func press(t *testing.T, a App, keys ...string) (App, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var m tea.Model
		m, cmd = a.Update(msg)
		a = m.(App)
	}
	return a, cmd
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	names := []string{"Overview", "Programs", "Scenario", "Gaps"}
	for active := range names {
		a := App{activeTab: active}
		pos := 0
		for i, name := range names {
			w := len(name) + 2 // one column of padding each side
			x := pos + w/2
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w + 1 // separator
		}
		if got := a.tabAtX(pos + 5); got != -1 {
			t.Errorf("x past the last tab = %d, want -1", got)
		}
	}
}

func TestAdjustParams(t *testing.T) {
	base := policy.DefaultParams()
	cut := base
	cut.Levers.TuitionCutPct = 100

	tests := []struct {
		name    string
		start   policy.Params
		key     string
		wantOK  bool
		tuition float64
		subsidy float64
		target  float64
	}{
		{"tuition up", base, "t", true, 5, 0, 40000},
		{"tuition floor", base, "T", false, 0, 0, 40000},
		{"tuition ceiling", cut, "t", false, 100, 0, 40000},
		{"subsidy up", base, "l", true, 0, 5, 40000},
		{"target up", base, "+", true, 0, 0, 41000},
		{"target down", base, "-", true, 0, 0, 39000},
		{"reset", cut, "0", true, 0, 0, 40000},
		{"reset noop", base, "0", false, 0, 0, 40000},
		{"other key", base, "x", false, 0, 0, 40000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := adjustParams(tt.start, tt.key)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got.Levers.TuitionCutPct != tt.tuition ||
				got.Levers.LivingSubsidyPct != tt.subsidy ||
				got.TargetAnnualUSD != tt.target {
				t.Errorf("got %+v", got)
			}
		})
	}

	zero := base
	zero.TargetAnnualUSD = 0
	if _, ok := adjustParams(zero, "-"); ok {
		t.Error("target should not go below zero")
	}
}

func TestLeverKeyRecomputes(t *testing.T) {
	a := loadedApp(t, testDataset())

	a, cmd := press(t, a, "t")
	if !a.computing || cmd == nil {
		t.Fatal("lever key should start a recompute")
	}
	if a.params.Levers.TuitionCutPct != 5 {
		t.Fatalf("tuition cut = %v, want 5", a.params.Levers.TuitionCutPct)
	}

	m, _ := a.Update(cmd())
	a = m.(App)
	if a.computing {
		t.Error("computing should clear once the result arrives")
	}
	if a.result == nil || a.result.Params != a.params {
		t.Fatalf("result params = %+v, want %+v", a.result.Params, a.params)
	}
	// 20,000 tuition cut by 5% saves 1,000.
	if got := a.result.Adjusted[0].TotalAnnualUSD; math.Abs(got-53100) > 1e-6 {
		t.Errorf("adjusted Munich total = %v, want 53100", got)
	}
}

func TestStaleComputedMsgIgnored(t *testing.T) {
	a := loadedApp(t, testDataset())
	before := a.result

	stale := a.params
	stale.Levers.TuitionCutPct = 50
	a, _ = press(t, a, "t")

	m, _ := a.Update(computeCmd(a.engine, stale)())
	a = m.(App)
	if a.result != before {
		t.Error("stale result should not replace the current one")
	}
	if !a.computing {
		t.Error("still waiting for the current params")
	}
}

func TestProgramsSearch(t *testing.T) {
	a := loadedApp(t, testDataset())
	a.activeTab = tabPrograms

	a, _ = press(t, a, "/")
	if !a.progState.searching {
		t.Fatal("/ should start search")
	}
	a, _ = press(t, a, "pune", "enter")
	if a.progState.searching {
		t.Fatal("enter should leave search mode")
	}
	rows := a.visiblePrograms()
	if len(rows) != 1 || rows[0].Program.City != "Pune" {
		t.Fatalf("visible = %d rows, want Pune only", len(rows))
	}

	a, _ = press(t, a, "esc")
	if len(a.visiblePrograms()) != 3 {
		t.Error("esc should clear the search")
	}
}

func TestProgramsSortCycle(t *testing.T) {
	a := loadedApp(t, testDataset())
	a.activeTab = tabPrograms

	if got := a.visiblePrograms()[0].Program.City; got != "Pune" {
		t.Errorf("cheapest first = %s, want Pune", got)
	}
	a, _ = press(t, a, "c", "c")
	if a.progState.sortBy != sortByPolicyGap {
		t.Fatalf("sort = %v, want policy gap", a.progState.sortBy)
	}
	if got := a.visiblePrograms()[0].Program.City; got != "Munich" {
		t.Errorf("largest policy gap first = %s, want Munich", got)
	}
	a, _ = press(t, a, "c")
	if a.progState.sortBy != sortByTotal {
		t.Error("sort should wrap around")
	}
}

func TestProgramsCursorBounds(t *testing.T) {
	a := loadedApp(t, testDataset())
	a.activeTab = tabPrograms

	a, _ = press(t, a, "k")
	if a.progState.cursor != 0 {
		t.Errorf("cursor = %d, want 0", a.progState.cursor)
	}
	a, _ = press(t, a, "j", "j", "j", "j")
	if a.progState.cursor != 2 {
		t.Errorf("cursor = %d, want 2", a.progState.cursor)
	}
}

func TestTabKeys(t *testing.T) {
	a := loadedApp(t, testDataset())
	for key, want := range map[string]int{"g": tabGaps, "s": tabScenario, "p": tabPrograms, "o": tabOverview} {
		a, _ = press(t, a, key)
		if a.activeTab != want {
			t.Errorf("key %q -> tab %d, want %d", key, a.activeTab, want)
		}
	}
}

func TestViewRendersEveryTab(t *testing.T) {
	a := loadedApp(t, testDataset())
	want := map[int]string{
		tabOverview: "Median Annual Cost by Level",
		tabPrograms: "Boston College",
		tabScenario: "Policy Levers",
		tabGaps:     "By Country & Level",
	}
	for tab, text := range want {
		a.activeTab = tab
		if v := a.View(); !strings.Contains(v, text) {
			t.Errorf("tab %d view missing %q", tab, text)
		}
	}
}

func TestLoadErrorView(t *testing.T) {
	a := NewApp(Options{})
	a.width, a.height = 100, 30

	m, _ := a.Update(DataLoadedMsg{Err: errors.New("parsing costs.csv: row 3")})
	a = m.(App)
	v := a.View()
	if !strings.Contains(v, "Could not load programs") || !strings.Contains(v, "row 3") {
		t.Errorf("error view missing message:\n%s", v)
	}
}

func TestEmptyDatasetView(t *testing.T) {
	a := loadedApp(t, &model.Dataset{ID: "empty"})
	if v := a.View(); !strings.Contains(v, "No programs found.") {
		t.Errorf("empty view missing notice")
	}
}

func TestTooNarrow(t *testing.T) {
	a := App{width: 60, height: 20}
	if v := a.View(); !strings.Contains(v, "too narrow") {
		t.Errorf("narrow view = %q", v)
	}
}
