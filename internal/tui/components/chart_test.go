package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestFormatChartLabel(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{40000, "$40k"},
		{12500, "$12.5k"},
		{2e6, "$2M"},
		{750, "$750"},
		{0.5, "$0.50"},
	}
	for _, tt := range tests {
		if got := formatChartLabel(tt.in); got != tt.want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestChartTickStep(t *testing.T) {
	tests := []struct {
		max  float64
		want float64
	}{
		{0, 1},
		{60000, 10000},
		{120000, 20000},
		{90, 20},
	}
	for _, tt := range tests {
		if got := chartTickStep(tt.max); got != tt.want {
			t.Errorf("chartTickStep(%v) = %v, want %v", tt.max, got, tt.want)
		}
	}
}

func TestHBars(t *testing.T) {
	out := HBars([]HBar{
		{Label: "USA", Value: 91650},
		{Label: "Germany", Value: 29340},
		{Label: "India", Value: 15200, Text: "15.2k"},
	}, lipgloss.Color("#3AA99F"), 60)

	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w > 60 {
			t.Errorf("line %d width %d exceeds 60", i, w)
		}
	}
	if !strings.Contains(lines[2], "15.2k") {
		t.Errorf("custom text missing: %q", lines[2])
	}
	if HBars(nil, lipgloss.Color("1"), 40) != "" {
		t.Error("HBars(nil) should be empty")
	}
}
