// Package model defines domain types for edcost programs, cost tables and insights.
package model

import "strings"

// Level is the academic level of a program offering.
type Level string

const (
	LevelBachelor Level = "Bachelor"
	LevelMaster   Level = "Master"
	LevelPhD      Level = "PhD"
)

// Levels lists every valid level in display order.
var Levels = []Level{LevelBachelor, LevelMaster, LevelPhD}

// ParseLevel maps a dataset label onto a Level, ignoring case and surrounding space.
func ParseLevel(raw string) (Level, bool) {
	s := strings.TrimSpace(raw)
	for _, l := range Levels {
		if strings.EqualFold(s, string(l)) {
			return l, true
		}
	}
	return "", false
}

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelBachelor, LevelMaster, LevelPhD:
		return true
	}
	return false
}

// Program is one academic program offering as read from the dataset.
// Rent is a monthly rate; tuition, visa and insurance are annual rates.
// LivingCostIndex is relative to New York = 100.
type Program struct {
	Country         string  `json:"country"`
	City            string  `json:"city"`
	Institution     string  `json:"institution"`
	Program         string  `json:"program"`
	Level           Level   `json:"level"`
	DurationYears   float64 `json:"duration_years"`
	TuitionUSD      float64 `json:"tuition_usd"`
	RentUSD         float64 `json:"rent_usd"`
	VisaFeeUSD      float64 `json:"visa_fee_usd"`
	InsuranceUSD    float64 `json:"insurance_usd"`
	LivingCostIndex float64 `json:"living_cost_index"`
	ExchangeRate    float64 `json:"exchange_rate"`
}

// Label is a short display name, e.g. "ETH Zurich (Switzerland)".
func (p Program) Label() string {
	name := p.Institution
	if name == "" {
		name = p.Program
	}
	if p.Country == "" {
		return name
	}
	return name + " (" + p.Country + ")"
}

// Dataset is the raw program table shared read-only by every computation.
// ID identifies one loaded table instance.
type Dataset struct {
	ID       string
	Programs []Program
}

// Len returns the number of programs.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Programs)
}
