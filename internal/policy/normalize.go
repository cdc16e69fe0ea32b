// Package policy derives annual cost decompositions from program records and
// evaluates tuition and living-cost levers against an affordability target.
//
// Every function here is pure. Tables passed in are never modified; each stage
// returns a new table that shares the underlying Program records by pointer.
package policy

import (
	"fmt"
	"math"

	"github.com/theirongolddev/edcost/internal/model"
)

const (
	// DefaultNYBaselineUSD is the New York annual living cost the index is anchored to.
	DefaultNYBaselineUSD = 26000.0

	// MaxAffordabilityIndex caps the index for near-zero totals, which a full
	// scenario (100% cut, 100% subsidy) can produce.
	MaxAffordabilityIndex = 1e6
)

// AffordabilityIndex maps an annual total onto the New York anchored scale:
// 100 is parity with the baseline, higher is more affordable.
func AffordabilityIndex(nyBaselineUSD, totalAnnualUSD float64) float64 {
	if totalAnnualUSD <= 0 {
		return MaxAffordabilityIndex
	}
	return math.Min(nyBaselineUSD/totalAnnualUSD*100, MaxAffordabilityIndex)
}

// Normalize derives the annual cost decomposition of every program. Any
// malformed record fails the whole batch with a *model.DataIntegrityError.
func Normalize(programs []model.Program, nyBaselineUSD float64) ([]model.NormalizedRecord, error) {
	if !(nyBaselineUSD > 0) || math.IsInf(nyBaselineUSD, 0) {
		return nil, &model.DataIntegrityError{
			Field:  "ny_baseline_usd",
			Reason: fmt.Sprintf("must be a positive number, got %v", nyBaselineUSD),
		}
	}

	table := make([]model.NormalizedRecord, len(programs))
	for i := range programs {
		p := &programs[i]
		if err := checkProgram(i, p); err != nil {
			return nil, err
		}

		rentAnnual := p.RentUSD * 12
		livingAnnual := p.LivingCostIndex / 100 * nyBaselineUSD
		direct := p.TuitionUSD + p.VisaFeeUSD + p.InsuranceUSD
		indirect := rentAnnual + livingAnnual
		total := direct + indirect
		if total <= 0 {
			return nil, &model.DataIntegrityError{Row: i + 1, Reason: "total annual cost is zero"}
		}

		table[i] = model.NormalizedRecord{
			Index:                i,
			Program:              p,
			TuitionAnnualUSD:     p.TuitionUSD,
			RentAnnualUSD:        rentAnnual,
			LivingIndexAnnualUSD: livingAnnual,
			DirectAnnualUSD:      direct,
			IndirectAnnualUSD:    indirect,
			TotalAnnualUSD:       total,
			NYBaselineUSD:        nyBaselineUSD,
		}
	}

	derive(table)
	return table, nil
}

// derive fills affordability and policy gap from each record's total, using
// the per-level medians of this table.
func derive(table []model.NormalizedRecord) {
	medians := levelMedians(table)
	for i := range table {
		r := &table[i]
		r.AffordabilityIndex = AffordabilityIndex(r.NYBaselineUSD, r.TotalAnnualUSD)
		r.PolicyGapUSD = r.TotalAnnualUSD - medians[r.Program.Level]
	}
}

func checkProgram(i int, p *model.Program) error {
	fail := func(field, reason string) error {
		return &model.DataIntegrityError{Row: i + 1, Field: field, Reason: reason}
	}

	if !p.Level.Valid() {
		return fail("Level", fmt.Sprintf("unknown level %q", p.Level))
	}
	if !(p.DurationYears > 0) || math.IsInf(p.DurationYears, 0) {
		return fail("Duration_Years", "must be positive")
	}
	costs := []struct {
		field string
		v     float64
	}{
		{"Tuition_USD", p.TuitionUSD},
		{"Rent_USD", p.RentUSD},
		{"Visa_Fee_USD", p.VisaFeeUSD},
		{"Insurance_USD", p.InsuranceUSD},
		{"Living_Cost_Index", p.LivingCostIndex},
	}
	for _, c := range costs {
		if math.IsNaN(c.v) || math.IsInf(c.v, 0) {
			return fail(c.field, "not a finite number")
		}
		if c.v < 0 {
			return fail(c.field, "must not be negative")
		}
	}
	return nil
}

// ProgramCostUSD is the cost of the whole program rather than one year.
// Visa fees are annual rates, so the visa share of this figure is
// VisaFeeUSD * DurationYears.
func ProgramCostUSD(r model.NormalizedRecord) float64 {
	return r.TotalAnnualUSD * r.Program.DurationYears
}
