package policy

import (
	"math"
	"strconv"
	"strings"

	"github.com/theirongolddev/edcost/internal/model"
)

// Query keys accepted by ParseParams.
const (
	ParamTargetAnnual  = "target_annual"
	ParamTuitionCut    = "tuition_cut"
	ParamLivingSubsidy = "living_subsidy"
	ParamNYBaseline    = "ny_baseline"
)

// Params is everything a scenario result depends on besides the dataset.
type Params struct {
	NYBaselineUSD   float64      `json:"ny_baseline_usd"`
	TargetAnnualUSD float64      `json:"target_annual_usd"`
	Levers          model.Levers `json:"levers"`
}

// DefaultParams returns the baseline scenario: no levers, 40k target.
func DefaultParams() Params {
	return Params{
		NYBaselineUSD:   DefaultNYBaselineUSD,
		TargetAnnualUSD: 40000,
	}
}

// Validate checks every parameter against its domain.
func (p Params) Validate() error {
	if math.IsNaN(p.NYBaselineUSD) || math.IsInf(p.NYBaselineUSD, 0) || p.NYBaselineUSD <= 0 {
		return &model.ValidationError{
			Field:  ParamNYBaseline,
			Value:  strconv.FormatFloat(p.NYBaselineUSD, 'f', -1, 64),
			Reason: "must be a positive amount in USD",
		}
	}
	if err := ValidateTarget(p.TargetAnnualUSD); err != nil {
		return err
	}
	return ValidateLevers(p.Levers)
}

// ParseParams reads query-style string inputs on top of defaults. Missing or
// blank keys keep their default. Non-numeric or out-of-range values return a
// *model.ValidationError whose Message is fit for the end user.
func ParseParams(raw map[string]string, defaults Params) (Params, error) {
	p := defaults
	fields := []struct {
		key string
		dst *float64
	}{
		{ParamNYBaseline, &p.NYBaselineUSD},
		{ParamTargetAnnual, &p.TargetAnnualUSD},
		{ParamTuitionCut, &p.Levers.TuitionCutPct},
		{ParamLivingSubsidy, &p.Levers.LivingSubsidyPct},
	}
	for _, f := range fields {
		s := strings.TrimSpace(raw[f.key])
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return defaults, &model.ValidationError{Field: f.key, Value: s, Reason: "must be a number"}
		}
		*f.dst = v
	}
	if err := p.Validate(); err != nil {
		return defaults, err
	}
	return p, nil
}
