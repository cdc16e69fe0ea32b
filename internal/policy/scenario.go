package policy

import (
	"math"
	"strconv"

	"github.com/theirongolddev/edcost/internal/model"
)

// ValidateLevers checks both percentages lie in [0, 100].
func ValidateLevers(l model.Levers) error {
	if err := checkPercent("tuition_cut", l.TuitionCutPct); err != nil {
		return err
	}
	return checkPercent("living_subsidy", l.LivingSubsidyPct)
}

func checkPercent(field string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 100 {
		return &model.ValidationError{
			Field:  field,
			Value:  strconv.FormatFloat(v, 'f', -1, 64),
			Reason: "must be a percentage between 0 and 100",
		}
	}
	return nil
}

// ApplyScenario recomputes a table under the given levers. The tuition cut
// applies to tuition only; the subsidy applies to the whole living component.
// Levers compound when applied to an already adjusted table. Affordability and
// policy gap are rederived from the adjusted table's own per-level medians.
// Levers of zero reproduce the input values.
func ApplyScenario[R model.CostRow](table []R, levers model.Levers) ([]model.AdjustedRecord, error) {
	if err := ValidateLevers(levers); err != nil {
		return nil, err
	}

	tuitionFactor := 1 - levers.TuitionCutPct/100
	livingFactor := 1 - levers.LivingSubsidyPct/100

	adjusted := make([]model.NormalizedRecord, len(table))
	for i, row := range table {
		r := row.Normalized()
		p := r.Program

		tuition := r.TuitionAnnualUSD * tuitionFactor
		r.TuitionAnnualUSD = tuition
		r.DirectAnnualUSD = tuition + p.VisaFeeUSD + p.InsuranceUSD
		r.RentAnnualUSD *= livingFactor
		r.LivingIndexAnnualUSD *= livingFactor
		r.IndirectAnnualUSD *= livingFactor
		r.TotalAnnualUSD = r.DirectAnnualUSD + r.IndirectAnnualUSD
		adjusted[i] = r
	}
	derive(adjusted)

	out := make([]model.AdjustedRecord, len(adjusted))
	for i, r := range adjusted {
		out[i] = model.AdjustedRecord{NormalizedRecord: r, Levers: levers}
	}
	return out, nil
}
