package model

// NormalizedRecord is the annual cost decomposition of one program.
// Program points into the shared Dataset and must not be modified.
// TotalAnnualUSD is always DirectAnnualUSD + IndirectAnnualUSD.
type NormalizedRecord struct {
	Index   int      `json:"index"`
	Program *Program `json:"program"`

	TuitionAnnualUSD     float64 `json:"tuition_annual_usd"`
	RentAnnualUSD        float64 `json:"rent_annual_usd"`
	LivingIndexAnnualUSD float64 `json:"living_index_annual_usd"`

	DirectAnnualUSD   float64 `json:"direct_annual_usd"`
	IndirectAnnualUSD float64 `json:"indirect_annual_usd"`
	TotalAnnualUSD    float64 `json:"total_annual_usd"`

	NYBaselineUSD      float64 `json:"ny_baseline_usd"`
	AffordabilityIndex float64 `json:"affordability_index"`
	PolicyGapUSD       float64 `json:"policy_gap_usd"`
}

// Normalized returns the record itself. AdjustedRecord inherits it, which lets
// table consumers accept either kind through CostRow.
func (r NormalizedRecord) Normalized() NormalizedRecord {
	return r
}

// CostRow is implemented by NormalizedRecord and AdjustedRecord.
type CostRow interface {
	Normalized() NormalizedRecord
}

// Levers are the policy parameters of a scenario, both percentages in [0, 100].
type Levers struct {
	TuitionCutPct    float64 `json:"tuition_cut_pct"`
	LivingSubsidyPct float64 `json:"living_subsidy_pct"`
}

// IsZero reports whether no lever is applied.
func (l Levers) IsZero() bool {
	return l.TuitionCutPct == 0 && l.LivingSubsidyPct == 0
}

// AdjustedRecord is a NormalizedRecord recomputed under a scenario.
// The embedded figures are the adjusted ones; Levers records what produced them.
type AdjustedRecord struct {
	NormalizedRecord
	Levers Levers `json:"levers"`
}

// NormalizedTable converts any cost table into plain normalized records.
func NormalizedTable[R CostRow](rows []R) []NormalizedRecord {
	out := make([]NormalizedRecord, len(rows))
	for i, r := range rows {
		out[i] = r.Normalized()
	}
	return out
}
