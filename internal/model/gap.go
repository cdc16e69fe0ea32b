package model

// ProgramGap is one row of the program gap table: a program whose annual
// cost exceeds the target.
type ProgramGap struct {
	Index          int     `json:"index"`
	Country        string  `json:"country"`
	City           string  `json:"city"`
	Institution    string  `json:"institution"`
	Program        string  `json:"program"`
	Level          Level   `json:"level"`
	TotalAnnualUSD float64 `json:"total_annual_usd"`
	GapToTargetUSD float64 `json:"gap_to_target_usd"`
}

// GapRow is one (Country, Level) row of the aggregate gap table.
// MeanGapToTargetUSD is unclamped, so groups below target report a negative mean.
// TuitionShare and LivingShare always sum to 1.
type GapRow struct {
	Country            string  `json:"country"`
	Level              Level   `json:"level"`
	Programs           int     `json:"programs"`
	MeanTotalAnnualUSD float64 `json:"mean_total_annual_usd"`
	MeanGapToTargetUSD float64 `json:"mean_gap_to_target_usd"`
	ShareAboveTarget   float64 `json:"share_above_target"`
	TuitionShare       float64 `json:"tuition_share"`
	LivingShare        float64 `json:"living_share"`
}

// GapTables is the GapAnalyzer output for one target.
type GapTables struct {
	TargetAnnualUSD float64      `json:"target_annual_usd"`
	Programs        []ProgramGap `json:"programs"`
	Aggregate       []GapRow     `json:"aggregate"`
}
