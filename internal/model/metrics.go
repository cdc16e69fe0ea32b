package model

// Stats is the descriptive summary of one numeric column.
type Stats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// CountryInsight is the comparative view for one country.
type CountryInsight struct {
	Country            string  `json:"country"`
	Programs           int     `json:"programs"`
	MeanTotalAnnualUSD float64 `json:"mean_total_annual_usd"`
	MeanAffordability  float64 `json:"mean_affordability_index"`
}

// LevelInsight summarizes one academic level.
type LevelInsight struct {
	Level                Level   `json:"level"`
	Programs             int     `json:"programs"`
	MedianTotalAnnualUSD float64 `json:"median_total_annual_usd"`
	MeanTotalAnnualUSD   float64 `json:"mean_total_annual_usd"`
	MeanAffordability    float64 `json:"mean_affordability_index"`
}

// CountryLevelInsight is one row of the "policy gap by country & level" table.
// ShareAboveMedian is the fraction of programs costing more than their level median.
type CountryLevelInsight struct {
	Country            string  `json:"country"`
	Level              Level   `json:"level"`
	Programs           int     `json:"programs"`
	MeanTotalAnnualUSD float64 `json:"mean_total_annual_usd"`
	MeanAffordability  float64 `json:"mean_affordability_index"`
	ShareAboveMedian   float64 `json:"share_above_median"`
}

// CountryComparison is the min/max/mean annual cost of one country.
type CountryComparison struct {
	Country            string  `json:"country"`
	Programs           int     `json:"programs"`
	MinTotalAnnualUSD  float64 `json:"min_total_annual_usd"`
	MaxTotalAnnualUSD  float64 `json:"max_total_annual_usd"`
	MeanTotalAnnualUSD float64 `json:"mean_total_annual_usd"`
}

// InsightSummary is the read-only aggregate bundle behind the overview panels.
type InsightSummary struct {
	Programs      int                   `json:"programs"`
	TotalAnnual   Stats                 `json:"total_annual_usd"`
	Affordability Stats                 `json:"affordability_index"`
	PolicyGap     Stats                 `json:"policy_gap_usd"`
	ByCountry     []CountryInsight      `json:"by_country"`
	ByLevel       []LevelInsight        `json:"by_level"`
	CountryLevel  []CountryLevelInsight `json:"country_level"`
	Comparison    []CountryComparison   `json:"comparison"`
}

// ComponentFrame is the direct/indirect split of one program's annual cost.
type ComponentFrame struct {
	Label             string  `json:"label"`
	DirectAnnualUSD   float64 `json:"direct_annual_usd"`
	IndirectAnnualUSD float64 `json:"indirect_annual_usd"`
	TotalAnnualUSD    float64 `json:"total_annual_usd"`
	DirectShare       float64 `json:"direct_share"`
	IndirectShare     float64 `json:"indirect_share"`
}

// EconomicFrame is the economic context of one country.
type EconomicFrame struct {
	Country           string  `json:"country"`
	MeanLivingIndex   float64 `json:"mean_living_cost_index"`
	MeanAffordability float64 `json:"mean_affordability_index"`
}

// DistributionFrame is a five-number summary of annual cost within a level.
type DistributionFrame struct {
	Level  Level   `json:"level"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// DurationFrame is the median annual cost for one (duration, level) cell.
type DurationFrame struct {
	DurationYears        float64 `json:"duration_years"`
	Level                Level   `json:"level"`
	Programs             int     `json:"programs"`
	MedianTotalAnnualUSD float64 `json:"median_total_annual_usd"`
}

// ProgramFrame is one bar of a ranked program chart.
type ProgramFrame struct {
	Label    string  `json:"label"`
	Level    Level   `json:"level"`
	ValueUSD float64 `json:"value_usd"`
}

// ChartFrames bundles every numeric frame a chart renderer consumes.
type ChartFrames struct {
	Components   []ComponentFrame         `json:"components"`
	Economic     []EconomicFrame          `json:"economic"`
	Distribution []DistributionFrame      `json:"distribution"`
	Duration     []DurationFrame          `json:"duration"`
	ProgramCost  []ProgramFrame           `json:"program_cost"`
	TopByLevel   map[Level][]ProgramFrame `json:"top_by_level"`
}
