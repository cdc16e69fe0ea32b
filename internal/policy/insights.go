package policy

import (
	"sort"

	"github.com/theirongolddev/edcost/internal/model"
)

// Summarize aggregates a cost table into the overview bundle.
// An empty table yields model.ErrEmptyTable.
func Summarize[R model.CostRow](table []R) (model.InsightSummary, error) {
	if len(table) == 0 {
		return model.InsightSummary{}, model.ErrEmptyTable
	}
	rows := model.NormalizedTable(table)

	totals := make([]float64, len(rows))
	afford := make([]float64, len(rows))
	gaps := make([]float64, len(rows))
	for i, r := range rows {
		totals[i] = r.TotalAnnualUSD
		afford[i] = r.AffordabilityIndex
		gaps[i] = r.PolicyGapUSD
	}

	return model.InsightSummary{
		Programs:      len(rows),
		TotalAnnual:   describe(totals),
		Affordability: describe(afford),
		PolicyGap:     describe(gaps),
		ByCountry:     byCountry(rows),
		ByLevel:       byLevel(rows),
		CountryLevel:  PolicyGapByCountryLevel(rows),
		Comparison:    CompareCountries(rows),
	}, nil
}

func byCountry(rows []model.NormalizedRecord) []model.CountryInsight {
	type acc struct {
		n             int
		total, afford float64
	}
	groups := make(map[string]*acc)
	for _, r := range rows {
		a, ok := groups[r.Program.Country]
		if !ok {
			a = &acc{}
			groups[r.Program.Country] = a
		}
		a.n++
		a.total += r.TotalAnnualUSD
		a.afford += r.AffordabilityIndex
	}

	out := make([]model.CountryInsight, 0, len(groups))
	for country, a := range groups {
		out = append(out, model.CountryInsight{
			Country:            country,
			Programs:           a.n,
			MeanTotalAnnualUSD: a.total / float64(a.n),
			MeanAffordability:  a.afford / float64(a.n),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MeanTotalAnnualUSD != out[j].MeanTotalAnnualUSD {
			return out[i].MeanTotalAnnualUSD > out[j].MeanTotalAnnualUSD
		}
		return out[i].Country < out[j].Country
	})
	return out
}

func byLevel(rows []model.NormalizedRecord) []model.LevelInsight {
	totals := make(map[model.Level][]float64)
	afford := make(map[model.Level][]float64)
	for _, r := range rows {
		lvl := r.Program.Level
		totals[lvl] = append(totals[lvl], r.TotalAnnualUSD)
		afford[lvl] = append(afford[lvl], r.AffordabilityIndex)
	}

	var out []model.LevelInsight
	for _, lvl := range model.Levels {
		t := totals[lvl]
		if len(t) == 0 {
			continue
		}
		sort.Float64s(t)
		out = append(out, model.LevelInsight{
			Level:                lvl,
			Programs:             len(t),
			MedianTotalAnnualUSD: median(t),
			MeanTotalAnnualUSD:   mean(t),
			MeanAffordability:    mean(afford[lvl]),
		})
	}
	return out
}

// PolicyGapByCountryLevel groups programs by country and level and reports how
// many sit above their level median. Rows are ordered by country, then level.
func PolicyGapByCountryLevel[R model.CostRow](table []R) []model.CountryLevelInsight {
	type acc struct {
		n, above      int
		total, afford float64
	}
	groups := make(map[groupKey]*acc)
	for _, row := range table {
		r := row.Normalized()
		k := groupKey{country: r.Program.Country, level: r.Program.Level}
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
		}
		a.n++
		if r.PolicyGapUSD > 0 {
			a.above++
		}
		a.total += r.TotalAnnualUSD
		a.afford += r.AffordabilityIndex
	}

	out := make([]model.CountryLevelInsight, 0, len(groups))
	for k, a := range groups {
		n := float64(a.n)
		out = append(out, model.CountryLevelInsight{
			Country:            k.country,
			Level:              k.level,
			Programs:           a.n,
			MeanTotalAnnualUSD: a.total / n,
			MeanAffordability:  a.afford / n,
			ShareAboveMedian:   float64(a.above) / n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Country != out[j].Country {
			return out[i].Country < out[j].Country
		}
		return levelRank(out[i].Level) < levelRank(out[j].Level)
	})
	return out
}

// CompareCountries reports the cost range of each country, cheapest mean first.
func CompareCountries[R model.CostRow](table []R) []model.CountryComparison {
	groups := make(map[string]*model.CountryComparison)
	for _, row := range table {
		r := row.Normalized()
		c, ok := groups[r.Program.Country]
		if !ok {
			c = &model.CountryComparison{
				Country:           r.Program.Country,
				MinTotalAnnualUSD: r.TotalAnnualUSD,
				MaxTotalAnnualUSD: r.TotalAnnualUSD,
			}
			groups[r.Program.Country] = c
		}
		c.Programs++
		c.MinTotalAnnualUSD = min(c.MinTotalAnnualUSD, r.TotalAnnualUSD)
		c.MaxTotalAnnualUSD = max(c.MaxTotalAnnualUSD, r.TotalAnnualUSD)
		c.MeanTotalAnnualUSD += r.TotalAnnualUSD
	}

	out := make([]model.CountryComparison, 0, len(groups))
	for _, c := range groups {
		c.MeanTotalAnnualUSD /= float64(c.Programs)
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MeanTotalAnnualUSD != out[j].MeanTotalAnnualUSD {
			return out[i].MeanTotalAnnualUSD < out[j].MeanTotalAnnualUSD
		}
		return out[i].Country < out[j].Country
	})
	return out
}

// RankByTotal returns a copy of table ordered by total annual cost, cheapest first.
func RankByTotal[R model.CostRow](table []R) []model.NormalizedRecord {
	out := model.NormalizedTable(table)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalAnnualUSD < out[j].TotalAnnualUSD
	})
	return out
}

// RankByAffordability returns a copy of table with the most affordable programs first.
func RankByAffordability[R model.CostRow](table []R) []model.NormalizedRecord {
	out := model.NormalizedTable(table)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AffordabilityIndex > out[j].AffordabilityIndex
	})
	return out
}

// RankByPolicyGap returns a copy of table with the programs furthest above
// their level median first.
func RankByPolicyGap[R model.CostRow](table []R) []model.NormalizedRecord {
	out := model.NormalizedTable(table)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PolicyGapUSD > out[j].PolicyGapUSD
	})
	return out
}
