package policy

import (
	"sort"

	"github.com/theirongolddev/edcost/internal/model"
)

const (
	componentChartRows   = 10
	programCostChartRows = 15
	levelChartRows       = 8
)

// BuildChartFrames computes the numeric frames behind the insight charts.
// Nothing is rendered here.
func BuildChartFrames[R model.CostRow](table []R) model.ChartFrames {
	rows := model.NormalizedTable(table)
	return model.ChartFrames{
		Components:   componentFrames(rows),
		Economic:     economicFrames(rows),
		Distribution: distributionFrames(rows),
		Duration:     durationFrames(rows),
		ProgramCost:  programCostFrames(rows),
		TopByLevel:   topByLevel(rows),
	}
}

func byTotalDesc(rows []model.NormalizedRecord) []model.NormalizedRecord {
	out := make([]model.NormalizedRecord, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalAnnualUSD > out[j].TotalAnnualUSD
	})
	return out
}

func componentFrames(rows []model.NormalizedRecord) []model.ComponentFrame {
	ranked := byTotalDesc(rows)
	if len(ranked) > componentChartRows {
		ranked = ranked[:componentChartRows]
	}
	out := make([]model.ComponentFrame, 0, len(ranked))
	for _, r := range ranked {
		f := model.ComponentFrame{
			Label:             r.Program.Label(),
			DirectAnnualUSD:   r.DirectAnnualUSD,
			IndirectAnnualUSD: r.IndirectAnnualUSD,
			TotalAnnualUSD:    r.TotalAnnualUSD,
		}
		if r.TotalAnnualUSD > 0 {
			f.DirectShare = r.DirectAnnualUSD / r.TotalAnnualUSD
			f.IndirectShare = r.IndirectAnnualUSD / r.TotalAnnualUSD
		}
		out = append(out, f)
	}
	return out
}

func economicFrames(rows []model.NormalizedRecord) []model.EconomicFrame {
	type acc struct {
		n             int
		index, afford float64
	}
	groups := make(map[string]*acc)
	for _, r := range rows {
		a, ok := groups[r.Program.Country]
		if !ok {
			a = &acc{}
			groups[r.Program.Country] = a
		}
		a.n++
		a.index += r.Program.LivingCostIndex
		a.afford += r.AffordabilityIndex
	}

	out := make([]model.EconomicFrame, 0, len(groups))
	for country, a := range groups {
		out = append(out, model.EconomicFrame{
			Country:           country,
			MeanLivingIndex:   a.index / float64(a.n),
			MeanAffordability: a.afford / float64(a.n),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MeanLivingIndex != out[j].MeanLivingIndex {
			return out[i].MeanLivingIndex > out[j].MeanLivingIndex
		}
		return out[i].Country < out[j].Country
	})
	return out
}

func distributionFrames(rows []model.NormalizedRecord) []model.DistributionFrame {
	byLevel := make(map[model.Level][]float64)
	for _, r := range rows {
		byLevel[r.Program.Level] = append(byLevel[r.Program.Level], r.TotalAnnualUSD)
	}

	var out []model.DistributionFrame
	for _, lvl := range model.Levels {
		t := byLevel[lvl]
		if len(t) == 0 {
			continue
		}
		sort.Float64s(t)
		out = append(out, model.DistributionFrame{
			Level:  lvl,
			Min:    t[0],
			Q1:     quantile(t, 0.25),
			Median: median(t),
			Q3:     quantile(t, 0.75),
			Max:    t[len(t)-1],
		})
	}
	return out
}

func durationFrames(rows []model.NormalizedRecord) []model.DurationFrame {
	type key struct {
		years float64
		level model.Level
	}
	groups := make(map[key][]float64)
	for _, r := range rows {
		k := key{years: r.Program.DurationYears, level: r.Program.Level}
		groups[k] = append(groups[k], r.TotalAnnualUSD)
	}

	out := make([]model.DurationFrame, 0, len(groups))
	for k, t := range groups {
		sort.Float64s(t)
		out = append(out, model.DurationFrame{
			DurationYears:        k.years,
			Level:                k.level,
			Programs:             len(t),
			MedianTotalAnnualUSD: median(t),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DurationYears != out[j].DurationYears {
			return out[i].DurationYears < out[j].DurationYears
		}
		return levelRank(out[i].Level) < levelRank(out[j].Level)
	})
	return out
}

func programCostFrames(rows []model.NormalizedRecord) []model.ProgramFrame {
	out := make([]model.ProgramFrame, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.ProgramFrame{
			Label:    r.Program.Label(),
			Level:    r.Program.Level,
			ValueUSD: ProgramCostUSD(r),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ValueUSD > out[j].ValueUSD
	})
	if len(out) > programCostChartRows {
		out = out[:programCostChartRows]
	}
	return out
}

func topByLevel(rows []model.NormalizedRecord) map[model.Level][]model.ProgramFrame {
	out := make(map[model.Level][]model.ProgramFrame)
	for _, r := range byTotalDesc(rows) {
		lvl := r.Program.Level
		if len(out[lvl]) >= levelChartRows {
			continue
		}
		out[lvl] = append(out[lvl], model.ProgramFrame{
			Label:    r.Program.Label(),
			Level:    lvl,
			ValueUSD: r.TotalAnnualUSD,
		})
	}
	return out
}
