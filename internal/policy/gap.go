package policy

import (
	"math"
	"sort"
	"strconv"

	"github.com/theirongolddev/edcost/internal/model"
)

// DefaultTopN is the number of rows kept in the program gap table.
const DefaultTopN = 15

// ValidateTarget checks the target is a finite non-negative amount.
func ValidateTarget(target float64) error {
	if math.IsNaN(target) || math.IsInf(target, 0) || target < 0 {
		return &model.ValidationError{
			Field:  "target_annual",
			Value:  strconv.FormatFloat(target, 'f', -1, 64),
			Reason: "must be a non-negative amount in USD",
		}
	}
	return nil
}

type groupKey struct {
	country string
	level   model.Level
}

// TargetGap compares every record against targetAnnualUSD. The program table
// keeps records strictly above target, largest gap first, truncated to topN
// (DefaultTopN when topN <= 0). The aggregate table covers the whole input
// grouped by country and level, sorted by mean gap descending.
func TargetGap[R model.CostRow](table []R, targetAnnualUSD float64, topN int) (model.GapTables, error) {
	if err := ValidateTarget(targetAnnualUSD); err != nil {
		return model.GapTables{}, err
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	out := model.GapTables{
		TargetAnnualUSD: targetAnnualUSD,
		Programs:        []model.ProgramGap{},
		Aggregate:       []model.GapRow{},
	}

	type acc struct {
		n, above                    int
		sumGap, sumDirect, sumTotal float64
	}
	groups := make(map[groupKey]*acc)

	for _, row := range table {
		r := row.Normalized()
		gap := r.TotalAnnualUSD - targetAnnualUSD

		if gap > 0 {
			p := r.Program
			out.Programs = append(out.Programs, model.ProgramGap{
				Index:          r.Index,
				Country:        p.Country,
				City:           p.City,
				Institution:    p.Institution,
				Program:        p.Program,
				Level:          p.Level,
				TotalAnnualUSD: r.TotalAnnualUSD,
				GapToTargetUSD: gap,
			})
		}

		k := groupKey{country: r.Program.Country, level: r.Program.Level}
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
		}
		a.n++
		if gap > 0 {
			a.above++
		}
		a.sumGap += gap
		a.sumDirect += r.DirectAnnualUSD
		a.sumTotal += r.TotalAnnualUSD
	}

	sort.SliceStable(out.Programs, func(i, j int) bool {
		return out.Programs[i].GapToTargetUSD > out.Programs[j].GapToTargetUSD
	})
	if len(out.Programs) > topN {
		out.Programs = out.Programs[:topN]
	}

	for k, a := range groups {
		n := float64(a.n)
		meanTotal := a.sumTotal / n
		var tuitionShare float64
		if meanTotal > 0 {
			tuitionShare = (a.sumDirect / n) / meanTotal
		}
		out.Aggregate = append(out.Aggregate, model.GapRow{
			Country:            k.country,
			Level:              k.level,
			Programs:           a.n,
			MeanTotalAnnualUSD: meanTotal,
			MeanGapToTargetUSD: a.sumGap / n,
			ShareAboveTarget:   float64(a.above) / n,
			TuitionShare:       tuitionShare,
			LivingShare:        1 - tuitionShare,
		})
	}
	sort.Slice(out.Aggregate, func(i, j int) bool {
		a, b := out.Aggregate[i], out.Aggregate[j]
		if a.MeanGapToTargetUSD != b.MeanGapToTargetUSD {
			return a.MeanGapToTargetUSD > b.MeanGapToTargetUSD
		}
		if a.Country != b.Country {
			return a.Country < b.Country
		}
		return levelRank(a.Level) < levelRank(b.Level)
	})

	return out, nil
}
