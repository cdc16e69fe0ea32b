package policy

import (
	"math"
	"sort"

	"github.com/theirongolddev/edcost/internal/model"
)

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// median expects sorted input. Even-sized inputs average the two middle values.
func median(sorted []float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case n%2 == 1:
		return sorted[n/2]
	default:
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
}

// quantile expects sorted input and interpolates linearly between ranks.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

func sortedCopy(xs []float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	sort.Float64s(out)
	return out
}

func describe(xs []float64) model.Stats {
	if len(xs) == 0 {
		return model.Stats{}
	}
	s := sortedCopy(xs)
	return model.Stats{
		Count:  len(s),
		Mean:   mean(s),
		Median: median(s),
		Min:    s[0],
		Max:    s[len(s)-1],
	}
}

// levelMedians returns the median total annual cost of each level present in table.
func levelMedians(table []model.NormalizedRecord) map[model.Level]float64 {
	byLevel := make(map[model.Level][]float64)
	for _, r := range table {
		byLevel[r.Program.Level] = append(byLevel[r.Program.Level], r.TotalAnnualUSD)
	}
	out := make(map[model.Level]float64, len(byLevel))
	for lvl, totals := range byLevel {
		sort.Float64s(totals)
		out[lvl] = median(totals)
	}
	return out
}

// levelRank orders levels Bachelor, Master, PhD, then anything else.
func levelRank(l model.Level) int {
	for i, known := range model.Levels {
		if l == known {
			return i
		}
	}
	return len(model.Levels)
}
