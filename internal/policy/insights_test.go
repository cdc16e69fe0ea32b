package policy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/edcost/internal/model"
)

// Sample totals: USA/M 98200, DE/M 30300, UK/M 68900, USA/B 85100,
// IN/B 15200, DE/B 28380, CA/PhD 47120.
func sampleTable(t *testing.T) []model.NormalizedRecord {
	t.Helper()
	table, err := Normalize(samplePrograms(), DefaultNYBaselineUSD)
	require.NoError(t, err)
	return table
}

func TestSummarizeOverall(t *testing.T) {
	s, err := Summarize(sampleTable(t))
	require.NoError(t, err)

	assert.Equal(t, 7, s.Programs)
	assert.Equal(t, 7, s.TotalAnnual.Count)
	assert.InDelta(t, 373200.0/7, s.TotalAnnual.Mean, 1e-6)
	assert.InDelta(t, 47120, s.TotalAnnual.Median, 1e-6)
	assert.InDelta(t, 15200, s.TotalAnnual.Min, 1e-6)
	assert.InDelta(t, 98200, s.TotalAnnual.Max, 1e-6)

	assert.InDelta(t, 26000.0/15200*100, s.Affordability.Max, 1e-6)
	assert.InDelta(t, 26000.0/98200*100, s.Affordability.Min, 1e-6)
	assert.InDelta(t, 0, s.PolicyGap.Median, 1e-6)
}

func TestSummarizeByCountry(t *testing.T) {
	s, err := Summarize(sampleTable(t))
	require.NoError(t, err)

	require.Len(t, s.ByCountry, 5)
	assert.Equal(t, "USA", s.ByCountry[0].Country)
	assert.Equal(t, 2, s.ByCountry[0].Programs)
	assert.InDelta(t, 91650, s.ByCountry[0].MeanTotalAnnualUSD, 1e-6)
	assert.Equal(t, "India", s.ByCountry[4].Country)

	require.Len(t, s.Comparison, 5)
	assert.Equal(t, "India", s.Comparison[0].Country)
	assert.Equal(t, "Germany", s.Comparison[1].Country)
	assert.InDelta(t, 28380, s.Comparison[1].MinTotalAnnualUSD, 1e-6)
	assert.InDelta(t, 30300, s.Comparison[1].MaxTotalAnnualUSD, 1e-6)
	assert.InDelta(t, 29340, s.Comparison[1].MeanTotalAnnualUSD, 1e-6)
	assert.Equal(t, "USA", s.Comparison[4].Country)
}

func TestSummarizeByLevel(t *testing.T) {
	s, err := Summarize(sampleTable(t))
	require.NoError(t, err)

	require.Len(t, s.ByLevel, 3)
	assert.Equal(t, model.LevelBachelor, s.ByLevel[0].Level)
	assert.Equal(t, model.LevelMaster, s.ByLevel[1].Level)
	assert.Equal(t, model.LevelPhD, s.ByLevel[2].Level)
	assert.InDelta(t, 68900, s.ByLevel[1].MedianTotalAnnualUSD, 1e-6)
	assert.Equal(t, 1, s.ByLevel[2].Programs)
}

func TestPolicyGapByCountryLevel(t *testing.T) {
	rows := PolicyGapByCountryLevel(sampleTable(t))
	require.Len(t, rows, 7)

	assert.Equal(t, "Canada", rows[0].Country)
	assert.Equal(t, "Germany", rows[1].Country)
	assert.Equal(t, model.LevelBachelor, rows[1].Level)
	assert.Equal(t, model.LevelMaster, rows[2].Level)
	assert.Equal(t, 0.0, rows[2].ShareAboveMedian)

	last := rows[6]
	assert.Equal(t, "USA", last.Country)
	assert.Equal(t, model.LevelMaster, last.Level)
	assert.Equal(t, 1.0, last.ShareAboveMedian)
}

func TestSummarizeEmpty(t *testing.T) {
	_, err := Summarize([]model.NormalizedRecord{})
	assert.True(t, errors.Is(err, model.ErrEmptyTable))
}

func TestSummarizeAdjustedTable(t *testing.T) {
	adj, err := ApplyScenario(sampleTable(t), model.Levers{LivingSubsidyPct: 100})
	require.NoError(t, err)

	s, err := Summarize(adj)
	require.NoError(t, err)
	// With no living costs the cheapest program is the German bachelor at 1100 direct.
	assert.InDelta(t, 1100, s.TotalAnnual.Min, 1e-6)
}

func TestRankings(t *testing.T) {
	table := sampleTable(t)

	byTotal := RankByTotal(table)
	assert.Equal(t, 4, byTotal[0].Index)
	assert.Equal(t, 0, byTotal[len(byTotal)-1].Index)

	byAfford := RankByAffordability(table)
	assert.Equal(t, 4, byAfford[0].Index)
	for i := 1; i < len(byAfford); i++ {
		assert.GreaterOrEqual(t, byAfford[i-1].AffordabilityIndex, byAfford[i].AffordabilityIndex)
	}

	// USA Bachelor sits 56720 above its level median.
	byGap := RankByPolicyGap(table)
	assert.Equal(t, 3, byGap[0].Index)

	// Inputs keep their original order.
	for i, r := range table {
		assert.Equal(t, i, r.Index)
	}
}
