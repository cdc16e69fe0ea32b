package policy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/edcost/internal/model"
)

func TestTargetGapProgramTable(t *testing.T) {
	base, err := Normalize(samplePrograms(), DefaultNYBaselineUSD)
	require.NoError(t, err)

	gaps, err := TargetGap(base, 60000, 0)
	require.NoError(t, err)

	// USA Master 98200, USA Bachelor 85100, UK Master 68900.
	require.Len(t, gaps.Programs, 3)
	assert.Equal(t, 0, gaps.Programs[0].Index)
	assert.InDelta(t, 38200, gaps.Programs[0].GapToTargetUSD, 1e-6)
	assert.Equal(t, 3, gaps.Programs[1].Index)
	assert.Equal(t, 2, gaps.Programs[2].Index)
	for i := 1; i < len(gaps.Programs); i++ {
		assert.GreaterOrEqual(t, gaps.Programs[i-1].GapToTargetUSD, gaps.Programs[i].GapToTargetUSD)
	}
	for _, g := range gaps.Programs {
		assert.Greater(t, g.GapToTargetUSD, 0.0)
	}
}

func TestTargetGapTruncatesToTopN(t *testing.T) {
	base, err := Normalize(samplePrograms(), DefaultNYBaselineUSD)
	require.NoError(t, err)

	gaps, err := TargetGap(base, 0, 2)
	require.NoError(t, err)
	assert.Len(t, gaps.Programs, 2)
	assert.Len(t, gaps.Aggregate, 7, "aggregate covers the full table")
}

func TestTargetGapExactlyAtTargetExcluded(t *testing.T) {
	base, err := Normalize([]model.Program{workedExample()}, 26000)
	require.NoError(t, err)

	gaps, err := TargetGap(base, base[0].TotalAnnualUSD, 0)
	require.NoError(t, err)
	assert.Empty(t, gaps.Programs)
	require.Len(t, gaps.Aggregate, 1)
	assert.Equal(t, 0.0, gaps.Aggregate[0].ShareAboveTarget)
}

func TestTargetGapAboveMaximum(t *testing.T) {
	base, err := Normalize(samplePrograms(), DefaultNYBaselineUSD)
	require.NoError(t, err)

	gaps, err := TargetGap(base, 1e6, 0)
	require.NoError(t, err)
	assert.Empty(t, gaps.Programs)
	require.NotEmpty(t, gaps.Aggregate)
	for _, row := range gaps.Aggregate {
		assert.Equal(t, 0.0, row.ShareAboveTarget, "%s/%s", row.Country, row.Level)
		assert.Less(t, row.MeanGapToTargetUSD, 0.0)
	}
}

func TestTargetGapAggregate(t *testing.T) {
	programs := []model.Program{
		program("USA", model.LevelMaster, 45000, 2200, 100), // 98200
		program("USA", model.LevelMaster, 5000, 1000, 50),   // 5800 + 12000 + 13000 = 30800
		program("India", model.LevelMaster, 3000, 300, 30),  // 15200
	}
	base, err := Normalize(programs, DefaultNYBaselineUSD)
	require.NoError(t, err)

	gaps, err := TargetGap(base, 40000, 0)
	require.NoError(t, err)
	require.Len(t, gaps.Aggregate, 2)

	usa := gaps.Aggregate[0]
	assert.Equal(t, "USA", usa.Country)
	assert.Equal(t, model.LevelMaster, usa.Level)
	assert.Equal(t, 2, usa.Programs)
	assert.InDelta(t, ((98200-40000)+(30800-40000))/2.0, usa.MeanGapToTargetUSD, 1e-6)
	assert.InDelta(t, 0.5, usa.ShareAboveTarget, 1e-12)
	assert.InDelta(t, (45800+5800)/2.0/((98200+30800)/2.0), usa.TuitionShare, 1e-9)
	assert.InDelta(t, 1, usa.TuitionShare+usa.LivingShare, 1e-12)

	india := gaps.Aggregate[1]
	assert.Equal(t, "India", india.Country)
	assert.InDelta(t, 15200-40000, india.MeanGapToTargetUSD, 1e-6)
	assert.Equal(t, 0.0, india.ShareAboveTarget)
}

func TestTargetGapOnAdjustedTable(t *testing.T) {
	base, err := Normalize([]model.Program{workedExample()}, 26000)
	require.NoError(t, err)
	adj, err := ApplyScenario(base, model.Levers{TuitionCutPct: 50})
	require.NoError(t, err)

	gaps, err := TargetGap(adj, 40000, 0)
	require.NoError(t, err)
	require.Len(t, gaps.Programs, 1)
	assert.InDelta(t, 4100, gaps.Programs[0].GapToTargetUSD, 1e-9)
}

func TestTargetGapEmptyTable(t *testing.T) {
	gaps, err := TargetGap([]model.NormalizedRecord{}, 40000, 0)
	require.NoError(t, err)
	assert.Empty(t, gaps.Programs)
	assert.Empty(t, gaps.Aggregate)
}

func TestTargetGapValidation(t *testing.T) {
	base, err := Normalize(samplePrograms(), DefaultNYBaselineUSD)
	require.NoError(t, err)

	for _, target := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := TargetGap(base, target, 0)
		assert.True(t, model.IsValidation(err), "target %v", target)
	}
}
