package policy

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/edcost/internal/model"
)

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	e, err := NewEngine(&model.Dataset{ID: "test", Programs: samplePrograms()}, opts)
	require.NoError(t, err)
	return e
}

func TestEngineScenarioMatchesPipeline(t *testing.T) {
	e := newTestEngine(t, Options{})
	p := Params{
		NYBaselineUSD:   DefaultNYBaselineUSD,
		TargetAnnualUSD: 40000,
		Levers:          model.Levers{TuitionCutPct: 30, LivingSubsidyPct: 10},
	}

	got, err := e.Scenario(p)
	require.NoError(t, err)

	base, err := Normalize(samplePrograms(), p.NYBaselineUSD)
	require.NoError(t, err)
	adj, err := ApplyScenario(base, p.Levers)
	require.NoError(t, err)
	gaps, err := TargetGap(adj, p.TargetAnnualUSD, DefaultTopN)
	require.NoError(t, err)

	require.Len(t, got.Adjusted, len(adj))
	for i := range adj {
		assert.Equal(t, adj[i].TotalAnnualUSD, got.Adjusted[i].TotalAnnualUSD)
	}
	assert.Equal(t, gaps, got.Gaps)
	assert.Equal(t, p, got.Params)
}

func TestEngineMemoizes(t *testing.T) {
	e := newTestEngine(t, Options{})
	p := DefaultParams()

	first, err := e.Scenario(p)
	require.NoError(t, err)
	second, err := e.Scenario(p)
	require.NoError(t, err)
	assert.Same(t, first, second)

	stats := e.Stats()
	assert.Equal(t, 1, stats.Snapshots)
	assert.Equal(t, 1, stats.Results)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, int64(1), stats.Hits)

	p.Levers.TuitionCutPct = 10
	third, err := e.Scenario(p)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, e.Stats().Results)
}

func TestEngineEvictsOldest(t *testing.T) {
	e := newTestEngine(t, Options{MemoEntries: 2})

	for _, cut := range []float64{0, 10, 20} {
		p := DefaultParams()
		p.Levers.TuitionCutPct = cut
		_, err := e.Scenario(p)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, e.Stats().Results)

	missesBefore := e.Stats().Misses
	p := DefaultParams()
	p.Levers.TuitionCutPct = 20
	_, err := e.Scenario(p)
	require.NoError(t, err)
	assert.Equal(t, missesBefore, e.Stats().Misses, "newest entry stays cached")

	p.Levers.TuitionCutPct = 0
	_, err = e.Scenario(p)
	require.NoError(t, err)
	assert.Equal(t, missesBefore+1, e.Stats().Misses, "oldest entry was evicted")
}

func TestEngineConcurrentIdenticalRequests(t *testing.T) {
	e := newTestEngine(t, Options{})
	p := DefaultParams()
	p.Levers.LivingSubsidyPct = 40

	const n = 32
	results := make([]*Result, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			r, err := e.Scenario(p)
			assert.NoError(t, err)
			results[i] = r
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Same(t, results[0], r)
	}
	assert.Equal(t, int64(2), e.Stats().Misses)
}

func TestEngineConcurrentDistinctRequests(t *testing.T) {
	e := newTestEngine(t, Options{})

	var wg sync.WaitGroup
	for cut := 0; cut <= 100; cut += 5 {
		wg.Add(1)
		go func(cut float64) {
			defer wg.Done()
			p := DefaultParams()
			p.Levers.TuitionCutPct = cut
			r, err := e.Scenario(p)
			if assert.NoError(t, err) {
				assert.Equal(t, cut, r.Params.Levers.TuitionCutPct)
			}
		}(float64(cut))
	}
	wg.Wait()
	assert.Equal(t, 21, e.Stats().Results)
}

func TestEngineValidation(t *testing.T) {
	e := newTestEngine(t, Options{})

	p := DefaultParams()
	p.Levers.TuitionCutPct = 120
	r, err := e.Scenario(p)
	assert.Nil(t, r)
	assert.True(t, model.IsValidation(err))

	_, err = e.Snapshot(-1)
	assert.True(t, model.IsValidation(err))
	assert.Equal(t, 0, e.Stats().Results)
}

func TestEngineRejectsOversizedTable(t *testing.T) {
	_, err := NewEngine(&model.Dataset{Programs: samplePrograms()}, Options{MaxRows: 3})
	assert.True(t, model.IsDataIntegrity(err))
}

func TestEngineIntegrityErrorNotCached(t *testing.T) {
	programs := samplePrograms()
	programs[0].DurationYears = 0
	e, err := NewEngine(&model.Dataset{ID: "bad", Programs: programs}, Options{})
	require.NoError(t, err)

	_, err = e.Scenario(DefaultParams())
	assert.True(t, model.IsDataIntegrity(err))
	assert.Equal(t, 0, e.Stats().Snapshots)
}

func TestEngineEmptyDataset(t *testing.T) {
	e, err := NewEngine(nil, Options{})
	require.NoError(t, err)

	_, err = e.Summary(DefaultNYBaselineUSD)
	assert.True(t, errors.Is(err, model.ErrEmptyTable))

	r, err := e.Scenario(DefaultParams())
	require.NoError(t, err)
	assert.Empty(t, r.Adjusted)
	assert.Empty(t, r.Gaps.Programs)
}

func BenchmarkEngineScenarioCached(b *testing.B) {
	e, err := NewEngine(&model.Dataset{ID: "bench", Programs: samplePrograms()}, Options{})
	if err != nil {
		b.Fatal(err)
	}
	p := DefaultParams()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Scenario(p); err != nil {
			b.Fatal(err)
		}
	}
}
