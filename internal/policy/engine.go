package policy

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/theirongolddev/edcost/internal/model"
)

const (
	DefaultMaxRows     = 100000
	DefaultMemoEntries = 256
)

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	MaxRows     int
	MemoEntries int
	TopN        int
	Logger      *slog.Logger
}

// Snapshot is the base table for one NY baseline and everything derived from it.
type Snapshot struct {
	NYBaselineUSD float64
	Table         []model.NormalizedRecord
	Summary       model.InsightSummary
	Charts        model.ChartFrames
}

// Result is a scenario evaluated against one target.
type Result struct {
	Params   Params
	Adjusted []model.AdjustedRecord
	Summary  model.InsightSummary
	Gaps     model.GapTables
}

// EngineStats reports memo occupancy and effectiveness.
type EngineStats struct {
	Snapshots int   `json:"snapshots"`
	Results   int   `json:"results"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
}

type resultKey struct {
	dataset string
	params  Params
}

// Engine serves snapshots and scenario results for one dataset, memoizing
// both by their full parameter tuple. Concurrent identical requests share one
// computation. Returned values are shared between callers and must be treated
// as read-only.
type Engine struct {
	dataset *model.Dataset
	topN    int
	logger  *slog.Logger

	group singleflight.Group

	mu        sync.Mutex
	snapshots *memo[float64, *Snapshot]
	results   *memo[resultKey, *Result]

	hits   atomic.Int64
	misses atomic.Int64
}

// NewEngine binds an engine to ds. Tables larger than opts.MaxRows are
// rejected up front.
func NewEngine(ds *model.Dataset, opts Options) (*Engine, error) {
	if ds == nil {
		ds = &model.Dataset{}
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	if opts.MemoEntries <= 0 {
		opts.MemoEntries = DefaultMemoEntries
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if n := ds.Len(); n > opts.MaxRows {
		return nil, &model.DataIntegrityError{
			Source: "dataset",
			Reason: fmt.Sprintf("%d programs exceeds the limit of %d", n, opts.MaxRows),
		}
	}

	return &Engine{
		dataset:   ds,
		topN:      opts.TopN,
		logger:    opts.Logger,
		snapshots: newMemo[float64, *Snapshot](opts.MemoEntries),
		results:   newMemo[resultKey, *Result](opts.MemoEntries),
	}, nil
}

// Dataset returns the raw table the engine serves.
func (e *Engine) Dataset() *model.Dataset { return e.dataset }

// TopN returns the program gap table size.
func (e *Engine) TopN() int { return e.topN }

// Stats returns a point-in-time view of the memo.
func (e *Engine) Stats() EngineStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EngineStats{
		Snapshots: e.snapshots.len(),
		Results:   e.results.len(),
		Hits:      e.hits.Load(),
		Misses:    e.misses.Load(),
	}
}

// Snapshot returns the normalized base table for nyBaselineUSD.
func (e *Engine) Snapshot(nyBaselineUSD float64) (*Snapshot, error) {
	if err := (Params{NYBaselineUSD: nyBaselineUSD}).Validate(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	s, ok := e.snapshots.get(nyBaselineUSD)
	e.mu.Unlock()
	if ok {
		e.hits.Add(1)
		return s, nil
	}

	key := "snapshot|" + e.dataset.ID + "|" + formatKey(nyBaselineUSD)
	v, err, _ := e.group.Do(key, func() (any, error) {
		e.mu.Lock()
		s, ok := e.snapshots.get(nyBaselineUSD)
		e.mu.Unlock()
		if ok {
			e.hits.Add(1)
			return s, nil
		}
		e.misses.Add(1)

		table, err := Normalize(e.dataset.Programs, nyBaselineUSD)
		if err != nil {
			return nil, fmt.Errorf("normalizing dataset: %w", err)
		}
		s = &Snapshot{
			NYBaselineUSD: nyBaselineUSD,
			Table:         table,
			Charts:        BuildChartFrames(table),
		}
		s.Summary, err = Summarize(table)
		if err != nil && !errors.Is(err, model.ErrEmptyTable) {
			return nil, err
		}

		e.mu.Lock()
		e.snapshots.put(nyBaselineUSD, s)
		e.mu.Unlock()
		e.logger.Debug("snapshot computed",
			"dataset", e.dataset.ID,
			"ny_baseline", nyBaselineUSD,
			"programs", len(table))
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Summary returns the base insight summary, or model.ErrEmptyTable when the
// dataset has no programs.
func (e *Engine) Summary(nyBaselineUSD float64) (model.InsightSummary, error) {
	s, err := e.Snapshot(nyBaselineUSD)
	if err != nil {
		return model.InsightSummary{}, err
	}
	if len(s.Table) == 0 {
		return model.InsightSummary{}, model.ErrEmptyTable
	}
	return s.Summary, nil
}

// Scenario applies p's levers to the base table and measures the result
// against p's target.
func (e *Engine) Scenario(p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	k := resultKey{dataset: e.dataset.ID, params: p}
	e.mu.Lock()
	r, ok := e.results.get(k)
	e.mu.Unlock()
	if ok {
		e.hits.Add(1)
		return r, nil
	}

	sfKey := "scenario|" + e.dataset.ID + "|" + formatKey(p.NYBaselineUSD) + "|" +
		formatKey(p.Levers.TuitionCutPct) + "|" + formatKey(p.Levers.LivingSubsidyPct) + "|" +
		formatKey(p.TargetAnnualUSD)
	v, err, _ := e.group.Do(sfKey, func() (any, error) {
		e.mu.Lock()
		r, ok := e.results.get(k)
		e.mu.Unlock()
		if ok {
			e.hits.Add(1)
			return r, nil
		}

		base, err := e.Snapshot(p.NYBaselineUSD)
		if err != nil {
			return nil, err
		}
		e.misses.Add(1)

		adjusted, err := ApplyScenario(base.Table, p.Levers)
		if err != nil {
			return nil, err
		}
		gaps, err := TargetGap(adjusted, p.TargetAnnualUSD, e.topN)
		if err != nil {
			return nil, err
		}
		r = &Result{Params: p, Adjusted: adjusted, Gaps: gaps}
		r.Summary, err = Summarize(adjusted)
		if err != nil && !errors.Is(err, model.ErrEmptyTable) {
			return nil, err
		}

		e.mu.Lock()
		e.results.put(k, r)
		e.mu.Unlock()
		e.logger.Debug("scenario computed",
			"dataset", e.dataset.ID,
			"tuition_cut", p.Levers.TuitionCutPct,
			"living_subsidy", p.Levers.LivingSubsidyPct,
			"target", p.TargetAnnualUSD,
			"above_target", len(gaps.Programs))
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

func formatKey(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// memo is a bounded map that evicts its oldest entry first.
// It is not safe for concurrent use.
type memo[K comparable, V any] struct {
	capacity int
	entries  map[K]V
	order    []K
}

func newMemo[K comparable, V any](capacity int) *memo[K, V] {
	return &memo[K, V]{capacity: capacity, entries: make(map[K]V, capacity)}
}

func (m *memo[K, V]) get(k K) (V, bool) {
	v, ok := m.entries[k]
	return v, ok
}

func (m *memo[K, V]) put(k K, v V) {
	if _, ok := m.entries[k]; ok {
		m.entries[k] = v
		return
	}
	for len(m.order) >= m.capacity {
		delete(m.entries, m.order[0])
		m.order = m.order[1:]
	}
	m.entries[k] = v
	m.order = append(m.order, k)
}

func (m *memo[K, V]) len() int { return len(m.entries) }
