package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/theirongolddev/edcost/internal/export"
	"github.com/theirongolddev/edcost/internal/model"
	"github.com/theirongolddev/edcost/internal/policy"
)

// ScenarioResponse is served at /v1/scenario.
type ScenarioResponse struct {
	Params        policy.Params          `json:"params"`
	Summary       *model.InsightSummary  `json:"summary"`
	ProgramGaps   []model.ProgramGap     `json:"program_gaps"`
	AggregateGaps []model.GapRow         `json:"aggregate_gaps"`
	Adjusted      []model.AdjustedRecord `json:"adjusted"`
}

// NewScenarioResponse shapes a result for JSON output. Empty tables encode as
// empty arrays and a null summary.
func NewScenarioResponse(res *policy.Result) ScenarioResponse {
	resp := ScenarioResponse{
		Params:        res.Params,
		ProgramGaps:   res.Gaps.Programs,
		AggregateGaps: res.Gaps.Aggregate,
		Adjusted:      res.Adjusted,
	}
	if len(res.Adjusted) > 0 {
		resp.Summary = &res.Summary
	}
	if resp.ProgramGaps == nil {
		resp.ProgramGaps = []model.ProgramGap{}
	}
	if resp.AggregateGaps == nil {
		resp.AggregateGaps = []model.GapRow{}
	}
	if resp.Adjusted == nil {
		resp.Adjusted = []model.AdjustedRecord{}
	}
	return resp
}

// ProgramsResponse is served at /v1/programs.
type ProgramsResponse struct {
	NYBaselineUSD float64                  `json:"ny_baseline_usd"`
	Sort          string                   `json:"sort"`
	Total         int                      `json:"total"`
	Programs      []model.NormalizedRecord `json:"programs"`
}

func (s *Service) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Service) handleStatus(c *gin.Context) {
	ds := s.engine.Dataset()
	c.JSON(http.StatusOK, Status{
		StartedAt: s.startedAt,
		DatasetID: ds.ID,
		Programs:  ds.Len(),
		Defaults:  s.cfg.Defaults,
		Engine:    s.engine.Stats(),
	})
}

// params reads scenario inputs from the query string over the configured defaults.
func (s *Service) params(c *gin.Context) (policy.Params, error) {
	raw := map[string]string{}
	for _, k := range []string{
		policy.ParamNYBaseline,
		policy.ParamTargetAnnual,
		policy.ParamTuitionCut,
		policy.ParamLivingSubsidy,
	} {
		if v, ok := c.GetQuery(k); ok {
			raw[k] = v
		}
	}
	return policy.ParseParams(raw, s.cfg.Defaults)
}

func (s *Service) snapshot(c *gin.Context) (*policy.Snapshot, bool) {
	p, err := s.params(c)
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}
	snap, err := s.engine.Snapshot(p.NYBaselineUSD)
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}
	return snap, true
}

func (s *Service) handleSummary(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	var summary *model.InsightSummary
	if len(snap.Table) > 0 {
		summary = &snap.Summary
	}
	c.JSON(http.StatusOK, gin.H{
		"ny_baseline_usd": snap.NYBaselineUSD,
		"summary":         summary,
	})
}

func (s *Service) handlePrograms(c *gin.Context) {
	sortBy := strings.ToLower(strings.TrimSpace(c.DefaultQuery("sort", "total")))
	limit := s.cfg.ProgramLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.respondError(c, &model.ValidationError{Field: "limit", Value: raw, Reason: "must be a positive integer"})
			return
		}
		limit = n
	}

	var rank func([]model.NormalizedRecord) []model.NormalizedRecord
	switch sortBy {
	case "total":
		rank = policy.RankByTotal[model.NormalizedRecord]
	case "affordability":
		rank = policy.RankByAffordability[model.NormalizedRecord]
	case "gap":
		rank = policy.RankByPolicyGap[model.NormalizedRecord]
	default:
		s.respondError(c, &model.ValidationError{Field: "sort", Value: sortBy, Reason: "must be one of total, affordability, gap"})
		return
	}

	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	rows := rank(snap.Table)
	total := len(rows)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	c.JSON(http.StatusOK, ProgramsResponse{
		NYBaselineUSD: snap.NYBaselineUSD,
		Sort:          sortBy,
		Total:         total,
		Programs:      rows,
	})
}

func (s *Service) handleScenario(c *gin.Context) {
	p, err := s.params(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	res, err := s.engine.Scenario(p)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewScenarioResponse(res))
}

// handleScenarioExport serves the same scenario as an XLSX download.
func (s *Service) handleScenarioExport(c *gin.Context) {
	p, err := s.params(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	res, err := s.engine.Scenario(p)
	if err != nil {
		s.respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteScenario(&buf, res); err != nil {
		s.respondError(c, err)
		return
	}
	name := fmt.Sprintf("edcost_scenario_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+name)
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func (s *Service) handleCharts(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ny_baseline_usd": snap.NYBaselineUSD,
		"charts":          snap.Charts,
	})
}
