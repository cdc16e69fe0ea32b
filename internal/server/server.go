// Package server exposes the policy engine over a read-only HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/theirongolddev/edcost/internal/policy"
)

const (
	defaultAddr         = "127.0.0.1:8790"
	defaultProgramLimit = 50
)

// Config controls the server runtime behavior.
type Config struct {
	Addr         string
	Defaults     policy.Params
	ProgramLimit int
}

// Status is served at /v1/status.
type Status struct {
	StartedAt time.Time          `json:"started_at"`
	DatasetID string             `json:"dataset_id"`
	Programs  int                `json:"programs"`
	Defaults  policy.Params      `json:"defaults"`
	Engine    policy.EngineStats `json:"engine"`
}

// Service provides the HTTP API over one engine.
type Service struct {
	cfg       Config
	engine    *policy.Engine
	logger    *slog.Logger
	startedAt time.Time
}

// New returns a new service bound to engine.
func New(cfg Config, engine *policy.Engine, logger *slog.Logger) *Service {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.ProgramLimit < 1 {
		cfg.ProgramLimit = defaultProgramLimit
	}
	if cfg.Defaults == (policy.Params{}) {
		cfg.Defaults = policy.DefaultParams()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:       cfg,
		engine:    engine,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// Addr returns the listen address.
func (s *Service) Addr() string { return s.cfg.Addr }

// Handler builds the routed gin engine.
func (s *Service) Handler() http.Handler {
	r := gin.New()
	r.Use(RequestID(), Logging(s.logger), Recovery(s.logger))

	r.GET("/healthz", s.handleHealth)
	v1 := r.Group("/v1")
	v1.GET("/status", s.handleStatus)
	v1.GET("/summary", s.handleSummary)
	v1.GET("/programs", s.handlePrograms)
	v1.GET("/scenario", s.handleScenario)
	v1.GET("/scenario/export", s.handleScenarioExport)
	v1.GET("/charts", s.handleCharts)

	r.NoRoute(func(c *gin.Context) {
		abort(c, http.StatusNotFound, "not_found", "Route not found", nil)
	})
	return r
}

// Run serves the API until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.logger.Info("server.start", "addr", s.cfg.Addr, "dataset", s.engine.Dataset().ID)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("server.stop", "addr", s.cfg.Addr)
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}
