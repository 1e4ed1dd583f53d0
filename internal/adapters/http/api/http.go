// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mgreen/swinglab/internal/adapters/repository"
	"github.com/mgreen/swinglab/internal/domain/dedupe"
	"github.com/mgreen/swinglab/internal/domain/model"
	"github.com/mgreen/swinglab/internal/domain/types"
)

// defaultMaxListLimit caps GET /analyses page sizes when no override is
// configured.
const defaultMaxListLimit = 100

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes a job for async processing. Returns false on backpressure.
	Enqueue(ctx context.Context, j model.Job) bool

	// Read operations expose stored analyses.
	List(ctx context.Context, limit int) ([]AnalysisEntry, error)
	Analysis(ctx context.Context, video string) (AnalysisEntry, error)
	Summary(ctx context.Context) (types.Summary, error)
}

// AnalysisEntry mirrors the read shape returned by analysis queries.
type AnalysisEntry = types.AnalysisEntry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	analysesHandler  *AnalysesHandler
	phasesHandler    *PhasesHandler
	dashboardHandler *dashboardHandler
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	maxListLimit int
}

// WithMaxListLimit caps the limit accepted by GET /analyses.
func WithMaxListLimit(limit int) ServerOption {
	return func(c *serverConfig) {
		if limit > 0 {
			c.maxListLimit = limit
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	cfg := serverConfig{maxListLimit: defaultMaxListLimit}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		analysesHandler:  NewAnalysesHandler(deps, cfg.maxListLimit),
		phasesHandler:    NewPhasesHandler(),
		dashboardHandler: newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/analyses", MetricsMiddleware(s.analysesHandler.HandleAnalyses, "analyses"))
	mux.HandleFunc("/analyses/", MetricsMiddleware(s.analysesHandler.HandleAnalysis, "analysis"))
	mux.HandleFunc("/phases", MetricsMiddleware(s.phasesHandler.HandlePhases, "phases"))
	mux.HandleFunc("/phases/", MetricsMiddleware(s.phasesHandler.HandlePhase, "phase"))
}

// analysisRequest mirrors the OpenAPI schema for POST /analyses.
type analysisRequest struct {
	Video        string `json:"video"`
	KeypointPath string `json:"keypoint_path"`
}

func (a analysisRequest) validate() error {
	switch {
	case strings.TrimSpace(a.Video) == "":
		return errors.New("missing video")
	case strings.Contains(a.Video, "/"):
		return errors.New("invalid video name")
	case strings.TrimSpace(a.KeypointPath) == "":
		return errors.New("missing keypoint_path")
	}
	return nil
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	JobID     string `json:"job_id,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
