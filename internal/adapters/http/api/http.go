// Package api serves the results of the last analysis run over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/completeness/internal/app"
	"github.com/okian/completeness/internal/domain/grid"
	"github.com/okian/completeness/internal/domain/occurrence"
)

// Dependencies required by the HTTP handlers.
type Dependencies interface {
	StatsProvider

	// Completeness sums the last grid over the given axes, or averages it
	// over the contributing stars when mean is set.
	Completeness(over []int, mean bool) (grid.Projection, error)
	// Occurrence returns the occurrence rates of the last run along axis.
	Occurrence(axis int) (occurrence.Result, error)
}

// Server wires HTTP routes for the reporting API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	completenessHandler *CompletenessHandler
	occurrenceHandler   *OccurrenceHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(deps),
		completenessHandler: NewCompletenessHandler(deps),
		occurrenceHandler:   NewOccurrenceHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", MetricsHandler())
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/completeness", MetricsMiddleware(s.completenessHandler.HandleGetCompleteness, "completeness"))
	mux.HandleFunc("/occurrence", MetricsMiddleware(s.occurrenceHandler.HandleGetOccurrence, "occurrence"))
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

// writeServiceError maps service errors to status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNoRun):
		writeError(w, http.StatusServiceUnavailable, "no_run", err)
	case errors.Is(err, grid.ErrAxisIndex), errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
