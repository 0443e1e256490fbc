// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/gatecompass/internal/domain/types"
	"github.com/okian/gatecompass/pkg/logger"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	Report(ctx context.Context, from, to int) (types.Report, error)
	Topic(ctx context.Context, name string, from, to int) (types.TopicDetail, error)
	Subjects(ctx context.Context, from, to int) ([]types.SubjectSummary, error)
	YearStats(ctx context.Context, year int) (types.YearStatistics, error)
	Ready(ctx context.Context) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	reportHandler *ReportHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(deps),
		statsHandler:  NewStatsHandler(statsProvider),
		reportHandler: NewReportHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /readyz", MetricsMiddleware(s.healthHandler.HandleReady, "readyz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /report", MetricsMiddleware(s.reportHandler.HandleReport, "report"))
	mux.HandleFunc("GET /report.xlsx", MetricsMiddleware(s.reportHandler.HandleReportXLSX, "report_xlsx"))
	mux.HandleFunc("GET /topics/{name}", MetricsMiddleware(s.reportHandler.HandleTopic, "topics"))
	mux.HandleFunc("GET /subjects", MetricsMiddleware(s.reportHandler.HandleSubjects, "subjects"))
	mux.HandleFunc("GET /years/{year}", MetricsMiddleware(s.reportHandler.HandleYear, "years"))
}

// yearRange reads the optional from/to query parameters.
func yearRange(r *http.Request) (from, to int, err error) {
	if from, err = queryYear(r, "from"); err != nil {
		return 0, 0, err
	}
	if to, err = queryYear(r, "to"); err != nil {
		return 0, 0, err
	}
	return from, to, nil
}

func queryYear(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(v)
	if err != nil || year <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive year, got %q", ErrBadRequest, key, v)
	}
	return year, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as the single structured error body.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	e := Wrap(op, err)
	if e.Kind == KindInternal || e.Kind == KindDataUnavailable {
		logger.Get().Error(r.Context(), "request failed",
			logger.String("op", op),
			logger.String("kind", string(e.Kind)),
			logger.String("requestID", w.Header().Get(requestIDHeader)),
			logger.Error(err))
	}
	writeJSON(w, e.Kind.Status(), types.ErrorResponse{Kind: string(e.Kind), Message: e.Message()})
}
