// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vikashgd/liverTracker-sub000/internal/adapters/profile"
	"github.com/vikashgd/liverTracker-sub000/internal/adapters/repository"
	"github.com/vikashgd/liverTracker-sub000/internal/domain/metric"
	"github.com/vikashgd/liverTracker-sub000/internal/domain/model"
	"github.com/vikashgd/liverTracker-sub000/internal/domain/series"
	"github.com/vikashgd/liverTracker-sub000/internal/domain/trend"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	DocumentDependencies
	ProfileDependencies
	SeriesDependencies
	ScoreDependencies
	TrendDependencies
}

// DocumentDependencies covers document ingestion.
type DocumentDependencies interface {
	// SeenAndRecord atomically checks-and-marks a document ID; true means
	// the document was already ingested.
	SeenAndRecord(ctx context.Context, documentID string) bool

	// Unrecord forgets a document ID after a failed enqueue so the client
	// can retry.
	Unrecord(ctx context.Context, documentID string)

	// Enqueue pushes a document for async processing. Returns false on
	// backpressure.
	Enqueue(ctx context.Context, doc model.Document) bool
}

// ProfileDependencies covers clinical profile reads and writes.
type ProfileDependencies interface {
	Profile(ctx context.Context, patientID string) (model.ClinicalProfile, error)
	SaveProfile(ctx context.Context, p model.ClinicalProfile) error
}

// SeriesDependencies covers time-series reads.
type SeriesDependencies interface {
	SeriesSet(ctx context.Context, patientID string) (series.Set, error)
	Series(ctx context.Context, patientID string, id metric.ID) (series.Series, error)
	MetricByID(id metric.ID) (metric.Metric, bool)
}

// ScoreDependencies covers score reads.
type ScoreDependencies interface {
	Score(ctx context.Context, patientID string, t model.ScoreType, asOf model.Date) (model.ScoreResult, error)
}

// TrendDependencies covers trend reads.
type TrendDependencies interface {
	MetricTrend(ctx context.Context, patientID string, id metric.ID) (trend.Result, error)
	ScoreTrend(ctx context.Context, patientID string, t model.ScoreType) (trend.Result, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	documentsHandler *DocumentsHandler
	patientsHandler  *PatientsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		documentsHandler: NewDocumentsHandler(deps),
		patientsHandler:  NewPatientsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/documents", MetricsMiddleware(s.documentsHandler.HandlePostDocument, "documents"))
	mux.HandleFunc("/patients/", s.patientsHandler.Handle)
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

// writeDomainError translates store and validation errors to HTTP status
// codes; anything unrecognized is a 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrPatientNotFound),
		errors.Is(err, repository.ErrSeriesNotFound),
		errors.Is(err, profile.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, profile.ErrInvalidProfile),
		errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
