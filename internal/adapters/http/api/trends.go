// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"

	"github.com/vikashgd/liverTracker-sub000/internal/domain/metric"
	"github.com/vikashgd/liverTracker-sub000/internal/domain/trend"
)

// TrendsHandler handles trend classification requests.
type TrendsHandler struct {
	deps TrendDependencies
}

// NewTrendsHandler creates a new trends handler.
func NewTrendsHandler(deps TrendDependencies) *TrendsHandler {
	return &TrendsHandler{deps: deps}
}

type trendResponse struct {
	PatientID  string  `json:"patient_id"`
	Subject    string  `json:"subject"`
	Direction  string  `json:"direction"`
	Confidence string  `json:"confidence"`
	Delta      float64 `json:"delta"`
}

// Handle dispatches GET /patients/{patient_id}/trends?metric=ALT or ?score=MELD.
func (h *TrendsHandler) Handle(w http.ResponseWriter, r *http.Request, patientID string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	metricName := r.URL.Query().Get("metric")
	scoreName := r.URL.Query().Get("score")
	switch {
	case metricName != "" && scoreName != "":
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: metric and score are mutually exclusive", ErrBadRequest))
	case metricName != "":
		h.handleMetric(w, r, patientID, metric.ID(metricName))
	case scoreName != "":
		h.handleScore(w, r, patientID, scoreName)
	default:
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: metric or score query parameter required", ErrBadRequest))
	}
}

func (h *TrendsHandler) handleMetric(w http.ResponseWriter, r *http.Request, patientID string, id metric.ID) {
	res, err := h.deps.MetricTrend(r.Context(), patientID, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTrendResponse(patientID, string(id), res))
}

func (h *TrendsHandler) handleScore(w http.ResponseWriter, r *http.Request, patientID, scoreName string) {
	t, ok := parseScoreType(scoreName)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: unknown score type %q", ErrBadRequest, scoreName))
		return
	}
	res, err := h.deps.ScoreTrend(r.Context(), patientID, t)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTrendResponse(patientID, scoreName, res))
}

func toTrendResponse(patientID, subject string, res trend.Result) trendResponse {
	return trendResponse{
		PatientID:  patientID,
		Subject:    subject,
		Direction:  string(res.Direction),
		Confidence: res.Confidence.String(),
		Delta:      res.Delta,
	}
}
