// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/vikashgd/liverTracker-sub000/internal/domain/model"
)

// ScoresHandler handles clinical score requests.
type ScoresHandler struct {
	deps ScoreDependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps ScoreDependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

type scoreResponse struct {
	PatientID         string             `json:"patient_id"`
	Type              string             `json:"type"`
	Value             *int               `json:"value"`
	Class             string             `json:"class,omitempty"`
	Components        map[string]float64 `json:"components,omitempty"`
	ComputedAt        string             `json:"computed_at"`
	AsOf              string             `json:"as_of"`
	Confidence        string             `json:"confidence"`
	Warnings          []string           `json:"warnings,omitempty"`
	MissingParameters []string           `json:"missing_parameters,omitempty"`
}

func toScoreResponse(r model.ScoreResult) scoreResponse {
	return scoreResponse{
		PatientID:         r.PatientID,
		Type:              string(r.Type),
		Value:             r.Value,
		Class:             r.Class,
		Components:        r.Components,
		ComputedAt:        r.ComputedAt.UTC().Format(time.RFC3339),
		AsOf:              r.AsOf.String(),
		Confidence:        r.Confidence.String(),
		Warnings:          r.Warnings,
		MissingParameters: r.MissingParameters,
	}
}

// parseScoreType maps a query spelling to a score type.
func parseScoreType(s string) (model.ScoreType, bool) {
	switch s {
	case string(model.ScoreMELD):
		return model.ScoreMELD, true
	case string(model.ScoreMELDNa):
		return model.ScoreMELDNa, true
	case string(model.ScoreChildPugh):
		return model.ScoreChildPugh, true
	default:
		return "", false
	}
}

// Handle dispatches GET /patients/{patient_id}/scores?type=MELD&as_of=YYYY-MM-DD.
// Without a type filter all supported scores are returned.
func (h *ScoresHandler) Handle(w http.ResponseWriter, r *http.Request, patientID string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	asOf := model.DateOf(time.Now())
	if s := r.URL.Query().Get("as_of"); s != "" {
		parsed, err := model.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: as_of must be YYYY-MM-DD", ErrBadRequest))
			return
		}
		asOf = parsed
	}

	types := []model.ScoreType{model.ScoreMELD, model.ScoreMELDNa, model.ScoreChildPugh}
	if s := r.URL.Query().Get("type"); s != "" {
		t, ok := parseScoreType(s)
		if !ok {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: unknown score type %q", ErrBadRequest, s))
			return
		}
		types = []model.ScoreType{t}
	}

	responses := make([]scoreResponse, 0, len(types))
	for _, t := range types {
		res, err := h.deps.Score(r.Context(), patientID, t, asOf)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		responses = append(responses, toScoreResponse(res))
	}
	writeJSON(w, http.StatusOK, responses)
}
