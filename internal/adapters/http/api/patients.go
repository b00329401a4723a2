// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// PatientsHandler routes /patients/{patient_id}/... requests to the
// per-resource handlers.
type PatientsHandler struct {
	profile *ProfileHandler
	series  *SeriesHandler
	scores  *ScoresHandler
	trends  *TrendsHandler
}

// NewPatientsHandler creates the patient sub-resource router.
func NewPatientsHandler(deps Dependencies) *PatientsHandler {
	return &PatientsHandler{
		profile: NewProfileHandler(deps),
		series:  NewSeriesHandler(deps),
		scores:  NewScoresHandler(deps),
		trends:  NewTrendsHandler(deps),
	}
}

// Handle dispatches /patients/{patient_id}/{resource}[/{sub}] requests.
func (h *PatientsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	// Extract path parameters after /patients/
	path := strings.TrimPrefix(r.URL.Path, "/patients/")
	parts := strings.SplitN(path, "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		http.NotFound(w, r)
		return
	}
	patientID := parts[0]
	resource := parts[1]
	var sub string
	if len(parts) == 3 {
		sub = parts[2]
	}

	switch resource {
	case "profile":
		if sub != "" {
			http.NotFound(w, r)
			return
		}
		MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			h.profile.Handle(w, r, patientID)
		}, "patient_profile")(w, r)
	case "series":
		MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			h.series.Handle(w, r, patientID, sub)
		}, "patient_series")(w, r)
	case "scores":
		if sub != "" {
			http.NotFound(w, r)
			return
		}
		MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			h.scores.Handle(w, r, patientID)
		}, "patient_scores")(w, r)
	case "trends":
		if sub != "" {
			http.NotFound(w, r)
			return
		}
		MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			h.trends.Handle(w, r, patientID)
		}, "patient_trends")(w, r)
	default:
		http.NotFound(w, r)
	}
}
