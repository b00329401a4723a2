// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vikashgd/liverTracker-sub000/internal/domain/model"
)

// ProfileHandler handles clinical profile requests.
type ProfileHandler struct {
	deps ProfileDependencies
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(deps ProfileDependencies) *ProfileHandler {
	return &ProfileHandler{deps: deps}
}

// profileRequest mirrors the OpenAPI schema for PUT .../profile.
type profileRequest struct {
	OnDialysis              bool   `json:"on_dialysis"`
	DialysisSessionsPerWeek int    `json:"dialysis_sessions_per_week"`
	LastDialysisDate        string `json:"last_dialysis_date,omitempty"`
	Ascites                 string `json:"ascites,omitempty"`
	Encephalopathy          string `json:"encephalopathy,omitempty"`
	Gender                  string `json:"gender,omitempty"`
}

type profileResponse struct {
	PatientID               string `json:"patient_id"`
	OnDialysis              bool   `json:"on_dialysis"`
	DialysisSessionsPerWeek int    `json:"dialysis_sessions_per_week"`
	LastDialysisDate        string `json:"last_dialysis_date,omitempty"`
	Ascites                 string `json:"ascites"`
	Encephalopathy          string `json:"encephalopathy"`
	Gender                  string `json:"gender,omitempty"`
	UpdatedAt               string `json:"updated_at"`
}

func toProfileResponse(p model.ClinicalProfile) profileResponse {
	res := profileResponse{
		PatientID:               p.PatientID,
		OnDialysis:              p.OnDialysis,
		DialysisSessionsPerWeek: p.DialysisSessionsPerWeek,
		Ascites:                 p.Ascites.String(),
		Encephalopathy:          p.Encephalopathy.String(),
		Gender:                  p.Gender,
		UpdatedAt:               p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if !p.LastDialysisDate.IsZero() {
		res.LastDialysisDate = p.LastDialysisDate.String()
	}
	return res
}

// Handle dispatches GET and PUT for /patients/{patient_id}/profile.
func (h *ProfileHandler) Handle(w http.ResponseWriter, r *http.Request, patientID string) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r, patientID)
	case http.MethodPut:
		h.handlePut(w, r, patientID)
	default:
		http.NotFound(w, r)
	}
}

func (h *ProfileHandler) handleGet(w http.ResponseWriter, r *http.Request, patientID string) {
	p, err := h.deps.Profile(r.Context(), patientID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

func (h *ProfileHandler) handlePut(w http.ResponseWriter, r *http.Request, patientID string) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %s", ErrBadRequest, err))
		return
	}

	p := model.ClinicalProfile{
		PatientID:               patientID,
		OnDialysis:              req.OnDialysis,
		DialysisSessionsPerWeek: req.DialysisSessionsPerWeek,
		Gender:                  req.Gender,
	}
	var err error
	if p.Ascites, err = model.ParseGrade(req.Ascites); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: ascites: %s", ErrBadRequest, err))
		return
	}
	if p.Encephalopathy, err = model.ParseGrade(req.Encephalopathy); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: encephalopathy: %s", ErrBadRequest, err))
		return
	}
	if req.LastDialysisDate != "" {
		if p.LastDialysisDate, err = model.ParseDate(req.LastDialysisDate); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: last_dialysis_date must be YYYY-MM-DD", ErrBadRequest))
			return
		}
	}

	if err := h.deps.SaveProfile(r.Context(), p); err != nil {
		writeDomainError(w, err)
		return
	}

	stored, err := h.deps.Profile(r.Context(), patientID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(stored))
}
