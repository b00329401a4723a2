// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/vikashgd/liverTracker-sub000/internal/domain/metric"
	"github.com/vikashgd/liverTracker-sub000/internal/domain/series"
)

// SeriesHandler handles time-series read requests.
type SeriesHandler struct {
	deps SeriesDependencies
}

// NewSeriesHandler creates a new series handler.
func NewSeriesHandler(deps SeriesDependencies) *SeriesHandler {
	return &SeriesHandler{deps: deps}
}

type pointResponse struct {
	Date             string   `json:"date"`
	Value            float64  `json:"value"`
	Flag             string   `json:"flag"`
	Confidence       string   `json:"confidence"`
	SourceDocumentID string   `json:"source_document_id"`
	Converted        bool     `json:"converted,omitempty"`
	OriginalValue    *float64 `json:"original_value,omitempty"`
	OriginalUnit     string   `json:"original_unit,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
}

type rangeResponse struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

type statsResponse struct {
	Count      int     `json:"count"`
	Latest     float64 `json:"latest"`
	LatestDate string  `json:"latest_date"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Mean       float64 `json:"mean"`
}

type seriesResponse struct {
	PatientID string          `json:"patient_id"`
	Metric    string          `json:"metric"`
	Unit      string          `json:"unit"`
	Reference rangeResponse   `json:"reference"`
	Stats     statsResponse   `json:"stats"`
	Points    []pointResponse `json:"points"`
}

func (h *SeriesHandler) toSeriesResponse(s series.Series) seriesResponse {
	m, _ := h.deps.MetricByID(s.Metric)
	st := s.Stats()
	res := seriesResponse{
		PatientID: s.PatientID,
		Metric:    string(s.Metric),
		Unit:      string(m.CanonicalUnit),
		Reference: rangeResponse{Min: m.Reference.Min, Max: m.Reference.Max},
		Stats: statsResponse{
			Count:      st.Count,
			Latest:     st.Latest,
			LatestDate: st.LatestDate.String(),
			Min:        st.Min,
			Max:        st.Max,
			Mean:       st.Mean,
		},
		Points: make([]pointResponse, 0, len(s.Points)),
	}
	for _, p := range s.Points {
		pr := pointResponse{
			Date:             p.ObservedDate.String(),
			Value:            p.Value,
			Flag:             string(series.FlagValue(m.Reference, p.Value)),
			Confidence:       p.Confidence.String(),
			SourceDocumentID: p.SourceDocumentID,
			Warnings:         p.Warnings,
		}
		if p.WasConverted {
			orig := p.OriginalValue
			pr.Converted = true
			pr.OriginalValue = &orig
			pr.OriginalUnit = p.OriginalUnit
		}
		res.Points = append(res.Points, pr)
	}
	return res
}

// Handle dispatches GET /patients/{patient_id}/series[/{metric}].
func (h *SeriesHandler) Handle(w http.ResponseWriter, r *http.Request, patientID, metricName string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if metricName == "" {
		h.handleAll(w, r, patientID)
		return
	}
	h.handleOne(w, r, patientID, metric.ID(metricName))
}

func (h *SeriesHandler) handleAll(w http.ResponseWriter, r *http.Request, patientID string) {
	set, err := h.deps.SeriesSet(r.Context(), patientID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	responses := make([]seriesResponse, 0, len(set))
	for _, s := range set {
		responses = append(responses, h.toSeriesResponse(s))
	}
	sort.Slice(responses, func(i, j int) bool {
		return responses[i].Metric < responses[j].Metric
	})
	writeJSON(w, http.StatusOK, responses)
}

func (h *SeriesHandler) handleOne(w http.ResponseWriter, r *http.Request, patientID string, id metric.ID) {
	if _, ok := h.deps.MetricByID(id); !ok {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: unknown metric %q", ErrBadRequest, id))
		return
	}
	s, err := h.deps.Series(r.Context(), patientID, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toSeriesResponse(s))
}
