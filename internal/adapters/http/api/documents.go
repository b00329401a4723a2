// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vikashgd/liverTracker-sub000/internal/domain/model"
)

// DocumentsHandler handles document ingestion requests.
type DocumentsHandler struct {
	deps DocumentDependencies
}

// NewDocumentsHandler creates a new documents handler.
func NewDocumentsHandler(deps DocumentDependencies) *DocumentsHandler {
	return &DocumentsHandler{deps: deps}
}

// candidateRequest mirrors the OpenAPI schema for one extracted tuple.
type candidateRequest struct {
	Name         string  `json:"name"`
	Value        float64 `json:"value"`
	Unit         string  `json:"unit,omitempty"`
	CategoryHint string  `json:"category_hint,omitempty"`
	Confidence   string  `json:"confidence,omitempty"`
	ExtractedAt  string  `json:"extracted_at,omitempty"`
	ObservedDate string  `json:"observed_date,omitempty"`
}

// documentRequest mirrors the OpenAPI schema for POST /documents.
type documentRequest struct {
	DocumentID   string             `json:"document_id,omitempty"`
	PatientID    string             `json:"patient_id"`
	DocumentDate string             `json:"document_date,omitempty"`
	Candidates   []candidateRequest `json:"candidates"`
}

func (d documentRequest) validate() error {
	if strings.TrimSpace(d.PatientID) == "" {
		return fmt.Errorf("missing patient_id")
	}
	if len(d.Candidates) == 0 {
		return fmt.Errorf("missing candidates")
	}
	if d.DocumentDate != "" {
		if _, err := model.ParseDate(d.DocumentDate); err != nil {
			return fmt.Errorf("invalid document_date; must be YYYY-MM-DD")
		}
	}
	for i, c := range d.Candidates {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("candidate %d: missing name", i)
		}
		if c.ExtractedAt != "" {
			if _, err := time.Parse(time.RFC3339, c.ExtractedAt); err != nil {
				return fmt.Errorf("candidate %d: invalid extracted_at; must be RFC3339", i)
			}
		}
		if c.ObservedDate != "" {
			if _, err := model.ParseDate(c.ObservedDate); err != nil {
				return fmt.Errorf("candidate %d: invalid observed_date; must be YYYY-MM-DD", i)
			}
		}
	}
	return nil
}

// toDocument converts a validated request into the pipeline document,
// assigning a document ID when the client sent none.
func (d documentRequest) toDocument(receivedAt time.Time) model.Document {
	doc := model.Document{
		DocumentID: d.DocumentID,
		PatientID:  d.PatientID,
		ReceivedAt: receivedAt,
	}
	if doc.DocumentID == "" {
		doc.DocumentID = uuid.NewString()
	}
	if d.DocumentDate != "" {
		doc.DocumentDate, _ = model.ParseDate(d.DocumentDate)
	}
	doc.Candidates = make([]model.RawMetricCandidate, 0, len(d.Candidates))
	for _, c := range d.Candidates {
		cand := model.RawMetricCandidate{
			RawName:      c.Name,
			RawValue:     c.Value,
			RawUnit:      c.Unit,
			CategoryHint: c.CategoryHint,
			Confidence:   model.ParseConfidence(c.Confidence),
			ExtractedAt:  receivedAt,
		}
		if c.ExtractedAt != "" {
			cand.ExtractedAt, _ = time.Parse(time.RFC3339, c.ExtractedAt)
		}
		if c.ObservedDate != "" {
			cand.ObservedDate, _ = model.ParseDate(c.ObservedDate)
		}
		doc.Candidates = append(doc.Candidates, cand)
	}
	return doc
}

type ackResponse struct {
	Status     string `json:"status"`
	Duplicate  bool   `json:"duplicate"`
	DocumentID string `json:"document_id"`
}

// HandlePostDocument handles POST /documents requests.
func (h *DocumentsHandler) HandlePostDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req documentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %s", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %s", ErrBadRequest, err))
		return
	}

	doc := req.toDocument(time.Now().UTC())

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), doc.DocumentID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true, DocumentID: doc.DocumentID})
		return
	}

	// Try to enqueue for async processing
	if ok := h.deps.Enqueue(r.Context(), doc); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), doc.DocumentID)
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false, DocumentID: doc.DocumentID})
}
