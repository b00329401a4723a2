package synthload

import "time"

// Config holds configuration for the synthetic document run
type Config struct {
	BaseURL      string        // Base URL of the service
	NumPatients  int           // Number of synthetic patients
	DocsPerPat   int           // Documents per patient
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	OutputFile   string        // Output file for generated documents
	LogFile      string        // Log file for run output
	Verbose      bool          // Enable verbose logging
	ResubmitRate float64       // Fraction of documents submitted twice to exercise idempotency
}

// Candidate mirrors the ingest API candidate schema
type Candidate struct {
	Name         string  `json:"name"`
	Value        float64 `json:"value"`
	Unit         string  `json:"unit,omitempty"`
	CategoryHint string  `json:"category_hint,omitempty"`
	Confidence   string  `json:"confidence,omitempty"`
	ObservedDate string  `json:"observed_date,omitempty"`
}

// Document mirrors the ingest API document schema
type Document struct {
	DocumentID   string      `json:"document_id"`
	PatientID    string      `json:"patient_id"`
	DocumentDate string      `json:"document_date"`
	Candidates   []Candidate `json:"candidates"`
}

// AckResponse represents the response from document submission
type AckResponse struct {
	Status     string `json:"status"`
	Duplicate  bool   `json:"duplicate"`
	DocumentID string `json:"document_id"`
}

// ScoreResponse is the read-back shape for one computed score
type ScoreResponse struct {
	PatientID         string   `json:"patient_id"`
	Type              string   `json:"type"`
	Value             *int     `json:"value"`
	Class             string   `json:"class,omitempty"`
	Confidence        string   `json:"confidence"`
	MissingParameters []string `json:"missing_parameters,omitempty"`
}

// SeriesResponse is the read-back shape for one metric series
type SeriesResponse struct {
	Metric string `json:"metric"`
	Points []struct {
		Date  string  `json:"date"`
		Value float64 `json:"value"`
		Flag  string  `json:"flag"`
	} `json:"points"`
}

// Stats holds run statistics
type Stats struct {
	DocumentsGenerated int
	DocumentsSubmitted int
	DocumentsAccepted  int
	DocumentsDuplicate int
	DocumentsFailed    int
	PatientsVerified   int
	ScoresComputed     int
	ScoresMissing      int
	SeriesRetrieved    int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
