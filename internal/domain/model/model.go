// Package model contains the immutable value types passed between
// pipeline stages. No stage mutates another stage's output; superseding
// data is always a new value.
package model

import (
	"fmt"
	"time"

	"github.com/vikashgd/liverTracker-sub000/internal/domain/metric"
)

// Confidence is the ordered extraction/score confidence scale.
type Confidence int

// Confidence levels, lowest first so Min comparisons work directly.
const (
	ConfidenceUnknown Confidence = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
)

// String returns the wire spelling of the confidence level.
func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "low"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParseConfidence maps a wire spelling back to a Confidence.
// Unrecognized input yields ConfidenceUnknown.
func ParseConfidence(s string) Confidence {
	switch s {
	case "low":
		return ConfidenceLow
	case "medium":
		return ConfidenceMedium
	case "high":
		return ConfidenceHigh
	default:
		return ConfidenceUnknown
	}
}

// MinConfidence returns the lower of two confidence levels, treating
// unknown as the floor.
func MinConfidence(a, b Confidence) Confidence {
	if a < b {
		return a
	}
	return b
}

// Date is a calendar date. Observations are keyed by calendar date, not
// timestamp, so the type deliberately carries no clock or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates a timestamp to its UTC calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a "2006-01-02" date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d.Year == 0 && d.Month == 0 && d.Day == 0 }

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool { return other.Before(d) }

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats the date as "2006-01-02".
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// RawMetricCandidate is one name/value/unit tuple produced by the
// external recognition process. Immutable once created.
type RawMetricCandidate struct {
	RawName  string
	RawValue float64
	RawUnit  string
	// CategoryHint is set by higher-fidelity extraction passes (e.g.
	// "LFT"); its presence wins consolidation tie-breaks.
	CategoryHint string
	Confidence   Confidence
	ExtractedAt  time.Time
	// ObservedDate is set only when the extractor found an explicit
	// collection date for this value; zero means "use the document date".
	ObservedDate Date
}

// Document is one ingested report: the extractor's candidates plus
// source metadata.
type Document struct {
	DocumentID string
	PatientID  string
	// DocumentDate is the report's own date; zero when the extractor
	// could not find one, in which case ReceivedAt's date applies.
	DocumentDate Date
	ReceivedAt   time.Time
	Candidates   []RawMetricCandidate
}

// ObservedDateFor resolves the calendar date a candidate belongs to:
// explicit extracted date, then document date, then ingestion date.
func (d Document) ObservedDateFor(c RawMetricCandidate) Date {
	if !c.ObservedDate.IsZero() {
		return c.ObservedDate
	}
	if !d.DocumentDate.IsZero() {
		return d.DocumentDate
	}
	return DateOf(d.ReceivedAt)
}

// Observation is the resolved, consolidated lab fact: exactly one per
// (patient, canonical metric, calendar date). Never mutated after
// creation.
type Observation struct {
	PatientID        string
	Metric           metric.ID
	Value            float64
	Unit             metric.Unit
	ObservedDate     Date
	SourceDocumentID string
	Confidence       Confidence
	WasConverted     bool
	OriginalValue    float64
	OriginalUnit     string
	Warnings         []string
}

// Grade is a clinician-assessed severity grade for ascites or
// encephalopathy.
type Grade int

// Grade values. GradeUnassessed means the profile never recorded an
// assessment; Child-Pugh is not computable without one.
const (
	GradeUnassessed Grade = iota
	GradeNone
	GradeMild
	GradeSevere
)

// String returns the wire spelling of the grade.
func (g Grade) String() string {
	switch g {
	case GradeNone:
		return "none"
	case GradeMild:
		return "mild"
	case GradeSevere:
		return "severe"
	default:
		return "unassessed"
	}
}

// ParseGrade maps a wire spelling back to a Grade.
func ParseGrade(s string) (Grade, error) {
	switch s {
	case "none":
		return GradeNone, nil
	case "mild":
		return GradeMild, nil
	case "severe":
		return GradeSevere, nil
	case "", "unassessed":
		return GradeUnassessed, nil
	default:
		return GradeUnassessed, fmt.Errorf("unknown grade %q", s)
	}
}

// Points returns the Child-Pugh contribution of the grade.
// Calling this on an unassessed grade is a caller bug.
func (g Grade) Points() int {
	switch g {
	case GradeNone:
		return 1
	case GradeMild:
		return 2
	case GradeSevere:
		return 3
	default:
		panic("model: Points called on unassessed grade")
	}
}

// ClinicalProfile carries the clinician-maintained flags scoring needs.
// The profile store validates writes; the scoring engine assumes a
// validated profile.
type ClinicalProfile struct {
	PatientID               string
	OnDialysis              bool
	DialysisSessionsPerWeek int
	// LastDialysisDate is optional; when set, the MELD dialysis override
	// applies only if it falls within the trailing 7 days of the as-of
	// date.
	LastDialysisDate Date
	Ascites          Grade
	Encephalopathy   Grade
	Gender           string
	UpdatedAt        time.Time
}

// ScoreType identifies a clinical risk score.
type ScoreType string

// Supported score types.
const (
	ScoreMELD      ScoreType = "MELD"
	ScoreMELDNa    ScoreType = "MELD_NA"
	ScoreChildPugh ScoreType = "CHILD_PUGH"
)

// ScoreResult is one score computation outcome. A result with a nil
// Value is a normal "not computable" outcome, never an error; the
// missing inputs are listed in MissingParameters.
type ScoreResult struct {
	PatientID string
	Type      ScoreType
	Value     *int
	// Class carries the Child-Pugh class ("A"/"B"/"C"); empty for MELD
	// variants.
	Class string
	// Components records the exact observation values (or grade points)
	// used, so the score can be re-verified independently.
	Components map[string]float64
	ComputedAt time.Time
	AsOf       Date
	Confidence Confidence
	Warnings   []string
	// MissingParameters lists required inputs that were unavailable,
	// in lowercase canonical spelling, e.g. "creatinine".
	MissingParameters []string
}

// Computable reports whether the score yielded a numeric value.
func (r ScoreResult) Computable() bool { return r.Value != nil }
