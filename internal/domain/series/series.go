// Package series aggregates a patient's observations into ordered
// per-metric time series and answers the latest-as-of queries scoring
// depends on.
package series

import (
	"sort"

	"github.com/vikashgd/liverTracker-sub000/internal/domain/metric"
	"github.com/vikashgd/liverTracker-sub000/internal/domain/model"
)

// Series is one patient's ordered history for a single metric.
// Points are strictly ascending by observed date; duplicates per date
// were resolved upstream.
type Series struct {
	PatientID string
	Metric    metric.ID
	Points    []model.Observation
}

// Set maps metric IDs to their series for one patient.
type Set map[metric.ID]Series

// Stats summarizes a series.
type Stats struct {
	Count      int
	Latest     float64
	LatestDate model.Date
	Min        float64
	Max        float64
	Mean       float64
}

// Flag classifies a point against the metric's reference range.
type Flag string

// Flag values.
const (
	FlagInRange    Flag = "in_range"
	FlagBelowRange Flag = "below_range"
	FlagAboveRange Flag = "above_range"
)

// Build groups observations by metric into sorted series. The whole set
// is rebuilt from scratch on every call; series are never patched in
// place, which keeps the ordering invariant trivial.
func Build(observations []model.Observation) Set {
	byMetric := make(map[metric.ID][]model.Observation)
	for _, o := range observations {
		byMetric[o.Metric] = append(byMetric[o.Metric], o)
	}

	set := make(Set, len(byMetric))
	for id, points := range byMetric {
		sorted := make([]model.Observation, len(points))
		copy(sorted, points)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].ObservedDate.Before(sorted[j].ObservedDate)
		})
		// Same-date collisions can only happen when separate documents
		// report the same metric and date; keep the higher-confidence
		// point, then break remaining ties by document ID so rebuilds
		// stay deterministic.
		deduped := sorted[:0]
		for _, o := range sorted {
			n := len(deduped)
			if n > 0 && deduped[n-1].ObservedDate == o.ObservedDate {
				if supersedes(o, deduped[n-1]) {
					deduped[n-1] = o
				}
				continue
			}
			deduped = append(deduped, o)
		}
		var patientID string
		if len(deduped) > 0 {
			patientID = deduped[0].PatientID
		}
		set[id] = Series{PatientID: patientID, Metric: id, Points: deduped}
	}
	return set
}

// supersedes reports whether a should replace b for the same date.
// The document-ID comparison carries no clinical meaning; it only
// guarantees the same winner on every rebuild.
func supersedes(a, b model.Observation) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	return a.SourceDocumentID > b.SourceDocumentID
}

// LatestAsOf returns the most recent observation dated on or before
// asOf, or false when the series has none. This is the single query
// the scoring engine uses, so scores stay reproducible for any
// historical as-of date.
func (s Series) LatestAsOf(asOf model.Date) (model.Observation, bool) {
	// Points are ascending; find the first point after asOf.
	i := sort.Search(len(s.Points), func(i int) bool {
		return s.Points[i].ObservedDate.After(asOf)
	})
	if i == 0 {
		return model.Observation{}, false
	}
	return s.Points[i-1], true
}

// Stats computes the summary statistics for the series.
func (s Series) Stats() Stats {
	if len(s.Points) == 0 {
		return Stats{}
	}
	st := Stats{
		Count: len(s.Points),
		Min:   s.Points[0].Value,
		Max:   s.Points[0].Value,
	}
	var sum float64
	for _, p := range s.Points {
		sum += p.Value
		if p.Value < st.Min {
			st.Min = p.Value
		}
		if p.Value > st.Max {
			st.Max = p.Value
		}
	}
	last := s.Points[len(s.Points)-1]
	st.Latest = last.Value
	st.LatestDate = last.ObservedDate
	st.Mean = sum / float64(len(s.Points))
	return st
}

// LatestAsOf looks up the metric's series in the set and delegates.
func (set Set) LatestAsOf(id metric.ID, asOf model.Date) (model.Observation, bool) {
	s, ok := set[id]
	if !ok {
		return model.Observation{}, false
	}
	return s.LatestAsOf(asOf)
}

// FlagValue classifies a value against a reference range. Flags feed
// trend classification and the read API; stored values are untouched.
func FlagValue(reference metric.Range, v float64) Flag {
	if reference.Min != nil && v < *reference.Min {
		return FlagBelowRange
	}
	if reference.Max != nil && v > *reference.Max {
		return FlagAboveRange
	}
	return FlagInRange
}
