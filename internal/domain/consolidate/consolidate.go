// Package consolidate turns one document's raw extracted candidates
// into at most one observation per (canonical metric, calendar date).
//
// The whole pass is pure: same document in, same outcome out, and
// running it over an already-consolidated set is a no-op.
package consolidate

import (
	"fmt"
	"sort"

	"github.com/vikashgd/liverTracker-sub000/internal/domain/metric"
	"github.com/vikashgd/liverTracker-sub000/internal/domain/model"
)

// Discard records a duplicate candidate that lost the tie-break. Losers
// are never errors; they are retained for audit.
type Discard struct {
	Candidate    model.RawMetricCandidate
	Metric       metric.ID
	ObservedDate model.Date
	Reason       string
}

// Outcome is the full result of consolidating one document.
type Outcome struct {
	Observations []model.Observation
	// Unresolved holds candidates whose name/unit matched no alias;
	// they enter no series and no score, only the audit log.
	Unresolved []model.RawMetricCandidate
	Discarded  []Discard
}

// Consolidator resolves and deduplicates raw candidates.
type Consolidator struct {
	registry *metric.Registry
}

// New creates a Consolidator over the given registry.
func New(registry *metric.Registry) *Consolidator {
	return &Consolidator{registry: registry}
}

type resolved struct {
	candidate  model.RawMetricCandidate
	resolution metric.Resolution
	date       model.Date
	order      int // input position, the final deterministic tie-break
}

type groupKey struct {
	metric metric.ID
	date   model.Date
}

// Consolidate produces the document's observations. Duplicate
// candidates for the same (metric, date) are arbitrated by the
// tie-break chain: category hint present, newest extraction timestamp,
// highest extraction confidence, input order.
func (c *Consolidator) Consolidate(doc model.Document) Outcome {
	var out Outcome

	groups := make(map[groupKey][]resolved)
	var keys []groupKey
	for i, cand := range doc.Candidates {
		res, ok := c.registry.Resolve(cand.RawName, cand.RawUnit)
		if !ok {
			out.Unresolved = append(out.Unresolved, cand)
			continue
		}
		key := groupKey{metric: res.Metric.ID, date: doc.ObservedDateFor(cand)}
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], resolved{candidate: cand, resolution: res, date: key.date, order: i})
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].metric != keys[j].metric {
			return keys[i].metric < keys[j].metric
		}
		return keys[i].date.Before(keys[j].date)
	})

	for _, key := range keys {
		group := groups[key]
		winner := group[0]
		for _, r := range group[1:] {
			if better(r, winner) {
				winner = r
			}
		}
		for _, r := range group {
			if r.order == winner.order {
				continue
			}
			out.Discarded = append(out.Discarded, Discard{
				Candidate:    r.candidate,
				Metric:       key.metric,
				ObservedDate: key.date,
				Reason:       "lost duplicate tie-break",
			})
		}
		out.Observations = append(out.Observations, c.observe(doc, winner))
	}

	return out
}

// better reports whether a should survive over b.
func better(a, b resolved) bool {
	aHint := a.candidate.CategoryHint != ""
	bHint := b.candidate.CategoryHint != ""
	if aHint != bHint {
		return aHint
	}
	if !a.candidate.ExtractedAt.Equal(b.candidate.ExtractedAt) {
		return a.candidate.ExtractedAt.After(b.candidate.ExtractedAt)
	}
	if a.candidate.Confidence != b.candidate.Confidence {
		return a.candidate.Confidence > b.candidate.Confidence
	}
	return a.order < b.order
}

// observe builds the surviving observation, converting units and
// applying physiological sanity bounds.
func (c *Consolidator) observe(doc model.Document, r resolved) model.Observation {
	m := r.resolution.Metric

	obs := model.Observation{
		PatientID:        doc.PatientID,
		Metric:           m.ID,
		Value:            r.candidate.RawValue,
		Unit:             m.CanonicalUnit,
		ObservedDate:     r.date,
		SourceDocumentID: doc.DocumentID,
		Confidence:       r.candidate.Confidence,
	}
	if obs.Confidence == model.ConfidenceUnknown {
		obs.Confidence = model.ConfidenceMedium
	}
	if r.resolution.Convert != nil {
		obs.WasConverted = true
		obs.OriginalValue = r.candidate.RawValue
		obs.OriginalUnit = r.candidate.RawUnit
		obs.Value = r.resolution.Convert(r.candidate.RawValue)
	}

	// Implausible values are kept so clinicians still see them, but the
	// confidence floor makes every downstream score carry a caveat.
	if !m.Plausible.Contains(obs.Value) {
		obs.Confidence = model.ConfidenceLow
		obs.Warnings = append(obs.Warnings, fmt.Sprintf(
			"value %v %s outside physiological bounds for %s", obs.Value, obs.Unit, m.ID))
	}

	return obs
}
