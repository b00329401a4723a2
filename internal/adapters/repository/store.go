// Package repository defines the observation store interface and errors.
package repository

import (
	"context"

	"github.com/vikashgd/liverTracker-sub000/internal/domain/metric"
	"github.com/vikashgd/liverTracker-sub000/internal/domain/model"
	"github.com/vikashgd/liverTracker-sub000/internal/domain/series"
)

// Store provides read/write access to per-patient observation state.
//
// Every commit rebuilds the patient's series set from scratch and bumps
// the patient's data version; a version therefore fingerprints the
// observation set for cache keying, because a newly ingested document
// can retroactively change historical latest-as-of answers.
type Store interface {
	// Commit appends observations for a patient and returns the
	// patient's new data version.
	Commit(ctx context.Context, patientID string, observations []model.Observation) (uint64, error)

	// SeriesSet returns the patient's full series set and current data
	// version. Returns ErrPatientNotFound for unknown patients.
	SeriesSet(ctx context.Context, patientID string) (series.Set, uint64, error)

	// Series returns one metric's series for a patient. Returns
	// ErrPatientNotFound or ErrSeriesNotFound.
	Series(ctx context.Context, patientID string, id metric.ID) (series.Series, error)

	// Version returns the patient's current data version (zero for
	// unknown patients).
	Version(ctx context.Context, patientID string) uint64

	// PatientCount returns the number of patients with observations.
	PatientCount(ctx context.Context) int

	// ObservationCount returns the total number of stored observations.
	ObservationCount(ctx context.Context) int
}
