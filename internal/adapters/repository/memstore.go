package repository

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vikashgd/liverTracker-sub000/internal/domain/metric"
	"github.com/vikashgd/liverTracker-sub000/internal/domain/model"
	"github.com/vikashgd/liverTracker-sub000/internal/domain/series"
	"github.com/vikashgd/liverTracker-sub000/pkg/metrics"
)

// Default store configuration.
const defaultShardCount = 8

// patientState is all stored data for one patient. The series set is a
// rebuilt snapshot, never patched, so readers get a consistent view.
type patientState struct {
	observations []model.Observation
	set          series.Set
	version      uint64
}

type shard struct {
	mu       sync.RWMutex
	patients map[string]*patientState
}

// MemStore implements Store with patient-sharded in-memory state.
type MemStore struct {
	shards       []*shard
	shardCount   int
	observations atomic.Int64
	patientCount atomic.Int64
}

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithShardCount sets the number of patient shards.
func WithShardCount(count int) Option {
	return func(s *MemStore) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// NewMemStore creates an in-memory observation store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{shardCount: defaultShardCount}
	for _, opt := range opts {
		opt(s)
	}
	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{patients: make(map[string]*patientState)}
	}
	return s
}

func (s *MemStore) shardFor(patientID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(patientID))
	return s.shards[int(h.Sum32())%s.shardCount]
}

// Commit appends observations and rebuilds the patient's series set.
func (s *MemStore) Commit(_ context.Context, patientID string, observations []model.Observation) (uint64, error) {
	if patientID == "" {
		return 0, ErrEmptyPatientID
	}
	start := time.Now()

	sh := s.shardFor(patientID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	state, ok := sh.patients[patientID]
	if !ok {
		state = &patientState{}
		sh.patients[patientID] = state
		s.patientCount.Add(1)
	}

	state.observations = append(state.observations, observations...)
	state.set = series.Build(state.observations)
	state.version++
	s.observations.Add(int64(len(observations)))

	metrics.RecordSeriesRebuildLatency(float64(time.Since(start).Milliseconds()))
	metrics.UpdatePatientsTracked(int(s.patientCount.Load()))
	metrics.UpdateObservationsTotal(int(s.observations.Load()))
	return state.version, nil
}

// SeriesSet returns the patient's series snapshot and data version.
func (s *MemStore) SeriesSet(_ context.Context, patientID string) (series.Set, uint64, error) {
	sh := s.shardFor(patientID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	state, ok := sh.patients[patientID]
	if !ok {
		return nil, 0, ErrPatientNotFound
	}
	return state.set, state.version, nil
}

// Series returns one metric's series for the patient.
func (s *MemStore) Series(_ context.Context, patientID string, id metric.ID) (series.Series, error) {
	sh := s.shardFor(patientID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	state, ok := sh.patients[patientID]
	if !ok {
		return series.Series{}, ErrPatientNotFound
	}
	sr, ok := state.set[id]
	if !ok {
		return series.Series{}, ErrSeriesNotFound
	}
	return sr, nil
}

// Version returns the patient's current data version.
func (s *MemStore) Version(_ context.Context, patientID string) uint64 {
	sh := s.shardFor(patientID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	if state, ok := sh.patients[patientID]; ok {
		return state.version
	}
	return 0
}

// PatientCount returns the number of patients with observations.
func (s *MemStore) PatientCount(_ context.Context) int {
	return int(s.patientCount.Load())
}

// ObservationCount returns the total stored observations.
func (s *MemStore) ObservationCount(_ context.Context) int {
	return int(s.observations.Load())
}
