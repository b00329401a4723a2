// Package profile stores per-patient clinical context that scoring
// needs but lab documents never carry: dialysis status, ascites and
// encephalopathy grades.
package profile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vikashgd/liverTracker-sub000/internal/domain/model"
)

// Store provides read/write access to clinical profiles.
type Store interface {
	// Get returns the patient's profile. Returns ErrProfileNotFound for
	// patients with no stored profile.
	Get(ctx context.Context, patientID string) (model.ClinicalProfile, error)

	// Put validates and stores a profile, replacing any prior one.
	Put(ctx context.Context, p model.ClinicalProfile) error

	// Count returns the number of stored profiles.
	Count(ctx context.Context) int
}

// MemStore implements Store in memory.
type MemStore struct {
	mu       sync.RWMutex
	profiles map[string]model.ClinicalProfile
	now      func() time.Time
}

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithClock overrides the wall clock used for UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *MemStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemStore creates an in-memory profile store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		profiles: make(map[string]model.ClinicalProfile),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the patient's profile.
func (s *MemStore) Get(_ context.Context, patientID string) (model.ClinicalProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[patientID]
	if !ok {
		return model.ClinicalProfile{}, ErrProfileNotFound
	}
	return p, nil
}

// Put validates and stores a profile.
func (s *MemStore) Put(_ context.Context, p model.ClinicalProfile) error {
	if err := Validate(p); err != nil {
		return err
	}
	p.UpdatedAt = s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.PatientID] = p
	return nil
}

// Count returns the number of stored profiles.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

// Validate checks profile field boundaries.
func Validate(p model.ClinicalProfile) error {
	if p.PatientID == "" {
		return fmt.Errorf("%w: empty patient id", ErrInvalidProfile)
	}
	if p.DialysisSessionsPerWeek < 0 {
		return fmt.Errorf("%w: dialysis sessions per week must not be negative", ErrInvalidProfile)
	}
	if !p.OnDialysis && p.DialysisSessionsPerWeek > 0 {
		return fmt.Errorf("%w: dialysis sessions set while not on dialysis", ErrInvalidProfile)
	}
	if p.Ascites < model.GradeUnassessed || p.Ascites > model.GradeSevere {
		return fmt.Errorf("%w: unknown ascites grade", ErrInvalidProfile)
	}
	if p.Encephalopathy < model.GradeUnassessed || p.Encephalopathy > model.GradeSevere {
		return fmt.Errorf("%w: unknown encephalopathy grade", ErrInvalidProfile)
	}
	return nil
}
