// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/vikashgd/liverTracker-sub000/internal/adapters/audit"
	"github.com/vikashgd/liverTracker-sub000/internal/adapters/idempotency"
	docqueue "github.com/vikashgd/liverTracker-sub000/internal/adapters/mq/queue"
	workerpool "github.com/vikashgd/liverTracker-sub000/internal/adapters/mq/worker"
	"github.com/vikashgd/liverTracker-sub000/internal/adapters/profile"
	"github.com/vikashgd/liverTracker-sub000/internal/adapters/repository"
	"github.com/vikashgd/liverTracker-sub000/internal/domain/consolidate"
	"github.com/vikashgd/liverTracker-sub000/internal/domain/metric"
	"github.com/vikashgd/liverTracker-sub000/internal/domain/model"
	"github.com/vikashgd/liverTracker-sub000/internal/domain/scoring"
	"github.com/vikashgd/liverTracker-sub000/internal/domain/series"
	"github.com/vikashgd/liverTracker-sub000/internal/domain/trend"
	"github.com/vikashgd/liverTracker-sub000/pkg/logger"
	"github.com/vikashgd/liverTracker-sub000/pkg/metrics"
)

// Service wires the ingestion pipeline to the read-side stores and
// implements the API dependencies.
type Service struct {
	mu sync.RWMutex

	// Core components
	registry     *metric.Registry
	consolidator *consolidate.Consolidator
	tracker      idempotency.Tracker
	queue        docqueue.Queue
	pool         *workerpool.Pool
	store        repository.Store
	scoreCache   *repository.ScoreCache
	auditStore   *audit.Store
	profiles     profile.Store
	engine       *scoring.Engine
	classifier   *trend.Classifier

	// Configuration
	workerCount     int
	queueSize       int
	idempotencySize int
	shardCount      int
	scoreCacheSize  int
	auditDSN        string
	metricAliases   map[string]string
	metricSteps     map[string]float64
	trendOpts       []trend.Option

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the document queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithIdempotencySize sets the size of the seen-document cache.
func WithIdempotencySize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.idempotencySize = size
		}
	}
}

// WithShardCount sets the number of patient shards in the store.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithScoreCacheSize bounds the score result cache.
func WithScoreCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.scoreCacheSize = size
		}
	}
}

// WithAuditDSN sets the SQLite DSN for the candidate audit log.
func WithAuditDSN(dsn string) Option {
	return func(s *Service) {
		if dsn != "" {
			s.auditDSN = dsn
		}
	}
}

// WithMetricAliases adds operator-supplied alias mappings on top of the
// built-in alias table.
func WithMetricAliases(aliases map[string]string) Option {
	return func(s *Service) {
		s.metricAliases = aliases
	}
}

// WithMetricSteps overrides meaningful-change step sizes per metric.
func WithMetricSteps(steps map[string]float64) Option {
	return func(s *Service) {
		s.metricSteps = steps
	}
}

// WithTrendWindows sets the recent and baseline window sizes for trend
// classification.
func WithTrendWindows(recent, baseline int) Option {
	return func(s *Service) {
		s.trendOpts = append(s.trendOpts,
			trend.WithRecentWindow(recent),
			trend.WithBaselineWindow(baseline),
		)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU() * 2,
		queueSize:       10_000,
		idempotencySize: 100_000,
		shardCount:      8,
		scoreCacheSize:  10_000,
		auditDSN:        ":memory:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting lab engine service...")

	var regOpts []metric.Option
	for raw, id := range s.metricAliases {
		regOpts = append(regOpts, metric.WithAlias(raw, metric.ID(id)))
	}
	for id, step := range s.metricSteps {
		regOpts = append(regOpts, metric.WithStep(metric.ID(id), step))
	}
	s.registry = metric.NewRegistry(regOpts...)
	s.consolidator = consolidate.New(s.registry)
	s.tracker = idempotency.NewTracker(idempotency.WithMaxSize(s.idempotencySize))
	s.queue = docqueue.NewInMemoryQueue(docqueue.WithCapacity(s.queueSize))
	s.store = repository.NewMemStore(repository.WithShardCount(s.shardCount))
	s.scoreCache = repository.NewScoreCache(repository.WithCacheCapacity(s.scoreCacheSize))
	s.profiles = profile.NewMemStore()
	s.engine = scoring.NewEngine()
	s.classifier = trend.NewClassifier(s.trendOpts...)

	auditStore, err := audit.Open(s.auditDSN)
	if err != nil {
		return fmt.Errorf("open audit store: %w", err)
	}
	s.auditStore = auditStore

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.consolidator, s.store, s.auditStore)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "lab engine service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("idempotencySize", s.idempotencySize),
	)
	return nil
}

// Stop gracefully shuts down the service: the queue closes first so
// workers drain the backlog before the audit store is released.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping lab engine service...")

	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}
	if s.auditStore != nil {
		_ = s.auditStore.Close()
	}

	s.started = false
	s.logger.Info(ctx, "lab engine service stopped")
}

// SeenAndRecord atomically checks if a document id was seen and records
// it if not. Returns true if the document was already ingested.
func (s *Service) SeenAndRecord(ctx context.Context, documentID string) bool {
	seen := s.tracker.SeenAndRecord(ctx, documentID)
	if seen {
		metrics.RecordDocumentDuplicate()
	}
	return seen
}

// Unrecord removes a document ID from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, documentID string) {
	s.tracker.Unrecord(ctx, documentID)
}

// Enqueue submits a document for asynchronous processing.
func (s *Service) Enqueue(ctx context.Context, doc model.Document) bool {
	ok := s.queue.Enqueue(ctx, doc)
	if ok {
		metrics.RecordDocumentAccepted()
	}
	return ok
}

// Profile returns the patient's clinical profile.
func (s *Service) Profile(ctx context.Context, patientID string) (model.ClinicalProfile, error) {
	return s.profiles.Get(ctx, patientID)
}

// SaveProfile validates and stores a clinical profile.
func (s *Service) SaveProfile(ctx context.Context, p model.ClinicalProfile) error {
	return s.profiles.Put(ctx, p)
}

// SeriesSet returns all metric series for a patient.
func (s *Service) SeriesSet(ctx context.Context, patientID string) (series.Set, error) {
	set, _, err := s.store.SeriesSet(ctx, patientID)
	return set, err
}

// Series returns one metric's series for a patient.
func (s *Service) Series(ctx context.Context, patientID string, id metric.ID) (series.Series, error) {
	return s.store.Series(ctx, patientID, id)
}

// MetricByID looks up a canonical metric definition.
func (s *Service) MetricByID(id metric.ID) (metric.Metric, bool) {
	return s.registry.Get(id)
}

// Score computes (or serves from cache) one clinical score for the
// patient as of a calendar date. The cache key carries the patient's
// data version, so any committed document invalidates prior entries.
func (s *Service) Score(ctx context.Context, patientID string, t model.ScoreType, asOf model.Date) (model.ScoreResult, error) {
	version := s.store.Version(ctx, patientID)
	if version == 0 {
		return model.ScoreResult{}, repository.ErrPatientNotFound
	}

	key := repository.ScoreKey{PatientID: patientID, Type: t, AsOf: asOf, Version: version}
	return s.scoreCache.Get(ctx, key, func(ctx context.Context) (model.ScoreResult, error) {
		start := time.Now()

		set, _, err := s.store.SeriesSet(ctx, patientID)
		if err != nil {
			return model.ScoreResult{}, err
		}
		prof, err := s.profiles.Get(ctx, patientID)
		if err != nil {
			// No stored profile is normal: dialysis flags default off and
			// grades stay unassessed.
			prof = model.ClinicalProfile{PatientID: patientID}
		}

		res, err := s.engine.Compute(t, patientID, asOf, prof, set)
		if err != nil {
			metrics.RecordScoreComputed(string(t), "error")
			return model.ScoreResult{}, err
		}

		outcome := "computed"
		if !res.Computable() {
			outcome = "not_computable"
		}
		metrics.RecordScoreComputed(string(t), outcome)
		metrics.RecordScoringLatency(float64(time.Since(start).Milliseconds()))
		return res, nil
	})
}

// MetricTrend classifies the movement of one metric's series.
func (s *Service) MetricTrend(ctx context.Context, patientID string, id metric.ID) (trend.Result, error) {
	m, ok := s.registry.Get(id)
	if !ok {
		return trend.Result{}, repository.ErrSeriesNotFound
	}
	sr, err := s.store.Series(ctx, patientID, id)
	if err != nil {
		return trend.Result{}, err
	}
	return s.classifier.ClassifySeries(sr, m), nil
}

// ScoreTrend classifies the movement of a score recomputed at each date
// the patient has observations for.
func (s *Service) ScoreTrend(ctx context.Context, patientID string, t model.ScoreType) (trend.Result, error) {
	set, _, err := s.store.SeriesSet(ctx, patientID)
	if err != nil {
		return trend.Result{}, err
	}

	dates := make(map[model.Date]struct{})
	for _, sr := range set {
		for _, p := range sr.Points {
			dates[p.ObservedDate] = struct{}{}
		}
	}

	history := make([]model.ScoreResult, 0, len(dates))
	for d := range dates {
		res, err := s.Score(ctx, patientID, t, d)
		if err != nil {
			return trend.Result{}, err
		}
		history = append(history, res)
	}
	return s.classifier.ClassifyScores(history), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		patients := s.store.PatientCount(ctx)
		observations := s.store.ObservationCount(ctx)

		stats["queueLength"] = queueLen
		stats["patients"] = patients
		stats["observations"] = observations
		stats["profiles"] = s.profiles.Count(ctx)
		stats["trackedDocuments"] = s.tracker.Size()
		stats["cachedScores"] = s.scoreCache.Len()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdatePatientsTracked(patients)
		metrics.UpdateObservationsTotal(observations)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// Size returns the current number of tracked document IDs.
func (s *Service) Size() int64 {
	if s.tracker == nil {
		return 0
	}
	return s.tracker.Size()
}
