// Package metrics provides Prometheus metrics for the lab ingestion and
// scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus instruments for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingestion metrics.
	documentsAccepted  prometheus.Counter
	documentsDuplicate prometheus.Counter
	candidatesSeen     prometheus.Counter
	candidatesResolved prometheus.Counter
	candidatesUnresolved prometheus.Counter
	candidatesDiscarded  prometheus.Counter
	candidatesOutOfRange prometheus.Counter
	observationsCommitted prometheus.Counter

	// Scoring metrics.
	scoresComputed  *prometheus.CounterVec
	scoringLatency  prometheus.Histogram
	scoreCacheHits  prometheus.Counter
	scoreCacheMisses prometheus.Counter

	// Store metrics.
	patientsTracked   prometheus.Gauge
	observationsTotal prometheus.Gauge
	seriesRebuildLatency prometheus.Histogram

	// Audit metrics.
	auditWrites *prometheus.CounterVec
	auditErrors prometheus.Counter

	// Queue metrics.
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueDequeues    prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics.
	workerCount       prometheus.Gauge
	workerErrors      prometheus.Counter
	documentLatency   prometheus.Histogram

	// HTTP metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics.
	errorsByComponent *prometheus.CounterVec

	// System metrics.
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global manager on a custom registry so default Go collectors stay out.
var (
	customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton metrics registry
	globalManager  *Manager                   //nolint:gochecknoglobals // singleton metrics manager
)

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the metric namespace.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem sets the metric subsystem.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithHistogramBuckets sets custom latency histogram buckets.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithRegistry sets a custom Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// NewManager creates a metrics manager and registers all instruments.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "livertracker",
		subsystem:        "labengine",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.register()
	return m
}

func (m *Manager) register() { //nolint:funlen // instrument inventory
	auto := promauto.With(m.registry)

	counter := func(name, help string) prometheus.Counter {
		return auto.NewCounter(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		})
	}
	histogram := func(name, help string) prometheus.Histogram {
		return auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
			Buckets: m.histogramBuckets,
		})
	}

	m.documentsAccepted = counter("documents_accepted_total", "Documents accepted for ingestion")
	m.documentsDuplicate = counter("documents_duplicate_total", "Duplicate document submissions detected")
	m.candidatesSeen = counter("candidates_seen_total", "Raw metric candidates received from extraction")
	m.candidatesResolved = counter("candidates_resolved_total", "Candidates resolved to a canonical metric")
	m.candidatesUnresolved = counter("candidates_unresolved_total", "Candidates with no matching alias (audited, not scored)")
	m.candidatesDiscarded = counter("candidates_discarded_total", "Duplicate candidates that lost consolidation tie-breaks")
	m.candidatesOutOfRange = counter("candidates_out_of_range_total", "Values outside physiological bounds (kept, low confidence)")
	m.observationsCommitted = counter("observations_committed_total", "Consolidated observations committed to the store")

	m.scoresComputed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "scores_computed_total",
		Help: "Score computations by type and outcome",
	}, []string{"score_type", "outcome"})
	m.scoringLatency = histogram("scoring_latency_milliseconds", "Score computation latency")
	m.scoreCacheHits = counter("score_cache_hits_total", "Score cache hits")
	m.scoreCacheMisses = counter("score_cache_misses_total", "Score cache misses (fresh computations)")

	m.patientsTracked = gauge("patients_tracked", "Patients with at least one observation")
	m.observationsTotal = gauge("observations_total", "Observations currently stored")
	m.seriesRebuildLatency = histogram("series_rebuild_latency_milliseconds", "Per-patient series rebuild latency")

	m.auditWrites = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "audit_writes_total",
		Help: "Audit log writes by kind",
	}, []string{"kind"})
	m.auditErrors = counter("audit_errors_total", "Audit log write failures")

	m.queueSize = gauge("queue_size", "Documents currently queued")
	m.queueCapacity = gauge("queue_capacity", "Maximum document queue capacity")
	m.queueUtilization = gauge("queue_utilization", "Queue fill ratio")
	m.queueEnqueues = counter("queue_enqueue_total", "Successful enqueues")
	m.queueDequeues = counter("queue_dequeue_total", "Successful dequeues")
	m.queueEnqueueErrors = counter("queue_enqueue_errors_total", "Rejected enqueues (full, closed or cancelled)")

	m.workerCount = gauge("worker_count", "Configured ingestion workers")
	m.workerErrors = counter("worker_errors_total", "Document processing failures")
	m.documentLatency = histogram("document_processing_latency_milliseconds", "End-to-end document processing latency")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request latency",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "errors_total",
		Help: "Errors by component and kind",
	}, []string{"component", "kind"})

	m.systemMemoryUsage = gauge("system_memory_usage_bytes", "Heap bytes in use")
	m.systemGoroutineCount = gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "system_gc_pause_time_milliseconds",
		Help:    "Average GC pause time",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// GetRegistry returns the custom Prometheus registry backing the global
// manager; the /metrics endpoint serves from it.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Ingestion.

// RecordDocumentAccepted increments the accepted-documents counter.
func RecordDocumentAccepted() { globalManager.documentsAccepted.Inc() }

// RecordDocumentDuplicate increments the duplicate-documents counter.
func RecordDocumentDuplicate() { globalManager.documentsDuplicate.Inc() }

// RecordCandidatesSeen adds n to the seen-candidates counter.
func RecordCandidatesSeen(n int) { globalManager.candidatesSeen.Add(float64(n)) }

// RecordCandidatesResolved adds n to the resolved-candidates counter.
func RecordCandidatesResolved(n int) { globalManager.candidatesResolved.Add(float64(n)) }

// RecordCandidatesUnresolved adds n to the unresolved-candidates counter.
func RecordCandidatesUnresolved(n int) { globalManager.candidatesUnresolved.Add(float64(n)) }

// RecordCandidatesDiscarded adds n to the discarded-duplicates counter.
func RecordCandidatesDiscarded(n int) { globalManager.candidatesDiscarded.Add(float64(n)) }

// RecordCandidateOutOfRange increments the out-of-range counter.
func RecordCandidateOutOfRange() { globalManager.candidatesOutOfRange.Inc() }

// RecordObservationsCommitted adds n to the committed-observations counter.
func RecordObservationsCommitted(n int) { globalManager.observationsCommitted.Add(float64(n)) }

// Scoring.

// RecordScoreComputed counts one score computation by type and outcome
// ("computed" or "missing_parameters").
func RecordScoreComputed(scoreType, outcome string) {
	globalManager.scoresComputed.WithLabelValues(scoreType, outcome).Inc()
}

// RecordScoringLatency records one score computation latency in milliseconds.
func RecordScoringLatency(latencyMs float64) { globalManager.scoringLatency.Observe(latencyMs) }

// RecordScoreCacheHit increments the score cache hit counter.
func RecordScoreCacheHit() { globalManager.scoreCacheHits.Inc() }

// RecordScoreCacheMiss increments the score cache miss counter.
func RecordScoreCacheMiss() { globalManager.scoreCacheMisses.Inc() }

// Store.

// UpdatePatientsTracked sets the tracked-patients gauge.
func UpdatePatientsTracked(count int) { globalManager.patientsTracked.Set(float64(count)) }

// UpdateObservationsTotal sets the stored-observations gauge.
func UpdateObservationsTotal(count int) { globalManager.observationsTotal.Set(float64(count)) }

// RecordSeriesRebuildLatency records one series rebuild latency in milliseconds.
func RecordSeriesRebuildLatency(latencyMs float64) {
	globalManager.seriesRebuildLatency.Observe(latencyMs)
}

// Audit.

// RecordAuditWrite counts one audit write by kind.
func RecordAuditWrite(kind string) { globalManager.auditWrites.WithLabelValues(kind).Inc() }

// RecordAuditError increments the audit failure counter.
func RecordAuditError() { globalManager.auditErrors.Inc() }

// Queue.

// UpdateQueueSize sets the queued-documents gauge.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue fill ratio gauge.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueues.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeues.Inc() }

// RecordQueueEnqueueError increments the rejected-enqueue counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// Workers.

// UpdateWorkerCount sets the worker count gauge.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerError increments the worker failure counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordDocumentProcessingLatency records one document's processing latency.
func RecordDocumentProcessingLatency(latencyMs float64) {
	globalManager.documentLatency.Observe(latencyMs)
}

// HTTP.

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records one HTTP request latency in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, status string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMs)
}

// Errors.

// RecordErrorByComponent counts one error by component and kind.
func RecordErrorByComponent(component, kind string) {
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}

// System.

// UpdateSystemMemoryUsage sets the heap usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records average GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }
