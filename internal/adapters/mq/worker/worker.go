// Package worker runs the asynchronous ingestion pipeline: each worker
// consolidates a dequeued document, commits the surviving observations
// and audits what was dropped.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/vikashgd/liverTracker-sub000/internal/domain/consolidate"
	"github.com/vikashgd/liverTracker-sub000/internal/domain/model"
	"github.com/vikashgd/liverTracker-sub000/pkg/logger"
	"github.com/vikashgd/liverTracker-sub000/pkg/metrics"
)

// Default worker configuration.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Consolidator turns one document's candidates into observations.
type Consolidator interface {
	Consolidate(doc model.Document) consolidate.Outcome
}

// Committer persists consolidated observations and returns the
// patient's new data version.
type Committer interface {
	Commit(ctx context.Context, patientID string, observations []model.Observation) (uint64, error)
}

// Auditor retains unresolved candidates and discarded duplicates for
// later inspection. Audit failures are logged, never fatal.
type Auditor interface {
	RecordUnresolved(ctx context.Context, doc model.Document, candidate model.RawMetricCandidate) error
	RecordDiscarded(ctx context.Context, doc model.Document, discard consolidate.Discard) error
}

// Queue defines how workers receive documents.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Document
}

// Worker processes queued documents until stopped.
type Worker struct {
	queue        Queue
	consolidator Consolidator
	committer    Committer
	auditor      Auditor
	name         string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker name for logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWorker creates a worker with configuration options.
func NewWorker(queue Queue, consolidator Consolidator, committer Committer, auditor Auditor, opts ...Option) *Worker {
	w := &Worker{
		queue:        queue,
		consolidator: consolidator,
		committer:    committer,
		auditor:      auditor,
		name:         "worker",
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop until ctx is cancelled or the queue closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	documents := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case doc, ok := <-documents:
			if !ok {
				return
			}
			if err := w.process(ctx, doc); err != nil {
				metrics.RecordWorkerError()
				w.logger.Error(ctx, "document processing failed",
					logger.String("documentID", doc.DocumentID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker, waiting for the in-flight document.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker shutdown timed out: %w", ctx.Err())
	}
}

// process runs one document through consolidation, commit and audit.
func (w *Worker) process(ctx context.Context, doc model.Document) error {
	start := time.Now()
	defer func() {
		metrics.RecordDocumentProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	outcome := w.consolidator.Consolidate(doc)

	metrics.RecordCandidatesSeen(len(doc.Candidates))
	metrics.RecordCandidatesResolved(len(doc.Candidates) - len(outcome.Unresolved))
	metrics.RecordCandidatesUnresolved(len(outcome.Unresolved))
	metrics.RecordCandidatesDiscarded(len(outcome.Discarded))
	for _, obs := range outcome.Observations {
		if len(obs.Warnings) > 0 {
			metrics.RecordCandidateOutOfRange()
		}
	}

	for _, cand := range outcome.Unresolved {
		if err := w.auditor.RecordUnresolved(ctx, doc, cand); err != nil {
			metrics.RecordAuditError()
			w.logger.Warn(ctx, "audit write failed for unresolved candidate",
				logger.String("documentID", doc.DocumentID),
				logger.String("rawName", cand.RawName),
				logger.Error(err),
			)
		}
	}
	for _, discard := range outcome.Discarded {
		if err := w.auditor.RecordDiscarded(ctx, doc, discard); err != nil {
			metrics.RecordAuditError()
			w.logger.Warn(ctx, "audit write failed for discarded duplicate",
				logger.String("documentID", doc.DocumentID),
				logger.Error(err),
			)
		}
	}

	if len(outcome.Observations) == 0 {
		w.logger.Debug(ctx, "document yielded no observations",
			logger.String("documentID", doc.DocumentID),
		)
		return nil
	}

	version, err := w.committer.Commit(ctx, doc.PatientID, outcome.Observations)
	if err != nil {
		metrics.RecordErrorByComponent("worker", "commit_error")
		return fmt.Errorf("commit for patient %s failed: %w", doc.PatientID, err)
	}
	metrics.RecordObservationsCommitted(len(outcome.Observations))

	w.logger.Debug(ctx, "document processed",
		logger.String("documentID", doc.DocumentID),
		logger.String("patientID", doc.PatientID),
		logger.Int("observations", len(outcome.Observations)),
		logger.Int("unresolved", len(outcome.Unresolved)),
		logger.Int64("version", int64(version)),
	)
	return nil
}

// Pool manages a fixed set of workers over one queue.
type Pool struct {
	workers []*Worker
	queue   Queue

	shutdown chan struct{}

	logger logger.Logger
}

// NewPool creates and wires workerCount workers.
func NewPool(workerCount int, queue Queue, consolidator Consolidator, committer Committer, auditor Auditor) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*Worker, workerCount),
		queue:    queue,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := range pool.workers {
		pool.workers[i] = NewWorker(
			queue, consolidator, committer, auditor,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop signals all workers and waits briefly for each to finish.
func (p *Pool) Stop() {
	close(p.shutdown)
	for _, w := range p.workers {
		select {
		case <-w.shutdown:
		default:
			close(w.shutdown)
		}
	}
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown closes the queue and drains all workers, bounded by
// poolShutdownTimeout.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}
