// Package queue defines the contract for enqueuing and consuming
// extracted documents awaiting consolidation.
package queue

import (
	"context"
	"sync"

	"github.com/vikashgd/liverTracker-sub000/internal/domain/model"
	"github.com/vikashgd/liverTracker-sub000/pkg/metrics"
)

// Default queue configuration.
const defaultCapacity = 10_000

// Document is the payload type flowing through the queue.
type Document = model.Document

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a document to the queue.
	// Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, doc Document) bool

	// Dequeue returns a channel that receives documents as they become
	// available. The channel closes when the queue closes.
	Dequeue(ctx context.Context) <-chan Document

	// Len returns the current number of queued documents.
	Len(ctx context.Context) int

	// Close stops the queue; no further enqueues are accepted.
	Close() error

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue over a buffered channel.
type InMemoryQueue struct {
	documents chan Document
	capacity  int
	mu        sync.RWMutex
	closed    bool
}

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the maximum number of queued documents.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// NewInMemoryQueue creates an in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.documents = make(chan Document, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)
	return q
}

// Enqueue adds a document to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, doc Document) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case q.documents <- doc:
		metrics.RecordQueueEnqueue()
		q.publishGauges()
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that receives documents as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Document {
	out := make(chan Document)
	go func() {
		defer close(out)
		for doc := range q.documents {
			select {
			case out <- doc:
				metrics.RecordQueueDequeue()
				q.publishGauges()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued documents.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.documents)
	q.publishGauges()
	return size
}

// Close stops the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.documents)
	q.closed = true
	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) publishGauges() {
	size := len(q.documents)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
