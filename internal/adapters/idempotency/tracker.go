// Package idempotency tracks seen document IDs so resubmitting the same
// report is acknowledged instead of reprocessed.
package idempotency

import (
	"context"
	"sync"
	"sync/atomic"
)

// Tracker records seen document IDs for at-most-once ingestion.
type Tracker interface {
	// SeenAndRecord atomically checks whether id was seen and records it
	// if not. Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID, allowing a retry. Used when a document was
	// marked seen but enqueueing failed on backpressure.
	Unrecord(ctx context.Context, id string)

	// Size returns the number of tracked IDs.
	Size() int64
}

// node is one entry in the eviction list.
type node struct {
	id   string
	next *node
}

func (n *node) reset() {
	n.id = ""
	n.next = nil
}

// memTracker implements Tracker in memory. Bounded mode (maxSize > 0)
// keeps a linked list for LIFO eviction with pooled nodes; unbounded
// mode is a plain map.
type memTracker struct {
	mu       sync.Mutex
	seen     map[string]*node
	head     *node
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
}

const defaultMaxSize = 100_000

// Option applies a configuration option to the tracker.
type Option func(*memTracker)

// WithMaxSize bounds the number of tracked IDs; zero or negative means
// unbounded.
func WithMaxSize(maxSize int) Option {
	return func(t *memTracker) {
		t.maxSize = maxSize
	}
}

// NewTracker creates an in-memory tracker with configuration options.
func NewTracker(opts ...Option) Tracker {
	t := &memTracker{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(t)
	}
	t.seen = make(map[string]*node)
	if t.maxSize > 0 {
		t.nodePool = sync.Pool{
			New: func() any { return &node{} },
		}
	}
	return t
}

func (t *memTracker) SeenAndRecord(_ context.Context, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.seen[id]; exists {
		return true
	}

	if t.maxSize > 0 {
		if len(t.seen) >= t.maxSize {
			t.evictOldest()
		}
		n := t.nodePool.Get().(*node)
		n.id = id
		n.next = t.head
		t.head = n
		t.seen[id] = n
	} else {
		t.seen[id] = nil
	}
	t.size.Add(1)
	return false
}

func (t *memTracker) Unrecord(_ context.Context, id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, exists := t.seen[id]
	if !exists {
		return
	}
	delete(t.seen, id)
	t.size.Add(-1)
	if t.maxSize <= 0 {
		return
	}

	if t.head == n {
		t.head = n.next
	} else {
		cur := t.head
		for cur != nil && cur.next != n {
			cur = cur.next
		}
		if cur != nil {
			cur.next = n.next
		}
	}
	n.reset()
	t.nodePool.Put(n)
}

// evictOldest drops the tail of the list. Must hold t.mu.
func (t *memTracker) evictOldest() {
	if t.head == nil {
		return
	}
	if t.head.next == nil {
		delete(t.seen, t.head.id)
		t.head.reset()
		t.nodePool.Put(t.head)
		t.head = nil
		t.size.Add(-1)
		return
	}
	prev := t.head
	for prev.next.next != nil {
		prev = prev.next
	}
	tail := prev.next
	prev.next = nil
	delete(t.seen, tail.id)
	tail.reset()
	t.nodePool.Put(tail)
	t.size.Add(-1)
}

func (t *memTracker) Size() int64 {
	return t.size.Load()
}
