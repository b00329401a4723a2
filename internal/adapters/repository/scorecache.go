package repository

import (
	"context"
	"sync"

	"github.com/vikashgd/liverTracker-sub000/internal/domain/model"
	"github.com/vikashgd/liverTracker-sub000/pkg/metrics"
)

// Default score cache configuration.
const defaultCacheCapacity = 10_000

// ScoreKey identifies one cached score computation. Version fingerprints
// the patient's observation set: any commit invalidates prior entries by
// changing the key, so stale results are simply never looked up again.
type ScoreKey struct {
	PatientID string
	Type      model.ScoreType
	AsOf      model.Date
	Version   uint64
}

// ScoreCache memoizes score results with at most one fresh computation
// in flight per key.
type ScoreCache struct {
	mu       sync.Mutex
	entries  map[ScoreKey]model.ScoreResult
	inflight map[ScoreKey]*sync.WaitGroup
	capacity int
}

// CacheOption applies a configuration option to the ScoreCache.
type CacheOption func(*ScoreCache)

// WithCacheCapacity bounds the number of cached results.
func WithCacheCapacity(capacity int) CacheOption {
	return func(c *ScoreCache) {
		if capacity > 0 {
			c.capacity = capacity
		}
	}
}

// NewScoreCache creates a score cache with configuration options.
func NewScoreCache(opts ...CacheOption) *ScoreCache {
	c := &ScoreCache{
		entries:  make(map[ScoreKey]model.ScoreResult),
		inflight: make(map[ScoreKey]*sync.WaitGroup),
		capacity: defaultCacheCapacity,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a memoized result for key, computing it via compute on a
// miss. Concurrent callers for the same key share one computation.
func (c *ScoreCache) Get(ctx context.Context, key ScoreKey, compute func(context.Context) (model.ScoreResult, error)) (model.ScoreResult, error) {
	for {
		c.mu.Lock()
		if res, ok := c.entries[key]; ok {
			c.mu.Unlock()
			metrics.RecordScoreCacheHit()
			return res, nil
		}
		if wg, ok := c.inflight[key]; ok {
			c.mu.Unlock()
			wg.Wait()
			// The computation may have failed without caching; retry the
			// lookup and, if needed, take over the computation.
			continue
		}
		wg := &sync.WaitGroup{}
		wg.Add(1)
		c.inflight[key] = wg
		c.mu.Unlock()
		break
	}

	metrics.RecordScoreCacheMiss()
	res, err := compute(ctx)

	c.mu.Lock()
	if err == nil {
		if len(c.entries) >= c.capacity {
			// Computation is cheap; dropping the whole map beats tracking
			// recency for a cache this small.
			c.entries = make(map[ScoreKey]model.ScoreResult)
		}
		c.entries[key] = res
	}
	wg := c.inflight[key]
	delete(c.inflight, key)
	c.mu.Unlock()
	wg.Done()

	return res, err
}

// Len returns the number of cached results.
func (c *ScoreCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
