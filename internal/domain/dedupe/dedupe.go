// Package dedupe defines the interface for idempotency tracking of doubt
// submissions and profile events.
package dedupe

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMaxSize = 50000

// Deduper records seen request IDs to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen list, allowing it to be retried.
	// Used when a request was marked as seen but failed to be accepted
	// (e.g., queue backpressure).
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryDeduper implements Deduper on a bounded LRU so memory stays flat
// under sustained traffic. Eviction of old IDs means a very late duplicate
// can slip through; acceptable since downstream writes are idempotent.
type inMemoryDeduper struct {
	mu      sync.Mutex // makes check-then-record atomic; the LRU only locks per call
	cache   *lru.Cache[string, struct{}]
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}

	// Apply all options
	for _, opt := range opts {
		opt(d)
	}

	if d.maxSize <= 0 {
		d.maxSize = defaultMaxSize
	}

	// lru.New only fails on a non-positive size, which is guarded above.
	cache, err := lru.New[string, struct{}](d.maxSize)
	if err != nil {
		panic(err)
	}
	d.cache = cache

	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, seen := d.cache.Get(id); seen {
		return true
	}
	d.cache.Add(id, struct{}{})
	return false
}

// Unrecord removes an ID from the seen list, allowing it to be retried.
func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.cache.Remove(id)
}

// Size returns the current number of tracked IDs.
func (d *inMemoryDeduper) Size() int64 {
	return int64(d.cache.Len())
}
