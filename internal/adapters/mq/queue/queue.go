// Package queue defines the contract for enqueuing and consuming mentor
// profile events.
//
// Profile events are classified asynchronously; the queue decouples the
// ingest endpoint from the classifier workers. The in-memory bounded queue
// is the only implementation for now.
package queue

import (
	"context"
	"sync"

	"github.com/chironhq/chiron/internal/domain/model"
	"github.com/chironhq/chiron/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 10000
	defaultBufferSize    = 10000
)

// Event is the payload type flowing through the queue.
type Event = model.ProfileEvent

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an event to the queue.
	// Returns false if the queue is full and the event was not enqueued.
	Enqueue(ctx context.Context, e Event) bool

	// Dequeue returns a channel that receives events as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Event

	// Len returns the current number of queued events.
	Len(ctx context.Context) int

	// Close shuts down the queue. After closing, no new events can be
	// enqueued and the dequeue channel is closed.
	Close() error

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	events   chan Event
	capacity int

	metricsEnabled bool

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:       defaultQueueCapacity,
		metricsEnabled: true,
	}

	// Apply all options
	for _, opt := range opts {
		opt(q)
	}

	q.events = make(chan Event, q.capacity)

	if q.metricsEnabled {
		metrics.UpdateQueueCapacity(q.capacity)
		metrics.UpdateQueueSize(0)
		metrics.UpdateQueueUtilization(0.0)
	}

	return q
}

// Enqueue adds a profile event to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e Event) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.recordEnqueueError("closed")
		return false
	}

	select {
	case q.events <- e:
		if q.metricsEnabled {
			metrics.RecordQueueEnqueue()
			q.updateGauges()
		}
		return true
	case <-ctx.Done():
		q.recordEnqueueError("context_cancelled")
		return false
	default:
		q.recordEnqueueError("queue_full")
		return false
	}
}

// Dequeue returns a channel that receives events as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		for e := range q.events {
			select {
			case out <- e:
				if q.metricsEnabled {
					metrics.RecordQueueDequeue()
					q.updateGauges()
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued events.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.events)
}

// Close shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.events)
	q.closed = true
	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) recordEnqueueError(reason string) {
	if !q.metricsEnabled {
		return
	}
	metrics.RecordQueueEnqueueError()
	metrics.RecordErrorByComponent("queue", reason)
}

func (q *InMemoryQueue) updateGauges() {
	size := len(q.events)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
