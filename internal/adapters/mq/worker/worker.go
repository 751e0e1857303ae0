// Package worker defines workers that classify mentor profile events into
// subject breakdowns and persist them.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chironhq/chiron/internal/adapters/classifier"
	"github.com/chironhq/chiron/internal/domain/model"
	"github.com/chironhq/chiron/pkg/logger"
	"github.com/chironhq/chiron/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Event abstracts what workers read off the queue.
type Event = model.ProfileEvent

// ProfileStore persists the classified breakdown of a mentor profile.
type ProfileStore interface {
	SetMentorSubjectBreakdown(ctx context.Context, mentorID string, breakdown []model.SubjectWeight) error
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker processes profile events until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing profile events.
type InMemoryWorker struct {
	queue      Queue
	classifier classifier.Classifier
	store      ProfileStore
	name       string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, cls classifier.Classifier, store ProfileStore, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:      queue,
		classifier: cls,
		store:      store,
		name:       "worker", // default name
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.Get().Named("worker"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	eventChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}

			if err := w.processEvent(ctx, event); err != nil {
				w.logger.Error(ctx, "error processing profile event", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processEvent classifies each profile field, merges the breakdowns and
// persists the result. A single failed field classification degrades to
// that field contributing nothing; only a store failure is an error.
func (w *InMemoryWorker) processEvent(ctx context.Context, event Event) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	jobRole := w.classifyField(ctx, event.EventID, "job_role", event.JobRole)
	skills := w.classifyField(ctx, event.EventID, "skills", strings.Join(event.Skills, ", "))
	education := w.classifyField(ctx, event.EventID, "education", event.Education)

	breakdown := classifier.CombineBreakdowns(jobRole, skills, education)

	if err := w.store.SetMentorSubjectBreakdown(ctx, event.MentorID, breakdown); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		w.logger.Error(ctx, "storing breakdown failed",
			logger.String("eventID", event.EventID),
			logger.String("mentorID", event.MentorID),
			logger.Error(err),
		)
		return fmt.Errorf("store breakdown for mentor %s: %w", event.MentorID, err)
	}
	return nil
}

// classifyField classifies one profile field, returning nil when the field
// is empty or classification fails.
func (w *InMemoryWorker) classifyField(ctx context.Context, eventID, field, text string) []model.SubjectWeight {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	breakdown, err := w.classifier.Classify(ctx, text)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "classify_error")
		w.logger.Warn(ctx, "field classification failed",
			logger.String("eventID", eventID),
			logger.String("field", field),
			logger.Error(err),
		)
		return nil
	}
	return breakdown
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	// Shutdown control
	stopOnce sync.Once

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, cls classifier.Classifier, store ProfileStore) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			cls,
			store,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerActiveCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Stop stops all workers without draining the queue.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		for _, worker := range p.workers {
			close(worker.shutdown)
		}
	})
	for _, worker := range p.workers {
		select {
		case <-worker.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// Close the queue first so workers drain remaining events.
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	p.stopOnce.Do(func() {
		for _, worker := range p.workers {
			close(worker.shutdown)
		}
	})

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	metrics.UpdateWorkerActiveCount(0)
	return nil
}
