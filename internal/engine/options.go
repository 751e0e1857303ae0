package engine

import (
	"time"

	"github.com/chironhq/chiron/internal/adapters/classifier"
	"github.com/chironhq/chiron/internal/adapters/repository"
	"github.com/chironhq/chiron/internal/domain/scoring"
	"github.com/chironhq/chiron/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithStore injects a store implementation.
func WithStore(store repository.Store) Option {
	return func(e *Engine) {
		if store != nil {
			e.store = store
		}
	}
}

// WithScorer injects a configured compatibility scorer.
func WithScorer(scorer *scoring.Scorer) Option {
	return func(e *Engine) {
		if scorer != nil {
			e.scorer = scorer
		}
	}
}

// WithClassifier injects a classifier implementation.
func WithClassifier(cls classifier.Classifier) Option {
	return func(e *Engine) {
		if cls != nil {
			e.classifier = cls
		}
	}
}

// WithWorkerCount sets the number of profile pipeline workers.
func WithWorkerCount(count int) Option {
	return func(e *Engine) {
		if count > 0 {
			e.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the profile event queue.
func WithQueueSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the idempotency cache.
func WithDedupeSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.dedupeSize = size
		}
	}
}

// WithMinCandidateScore sets the score threshold for candidate sets.
func WithMinCandidateScore(score float64) Option {
	return func(e *Engine) {
		if score >= 0 && score <= 1 {
			e.minCandidateScore = score
		}
	}
}

// WithOfflineCandidateLimit caps how many offline candidates are returned.
func WithOfflineCandidateLimit(limit int) Option {
	return func(e *Engine) {
		if limit > 0 {
			e.offlineCandidateLimit = limit
		}
	}
}

// WithCandidateCache configures the candidate set cache size and TTL.
func WithCandidateCache(size int, ttl time.Duration) Option {
	return func(e *Engine) {
		if size > 0 {
			e.cacheSize = size
		}
		if ttl > 0 {
			e.cacheTTL = ttl
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}
