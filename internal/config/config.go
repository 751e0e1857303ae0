// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"fmt"
	"math"
	"runtime"
)

// weightSumEpsilon bounds the allowed drift of the weight vector sum from 1.
const weightSumEpsilon = 1e-9

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ProfileQueueSize bounds the in-memory profile-event queue.
	ProfileQueueSize int `koanf:"profile_queue_size"`

	// WorkerCount sets the number of profile-processing workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the doubt deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// SubjectWeight..WorkloadWeight form the compatibility weight vector.
	// The five weights must sum to 1; validated once at load time.
	SubjectWeight      float64 `koanf:"subject_weight"`
	ExperienceWeight   float64 `koanf:"experience_weight"`
	AvailabilityWeight float64 `koanf:"availability_weight"`
	LocationWeight     float64 `koanf:"location_weight"`
	WorkloadWeight     float64 `koanf:"workload_weight"`

	// SubjectStrategy selects the subject-breakdown matching variant:
	// "max" (maximum single-topic agreement) or "weighted_sum".
	SubjectStrategy string `koanf:"subject_strategy"`

	// MaxExperienceDiff normalizes the experience sub-score.
	MaxExperienceDiff float64 `koanf:"max_experience_diff"`

	// MaxWorkload is the workload at which the workload penalty reaches 0.
	MaxWorkload int `koanf:"max_workload"`

	// MinCandidateScore is the threshold for pre-matched candidate sets.
	MinCandidateScore float64 `koanf:"min_candidate_score"`

	// OfflineCandidateLimit caps the offline fallback list length.
	OfflineCandidateLimit int `koanf:"offline_candidate_limit"`

	// CandidateCacheSize and CandidateCacheTTLSeconds tune the candidate-set cache.
	CandidateCacheSize       int `koanf:"candidate_cache_size"`
	CandidateCacheTTLSeconds int `koanf:"candidate_cache_ttl_seconds"`

	// GeminiAPIKey enables the Gemini subject classifier; empty selects the
	// static keyword classifier.
	GeminiAPIKey string `koanf:"gemini_api_key"`

	// GeminiModel overrides the default Gemini model name.
	GeminiModel string `koanf:"gemini_model"`
}

// New creates a Config using defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:                 "info",
		Addr:                     ":9080",
		ProfileQueueSize:         10_000,
		WorkerCount:              runtime.NumCPU() * 2,
		DedupeSize:               50_000,
		SubjectWeight:            0.5,
		ExperienceWeight:         0.1,
		AvailabilityWeight:       0.2,
		LocationWeight:           0.1,
		WorkloadWeight:           0.1,
		SubjectStrategy:          "max",
		MaxExperienceDiff:        10,
		MaxWorkload:              5,
		MinCandidateScore:        0.3,
		OfflineCandidateLimit:    5,
		CandidateCacheSize:       1024,
		CandidateCacheTTLSeconds: 300,
		GeminiModel:              "gemini-1.5-flash",
	}
	return c
}

// Validate checks invariants that hold for the lifetime of the process.
// Weight validation happens here, once, not per scoring call.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	weights := []float64{c.SubjectWeight, c.ExperienceWeight, c.AvailabilityWeight, c.LocationWeight, c.WorkloadWeight}
	sum := 0.0
	for _, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("%w: weights must be non-negative", ErrInvalidConfig)
		}
		sum += w
	}
	if math.Abs(sum-1) > weightSumEpsilon {
		return fmt.Errorf("%w: weights must sum to 1, got %v", ErrInvalidConfig, sum)
	}
	switch c.SubjectStrategy {
	case "max", "weighted_sum":
	default:
		return fmt.Errorf("%w: unknown subject_strategy %q", ErrInvalidConfig, c.SubjectStrategy)
	}
	if c.MaxExperienceDiff <= 0 {
		return fmt.Errorf("%w: max_experience_diff must be positive", ErrInvalidConfig)
	}
	if c.MaxWorkload <= 0 {
		return fmt.Errorf("%w: max_workload must be positive", ErrInvalidConfig)
	}
	if c.MinCandidateScore < 0 || c.MinCandidateScore > 1 {
		return fmt.Errorf("%w: min_candidate_score must be in [0,1]", ErrInvalidConfig)
	}
	return nil
}
