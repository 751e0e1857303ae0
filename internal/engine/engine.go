// Package engine provides the core matching service that implements
// the dependencies required by the HTTP API.
//
// The engine owns no transport concerns: it wires the store, scorer,
// classifier, deduper and the profile pipeline together and exposes
// transport-agnostic operations for scoring, assignment and fallback.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"gonum.org/v1/gonum/mat"

	"github.com/chironhq/chiron/internal/adapters/classifier"
	eventqueue "github.com/chironhq/chiron/internal/adapters/mq/queue"
	workerpool "github.com/chironhq/chiron/internal/adapters/mq/worker"
	"github.com/chironhq/chiron/internal/adapters/repository"
	"github.com/chironhq/chiron/internal/domain/assign"
	"github.com/chironhq/chiron/internal/domain/dedupe"
	"github.com/chironhq/chiron/internal/domain/model"
	"github.com/chironhq/chiron/internal/domain/scoring"
	"github.com/chironhq/chiron/pkg/logger"
	"github.com/chironhq/chiron/pkg/metrics"
)

// Default engine configuration constants.
const (
	defaultQueueSize             = 10000
	defaultDedupeSize            = 50000
	defaultMinCandidateScore     = 0.3
	defaultOfflineCandidateLimit = 5
	defaultCandidateCacheSize    = 1024
	defaultCandidateCacheTTL     = 5 * time.Minute
)

// Engine implements the matching operations for the mentorship system.
type Engine struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	scorer     *scoring.Scorer
	classifier classifier.Classifier
	deduper    dedupe.Deduper
	queue      eventqueue.Queue
	pool       *workerpool.Pool
	cache      *expirable.LRU[string, model.CandidateSet]

	// Configuration
	workerCount           int
	queueSize             int
	dedupeSize            int
	minCandidateScore     float64
	offlineCandidateLimit int
	cacheSize             int
	cacheTTL              time.Duration

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Engine with default configuration.
func New(opts ...Option) *Engine {
	e := &Engine{
		workerCount:           runtime.NumCPU() * 2,
		queueSize:             defaultQueueSize,
		dedupeSize:            defaultDedupeSize,
		minCandidateScore:     defaultMinCandidateScore,
		offlineCandidateLimit: defaultOfflineCandidateLimit,
		cacheSize:             defaultCandidateCacheSize,
		cacheTTL:              defaultCandidateCacheTTL,
	}

	// Apply all options
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Start initializes and starts the engine components. Dependencies not
// injected via options get their in-memory defaults.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return nil
	}

	if e.logger == nil {
		e.logger = logger.Get().Named("engine")
	}

	e.logger.Info(ctx, "starting matching engine...")

	if e.store == nil {
		e.store = repository.NewMemStore()
	}
	if e.scorer == nil {
		scorer, err := scoring.NewScorer()
		if err != nil {
			return fmt.Errorf("default scorer: %w", err)
		}
		e.scorer = scorer
	}
	if e.classifier == nil {
		e.classifier = classifier.NewStatic(nil)
	}
	e.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(e.dedupeSize),
	)
	e.queue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(e.queueSize),
	)
	e.cache = expirable.NewLRU[string, model.CandidateSet](e.cacheSize, nil, e.cacheTTL)

	e.pool = workerpool.NewPool(e.workerCount, e.queue, e.classifier, e.store)
	e.pool.Start(ctx)

	e.started = true
	e.logger.Info(ctx, "matching engine started",
		logger.Int("workers", e.workerCount),
		logger.Int("queueSize", e.queueSize),
		logger.Int("dedupeSize", e.dedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the engine.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return
	}

	ctx := context.Background()
	e.logger.Info(ctx, "stopping matching engine...")

	if e.pool != nil {
		_ = e.pool.Shutdown(ctx)
	}

	e.started = false
	e.logger.Info(ctx, "matching engine stopped")
}

// Compatibility scores one mentee against one mentor.
func (e *Engine) Compatibility(ctx context.Context, menteeID, mentorID string) (scoring.Result, error) {
	mentee, err := e.store.Mentee(ctx, menteeID)
	if err != nil {
		return scoring.Result{}, err
	}
	mentor, err := e.store.Mentor(ctx, mentorID)
	if err != nil {
		return scoring.Result{}, err
	}

	result := e.scorer.Compatibility(mentee, mentor)
	metrics.RecordCompatibilityScore(result.Score)
	return result, nil
}

// MatchBulk assigns all active mentees to online mentors at once, minimizing
// total cost, and persists the resulting matches. Each mentor receives at
// most one mentee per run; surplus mentees stay unmatched.
func (e *Engine) MatchBulk(ctx context.Context) ([]model.Match, error) {
	mentees, err := e.store.Mentees(ctx)
	if err != nil {
		return nil, fmt.Errorf("list mentees: %w", err)
	}
	if len(mentees) == 0 {
		return []model.Match{}, nil
	}

	allMentors, err := e.store.Mentors(ctx, repository.MentorFilter{})
	if err != nil {
		return nil, fmt.Errorf("list mentors: %w", err)
	}

	online := make([]model.Mentor, 0, len(allMentors))
	for _, m := range allMentors {
		if m.IsOnline && e.hasCapacity(m) {
			online = append(online, m)
		}
	}

	// Rebuild candidate snapshots for every mentee while the scores are
	// fresh; the same scores feed the cost matrix for online mentors.
	scoresByMentee := make([]map[string]scoring.Result, len(mentees))
	for i, mentee := range mentees {
		scoresByMentee[i] = e.snapshotCandidates(ctx, mentee, allMentors)
	}

	if len(online) == 0 {
		return []model.Match{}, nil
	}

	cost := mat.NewDense(len(mentees), len(online), nil)
	for i := range mentees {
		for j, mentor := range online {
			cost.Set(i, j, 1.0-scoresByMentee[i][mentor.ID].Score)
		}
	}

	start := time.Now()
	assignments, err := assign.Solve(cost)
	if err != nil {
		return nil, fmt.Errorf("solve assignment: %w", err)
	}
	metrics.RecordSolverLatency(float64(time.Since(start).Milliseconds()))

	matches := make([]model.Match, 0, len(assignments))
	for _, a := range assignments {
		mentee := mentees[a.Row]
		mentor := online[a.Col]
		result := scoresByMentee[a.Row][mentor.ID]

		match, err := e.persistMatch(ctx, mentee.ID, mentor.ID, result)
		if err != nil {
			return matches, err
		}
		matches = append(matches, match)
	}

	e.logger.Info(ctx, "bulk matching complete",
		logger.Int("mentees", len(mentees)),
		logger.Int("mentors", len(online)),
		logger.Int("matches", len(matches)),
	)
	return matches, nil
}

// MatchOne assigns the best available mentor to one mentee. When restrictIDs
// is non-empty the candidate pool is the intersection of the restriction and
// the online mentors. An empty pool falls back to offline candidates without
// any store writes.
func (e *Engine) MatchOne(ctx context.Context, menteeID string, restrictIDs []string) (model.Outcome, error) {
	mentee, err := e.store.Mentee(ctx, menteeID)
	if err != nil {
		return model.Outcome{}, err
	}

	allMentors, err := e.store.Mentors(ctx, repository.MentorFilter{})
	if err != nil {
		return model.Outcome{}, fmt.Errorf("list mentors: %w", err)
	}
	scores := e.snapshotCandidates(ctx, mentee, allMentors)

	online, err := e.store.Mentors(ctx, repository.MentorFilter{OnlineOnly: true, IDs: restrictIDs})
	if err != nil {
		return model.Outcome{}, fmt.Errorf("list online mentors: %w", err)
	}
	pool := make([]model.Mentor, 0, len(online))
	for _, m := range online {
		if e.hasCapacity(m) {
			pool = append(pool, m)
		}
	}

	if len(pool) == 0 {
		return e.offlineOutcome(ctx, mentee.ID)
	}

	cost := mat.NewDense(1, len(pool), nil)
	for j, mentor := range pool {
		cost.Set(0, j, 1.0-scores[mentor.ID].Score)
	}

	start := time.Now()
	assignments, err := assign.Solve(cost)
	if err != nil {
		return model.Outcome{}, fmt.Errorf("solve assignment: %w", err)
	}
	metrics.RecordSolverLatency(float64(time.Since(start).Milliseconds()))

	if len(assignments) == 0 {
		return e.offlineOutcome(ctx, mentee.ID)
	}

	mentor := pool[assignments[0].Col]
	match, err := e.persistMatch(ctx, mentee.ID, mentor.ID, scores[mentor.ID])
	if err != nil {
		return model.Outcome{}, err
	}

	metrics.RecordMatchOutcome(string(model.OutcomeSuccess))
	return model.Outcome{Status: model.OutcomeSuccess, Match: &match}, nil
}

// OfflineCandidates returns the best offline mentors for a mentee from the
// pre-matched candidate set, ranked by score descending.
func (e *Engine) OfflineCandidates(ctx context.Context, menteeID string) ([]model.Candidate, error) {
	cs, err := e.candidateSet(ctx, menteeID)
	if err != nil {
		return nil, err
	}

	out := make([]model.Candidate, 0, e.offlineCandidateLimit)
	for _, c := range cs.Candidates {
		if c.IsOnline {
			continue
		}
		out = append(out, c)
		if len(out) >= e.offlineCandidateLimit {
			break
		}
	}
	return out, nil
}

// RecordMatch persists a match, overwriting any prior match for the same
// mentee. Re-recording an identical match is a no-op.
func (e *Engine) RecordMatch(ctx context.Context, match model.Match) error {
	if match.MenteeID == "" || match.MentorID == "" {
		return fmt.Errorf("match requires mentee and mentor ids: %w", repository.ErrInvalidArgument)
	}
	if match.MatchID == "" {
		match.MatchID = uuid.NewString()
	}
	if match.CreatedAt.IsZero() {
		match.CreatedAt = time.Now().UTC()
	}
	return e.store.UpsertMatch(ctx, match)
}

// SubmitDoubt stores a mentee's doubt, classifies it into a subject
// breakdown and immediately runs a single-mentee match. Classification is
// best-effort; on failure the mentee matches under the general breakdown.
func (e *Engine) SubmitDoubt(ctx context.Context, menteeID, doubt string) (model.Outcome, error) {
	if err := e.store.SetMenteeDoubt(ctx, menteeID, doubt); err != nil {
		return model.Outcome{}, err
	}

	breakdown, err := e.classifier.Classify(ctx, doubt)
	if err != nil {
		e.logger.Warn(ctx, "doubt classification failed, using general breakdown",
			logger.String("menteeID", menteeID),
			logger.Error(err),
		)
		metrics.RecordErrorByComponent("engine", "classify_error")
		breakdown = classifier.GeneralBreakdown()
	}
	if err := e.store.SetMenteeSubjectBreakdown(ctx, menteeID, breakdown); err != nil {
		return model.Outcome{}, err
	}

	// The breakdown changed, so any cached candidate set is stale.
	e.cache.Remove(menteeID)

	return e.MatchOne(ctx, menteeID, nil)
}

// EnqueueProfileEvent hands a mentor profile event to the pipeline.
// Returns false on backpressure.
func (e *Engine) EnqueueProfileEvent(ctx context.Context, event model.ProfileEvent) bool {
	return e.queue.Enqueue(ctx, event)
}

// SeenAndRecord atomically checks if a request id was seen and records it
// if not. Returns true if the id was already seen.
func (e *Engine) SeenAndRecord(ctx context.Context, id string) bool {
	return e.deduper.SeenAndRecord(ctx, id)
}

// Unrecord removes a request ID from the seen list, allowing a retry.
func (e *Engine) Unrecord(ctx context.Context, id string) {
	e.deduper.Unrecord(ctx, id)
}

// UpsertMentee creates or replaces a mentee and invalidates its cached
// candidate set.
func (e *Engine) UpsertMentee(ctx context.Context, m model.Mentee) error {
	if err := e.store.UpsertMentee(ctx, m); err != nil {
		return err
	}
	e.cache.Remove(m.ID)
	return nil
}

// UpsertMentor creates or replaces a mentor. Mentor changes invalidate all
// cached candidate sets since every mentee's pool may have shifted.
func (e *Engine) UpsertMentor(ctx context.Context, m model.Mentor) error {
	if err := e.store.UpsertMentor(ctx, m); err != nil {
		return err
	}
	e.cache.Purge()
	return nil
}

// Match returns the stored match for a mentee.
func (e *Engine) Match(ctx context.Context, menteeID string) (model.Match, error) {
	return e.store.Match(ctx, menteeID)
}

// Stats reports engine occupancy and pipeline state.
func (e *Engine) Stats(ctx context.Context) map[string]interface{} {
	counts := e.store.Counts(ctx)
	return map[string]interface{}{
		"mentees":        counts.Mentees,
		"mentors":        counts.Mentors,
		"online_mentors": counts.OnlineMentors,
		"matches":        counts.Matches,
		"queue_size":     e.queue.Len(ctx),
		"dedupe_size":    e.deduper.Size(),
		"cached_sets":    e.cache.Len(),
	}
}

// hasCapacity reports whether a mentor can take another session. A zero
// MaxSessions means no explicit cap; the workload sub-score still pushes
// loaded mentors down.
func (e *Engine) hasCapacity(m model.Mentor) bool {
	return m.MaxSessions <= 0 || m.Workload < m.MaxSessions
}

// persistMatch writes the match and bumps the mentor's workload.
func (e *Engine) persistMatch(ctx context.Context, menteeID, mentorID string, result scoring.Result) (model.Match, error) {
	match := model.Match{
		MatchID:              uuid.NewString(),
		MenteeID:             menteeID,
		MentorID:             mentorID,
		CompatibilityScore:   result.Score,
		Cost:                 1.0 - result.Score,
		MatchedSubject:       result.MatchedSubject,
		MatchedSubjectWeight: result.MatchedSubjectWeight,
		CreatedAt:            time.Now().UTC(),
	}

	if err := e.store.UpsertMatch(ctx, match); err != nil {
		return model.Match{}, fmt.Errorf("persist match for mentee %s: %w", menteeID, err)
	}
	if err := e.store.IncrementWorkload(ctx, mentorID, 1); err != nil {
		return model.Match{}, fmt.Errorf("bump workload for mentor %s: %w", mentorID, err)
	}

	metrics.RecordMatchComputed()
	metrics.RecordCompatibilityScore(result.Score)
	return match, nil
}

// snapshotCandidates scores a mentee against every mentor, persists the
// candidate set (score >= MinScore, online and offline alike, ranked desc)
// and returns the per-mentor results for reuse.
func (e *Engine) snapshotCandidates(ctx context.Context, mentee model.Mentee, mentors []model.Mentor) map[string]scoring.Result {
	scores := make(map[string]scoring.Result, len(mentors))
	candidates := make([]model.Candidate, 0, len(mentors))
	for _, mentor := range mentors {
		result := e.scorer.Compatibility(mentee, mentor)
		scores[mentor.ID] = result
		if result.Score < e.minCandidateScore {
			continue
		}
		candidates = append(candidates, model.Candidate{
			MentorID:             mentor.ID,
			CompatibilityScore:   result.Score,
			Cost:                 1.0 - result.Score,
			MatchedSubject:       result.MatchedSubject,
			MatchedSubjectWeight: result.MatchedSubjectWeight,
			IsOnline:             mentor.IsOnline,
		})
	}
	sortCandidates(candidates)

	cs := model.CandidateSet{
		MenteeID:   mentee.ID,
		Candidates: candidates,
		CreatedAt:  time.Now().UTC(),
	}
	if err := e.store.UpsertCandidateSet(ctx, cs); err != nil {
		e.logger.Warn(ctx, "persisting candidate set failed",
			logger.String("menteeID", mentee.ID),
			logger.Error(err),
		)
	} else {
		e.cache.Add(mentee.ID, cs)
		metrics.RecordCandidateSetRebuild()
	}
	return scores
}

// candidateSet serves a mentee's candidate snapshot from cache, then store,
// rebuilding it from live mentor data as a last resort.
func (e *Engine) candidateSet(ctx context.Context, menteeID string) (model.CandidateSet, error) {
	if cs, ok := e.cache.Get(menteeID); ok {
		metrics.RecordCandidateCacheHit()
		return cs, nil
	}
	metrics.RecordCandidateCacheMiss()

	if cs, err := e.store.CandidateSet(ctx, menteeID); err == nil {
		e.cache.Add(menteeID, cs)
		return cs, nil
	}

	mentee, err := e.store.Mentee(ctx, menteeID)
	if err != nil {
		return model.CandidateSet{}, err
	}
	mentors, err := e.store.Mentors(ctx, repository.MentorFilter{})
	if err != nil {
		return model.CandidateSet{}, fmt.Errorf("list mentors: %w", err)
	}
	e.snapshotCandidates(ctx, mentee, mentors)

	cs, err := e.store.CandidateSet(ctx, menteeID)
	if err != nil {
		return model.CandidateSet{}, err
	}
	return cs, nil
}

// sortCandidates ranks by score descending, mentor id as the tie-break.
func sortCandidates(candidates []model.Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].CompatibilityScore != candidates[j].CompatibilityScore {
			return candidates[i].CompatibilityScore > candidates[j].CompatibilityScore
		}
		return candidates[i].MentorID < candidates[j].MentorID
	})
}

// offlineOutcome builds the fallback outcome for a mentee with no online
// mentors available. No match is recorded and no workload changes.
func (e *Engine) offlineOutcome(ctx context.Context, menteeID string) (model.Outcome, error) {
	candidates, err := e.OfflineCandidates(ctx, menteeID)
	if err != nil {
		return model.Outcome{}, err
	}
	if len(candidates) == 0 {
		metrics.RecordMatchOutcome(string(model.OutcomeNoMatch))
		return model.Outcome{Status: model.OutcomeNoMatch}, nil
	}
	metrics.RecordMatchOutcome(string(model.OutcomeOffline))
	return model.Outcome{Status: model.OutcomeOffline, Candidates: candidates}, nil
}
