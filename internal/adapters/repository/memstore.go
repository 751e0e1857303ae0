package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chironhq/chiron/internal/domain/model"
	"github.com/chironhq/chiron/pkg/metrics"
)

// In-memory Store implementation.
//
// A production deployment would put a document store behind the Store
// interface; the in-memory variant keeps the same semantics (keyed upserts,
// atomic workload increments) and backs all tests.

// MemStore implements Store with plain maps guarded by one RWMutex.
type MemStore struct {
	mu sync.RWMutex

	mentees       map[string]model.Mentee
	mentors       map[string]model.Mentor
	matches       map[string]model.Match        // keyed by mentee id
	candidateSets map[string]model.CandidateSet // keyed by mentee id

	metricsEnabled bool
}

// NewMemStore creates an empty in-memory store with configuration options.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		mentees:        make(map[string]model.Mentee),
		mentors:        make(map[string]model.Mentor),
		matches:        make(map[string]model.Match),
		candidateSets:  make(map[string]model.CandidateSet),
		metricsEnabled: true,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Mentee returns one mentee by id.
func (s *MemStore) Mentee(_ context.Context, id string) (model.Mentee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.mentees[id]
	if !ok {
		return model.Mentee{}, fmt.Errorf("mentee %q: %w", id, ErrNotFound)
	}
	return m, nil
}

// Mentees returns all active mentees in deterministic id order.
func (s *MemStore) Mentees(_ context.Context) ([]model.Mentee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Mentee, 0, len(s.mentees))
	for _, m := range s.mentees {
		if m.Status == model.StatusInactive {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpsertMentee creates or replaces a mentee record.
func (s *MemStore) UpsertMentee(_ context.Context, m model.Mentee) error {
	if m.ID == "" {
		return fmt.Errorf("mentee id: %w", ErrInvalidArgument)
	}
	defer s.observeWrite(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mentees[m.ID] = m
	s.updateGaugesLocked()
	return nil
}

// Mentor returns one mentor by id.
func (s *MemStore) Mentor(_ context.Context, id string) (model.Mentor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.mentors[id]
	if !ok {
		return model.Mentor{}, fmt.Errorf("mentor %q: %w", id, ErrNotFound)
	}
	return m, nil
}

// Mentors returns active mentors matching the filter, in deterministic id
// order so candidate iteration (and thus tie-breaking) is stable.
func (s *MemStore) Mentors(_ context.Context, f MentorFilter) ([]model.Mentor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var restrict map[string]struct{}
	if len(f.IDs) > 0 {
		restrict = make(map[string]struct{}, len(f.IDs))
		for _, id := range f.IDs {
			restrict[id] = struct{}{}
		}
	}

	out := make([]model.Mentor, 0, len(s.mentors))
	for _, m := range s.mentors {
		if m.Status == model.StatusInactive {
			continue
		}
		if f.OnlineOnly && !m.IsOnline {
			continue
		}
		if restrict != nil {
			if _, ok := restrict[m.ID]; !ok {
				continue
			}
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpsertMentor creates or replaces a mentor record.
func (s *MemStore) UpsertMentor(_ context.Context, m model.Mentor) error {
	if m.ID == "" {
		return fmt.Errorf("mentor id: %w", ErrInvalidArgument)
	}
	defer s.observeWrite(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mentors[m.ID] = m
	s.updateGaugesLocked()
	return nil
}

// SetMenteeDoubt stores the latest doubt text on a mentee.
func (s *MemStore) SetMenteeDoubt(_ context.Context, menteeID, doubt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.mentees[menteeID]
	if !ok {
		return fmt.Errorf("mentee %q: %w", menteeID, ErrNotFound)
	}
	m.Doubt = doubt
	s.mentees[menteeID] = m
	return nil
}

// SetMenteeSubjectBreakdown replaces a mentee's subject breakdown.
func (s *MemStore) SetMenteeSubjectBreakdown(_ context.Context, menteeID string, breakdown []model.SubjectWeight) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.mentees[menteeID]
	if !ok {
		return fmt.Errorf("mentee %q: %w", menteeID, ErrNotFound)
	}
	m.SubjectBreakdown = breakdown
	s.mentees[menteeID] = m
	return nil
}

// SetMentorSubjectBreakdown replaces a mentor's subject breakdown.
func (s *MemStore) SetMentorSubjectBreakdown(_ context.Context, mentorID string, breakdown []model.SubjectWeight) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.mentors[mentorID]
	if !ok {
		return fmt.Errorf("mentor %q: %w", mentorID, ErrNotFound)
	}
	m.SubjectBreakdown = breakdown
	s.mentors[mentorID] = m
	return nil
}

// IncrementWorkload atomically adjusts a mentor's workload, flooring at 0.
// The read-modify-write happens under the store lock as one operation so
// concurrent bulk assignments never lose an update.
func (s *MemStore) IncrementWorkload(_ context.Context, mentorID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.mentors[mentorID]
	if !ok {
		return fmt.Errorf("mentor %q: %w", mentorID, ErrNotFound)
	}
	m.Workload += delta
	if m.Workload < 0 {
		m.Workload = 0
	}
	s.mentors[mentorID] = m
	return nil
}

// UpsertMatch creates or replaces the match keyed by its MenteeID.
// Last write wins; no merge of prior fields.
func (s *MemStore) UpsertMatch(_ context.Context, m model.Match) error {
	if m.MenteeID == "" {
		return fmt.Errorf("match mentee id: %w", ErrInvalidArgument)
	}
	defer s.observeWrite(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[m.MenteeID] = m
	s.updateGaugesLocked()
	return nil
}

// Match returns the current match for a mentee.
func (s *MemStore) Match(_ context.Context, menteeID string) (model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[menteeID]
	if !ok {
		return model.Match{}, fmt.Errorf("match for mentee %q: %w", menteeID, ErrNotFound)
	}
	return m, nil
}

// UpsertCandidateSet snapshots the pre-matched candidates for a mentee.
func (s *MemStore) UpsertCandidateSet(_ context.Context, cs model.CandidateSet) error {
	if cs.MenteeID == "" {
		return fmt.Errorf("candidate set mentee id: %w", ErrInvalidArgument)
	}
	defer s.observeWrite(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidateSets[cs.MenteeID] = cs
	return nil
}

// CandidateSet returns a mentee's pre-matched candidate snapshot.
func (s *MemStore) CandidateSet(_ context.Context, menteeID string) (model.CandidateSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cs, ok := s.candidateSets[menteeID]
	if !ok {
		return model.CandidateSet{}, fmt.Errorf("candidate set for mentee %q: %w", menteeID, ErrNotFound)
	}
	return cs, nil
}

// Counts reports store occupancy.
func (s *MemStore) Counts(_ context.Context) Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	online := 0
	for _, m := range s.mentors {
		if m.IsOnline {
			online++
		}
	}
	return Counts{
		Mentees:       len(s.mentees),
		Mentors:       len(s.mentors),
		OnlineMentors: online,
		Matches:       len(s.matches),
	}
}

func (s *MemStore) observeWrite(start time.Time) {
	if !s.metricsEnabled {
		return
	}
	metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
}

// updateGaugesLocked refreshes occupancy gauges; callers hold the lock.
func (s *MemStore) updateGaugesLocked() {
	if !s.metricsEnabled {
		return
	}
	online := 0
	for _, m := range s.mentors {
		if m.IsOnline {
			online++
		}
	}
	metrics.UpdateStoreMentees(len(s.mentees))
	metrics.UpdateStoreMentors(len(s.mentors))
	metrics.UpdateStoreOnlineMentors(online)
	metrics.UpdateStoreMatches(len(s.matches))
}
