// Package repository defines the participant/match store contract and errors.
package repository

import (
	"context"

	"github.com/chironhq/chiron/internal/domain/model"
)

// MentorFilter narrows a mentor scan.
type MentorFilter struct {
	// OnlineOnly keeps only mentors currently flagged online.
	OnlineOnly bool
	// IDs, when non-empty, restricts the scan to the given mentor ids.
	IDs []string
}

// Counts summarizes store occupancy for stats and gauges.
type Counts struct {
	Mentees       int
	Mentors       int
	OnlineMentors int
	Matches       int
}

// Store provides read/write access to participants, matches and pre-matched
// candidate sets. Implementations must make IncrementWorkload a single
// atomic operation; match upserts are last-write-wins by mentee id.
type Store interface {
	// Mentee returns one mentee by id. Returns ErrNotFound if unknown.
	Mentee(ctx context.Context, id string) (model.Mentee, error)
	// Mentees returns all active mentees.
	Mentees(ctx context.Context) ([]model.Mentee, error)
	// UpsertMentee creates or replaces a mentee record.
	UpsertMentee(ctx context.Context, m model.Mentee) error

	// Mentor returns one mentor by id. Returns ErrNotFound if unknown.
	Mentor(ctx context.Context, id string) (model.Mentor, error)
	// Mentors returns active mentors matching the filter.
	Mentors(ctx context.Context, f MentorFilter) ([]model.Mentor, error)
	// UpsertMentor creates or replaces a mentor record.
	UpsertMentor(ctx context.Context, m model.Mentor) error

	// SetMenteeDoubt stores the latest doubt text on a mentee.
	SetMenteeDoubt(ctx context.Context, menteeID, doubt string) error
	// SetMenteeSubjectBreakdown replaces a mentee's subject breakdown.
	SetMenteeSubjectBreakdown(ctx context.Context, menteeID string, breakdown []model.SubjectWeight) error
	// SetMentorSubjectBreakdown replaces a mentor's subject breakdown.
	SetMentorSubjectBreakdown(ctx context.Context, mentorID string, breakdown []model.SubjectWeight) error

	// IncrementWorkload atomically adjusts a mentor's workload by delta,
	// flooring at zero.
	IncrementWorkload(ctx context.Context, mentorID string, delta int) error

	// UpsertMatch creates or replaces the match keyed by its MenteeID.
	UpsertMatch(ctx context.Context, m model.Match) error
	// Match returns the current match for a mentee. ErrNotFound if none.
	Match(ctx context.Context, menteeID string) (model.Match, error)

	// UpsertCandidateSet snapshots the pre-matched candidates for a mentee.
	UpsertCandidateSet(ctx context.Context, cs model.CandidateSet) error
	// CandidateSet returns a mentee's pre-matched candidate snapshot.
	CandidateSet(ctx context.Context, menteeID string) (model.CandidateSet, error)

	// Counts reports store occupancy.
	Counts(ctx context.Context) Counts
}
