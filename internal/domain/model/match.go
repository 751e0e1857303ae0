package model

import "time"

// Match is the persisted result of an assignment for one mentee.
// The store keys matches uniquely by MenteeID; an upsert overwrites the
// prior match for that mentee (last-write-wins).
type Match struct {
	MatchID              string    `json:"match_id"`
	MenteeID             string    `json:"mentee_id"`
	MentorID             string    `json:"mentor_id"`
	CompatibilityScore   float64   `json:"compatibility_score"`
	Cost                 float64   `json:"cost"`
	MatchedSubject       string    `json:"matched_subject,omitempty"`
	MatchedSubjectWeight float64   `json:"matched_subject_percentage,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// Candidate is a Match-like summary of one mentor scored against a mentee,
// kept in pre-matched candidate sets for the offline fallback.
type Candidate struct {
	MentorID             string  `json:"mentor_id"`
	CompatibilityScore   float64 `json:"compatibility_score"`
	Cost                 float64 `json:"cost"`
	MatchedSubject       string  `json:"matched_subject,omitempty"`
	MatchedSubjectWeight float64 `json:"matched_subject_percentage,omitempty"`
	IsOnline             bool    `json:"is_online"`
}

// CandidateSet is a snapshot of all mentors scoring above the minimum
// threshold against one mentee, independent of online status. It serves the
// offline fallback without recomputation.
type CandidateSet struct {
	MenteeID   string      `json:"mentee_id"`
	Candidates []Candidate `json:"matched_candidates"` // sorted by score desc
	CreatedAt  time.Time   `json:"created_at"`
}

// OutcomeStatus tags the result of a match request.
type OutcomeStatus string

// Outcome statuses. Expected "no mentor available" conditions are modeled
// here rather than as errors.
const (
	OutcomeSuccess OutcomeStatus = "success"  // assignment made and recorded
	OutcomeOffline OutcomeStatus = "offline"  // no online mentor; best offline candidates returned
	OutcomeNoMatch OutcomeStatus = "no_match" // no candidates at all
	OutcomeError   OutcomeStatus = "error"    // unexpected internal fault
)

// Outcome is the tagged result of a single-mentee match request.
type Outcome struct {
	Status     OutcomeStatus `json:"status"`
	Match      *Match        `json:"match,omitempty"`
	Candidates []Candidate   `json:"offline_candidates,omitempty"`
}
