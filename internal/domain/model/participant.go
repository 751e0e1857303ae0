// Package model contains domain models passed between layers.
package model

import "time"

// ParticipantStatus marks whether a participant takes part in matching.
type ParticipantStatus string

// Participant statuses.
const (
	StatusActive   ParticipantStatus = "active"
	StatusInactive ParticipantStatus = "inactive"
)

// SubjectWeight is one entry of a subject breakdown: a topic and its
// relative importance in [0,1]. Weights need not sum exactly to 1.
type SubjectWeight struct {
	Topic  string  `json:"subject"`
	Weight float64 `json:"percentage"`
}

// Mentee represents a learner looking for an advisor.
type Mentee struct {
	ID               string            `json:"mentee_id"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	Skills           []string          `json:"skills"`
	Experience       float64           `json:"experience"`
	PreferredHours   float64           `json:"preferred_hours"`
	PreferredSlots   []string          `json:"preferred_time_slots"`
	Timezone         string            `json:"timezone"`
	SubjectBreakdown []SubjectWeight   `json:"subject_breakdown"`
	Doubt            string            `json:"doubt,omitempty"`
	Status           ParticipantStatus `json:"status"`
}

// Mentor represents an advisor who can be assigned to mentees.
type Mentor struct {
	ID               string            `json:"mentor_id"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	JobRole          string            `json:"job_role"`
	Education        string            `json:"education"`
	Skills           []string          `json:"skills"`
	Experience       float64           `json:"experience"`
	AvailableHours   float64           `json:"available_hours"`
	AvailableSlots   []string          `json:"preferred_time_slots"`
	Timezone         string            `json:"timezone"`
	SubjectBreakdown []SubjectWeight   `json:"subject_breakdown"`
	IsOnline         bool              `json:"is_online"`
	Workload         int               `json:"workload"`
	MaxSessions      int               `json:"max_sessions"`
	Rating           float64           `json:"rating"`
	Status           ParticipantStatus `json:"status"`
}

// ProfileEvent is the payload of the mentor profile-processing queue.
// Submitting one asks the worker pool to (re)derive the mentor's subject
// breakdown from the free-text profile fields.
type ProfileEvent struct {
	EventID   string    // unique id for idempotency
	MentorID  string    // subject of the profile refresh
	JobRole   string    // free text, classified into subjects
	Skills    []string  // skill names, classified into subjects
	Education string    // free text, classified into subjects
	TS        time.Time // event timestamp
}
