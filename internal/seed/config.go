package seed

import (
	"time"

	"github.com/chironhq/chiron/internal/domain/model"
)

// Config holds configuration for the seed run
type Config struct {
	BaseURL    string        // Base URL of the service
	NumMentees int           // Number of mentees to generate
	NumMentors int           // Number of mentors to generate
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	LogFile    string        // Log file for run output
	Verbose    bool          // Enable verbose logging
}

// AckResponse represents the response from doubt submission
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// BulkMatchResponse represents the response from a bulk match run
type BulkMatchResponse struct {
	Matches []model.Match `json:"matches"`
	Count   int           `json:"count"`
}

// Stats holds seed run statistics
type Stats struct {
	MenteesGenerated int
	MentorsGenerated int
	MenteesSeeded    int
	MentorsSeeded    int
	DoubtsSubmitted  int
	DoubtsDuplicate  int
	SeedsFailed      int
	MatchesProduced  int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
