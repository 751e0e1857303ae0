package seed

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/google/uuid"

	"github.com/chironhq/chiron/internal/domain/model"
	"github.com/chironhq/chiron/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
)

// Constants for generated participant ranges.
const (
	menteeExperienceMax = 4.0
	mentorExperienceMin = 3.0
	mentorExperienceMax = 15.0
	hoursMin            = 2.0
	hoursMax            = 12.0
	maxSessionsMin      = 2
	maxSessionsRange    = 6
	offlineMentorRatio  = 0.2
	skillsPerMentee     = 3
	skillsPerMentor     = 4
	slotsPerParticipant = 2
)

var seedSkills = []string{
	"go", "python", "java", "javascript", "sql", "postgres",
	"kubernetes", "docker", "terraform", "react", "linux",
	"calculus", "statistics", "algebra", "machine learning",
	"networking", "security", "testing",
}

var seedJobRoles = []string{
	"Backend Engineer", "Data Scientist", "Site Reliability Engineer",
	"Frontend Developer", "Database Administrator", "Security Analyst",
	"Mathematics Tutor", "ML Engineer",
}

var seedEducations = []string{
	"BSc Computer Science", "MSc Applied Mathematics", "BTech Information Technology",
	"PhD Statistics", "BSc Physics", "MSc Data Science",
}

var seedTimezones = []string{
	"Asia/Kolkata", "Asia/Dubai", "Europe/Berlin", "Europe/London",
	"America/New_York", "America/Los_Angeles", "Australia/Sydney",
}

var seedSlots = []string{
	"mon-evening", "tue-morning", "wed-evening", "thu-afternoon",
	"fri-evening", "sat-morning", "sun-afternoon",
}

var seedDoubts = []string{
	"How do I compute the derivative of a composite function using the chain rule?",
	"My sql query with three joins is slow, how do I read the query plan?",
	"What is the difference between goroutine leaks and channel deadlocks in go?",
	"How should I normalise features before training a regression model?",
	"Why does my kubernetes pod keep restarting with an out of memory error?",
	"How do I prove a function is continuous using the epsilon delta definition?",
	"What indexes should a postgres table have for range scans on timestamps?",
	"How does tcp congestion control decide the window size?",
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt returns a random int in [0, max) using crypto/rand.
func getRandomInt(max int) int {
	if max <= 0 {
		return 0
	}
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(max)))
	return int(n.Int64())
}

// pickRandom selects count distinct entries from pool. The pool is not
// modified.
func pickRandom(pool []string, count int) []string {
	if count >= len(pool) {
		out := make([]string, len(pool))
		copy(out, pool)
		return out
	}
	picked := make([]string, 0, count)
	used := make(map[int]struct{}, count)
	for len(picked) < count {
		i := getRandomInt(len(pool))
		if _, ok := used[i]; ok {
			continue
		}
		used[i] = struct{}{}
		picked = append(picked, pool[i])
	}
	return picked
}

// generateMentees creates the configured number of mentees with unique IDs.
func generateMentees(ctx context.Context, config *Config, stats *Stats) []model.Mentee {
	logger.Get().Info(ctx, "generating mentees", logger.Int("numMentees", config.NumMentees))

	mentees := make([]model.Mentee, config.NumMentees)
	for i := range mentees {
		id := uuid.New().String()
		mentees[i] = model.Mentee{
			ID:             id,
			Name:           "Mentee " + strconv.Itoa(i+1),
			Email:          "mentee-" + id[:8] + "@example.com",
			Skills:         pickRandom(seedSkills, skillsPerMentee),
			Experience:     getRandomFloat() * menteeExperienceMax,
			PreferredHours: hoursMin + getRandomFloat()*(hoursMax-hoursMin),
			PreferredSlots: pickRandom(seedSlots, slotsPerParticipant),
			Timezone:       seedTimezones[getRandomInt(len(seedTimezones))],
			Status:         model.StatusActive,
		}
	}
	stats.MenteesGenerated = len(mentees)
	return mentees
}

// generateMentors creates the configured number of mentors with unique IDs.
// A fixed fraction of them is generated offline so that fallback paths get
// exercised too.
func generateMentors(ctx context.Context, config *Config, stats *Stats) []model.Mentor {
	logger.Get().Info(ctx, "generating mentors", logger.Int("numMentors", config.NumMentors))

	mentors := make([]model.Mentor, config.NumMentors)
	for i := range mentors {
		id := uuid.New().String()
		mentors[i] = model.Mentor{
			ID:             id,
			Name:           "Mentor " + strconv.Itoa(i+1),
			Email:          "mentor-" + id[:8] + "@example.com",
			JobRole:        seedJobRoles[getRandomInt(len(seedJobRoles))],
			Education:      seedEducations[getRandomInt(len(seedEducations))],
			Skills:         pickRandom(seedSkills, skillsPerMentor),
			Experience:     mentorExperienceMin + getRandomFloat()*(mentorExperienceMax-mentorExperienceMin),
			AvailableHours: hoursMin + getRandomFloat()*(hoursMax-hoursMin),
			AvailableSlots: pickRandom(seedSlots, slotsPerParticipant),
			Timezone:       seedTimezones[getRandomInt(len(seedTimezones))],
			IsOnline:       getRandomFloat() >= offlineMentorRatio,
			MaxSessions:    maxSessionsMin + getRandomInt(maxSessionsRange),
			Rating:         1.0 + getRandomFloat()*4.0,
			Status:         model.StatusActive,
		}
	}
	stats.MentorsGenerated = len(mentors)
	return mentors
}

// randomDoubt returns one of the canned doubt texts.
func randomDoubt() string {
	return seedDoubts[getRandomInt(len(seedDoubts))]
}
