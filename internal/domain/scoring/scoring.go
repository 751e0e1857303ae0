package scoring

import (
	"math"

	"github.com/chironhq/chiron/internal/domain/model"
)

// Default scoring configuration constants.
const (
	defaultMaxExperienceDiff = 10.0
	defaultMaxWorkload       = 5

	// generalSubject labels results with no usable subject signal.
	generalSubject = "General"
)

// Result is the outcome of one compatibility computation.
type Result struct {
	Score                float64 // combined compatibility in [0,1]
	MatchedSubject       string  // topic that drove the subject term
	MatchedSubjectWeight float64 // agreement value of that topic
}

// Scorer combines the subject match and the sub-scores into one scalar per
// (mentee, mentor) pair. It is pure: no side effects, never errors — any
// malformed input degrades to a zero score tagged with the general subject.
type Scorer struct {
	weights           Weights
	strategy          SubjectStrategy
	maxExperienceDiff float64
	maxWorkload       int
}

// NewScorer creates a Scorer with configuration options.
// The weight vector is validated here, once.
func NewScorer(opts ...Option) (*Scorer, error) {
	s := &Scorer{
		weights:           DefaultWeights(),
		strategy:          StrategyMaxTopic,
		maxExperienceDiff: defaultMaxExperienceDiff,
		maxWorkload:       defaultMaxWorkload,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if err := s.weights.Validate(); err != nil {
		return nil, err
	}
	switch s.strategy {
	case StrategyMaxTopic, StrategyWeightedSum:
	default:
		return nil, ErrUnknownStrategy
	}
	return s, nil
}

// MaxWorkload reports the workload at which the workload penalty bottoms out.
func (s *Scorer) MaxWorkload() int {
	return s.maxWorkload
}

// Compatibility computes the combined compatibility score for one pair.
// When the subject breakdowns carry no signal, the skill Jaccard substitutes
// for the subject term so the score never degenerates on missing AI output.
func (s *Scorer) Compatibility(mentee model.Mentee, mentor model.Mentor) Result {
	subject := MatchSubjects(s.strategy, mentee.SubjectBreakdown, mentor.SubjectBreakdown)

	subjectTerm := subject.Score
	matchedSubject := subject.Topic
	matchedWeight := subject.Weight
	if subjectTerm == 0 {
		subjectTerm = SkillScore(mentee.Skills, mentor.Skills)
		matchedSubject = generalSubject
		matchedWeight = 0
	}

	experience := ExperienceScore(mentee.Experience, mentor.Experience, s.maxExperienceDiff)
	availability := AvailabilityScore(mentee.PreferredSlots, mentor.AvailableSlots, mentee.PreferredHours, mentor.AvailableHours)
	location := LocationScore(mentee.Timezone, mentor.Timezone)
	workload := WorkloadScore(mentor.Workload, s.maxWorkload)

	score := s.weights.Subject*subjectTerm +
		s.weights.Experience*experience +
		s.weights.Availability*availability +
		s.weights.Location*location +
		s.weights.Workload*workload

	if math.IsNaN(score) || score < 0 {
		return Result{Score: 0, MatchedSubject: generalSubject, MatchedSubjectWeight: 0}
	}
	if score > 1 {
		score = 1
	}
	return Result{
		Score:                score,
		MatchedSubject:       matchedSubject,
		MatchedSubjectWeight: matchedWeight,
	}
}
