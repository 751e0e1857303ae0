package scoring

import (
	"math"
	"strings"

	"github.com/chironhq/chiron/internal/domain/model"
)

// SubjectStrategy selects how two subject breakdowns are compared.
type SubjectStrategy string

// Subject matching strategies. The original services disagreed on which
// variant is authoritative, so both are kept as configuration.
const (
	// StrategyMaxTopic scores the single strongest shared topic: a strong
	// one-topic fit beats many weak overlaps.
	StrategyMaxTopic SubjectStrategy = "max"

	// StrategyWeightedSum sums per-topic minimum agreement across all
	// shared topics, clamped to 1.
	StrategyWeightedSum SubjectStrategy = "weighted_sum"
)

// SubjectMatch is the outcome of comparing two subject breakdowns.
type SubjectMatch struct {
	Score  float64 // topical overlap in [0,1]
	Topic  string  // best matching topic name, empty when no overlap
	Weight float64 // agreement value of the best topic
}

// MatchSubjects scores topical overlap between a mentee's and a mentor's
// weighted subject distributions. Topic names compare case-insensitively.
// Empty breakdowns or zero topic overlap yield a zero match; malformed
// weight entries are skipped, not fatal.
func MatchSubjects(strategy SubjectStrategy, mentee, mentor []model.SubjectWeight) SubjectMatch {
	if len(mentee) == 0 || len(mentor) == 0 {
		return SubjectMatch{}
	}

	menteeWeights := make(map[string]float64, len(mentee))
	for _, sw := range mentee {
		topic := strings.TrimSpace(strings.ToLower(sw.Topic))
		if topic == "" || !validWeight(sw.Weight) {
			continue
		}
		// Keep the strongest entry when a topic repeats.
		if w, ok := menteeWeights[topic]; !ok || sw.Weight > w {
			menteeWeights[topic] = sw.Weight
		}
	}

	var best SubjectMatch
	sum := 0.0
	for _, sw := range mentor {
		topic := strings.TrimSpace(strings.ToLower(sw.Topic))
		if topic == "" || !validWeight(sw.Weight) {
			continue
		}
		menteeWeight, ok := menteeWeights[topic]
		if !ok {
			continue
		}
		combined := (sw.Weight + menteeWeight) / 2
		agreement := math.Min(sw.Weight, menteeWeight)
		sum += agreement
		switch strategy {
		case StrategyWeightedSum:
			if agreement > best.Weight {
				best.Topic = topic
				best.Weight = agreement
			}
		default: // StrategyMaxTopic
			if combined > best.Score {
				best.Score = combined
				best.Topic = topic
				best.Weight = combined
			}
		}
	}

	if strategy == StrategyWeightedSum {
		best.Score = math.Min(sum, 1.0)
	}
	return best
}

func validWeight(w float64) bool {
	return !math.IsNaN(w) && !math.IsInf(w, 0) && w >= 0 && w <= 1
}
