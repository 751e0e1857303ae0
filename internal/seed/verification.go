package seed

import (
	"context"
	"fmt"

	"github.com/chironhq/chiron/internal/domain/model"
	"github.com/chironhq/chiron/pkg/logger"
)

// verifyAssignment checks the structural properties every bulk match result
// must hold: at most one match per mentee, no mentor over its session cap,
// and scores and costs inside their valid ranges.
func verifyAssignment(ctx context.Context, matches []model.Match, mentors []model.Mentor) error {
	logger.Get().Info(ctx, "verifying assignment", logger.Int("matches", len(matches)))

	if len(matches) == 0 {
		logger.Get().Warn(ctx, "no matches to verify")
		return nil
	}

	caps := make(map[string]int, len(mentors))
	for _, mentor := range mentors {
		caps[mentor.ID] = mentor.MaxSessions
	}

	menteeSeen := make(map[string]struct{}, len(matches))
	mentorLoad := make(map[string]int, len(matches))

	for _, match := range matches {
		if _, ok := menteeSeen[match.MenteeID]; ok {
			return fmt.Errorf("mentee %s appears in more than one match", match.MenteeID)
		}
		menteeSeen[match.MenteeID] = struct{}{}
		mentorLoad[match.MentorID]++

		if match.CompatibilityScore < 0 || match.CompatibilityScore > 1 {
			return fmt.Errorf("match %s has compatibility score %.3f outside [0, 1]",
				match.MatchID, match.CompatibilityScore)
		}
		if match.Cost < 0 || match.Cost > 1 {
			return fmt.Errorf("match %s has cost %.3f outside [0, 1]", match.MatchID, match.Cost)
		}
	}

	for mentorID, load := range mentorLoad {
		limit, ok := caps[mentorID]
		if !ok {
			// Matched against a mentor this run did not seed, likely left
			// over from a previous run against the same service.
			continue
		}
		if limit > 0 && load > limit {
			return fmt.Errorf("mentor %s received %d sessions over its cap of %d", mentorID, load, limit)
		}
	}

	logger.Get().Info(ctx, "assignment verified",
		logger.Int("mentees", len(menteeSeen)),
		logger.Int("mentors", len(mentorLoad)))
	return nil
}
