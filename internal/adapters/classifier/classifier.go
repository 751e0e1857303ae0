// Package classifier turns free-form text (doubts, job roles, skills,
// education) into normalized subject breakdowns.
//
// Conventions:
//   - Breakdowns are returned sorted by weight descending and normalized so
//     the weights sum to 1.
//   - Callers use GeneralBreakdown as the degenerate fallback when
//     classification fails; a failed classifier call never blocks matching.
package classifier

import (
	"context"
	"math"
	"sort"

	"github.com/chironhq/chiron/internal/domain/model"
)

// Weights used when merging the per-field breakdowns of a mentor profile.
const (
	jobRoleWeight   = 0.5
	skillsWeight    = 0.3
	educationWeight = 0.2
)

// GeneralSubject is the catch-all topic used when no classification exists.
const GeneralSubject = "General"

// Classifier maps one piece of text to a subject breakdown.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]model.SubjectWeight, error)
}

// GeneralBreakdown returns the degenerate single-subject breakdown.
func GeneralBreakdown() []model.SubjectWeight {
	return []model.SubjectWeight{{Topic: GeneralSubject, Weight: 1.0}}
}

// CombineBreakdowns merges the breakdowns of a mentor's job role, skills and
// education into one profile breakdown. Fields weigh in at 0.5/0.3/0.2; a
// missing field forfeits its share and the result is renormalized.
func CombineBreakdowns(jobRole, skills, education []model.SubjectWeight) []model.SubjectWeight {
	merged := make(map[string]float64)
	accumulate(merged, jobRole, jobRoleWeight)
	accumulate(merged, skills, skillsWeight)
	accumulate(merged, education, educationWeight)

	if len(merged) == 0 {
		return GeneralBreakdown()
	}
	return Normalize(fromMap(merged))
}

// Normalize scales weights to sum to 1 and sorts by weight descending, with
// topic name as the tie-break so output order is deterministic. Entries with
// non-finite or non-positive weights are dropped; an empty result falls back
// to the general breakdown.
func Normalize(breakdown []model.SubjectWeight) []model.SubjectWeight {
	total := 0.0
	kept := make([]model.SubjectWeight, 0, len(breakdown))
	for _, sw := range breakdown {
		if sw.Topic == "" || math.IsNaN(sw.Weight) || math.IsInf(sw.Weight, 0) || sw.Weight <= 0 {
			continue
		}
		kept = append(kept, sw)
		total += sw.Weight
	}
	if len(kept) == 0 || total <= 0 {
		return GeneralBreakdown()
	}

	for i := range kept {
		kept[i].Weight /= total
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Weight != kept[j].Weight {
			return kept[i].Weight > kept[j].Weight
		}
		return kept[i].Topic < kept[j].Topic
	})
	return kept
}

func accumulate(dst map[string]float64, breakdown []model.SubjectWeight, share float64) {
	if len(breakdown) == 0 {
		return
	}
	for _, sw := range Normalize(breakdown) {
		dst[sw.Topic] += sw.Weight * share
	}
}

func fromMap(m map[string]float64) []model.SubjectWeight {
	out := make([]model.SubjectWeight, 0, len(m))
	for topic, w := range m {
		out = append(out, model.SubjectWeight{Topic: topic, Weight: w})
	}
	return out
}
