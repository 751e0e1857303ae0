package scoring

import (
	"math"
	"strings"
)

// regionAdjacency is the fixed adjacency table for the location sub-score.
// Keys and values are lowercased top-level timezone regions.
var regionAdjacency = map[string][]string{
	"asia":      {"europe", "australia", "indian"},
	"europe":    {"asia", "africa", "atlantic"},
	"africa":    {"europe", "atlantic", "indian"},
	"australia": {"asia", "pacific", "indian"},
	"america":   {"pacific", "atlantic"},
	"pacific":   {"america", "australia"},
	"atlantic":  {"america", "europe", "africa"},
	"indian":    {"africa", "australia", "asia"},
}

// Location sub-score levels.
const (
	locationExact    = 1.0
	locationRegion   = 0.8
	locationAdjacent = 0.5
)

// SkillScore is the Jaccard similarity of the two skill sets.
// Both sets empty scores 1.0; exactly one empty scores 0.0.
func SkillScore(menteeSkills, mentorSkills []string) float64 {
	a := toSet(menteeSkills)
	b := toSet(mentorSkills)
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	intersection := 0
	for s := range a {
		if _, ok := b[s]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// ExperienceScore requires the mentor to have equal or greater experience.
// A mentor with less experience than the mentee scores 0; otherwise the gap
// is normalized by maxDiff so that very over-qualified mentors score lower.
func ExperienceScore(menteeExp, mentorExp, maxDiff float64) float64 {
	menteeExp = sanitizeNonNegative(menteeExp)
	mentorExp = sanitizeNonNegative(mentorExp)
	if menteeExp > mentorExp {
		return 0.0
	}
	if maxDiff <= 0 {
		return 1.0
	}
	return math.Max(0, 1-(mentorExp-menteeExp)/maxDiff)
}

// AvailabilityScore measures schedule overlap. When both sides carry
// discrete slots it is the slot-set overlap ratio; otherwise it is the
// overlap of continuous hours against the mentee's preferred hours.
// An empty mentee side scores 0.
func AvailabilityScore(menteeSlots, mentorSlots []string, menteeHours, mentorHours float64) float64 {
	if len(menteeSlots) > 0 && len(mentorSlots) > 0 {
		a := toSet(menteeSlots)
		b := toSet(mentorSlots)
		intersection := 0
		for s := range a {
			if _, ok := b[s]; ok {
				intersection++
			}
		}
		union := len(a) + len(b) - intersection
		if union == 0 {
			return 0.0
		}
		return float64(intersection) / float64(union)
	}

	menteeHours = sanitizeNonNegative(menteeHours)
	mentorHours = sanitizeNonNegative(mentorHours)
	if menteeHours <= 0 {
		return 0.0
	}
	overlap := math.Min(mentorHours, menteeHours)
	return math.Min(overlap/menteeHours, 1.0)
}

// LocationScore grades timezone affinity: exact match, same top-level
// region, adjacent region per the fixed table, or nothing.
func LocationScore(menteeTZ, mentorTZ string) float64 {
	menteeTZ = strings.TrimSpace(strings.ToLower(menteeTZ))
	mentorTZ = strings.TrimSpace(strings.ToLower(mentorTZ))
	if menteeTZ == "" || mentorTZ == "" {
		return 0.0
	}
	if menteeTZ == mentorTZ {
		return locationExact
	}
	menteeRegion := topLevelRegion(menteeTZ)
	mentorRegion := topLevelRegion(mentorTZ)
	if menteeRegion == mentorRegion {
		return locationRegion
	}
	for _, adj := range regionAdjacency[menteeRegion] {
		if adj == mentorRegion {
			return locationAdjacent
		}
	}
	return 0.0
}

// WorkloadScore penalizes loaded mentors linearly: 1 at workload 0, exactly
// 0 at or above maxWorkload. A negative workload is treated as unloaded.
func WorkloadScore(workload, maxWorkload int) float64 {
	if workload <= 0 {
		return 1.0
	}
	if maxWorkload <= 0 || workload >= maxWorkload {
		return 0.0
	}
	return 1 - float64(workload)/float64(maxWorkload)
}

func topLevelRegion(tz string) string {
	if i := strings.IndexByte(tz, '/'); i >= 0 {
		return tz[:i]
	}
	return tz
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(strings.ToLower(item))
		if item == "" {
			continue
		}
		set[item] = struct{}{}
	}
	return set
}

func sanitizeNonNegative(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
		return 0
	}
	return x
}
