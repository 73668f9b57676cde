// Package substitution ranks replacement exercises for a prescribed movement
// when its equipment is unavailable. Candidates are scored on movement
// pattern, muscle overlap, and equipment affinity; unavailable equipment is a
// hard filter, and ties break on exercise id so output order never depends on
// map iteration.
package substitution

import (
	"sort"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/exercise"
)

// Scoring weights.
const (
	// PatternWeight is the score for an exact movement-pattern match.
	PatternWeight = 3.0
	// PrimaryMuscleWeight scales the primary-muscle Jaccard overlap.
	PrimaryMuscleWeight = 2.0
	// SecondaryMuscleWeight scales the secondary-muscle Jaccard overlap.
	SecondaryMuscleWeight = 0.5
)

// equipmentFamily groups equipment for affinity scoring.
type equipmentFamily int

const (
	familyBarbell equipmentFamily = iota
	familyFreeWeight
	familyMachine
	familyBodyweight
)

// familyOf maps equipment to its affinity family.
func familyOf(e exercise.Equipment) equipmentFamily {
	switch e {
	case exercise.EquipmentBarbell:
		return familyBarbell
	case exercise.EquipmentDumbbell, exercise.EquipmentKettlebell:
		return familyFreeWeight
	case exercise.EquipmentMachine, exercise.EquipmentCable:
		return familyMachine
	default:
		return familyBodyweight
	}
}

// EquipmentAffinity scores how close a candidate's equipment is to the
// original's. Same equipment scores highest, same family next, free-weight
// to free-weight above machine, and bodyweight lowest.
func EquipmentAffinity(original, candidate exercise.Equipment) float64 {
	if original == candidate {
		return 1.0
	}
	of, cf := familyOf(original), familyOf(candidate)
	switch {
	case of == cf:
		return 0.8
	case (of == familyBarbell && cf == familyFreeWeight) || (of == familyFreeWeight && cf == familyBarbell):
		return 0.7
	case cf == familyBodyweight || of == familyBodyweight:
		return 0.2
	default:
		return 0.5
	}
}

// Candidate is a ranked substitution candidate.
type Candidate struct {
	// Exercise is the candidate exercise.
	Exercise exercise.Exercise
	// Score is the total ranking score (higher is better).
	Score float64
}

// Score computes the ranking score of a candidate against the original.
// Callers must have already filtered for equipment availability.
func Score(original, candidate exercise.Exercise) float64 {
	score := 0.0
	if candidate.MovementPattern == original.MovementPattern {
		score += PatternWeight
	}
	score += PrimaryMuscleWeight * exercise.MuscleOverlap(original.PrimaryMuscles, candidate.PrimaryMuscles)
	score += SecondaryMuscleWeight * exercise.MuscleOverlap(original.SecondaryMuscles, candidate.SecondaryMuscles)
	score += EquipmentAffinity(original.Equipment, candidate.Equipment)
	return score
}

// Rank orders the candidates for substituting the original exercise.
// Candidates whose equipment is unavailable are discarded, as is the original
// itself if it appears in the pool. The result holds at most maxResults
// entries (unlimited when maxResults <= 0), sorted by descending score with
// ties broken by ascending exercise id.
func Rank(original exercise.Exercise, candidates []exercise.Exercise, available exercise.Availability, maxResults int) []Candidate {
	ranked := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == original.ID {
			continue
		}
		if !available.IsAvailable(c.Equipment) {
			continue
		}
		ranked = append(ranked, Candidate{Exercise: c, Score: Score(original, c)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Exercise.ID < ranked[j].Exercise.ID
	})

	if maxResults > 0 && len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}
	return ranked
}

// IsComparable reports whether a candidate trains the same movement closely
// enough to stand in for the original when rebasing load: same movement
// pattern and at least the given primary-muscle overlap.
func IsComparable(original, candidate exercise.Exercise, minOverlap float64) bool {
	if candidate.MovementPattern != original.MovementPattern {
		return false
	}
	return exercise.MuscleOverlap(original.PrimaryMuscles, candidate.PrimaryMuscles) >= minOverlap
}
