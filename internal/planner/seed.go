package planner

import (
	"sort"
	"time"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/calendar"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/exercise"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/history"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/substitution"
)

// Seeding and rebasing constants.
const (
	// ReturnToOriginalGapDays is the absence after which a lift returning
	// from an outage rebases against a comparable substitute.
	ReturnToOriginalGapDays = 28
	// ComparableMuscleOverlap is the primary-muscle overlap a substitute
	// needs to stand in for rebasing.
	ComparableMuscleOverlap = 0.60
	// ComparableRecencyDays is how recently the substitute must have been
	// trained to count.
	ComparableRecencyDays = 28
)

// Cross-family conservative penalties applied when a returning lift rebases
// from a substitute in a different equipment family.
const (
	PenaltyBarbellDumbbell = 0.90
	PenaltyBarbellMachine  = 0.92
	PenaltyGeneric         = 0.90
)

// barbellToDumbbellScale maps barbell loads to their dumbbell equivalents per
// movement pattern. A pair of dumbbells moves far less absolute load than a
// bar, and the gap depends on the movement.
var barbellToDumbbellScale = map[exercise.MovementPattern]float64{
	exercise.PatternSquat:    0.35,
	exercise.PatternHipHinge: 0.55,
}

// barbellToDumbbellDefault covers pushes, pulls, and everything else.
const barbellToDumbbellDefault = 0.45

// barbellToMachineScale is the generic barbell-to-machine load scale.
const barbellToMachineScale = 0.70

// CrossEquipmentScale returns the deterministic factor that maps a working
// load on one implement to its starting estimate on another, for the given
// movement pattern. Same-family transfers scale by 1. The substitute-to-
// barbell direction is the inverse of barbell-to-substitute.
func CrossEquipmentScale(pattern exercise.MovementPattern, from, to exercise.Equipment) float64 {
	if from == to {
		return 1.0
	}
	if to == exercise.EquipmentBodyweight || from == exercise.EquipmentBodyweight {
		// Bodyweight loads are always zero; scaling is meaningless.
		return 1.0
	}

	forward := func(target exercise.Equipment) float64 {
		switch target {
		case exercise.EquipmentDumbbell, exercise.EquipmentKettlebell:
			if s, ok := barbellToDumbbellScale[pattern]; ok {
				return s
			}
			return barbellToDumbbellDefault
		case exercise.EquipmentMachine, exercise.EquipmentCable:
			return barbellToMachineScale
		default:
			return 1.0
		}
	}

	switch {
	case from == exercise.EquipmentBarbell:
		return forward(to)
	case to == exercise.EquipmentBarbell:
		return 1.0 / forward(from)
	default:
		// Neither side is a barbell: route through the barbell estimate.
		return forward(to) / forward(from)
	}
}

// crossFamilyPenalty returns the conservative factor applied when a
// returning lift's baseline is refreshed from a different equipment family.
func crossFamilyPenalty(from, to exercise.Equipment) float64 {
	if from == to {
		return 1.0
	}
	isFree := func(e exercise.Equipment) bool {
		return e == exercise.EquipmentDumbbell || e == exercise.EquipmentKettlebell
	}
	isMachine := func(e exercise.Equipment) bool {
		return e == exercise.EquipmentMachine || e == exercise.EquipmentCable
	}
	switch {
	case from == exercise.EquipmentBarbell && isFree(to), to == exercise.EquipmentBarbell && isFree(from):
		return PenaltyBarbellDumbbell
	case from == exercise.EquipmentBarbell && isMachine(to), to == exercise.EquipmentBarbell && isMachine(from):
		return PenaltyBarbellMachine
	default:
		return PenaltyGeneric
	}
}

// comparableSubstitute finds the most recently trained lift state whose
// exercise is a comparable substitute for the target: same movement
// pattern, sufficient primary-muscle overlap, and trained within the
// recency window. Candidates are scanned in id order for determinism; the
// most recent session date wins, ties broken by id.
func comparableSubstitute(target exercise.Exercise, hist history.WorkoutHistory, index map[string]exercise.Exercise, date time.Time, cal calendar.Calendar) (history.LiftState, exercise.Exercise, bool) {
	ids := make([]string, 0, len(hist.LiftStates))
	for id := range hist.LiftStates {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var (
		best   history.LiftState
		bestEx exercise.Exercise
		found  bool
	)
	for _, id := range ids {
		if id == target.ID {
			continue
		}
		state := hist.LiftStates[id]
		if state.LastSessionDate == nil || state.LastWorkingWeight.IsZero() {
			continue
		}
		if cal.DaysBetween(*state.LastSessionDate, date) >= ComparableRecencyDays {
			continue
		}
		candidate, ok := index[id]
		if !ok {
			continue
		}
		if !substitution.IsComparable(target, candidate, ComparableMuscleOverlap) {
			continue
		}
		if !found || state.LastSessionDate.After(*best.LastSessionDate) {
			best, bestEx, found = state, candidate, true
		}
	}
	return best, bestEx, found
}

// effectiveLiftState derives the state progression runs on for the exercise
// actually performed, handling three situations beyond the plain lookup:
// a lift returning after an outage rebases its recency (and conservatively
// its baselines) from a comparable substitute that stayed trained; a
// substitute with no history of its own seeds from the original's state via
// the cross-equipment scale; and an original with no history seeds from its
// best comparable substitute.
func effectiveLiftState(performed, original exercise.Exercise, hist history.WorkoutHistory, index map[string]exercise.Exercise, date time.Time, cal calendar.Calendar) history.LiftState {
	if state, ok := hist.LiftStateFor(performed.ID); ok && !state.LastWorkingWeight.IsZero() {
		if state.LastSessionDate != nil && cal.DaysBetween(*state.LastSessionDate, date) >= ReturnToOriginalGapDays {
			if sub, subEx, ok := comparableSubstitute(performed, hist, index, date, cal); ok {
				// The substitute kept the movement trained through the
				// outage: refresh recency so detraining does not also fire,
				// and discount the baseline when the implements differ.
				refreshed := state
				refreshed.LastSessionDate = sub.LastSessionDate
				penalty := crossFamilyPenalty(subEx.Equipment, performed.Equipment)
				refreshed.LastWorkingWeight = refreshed.LastWorkingWeight.Scaled(penalty)
				refreshed.RollingE1RM *= penalty
				return refreshed
			}
		}
		return state
	}

	if performed.ID != original.ID {
		if origState, ok := hist.LiftStateFor(original.ID); ok && origState.HasHistory() {
			scale := CrossEquipmentScale(original.MovementPattern, original.Equipment, performed.Equipment)
			seeded := history.NewLiftState(performed.ID)
			seeded.LastWorkingWeight = origState.LastWorkingWeight.Scaled(scale)
			seeded.RollingE1RM = origState.RollingE1RM * scale
			seeded.LastSessionDate = origState.LastSessionDate
			return seeded
		}
	} else if sub, subEx, ok := comparableSubstitute(performed, hist, index, date, cal); ok {
		scale := CrossEquipmentScale(performed.MovementPattern, subEx.Equipment, performed.Equipment)
		seeded := history.NewLiftState(performed.ID)
		seeded.LastWorkingWeight = sub.LastWorkingWeight.Scaled(scale)
		seeded.RollingE1RM = sub.RollingE1RM * scale
		seeded.LastSessionDate = sub.LastSessionDate
		return seeded
	}

	return history.NewLiftState(performed.ID)
}

// Detraining step function: fraction removed from the base load by days
// since the lift was last trained.
const (
	DetrainingTier1Days = 28
	DetrainingTier2Days = 56
	DetrainingTier3Days = 84
)

// detrainingFactor returns the load multiplier for an absence.
func detrainingFactor(daysSince int) float64 {
	switch {
	case daysSince < DetrainingTier1Days:
		return 1.0
	case daysSince < DetrainingTier2Days:
		return 0.90
	case daysSince < DetrainingTier3Days:
		return 0.80
	default:
		return 0.70
	}
}
