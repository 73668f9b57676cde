// Package e1rm provides domain logic for Estimated 1-Rep Maximum (E1RM)
// calculations. E1RM is estimated from a performed set using the Brzycki
// formula and smoothed across sessions with an exponential moving average.
package e1rm

import (
	"github.com/Rahulvijayan123/workout-engine/internal/domain/load"
)

// MaxBrzyckiReps is the rep count beyond which the Brzycki formula is
// undefined; higher rep counts are clamped to this value.
const MaxBrzyckiReps = 36

// SmoothingFactor is the weight given to the newest session estimate when
// smoothing the rolling E1RM (rolling = 0.3*session + 0.7*rolling).
const SmoothingFactor = 0.3

// clampReps clamps a rep count into the Brzycki-defined range [1, 36].
func clampReps(reps int) int {
	if reps < 1 {
		return 1
	}
	if reps > MaxBrzyckiReps {
		return MaxBrzyckiReps
	}
	return reps
}

// Estimate computes the Brzycki one-rep-max estimate for a set.
// Formula: e1rm = w * 36 / (37 - r). At r=1 this returns w unchanged.
// Rep counts outside [1, 36] are clamped.
func Estimate(weight float64, reps int) float64 {
	if weight <= 0 {
		return 0
	}
	r := clampReps(reps)
	return weight * 36.0 / float64(37-r)
}

// EstimateLoad computes the Brzycki estimate for a Load, preserving its unit.
func EstimateLoad(l load.Load, reps int) load.Load {
	return load.Load{Value: Estimate(l.Value, reps), Unit: l.Unit}
}

// WorkingWeight inverts the Brzycki formula: the weight at which the given
// e1rm predicts the lifter can perform the given rep count.
func WorkingWeight(e1rm float64, reps int) float64 {
	if e1rm <= 0 {
		return 0
	}
	r := clampReps(reps)
	return e1rm * float64(37-r) / 36.0
}

// Smooth folds a new session estimate into the rolling E1RM.
// A zero rolling value is seeded directly with the session estimate.
func Smooth(rolling, session float64) float64 {
	if rolling <= 0 {
		return session
	}
	return SmoothingFactor*session + (1-SmoothingFactor)*rolling
}
