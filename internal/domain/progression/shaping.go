package progression

import (
	"github.com/Rahulvijayan123/workout-engine/internal/domain/e1rm"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/history"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/load"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/prescription"
)

// ComputeSetLoad shapes the base load for one set and rounds it. Under a
// top-set policy every set after the first works at the backoff percentage
// of the top set; every other policy loads all sets identically.
func ComputeSetLoad(setIndex int, base load.Load, policy Policy, rounding load.RoundingPolicy) load.Load {
	if top, ok := policy.(*TopSetBackoffPolicy); ok && setIndex >= 1 {
		return rounding.Apply(base.Scaled(top.BackoffPercentage))
	}
	return rounding.Apply(base)
}

// BackoffPercentageFor returns the backoff fraction a set runs at, when the
// policy defines one. The top set itself has no backoff.
func BackoffPercentageFor(setIndex int, policy Policy) *float64 {
	if top, ok := policy.(*TopSetBackoffPolicy); ok && setIndex >= 1 {
		pct := top.BackoffPercentage
		return &pct
	}
	return nil
}

// NeedsRebase reports whether the latest exposure ran under a materially
// different prescription, in which case the carried working weight is
// meaningless and the next base load must come from the rolling e1rm.
func NeedsRebase(lastResult *history.ExerciseSessionResult, rx prescription.SetPrescription) bool {
	if lastResult == nil {
		return false
	}
	return lastResult.Prescription.MateriallyDifferent(rx)
}

// RebaseLoad derives a base load from the rolling e1rm via the inverse
// Brzycki mapping at the new rep floor. Returns zero when no estimate exists.
func RebaseLoad(state history.LiftState, rx prescription.SetPrescription, planUnit load.Unit) load.Load {
	unit := state.Unit(planUnit)
	if state.RollingE1RM <= 0 {
		return load.Zero(unit)
	}
	return load.Load{
		Value: e1rm.WorkingWeight(state.RollingE1RM, rx.TargetReps.Lo),
		Unit:  unit,
	}
}
