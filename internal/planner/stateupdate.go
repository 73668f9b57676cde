package planner

import (
	"math"
	"sort"
	"time"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/calendar"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/e1rm"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/history"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/load"
)

// Unit-misentry guardrail constants. A logged weight that lands suspiciously
// close to the lb/kg conversion factor of the prior baseline is usually a
// unit mix-up, not a real performance collapse; the guardrail corrects it
// only when the corrected value lands inside a plausible band.
const (
	// MisentryLbToKgTolerance is the loose tolerance around the kg/lb ratio.
	MisentryLbToKgTolerance = 0.08
	// MisentryKgToLbTolerance is the loose tolerance around the lb/kg ratio.
	MisentryKgToLbTolerance = 0.25
	// MisentryExactTolerance is the tight tolerance that corrects even
	// without a recent prior session.
	MisentryExactTolerance = 0.005
	// MisentryRecencyDays bounds how old the prior session may be for the
	// loose-tolerance correction.
	MisentryRecencyDays = 56
	// MisentryBandLow and MisentryBandHigh bound the corrected/prior ratio
	// a correction must land in to be accepted.
	MisentryBandLow  = 0.75
	MisentryBandHigh = 1.35
)

// Deload-exception constants: a deload after a long gap, or one whose
// baseline sits far from the prior one, is really a return-to-training
// exposure and updates baselines after all.
const (
	DeloadExceptionGapDays  = 28
	DeloadExceptionBandLow  = 0.75
	DeloadExceptionBandHigh = 1.35
)

// UpdateLiftState applies a completed session onto the prior lift states and
// returns the new states, sorted by exercise id. Prior states are never
// mutated; exercises with no working sets carry forward unchanged.
func UpdateLiftState(session history.CompletedSession, prior map[string]history.LiftState, cal calendar.Calendar) []history.LiftState {
	updated := make([]history.LiftState, 0, len(session.Exercises))
	seen := make(map[string]bool, len(session.Exercises))

	for _, result := range session.Exercises {
		if seen[result.ExerciseID] {
			continue
		}
		seen[result.ExerciseID] = true

		state, ok := prior[result.ExerciseID]
		if !ok {
			state = history.NewLiftState(result.ExerciseID)
		}
		updated = append(updated, applyResult(session, result, state, cal))
	}

	sort.Slice(updated, func(i, j int) bool { return updated[i].ExerciseID < updated[j].ExerciseID })
	return updated
}

// applyResult applies one exercise's session result onto its prior state.
func applyResult(session history.CompletedSession, result history.ExerciseSessionResult, prior history.LiftState, cal calendar.Calendar) history.LiftState {
	working := result.WorkingSets()
	if len(working) == 0 {
		return prior
	}

	day := cal.StartOfDay(session.Date)

	// The session's unit is the unit of its heaviest working set.
	sessionUnit := maxWorkingSet(working).Load.Unit

	// Unit handoff: express the prior baselines in the session's unit.
	state := prior.ConvertedTo(sessionUnit)

	proposed := result.MaxWorkingLoad(sessionUnit)
	sessionE1RM := 0.0
	for _, s := range working {
		est := e1rm.Estimate(s.Load.ConvertedTo(sessionUnit).Value, s.Reps)
		if est > sessionE1RM {
			sessionE1RM = est
		}
	}

	proposed, sessionE1RM = applyMisentryGuardrail(state, proposed, sessionE1RM, day, cal)

	failed := result.AnyWorkingSetBelow(result.Prescription.TargetReps.Lo)

	if session.WasDeload {
		return applyDeloadResult(state, proposed, sessionE1RM, failed, day, cal)
	}
	return applyTrainingResult(state, proposed, sessionE1RM, failed, day, result)
}

// maxWorkingSet returns the heaviest working set.
func maxWorkingSet(working []history.SetResult) history.SetResult {
	best := working[0]
	for _, s := range working[1:] {
		if s.Load.Compare(best.Load) > 0 {
			best = s
		}
	}
	return best
}

// applyMisentryGuardrail corrects a probable unit mix-up in the logged
// weight. It only fires when both prior and current weights are positive,
// the current/prior ratio sits near a conversion factor (with a loose
// tolerance backed by a recent prior session, or a tight tolerance alone),
// and the corrected value lands inside the plausible band.
func applyMisentryGuardrail(state history.LiftState, proposed load.Load, sessionE1RM float64, day time.Time, cal calendar.Calendar) (load.Load, float64) {
	priorWeight := state.LastWorkingWeight.Value
	if priorWeight <= 0 || proposed.Value <= 0 {
		return proposed, sessionE1RM
	}

	ratio := proposed.Value / priorWeight
	recent := state.LastSessionDate != nil && cal.DaysBetween(*state.LastSessionDate, day) < MisentryRecencyDays

	correct := func(factor float64) (load.Load, float64, bool) {
		corrected := proposed.Value * factor
		band := corrected / priorWeight
		if band >= MisentryBandLow && band <= MisentryBandHigh {
			return load.Load{Value: corrected, Unit: proposed.Unit}, sessionE1RM * factor, true
		}
		return proposed, sessionE1RM, false
	}

	// kg value logged against an lb baseline: ratio near 0.4536.
	nearLbToKg := math.Abs(ratio-load.KilogramsPerPound) < MisentryLbToKgTolerance
	exactLbToKg := math.Abs(ratio-load.KilogramsPerPound) < MisentryExactTolerance
	if (nearLbToKg && recent) || exactLbToKg {
		if fixed, fixedE1RM, ok := correct(load.PoundsPerKilogram); ok {
			return fixed, fixedE1RM
		}
	}

	// lb value logged against a kg baseline: ratio near 2.2046.
	nearKgToLb := math.Abs(ratio-load.PoundsPerKilogram) < MisentryKgToLbTolerance
	exactKgToLb := math.Abs(ratio-load.PoundsPerKilogram) < MisentryExactTolerance
	if (nearKgToLb && recent) || exactKgToLb {
		if fixed, fixedE1RM, ok := correct(load.KilogramsPerPound); ok {
			return fixed, fixedE1RM
		}
	}

	return proposed, sessionE1RM
}

// applyDeloadResult handles deload sessions. The baseline weight, rolling
// e1rm, and e1rm history are preserved; only the bookkeeping fields move.
// Re-applying the same deload day is a no-op so state never re-decays.
// Exception: after a long gap, or when the session's weight sits far outside
// the prior baseline's band, the deload is really a return-to-training
// exposure and baselines update with the usual smoothing.
func applyDeloadResult(state history.LiftState, proposed load.Load, sessionE1RM float64, failed bool, day time.Time, cal calendar.Calendar) history.LiftState {
	if state.LastDeloadDate != nil && cal.StartOfDay(*state.LastDeloadDate).Equal(day) {
		return state
	}

	longGap := state.LastSessionDate != nil && cal.DaysBetween(*state.LastSessionDate, day) >= DeloadExceptionGapDays
	shifted := false
	if state.LastWorkingWeight.Value > 0 && proposed.Value > 0 {
		ratio := proposed.Value / state.LastWorkingWeight.Value
		shifted = ratio < DeloadExceptionBandLow || ratio > DeloadExceptionBandHigh
	}

	if longGap || shifted {
		updated := updateBaselines(state, proposed, sessionE1RM, failed, day)
		deloadDay := day
		updated.LastDeloadDate = &deloadDay
		return updated
	}

	updated := state
	sessionDay := day
	updated.LastSessionDate = &sessionDay
	deloadDay := day
	updated.LastDeloadDate = &deloadDay
	if failed {
		updated.FailureCount = state.FailureCount + 1
		updated.SuccessStreak = 0
	} else {
		updated.FailureCount = 0
	}
	return updated
}

// applyTrainingResult handles ordinary sessions: baselines, smoothing,
// streaks, e1rm history, and trend all update.
func applyTrainingResult(state history.LiftState, proposed load.Load, sessionE1RM float64, failed bool, day time.Time, result history.ExerciseSessionResult) history.LiftState {
	updated := updateBaselines(state, proposed, sessionE1RM, failed, day)

	if grinderSession(result) {
		updated.HighRPEStreak = state.HighRPEStreak + 1
	} else {
		updated.HighRPEStreak = 0
	}
	return updated
}

// updateBaselines applies the shared baseline update: last working weight,
// smoothed rolling e1rm, failure and success bookkeeping, capped e1rm
// history, trend, and session date.
func updateBaselines(state history.LiftState, proposed load.Load, sessionE1RM float64, failed bool, day time.Time) history.LiftState {
	updated := state
	updated.LastWorkingWeight = proposed
	updated.RollingE1RM = e1rm.Smooth(state.RollingE1RM, sessionE1RM)

	if failed {
		updated.FailureCount = state.FailureCount + 1
		updated.SuccessStreak = 0
	} else {
		updated.FailureCount = 0
		updated.SuccessStreak = state.SuccessStreak + 1
		updated.SuccessfulSessionsCount = state.SuccessfulSessionsCount + 1
	}

	updated.E1RMHistory = append([]history.E1RMSample(nil), state.E1RMHistory...)
	updated.AppendE1RMSample(history.E1RMSample{Date: day, Value: updated.RollingE1RM})
	updated.Trend = e1rm.ClassifyTrend(updated.E1RMValues())

	sessionDay := day
	updated.LastSessionDate = &sessionDay
	return updated
}

// grinderSession reports whether any working set was logged at grinder
// effort (at or below half a rep in reserve).
func grinderSession(result history.ExerciseSessionResult) bool {
	for _, s := range result.WorkingSets() {
		if s.ObservedRIR != nil && *s.ObservedRIR <= 0.5 {
			return true
		}
	}
	return false
}
