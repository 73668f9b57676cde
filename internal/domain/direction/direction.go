// Package direction decides which way a lift's load should move between
// sessions (increase, hold, decrease, deload, reset) and how large the move
// should be. Direction is decided from performance and readiness signals,
// with easy-session increases further gated by experience and a fat-loss
// goal; sex and strength tier influence nothing but the magnitude.
package direction

import (
	"github.com/Rahulvijayan123/workout-engine/internal/domain/exercise"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/user"
)

// Direction is the between-session load movement decision.
type Direction string

const (
	// DirectionIncrease raises the working load.
	DirectionIncrease Direction = "INCREASE"
	// DirectionHold keeps the working load unchanged.
	DirectionHold Direction = "HOLD"
	// DirectionDecreaseSlightly lowers the load by one step.
	DirectionDecreaseSlightly Direction = "DECREASE_SLIGHTLY"
	// DirectionDeload applies the deload reduction.
	DirectionDeload Direction = "DELOAD"
	// DirectionResetAfterBreak rebuilds after an extended absence.
	DirectionResetAfterBreak Direction = "RESET_AFTER_BREAK"
)

// ValidDirections contains all valid direction values.
var ValidDirections = map[Direction]bool{
	DirectionIncrease:         true,
	DirectionHold:             true,
	DirectionDecreaseSlightly: true,
	DirectionDeload:           true,
	DirectionResetAfterBreak:  true,
}

// Decision thresholds.
const (
	// ResetAfterBreakDays is the absence that forces a reset.
	ResetAfterBreakDays = 21
	// SevereLowReadiness is the readiness score below which a session is
	// compromised enough to cut load or volume.
	SevereLowReadiness = 40
	// EasySessionRIRMargin is how far observed RIR must exceed target for a
	// session to count as easy.
	EasySessionRIRMargin = 1.0
	// CutPhaseReadinessFloor gates increases during a fat-loss phase.
	CutPhaseReadinessFloor = 75
	// AdvancedPressEasySessions is the easy-session streak an advanced
	// lifter needs before an upper-body press increases.
	AdvancedPressEasySessions = 2
	// GrinderRIRThreshold is the observed RIR at or below which a working
	// set counts as a grinder.
	GrinderRIRThreshold = 0.5
)

// Signals is the distilled per-lift evidence the decision runs on. The
// planner assembles it from state, recent results, readiness, and profile.
type Signals struct {
	// HasTrained reports whether the lift has any recorded exposure.
	HasTrained bool
	// DaysSinceLastExposure is the days since the lift was last trained.
	DaysSinceLastExposure int
	// FailStreak is the lift's consecutive failed-session count.
	FailStreak int
	// FailuresBeforeDeload is the policy's deload threshold.
	FailuresBeforeDeload int
	// TodayReadiness is the day's readiness score in [0, 100].
	TodayReadiness int
	// ObservedRIR is the last exposure's hardest working-set RIR, if logged.
	ObservedRIR *float64
	// TargetRIR is the prescription's intended RIR.
	TargetRIR float64
	// Grinder reports a working set at grinder effort last exposure.
	Grinder bool
	// Missed reports a working set below the rep floor last exposure.
	Missed bool
	// TrendDeclining reports a declining e1rm trend.
	TrendDeclining bool
	// RepsAtCeiling reports every working set at the rep ceiling.
	RepsAtCeiling bool
	// RecentEasySessionCount is the current run of easy sessions.
	RecentEasySessionCount int
	// Pattern is the lift's movement pattern.
	Pattern exercise.MovementPattern
}

// easySession reports whether the last exposure was meaningfully easier than
// prescribed.
func (s Signals) easySession() bool {
	return s.ObservedRIR != nil && *s.ObservedRIR >= s.TargetRIR+EasySessionRIRMargin
}

// Decision is the direction outcome with its rationale and any volume cut.
type Decision struct {
	// Direction is the load movement.
	Direction Direction `json:"direction"`
	// Reason is a short human-readable rationale.
	Reason string `json:"reason"`
	// VolumeAdjustment is a set-count delta (only ever zero or negative).
	VolumeAdjustment int `json:"volumeAdjustment,omitempty"`
}

// Decide applies the direction rules in order; the first match wins.
// Sex never enters these rules.
func Decide(s Signals, profile user.Profile) Decision {
	if !s.HasTrained {
		return Decision{Direction: DirectionHold, Reason: "no training history"}
	}

	if s.DaysSinceLastExposure >= ResetAfterBreakDays {
		return Decision{Direction: DirectionResetAfterBreak, Reason: "extended break from this lift"}
	}

	if s.FailuresBeforeDeload > 0 && s.FailStreak >= s.FailuresBeforeDeload {
		return Decision{Direction: DirectionDeload, Reason: "consecutive failure threshold reached"}
	}

	if s.TodayReadiness < SevereLowReadiness {
		if s.Grinder || s.Missed || s.TrendDeclining {
			return Decision{Direction: DirectionDecreaseSlightly, Reason: "severe low readiness with corroborating fatigue signal"}
		}
		return Decision{
			Direction:        DirectionHold,
			Reason:           "severe low readiness without corroboration: volume cut only",
			VolumeAdjustment: -1,
		}
	}

	if s.Grinder || s.Missed {
		if s.Pattern.IsCompound() {
			return Decision{Direction: DirectionDecreaseSlightly, Reason: "grinding or missed reps on a compound lift"}
		}
		// Isolations never decrease from a single hard set.
		return Decision{Direction: DirectionHold, Reason: "hard session on an isolation lift"}
	}

	if s.easySession() {
		if gated, reason := increaseGate(s, profile); gated {
			return Decision{Direction: DirectionHold, Reason: reason}
		}
		return Decision{Direction: DirectionIncrease, Reason: "session easier than prescribed"}
	}

	return Decision{Direction: DirectionHold, Reason: "performance at prescription"}
}

// increaseGate applies the gates that can veto an easy-session increase.
// Returns true with the gate's reason when the increase is withheld.
func increaseGate(s Signals, profile user.Profile) (bool, string) {
	experience := profile.EffectiveExperience()
	advanced := experience == user.ExperienceAdvanced || experience == user.ExperienceElite

	if advanced && s.Pattern.IsUpperBodyPress() && s.RecentEasySessionCount < AdvancedPressEasySessions {
		return true, "advanced upper-body press requires consecutive easy sessions"
	}
	if profile.IsCutting() && s.TodayReadiness < CutPhaseReadinessFloor {
		return true, "fat-loss phase requires high readiness to increase"
	}
	if !s.Pattern.IsCompound() && !s.RepsAtCeiling {
		return true, "isolation increases require reps at the range ceiling"
	}
	return false, ""
}
