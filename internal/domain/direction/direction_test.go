package direction

import (
	"testing"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/exercise"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/load"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/user"
)

func rir(v float64) *float64 {
	return &v
}

func baseSignals() Signals {
	return Signals{
		HasTrained:            true,
		DaysSinceLastExposure: 3,
		FailuresBeforeDeload:  3,
		TodayReadiness:        80,
		TargetRIR:             2,
		Pattern:               exercise.PatternHorizontalPush,
	}
}

func defaultProfile() user.Profile {
	return user.Profile{Sex: user.SexMale, Experience: user.ExperienceIntermediate, Goal: user.GoalStrength}
}

func TestDecide_RuleOrder(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Signals)
		profile func() user.Profile
		want    Direction
	}{
		{"never trained holds", func(s *Signals) { s.HasTrained = false }, defaultProfile, DirectionHold},
		{"long break resets", func(s *Signals) { s.DaysSinceLastExposure = 21 }, defaultProfile, DirectionResetAfterBreak},
		{"break beats fail streak", func(s *Signals) {
			s.DaysSinceLastExposure = 30
			s.FailStreak = 5
		}, defaultProfile, DirectionResetAfterBreak},
		{"fail streak deloads", func(s *Signals) { s.FailStreak = 3 }, defaultProfile, DirectionDeload},
		{"low readiness with miss decreases", func(s *Signals) {
			s.TodayReadiness = 30
			s.Missed = true
		}, defaultProfile, DirectionDecreaseSlightly},
		{"low readiness alone holds", func(s *Signals) { s.TodayReadiness = 30 }, defaultProfile, DirectionHold},
		{"grinder on compound decreases", func(s *Signals) { s.Grinder = true }, defaultProfile, DirectionDecreaseSlightly},
		{"grinder on isolation holds", func(s *Signals) {
			s.Grinder = true
			s.Pattern = exercise.PatternElbowFlexion
		}, defaultProfile, DirectionHold},
		{"easy session increases", func(s *Signals) { s.ObservedRIR = rir(3.5) }, defaultProfile, DirectionIncrease},
		{"at prescription holds", func(s *Signals) { s.ObservedRIR = rir(2) }, defaultProfile, DirectionHold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := baseSignals()
			tt.mutate(&s)
			got := Decide(s, tt.profile())
			if got.Direction != tt.want {
				t.Errorf("Decide = %s (%s), want %s", got.Direction, got.Reason, tt.want)
			}
		})
	}
}

func TestDecide_LowReadinessHoldCutsVolume(t *testing.T) {
	s := baseSignals()
	s.TodayReadiness = 30
	got := Decide(s, defaultProfile())
	if got.Direction != DirectionHold || got.VolumeAdjustment != -1 {
		t.Errorf("expected hold with -1 volume, got %+v", got)
	}
}

func TestDecide_IncreaseGates(t *testing.T) {
	t.Run("advanced upper press needs easy streak", func(t *testing.T) {
		s := baseSignals()
		s.ObservedRIR = rir(4)
		s.RecentEasySessionCount = 1
		p := defaultProfile()
		p.Experience = user.ExperienceAdvanced
		if got := Decide(s, p); got.Direction != DirectionHold {
			t.Errorf("expected gated hold, got %s", got.Direction)
		}

		s.RecentEasySessionCount = 2
		if got := Decide(s, p); got.Direction != DirectionIncrease {
			t.Errorf("expected increase with streak, got %s", got.Direction)
		}
	})

	t.Run("advanced squat is not gated", func(t *testing.T) {
		s := baseSignals()
		s.Pattern = exercise.PatternSquat
		s.ObservedRIR = rir(4)
		p := defaultProfile()
		p.Experience = user.ExperienceAdvanced
		if got := Decide(s, p); got.Direction != DirectionIncrease {
			t.Errorf("expected increase, got %s", got.Direction)
		}
	})

	t.Run("cut phase needs high readiness", func(t *testing.T) {
		s := baseSignals()
		s.ObservedRIR = rir(4)
		s.TodayReadiness = 70
		p := defaultProfile()
		p.Goal = user.GoalFatLoss
		if got := Decide(s, p); got.Direction != DirectionHold {
			t.Errorf("expected gated hold, got %s", got.Direction)
		}

		s.TodayReadiness = 80
		if got := Decide(s, p); got.Direction != DirectionIncrease {
			t.Errorf("expected increase at readiness 80, got %s", got.Direction)
		}
	})

	t.Run("isolation needs reps at ceiling", func(t *testing.T) {
		s := baseSignals()
		s.Pattern = exercise.PatternElbowFlexion
		s.ObservedRIR = rir(4)
		if got := Decide(s, defaultProfile()); got.Direction != DirectionHold {
			t.Errorf("expected gated hold, got %s", got.Direction)
		}

		s.RepsAtCeiling = true
		if got := Decide(s, defaultProfile()); got.Direction != DirectionIncrease {
			t.Errorf("expected increase at ceiling, got %s", got.Direction)
		}
	})
}

func TestDecide_DirectionIsSexBlind(t *testing.T) {
	s := baseSignals()
	s.ObservedRIR = rir(4)
	for _, sex := range []user.Sex{user.SexMale, user.SexFemale, user.SexOther} {
		p := defaultProfile()
		p.Sex = sex
		if got := Decide(s, p); got.Direction != DirectionIncrease {
			t.Errorf("sex %s changed direction to %s", sex, got.Direction)
		}
	}
}

func TestStrengthTier_SexScaling(t *testing.T) {
	// A 1.20x bodyweight squat: novice for a male (threshold 1.25), but
	// intermediate-or-better for a female (threshold 0.775).
	male := StrengthTier(exercise.PatternSquat, 1.20, user.SexMale)
	female := StrengthTier(exercise.PatternSquat, 1.20, user.SexFemale)
	if male != TierNovice {
		t.Errorf("male tier = %s, want NOVICE", male)
	}
	if female == TierNovice {
		t.Errorf("female tier should exceed novice at same ratio")
	}
}

func TestStrengthTier_Bounds(t *testing.T) {
	if got := StrengthTier(exercise.PatternSquat, 0, user.SexMale); got != TierNovice {
		t.Errorf("zero ratio = %s, want NOVICE", got)
	}
	if got := StrengthTier(exercise.PatternSquat, 3.0, user.SexMale); got != TierElite {
		t.Errorf("3x squat = %s, want ELITE", got)
	}
	// Unknown pattern falls back to default thresholds.
	if got := StrengthTier(exercise.PatternUnknown, 1.0, user.SexMale); got != TierElite {
		t.Errorf("unknown pattern at 1.0 = %s, want ELITE", got)
	}
}

func TestComputeMagnitude(t *testing.T) {
	base := load.Load{Value: 5, Unit: load.Pounds}

	t.Run("novice beginner scales up", func(t *testing.T) {
		m := ComputeMagnitude(DirectionIncrease, base, TierNovice, user.ExperienceBeginner)
		if m.AbsoluteIncrement.Value != 5*1.5*1.5 {
			t.Errorf("increment = %v, want 11.25", m.AbsoluteIncrement.Value)
		}
	})

	t.Run("elite clamps up to base", func(t *testing.T) {
		m := ComputeMagnitude(DirectionIncrease, base, TierElite, user.ExperienceElite)
		if m.AbsoluteIncrement.Value != 5 {
			t.Errorf("increment = %v, want clamp to 5", m.AbsoluteIncrement.Value)
		}
	})

	t.Run("hold has zero increment", func(t *testing.T) {
		m := ComputeMagnitude(DirectionHold, base, TierIntermediate, user.ExperienceIntermediate)
		if !m.AbsoluteIncrement.IsZero() || m.Multiplier != 1.0 {
			t.Errorf("hold magnitude = %+v", m)
		}
	})

	t.Run("decrease uses same scaling", func(t *testing.T) {
		m := ComputeMagnitude(DirectionDecreaseSlightly, base, TierIntermediate, user.ExperienceIntermediate)
		if m.AbsoluteIncrement.Value != 5 {
			t.Errorf("decrease increment = %v, want 5", m.AbsoluteIncrement.Value)
		}
	})
}
