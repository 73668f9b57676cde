package history

import (
	"time"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/e1rm"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/load"
)

// E1RMHistoryCap is the maximum number of e1rm samples retained per lift.
const E1RMHistoryCap = 10

// E1RMSample is one dated rolling-e1rm observation.
type E1RMSample struct {
	// Date is the session date the sample was taken on.
	Date time.Time `json:"date"`
	// Value is the rolling e1rm after that session, in the state's unit.
	Value float64 `json:"value"`
}

// LiftState is the engine's per-exercise memory: the last working weight, the
// smoothed e1rm, streak bookkeeping, and the recent e1rm series the trend is
// classified from. States are created on first update after a session and
// persisted by the caller.
type LiftState struct {
	// ExerciseID identifies the lift.
	ExerciseID string `json:"exerciseId"`
	// LastWorkingWeight is the heaviest working load of the last exposure.
	LastWorkingWeight load.Load `json:"lastWorkingWeight"`
	// RollingE1RM is the smoothed e1rm in LastWorkingWeight's unit.
	RollingE1RM float64 `json:"rollingE1RM"`
	// FailureCount is the consecutive failed-session count (resets on success).
	FailureCount int `json:"failureCount"`
	// HighRPEStreak counts consecutive sessions at grinder effort.
	HighRPEStreak int `json:"highRpeStreak"`
	// SuccessStreak counts consecutive successful sessions.
	SuccessStreak int `json:"successStreak"`
	// SuccessfulSessionsCount is the lifetime successful-session total.
	SuccessfulSessionsCount int `json:"successfulSessionsCount"`
	// LastDeloadDate is when the lift last saw a deload session, if ever.
	LastDeloadDate *time.Time `json:"lastDeloadDate,omitempty"`
	// LastSessionDate is when the lift was last trained, if ever.
	LastSessionDate *time.Time `json:"lastSessionDate,omitempty"`
	// Trend is the classification of E1RMHistory.
	Trend e1rm.Trend `json:"trend"`
	// E1RMHistory holds up to E1RMHistoryCap samples, newest last.
	E1RMHistory []E1RMSample `json:"e1rmHistory,omitempty"`
}

// NewLiftState returns a fresh state for an exercise with no history.
func NewLiftState(exerciseID string) LiftState {
	return LiftState{
		ExerciseID: exerciseID,
		Trend:      e1rm.TrendInsufficient,
	}
}

// HasHistory reports whether the state has recorded at least one exposure.
func (s LiftState) HasHistory() bool {
	return s.LastSessionDate != nil && !s.LastWorkingWeight.IsZero()
}

// Unit returns the unit the state's baselines are expressed in, falling back
// to the given default when the state has no recorded weight.
func (s LiftState) Unit(fallback load.Unit) load.Unit {
	if s.LastWorkingWeight.Unit == "" {
		return fallback
	}
	return s.LastWorkingWeight.Unit
}

// ConvertedTo returns a copy of the state with LastWorkingWeight, RollingE1RM,
// and every e1rm history sample expressed in the target unit.
func (s LiftState) ConvertedTo(unit load.Unit) LiftState {
	from := s.Unit(unit)
	if from == unit {
		return s
	}
	factor := load.Load{Value: 1, Unit: from}.ConvertedTo(unit).Value
	out := s
	out.LastWorkingWeight = s.LastWorkingWeight.ConvertedTo(unit)
	out.RollingE1RM = s.RollingE1RM * factor
	out.E1RMHistory = make([]E1RMSample, len(s.E1RMHistory))
	for i, sample := range s.E1RMHistory {
		out.E1RMHistory[i] = E1RMSample{Date: sample.Date, Value: sample.Value * factor}
	}
	return out
}

// AppendE1RMSample appends a sample and truncates to the newest
// E1RMHistoryCap entries.
func (s *LiftState) AppendE1RMSample(sample E1RMSample) {
	s.E1RMHistory = append(s.E1RMHistory, sample)
	if len(s.E1RMHistory) > E1RMHistoryCap {
		s.E1RMHistory = s.E1RMHistory[len(s.E1RMHistory)-E1RMHistoryCap:]
	}
}

// E1RMValues returns the history sample values oldest to newest.
func (s LiftState) E1RMValues() []float64 {
	out := make([]float64, len(s.E1RMHistory))
	for i, sample := range s.E1RMHistory {
		out[i] = sample.Value
	}
	return out
}

// SamplesSince counts e1rm samples dated on or after the cutoff.
func (s LiftState) SamplesSince(cutoff time.Time) int {
	n := 0
	for _, sample := range s.E1RMHistory {
		if !sample.Date.Before(cutoff) {
			n++
		}
	}
	return n
}
