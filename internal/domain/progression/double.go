package progression

import (
	"encoding/json"
	"fmt"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/load"
)

// DoublePolicy advances reps within the prescription's range first; once
// every working set reaches the rep ceiling for enough consecutive sessions,
// load increases and reps reset to the range floor. Failure handling matches
// the linear policy: a run of failed sessions deloads.
type DoublePolicy struct {
	// SessionsAtTopBeforeIncrease is how many consecutive sessions must hit
	// the rep ceiling before load increases.
	SessionsAtTopBeforeIncrease int `json:"sessionsAtTopBeforeIncrease"`
	// LoadIncrement is added when the ceiling streak is reached.
	LoadIncrement load.Load `json:"loadIncrement"`
	// DeloadPercentage is the load fraction removed on deload.
	DeloadPercentage float64 `json:"deloadPercentage"`
	// FailuresBeforeDeload is the consecutive-failure count that deloads.
	FailuresBeforeDeload int `json:"failuresBeforeDeload"`
}

// Type returns the discriminator string for this policy.
func (*DoublePolicy) Type() PolicyType {
	return TypeDouble
}

// Validate validates the policy's configuration parameters.
func (d *DoublePolicy) Validate() error {
	if d.SessionsAtTopBeforeIncrease < 1 {
		return fmt.Errorf("%w: sessions at top must be >= 1, got %d", ErrInvalidParams, d.SessionsAtTopBeforeIncrease)
	}
	if d.LoadIncrement.Value <= 0 {
		return fmt.Errorf("%w: load increment", ErrIncrementNotPositive)
	}
	if err := d.LoadIncrement.Validate(); err != nil {
		return err
	}
	if d.DeloadPercentage < 0 || d.DeloadPercentage >= 1 {
		return fmt.Errorf("%w: deload percentage must be in [0, 1), got %.2f", ErrInvalidParams, d.DeloadPercentage)
	}
	if d.FailuresBeforeDeload < 1 {
		return fmt.Errorf("%w: failures before deload must be >= 1, got %d", ErrInvalidParams, d.FailuresBeforeDeload)
	}
	return nil
}

// consecutiveTopSessions counts how many of the lift's most recent exposures
// hit the rep ceiling on every working set, scanning newest first.
func (d *DoublePolicy) consecutiveTopSessions(in Inputs) int {
	ceiling := in.Prescription.TargetReps.Hi
	count := 0
	for _, session := range in.History.Sessions {
		result, ok := session.ResultFor(in.ExerciseID)
		if !ok {
			continue
		}
		if !result.AllWorkingSetsAtOrAbove(ceiling) {
			return count
		}
		count++
	}
	return count
}

// NextLoad deloads on the failure threshold, increases when the rep ceiling
// has been held long enough, and otherwise carries the last working weight.
func (d *DoublePolicy) NextLoad(in Inputs) load.Load {
	last := in.State.LastWorkingWeight.ConvertedTo(in.baseUnit())

	if in.State.FailureCount >= d.FailuresBeforeDeload {
		return last.Scaled(1 - d.DeloadPercentage)
	}
	if d.consecutiveTopSessions(in) >= d.SessionsAtTopBeforeIncrease {
		return last.Plus(d.LoadIncrement)
	}
	return last
}

// NextTargetReps resets to the floor when load changes (increase or deload)
// and otherwise nudges the target one rep past the last exposure's weakest
// working set, clamped to the range.
func (d *DoublePolicy) NextTargetReps(in Inputs) int {
	reps := in.Prescription.TargetReps

	if in.State.FailureCount >= d.FailuresBeforeDeload {
		return reps.Lo
	}
	if d.consecutiveTopSessions(in) >= d.SessionsAtTopBeforeIncrease {
		return reps.Lo
	}
	if in.LastResult == nil {
		return reps.Lo
	}

	working := in.LastResult.WorkingSets()
	if len(working) == 0 {
		return reps.Lo
	}
	weakest := working[0].Reps
	for _, s := range working[1:] {
		if s.Reps < weakest {
			weakest = s.Reps
		}
	}
	if weakest < reps.Lo {
		return reps.Lo
	}
	return reps.Clamp(weakest + 1)
}

// MarshalJSON includes the type discriminator.
func (d *DoublePolicy) MarshalJSON() ([]byte, error) {
	type alias DoublePolicy
	return json.Marshal(&struct {
		Type PolicyType `json:"type"`
		*alias
	}{Type: TypeDouble, alias: (*alias)(d)})
}

// UnmarshalDoublePolicy deserializes a DoublePolicy from JSON.
func UnmarshalDoublePolicy(data json.RawMessage) (Policy, error) {
	var d DoublePolicy
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal double progression: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid double progression: %w", err)
	}
	return &d, nil
}

// RegisterDoublePolicy registers the DoublePolicy type with a factory.
func RegisterDoublePolicy(factory *Factory) {
	factory.Register(TypeDouble, UnmarshalDoublePolicy)
}
