package progression

import (
	"encoding/json"
	"fmt"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/load"
)

// LinearPolicy adds a fixed increment after every successful session and
// deloads after a run of consecutive failures. A session succeeds when every
// working set reaches the rep-range lower bound.
type LinearPolicy struct {
	// SuccessIncrement is added after a successful session.
	SuccessIncrement load.Load `json:"successIncrement"`
	// FailureDecrement, when set, is subtracted after a failed session that
	// has not yet reached the deload threshold.
	FailureDecrement *load.Load `json:"failureDecrement,omitempty"`
	// DeloadPercentage is the load fraction removed on deload (e.g. 0.10).
	DeloadPercentage float64 `json:"deloadPercentage"`
	// FailuresBeforeDeload is the consecutive-failure count that deloads.
	FailuresBeforeDeload int `json:"failuresBeforeDeload"`
}

// Type returns the discriminator string for this policy.
func (*LinearPolicy) Type() PolicyType {
	return TypeLinear
}

// Validate validates the policy's configuration parameters.
func (l *LinearPolicy) Validate() error {
	if l.SuccessIncrement.Value <= 0 {
		return fmt.Errorf("%w: success increment", ErrIncrementNotPositive)
	}
	if err := l.SuccessIncrement.Validate(); err != nil {
		return err
	}
	if l.FailureDecrement != nil {
		if err := l.FailureDecrement.Validate(); err != nil {
			return err
		}
	}
	if l.DeloadPercentage < 0 || l.DeloadPercentage >= 1 {
		return fmt.Errorf("%w: deload percentage must be in [0, 1), got %.2f", ErrInvalidParams, l.DeloadPercentage)
	}
	if l.FailuresBeforeDeload < 1 {
		return fmt.Errorf("%w: failures before deload must be >= 1, got %d", ErrInvalidParams, l.FailuresBeforeDeload)
	}
	return nil
}

// NextLoad computes the next base load: deload on the failure threshold,
// increment on success, optional decrement on an early failure, otherwise
// carry the last working weight.
func (l *LinearPolicy) NextLoad(in Inputs) load.Load {
	last := in.State.LastWorkingWeight.ConvertedTo(in.baseUnit())

	if in.State.FailureCount >= l.FailuresBeforeDeload {
		return last.Scaled(1 - l.DeloadPercentage)
	}
	if in.lastSuccess() {
		return last.Plus(l.SuccessIncrement)
	}
	if in.LastResult != nil && l.FailureDecrement != nil {
		return last.Minus(*l.FailureDecrement)
	}
	return last
}

// NextTargetReps returns the range lower bound: linear progressions hold
// reps fixed and move load.
func (l *LinearPolicy) NextTargetReps(in Inputs) int {
	return in.Prescription.TargetReps.Lo
}

// MarshalJSON includes the type discriminator.
func (l *LinearPolicy) MarshalJSON() ([]byte, error) {
	type alias LinearPolicy
	return json.Marshal(&struct {
		Type PolicyType `json:"type"`
		*alias
	}{Type: TypeLinear, alias: (*alias)(l)})
}

// UnmarshalLinearPolicy deserializes a LinearPolicy from JSON.
func UnmarshalLinearPolicy(data json.RawMessage) (Policy, error) {
	var l LinearPolicy
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to unmarshal linear progression: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid linear progression: %w", err)
	}
	return &l, nil
}

// RegisterLinearPolicy registers the LinearPolicy type with a factory.
func RegisterLinearPolicy(factory *Factory) {
	factory.Register(TypeLinear, UnmarshalLinearPolicy)
}
