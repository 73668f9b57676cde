package insession

import (
	"encoding/json"
	"fmt"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/history"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/load"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/prescription"
)

// RIR delta thresholds.
const (
	// RIRDeadband is the delta magnitude below which no adjustment happens.
	RIRDeadband = 1.0
	// RIRTooEasyDelta is the observed-minus-target delta that raises load.
	RIRTooEasyDelta = 2.0
	// RIRTooHardDelta is the delta at or below which load drops.
	RIRTooHardDelta = -1.0
)

// RIRPolicy autoregulates the next set from the observed reps-in-reserve of
// the set just performed: a set much easier than prescribed raises the next
// load one increment, a set harder than prescribed lowers it one, and the
// rep target tunes by one inside the range.
type RIRPolicy struct {
	// Increment is the load step applied per adjustment.
	Increment load.Load `json:"increment"`
	// RepRange bounds the rep-target tuning.
	RepRange prescription.RepRange `json:"repRange"`
}

// Type returns the discriminator string for this policy.
func (*RIRPolicy) Type() PolicyType {
	return TypeRIRAutoregulation
}

// Validate validates the policy's configuration parameters.
func (r *RIRPolicy) Validate() error {
	if r.Increment.Value <= 0 {
		return fmt.Errorf("%w: increment must be positive", ErrInvalidParams)
	}
	if err := r.Increment.Validate(); err != nil {
		return err
	}
	return r.RepRange.Validate()
}

// Adjust revises the next planned set from the performed set's observed RIR.
// Incomplete sets, zero-rep sets, and sets without a logged RIR leave the
// plan unchanged.
func (r *RIRPolicy) Adjust(current history.SetResult, next SetPlan) SetPlan {
	if !current.Completed || current.Reps < 1 || current.ObservedRIR == nil {
		return next
	}

	delta := *current.ObservedRIR - next.TargetRIR
	if delta < RIRDeadband && delta > RIRTooHardDelta {
		return next
	}

	adjusted := next
	switch {
	case delta >= RIRTooEasyDelta:
		adjusted.TargetLoad = next.RoundingPolicy.Apply(next.TargetLoad.Plus(r.Increment))
		adjusted.TargetReps = r.RepRange.Clamp(next.TargetReps + 1)
	case delta >= RIRDeadband:
		// Easier than prescribed but not by enough to move load.
		adjusted.TargetReps = r.RepRange.Clamp(next.TargetReps + 1)
	case delta <= RIRTooHardDelta:
		adjusted.TargetLoad = next.RoundingPolicy.Apply(next.TargetLoad.Minus(r.Increment))
		adjusted.TargetReps = r.RepRange.Clamp(next.TargetReps - 1)
	}
	return adjusted
}

// MarshalJSON includes the type discriminator.
func (r *RIRPolicy) MarshalJSON() ([]byte, error) {
	type alias RIRPolicy
	return json.Marshal(&struct {
		Type PolicyType `json:"type"`
		*alias
	}{Type: TypeRIRAutoregulation, alias: (*alias)(r)})
}

// UnmarshalRIRPolicy deserializes a RIRPolicy from JSON.
func UnmarshalRIRPolicy(data json.RawMessage) (Policy, error) {
	var r RIRPolicy
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal RIR policy: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("invalid RIR policy: %w", err)
	}
	return &r, nil
}

// RegisterRIRPolicy registers the RIRPolicy type with a factory.
func RegisterRIRPolicy(factory *Factory) {
	factory.Register(TypeRIRAutoregulation, UnmarshalRIRPolicy)
}
