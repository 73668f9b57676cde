package progression

import (
	"encoding/json"
	"fmt"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/load"
)

// PercentageE1RMPolicy loads a percentage of the rolling e1rm. The
// percentage itself lives on the prescription (TargetPercentage); the policy
// preserves the unit the state is tracked in and falls back to the default
// progression when no e1rm estimate exists yet.
type PercentageE1RMPolicy struct{}

// Type returns the discriminator string for this policy.
func (*PercentageE1RMPolicy) Type() PolicyType {
	return TypePercentageE1RM
}

// Validate always succeeds: the percentage is validated on the prescription.
func (*PercentageE1RMPolicy) Validate() error {
	return nil
}

// NextLoad returns rollingE1RM * targetPercentage in the unit of the last
// working weight when one exists, the plan unit otherwise. A zero e1rm
// defers to the default progression for the prescription.
func (p *PercentageE1RMPolicy) NextLoad(in Inputs) load.Load {
	if in.State.RollingE1RM <= 0 {
		return DefaultFor(in.Prescription).NextLoad(in)
	}
	pct := 0.0
	if in.Prescription.TargetPercentage != nil {
		pct = *in.Prescription.TargetPercentage
	}
	if pct <= 0 {
		return DefaultFor(in.Prescription).NextLoad(in)
	}
	return load.Load{Value: in.State.RollingE1RM * pct, Unit: in.baseUnit()}
}

// NextTargetReps returns the range lower bound.
func (p *PercentageE1RMPolicy) NextTargetReps(in Inputs) int {
	return in.Prescription.TargetReps.Lo
}

// MarshalJSON includes the type discriminator.
func (p *PercentageE1RMPolicy) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type PolicyType `json:"type"`
	}{Type: TypePercentageE1RM})
}

// UnmarshalPercentageE1RMPolicy deserializes the policy from JSON.
func UnmarshalPercentageE1RMPolicy(data json.RawMessage) (Policy, error) {
	var p PercentageE1RMPolicy
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal percentage progression: %w", err)
	}
	return &p, nil
}

// RegisterPercentageE1RMPolicy registers the policy type with a factory.
func RegisterPercentageE1RMPolicy(factory *Factory) {
	factory.Register(TypePercentageE1RM, UnmarshalPercentageE1RMPolicy)
}
