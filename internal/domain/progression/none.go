package progression

import (
	"encoding/json"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/load"
)

// NonePolicy carries the last working weight forward unchanged and always
// targets the range lower bound. Used for accessories the plan does not
// progress automatically.
type NonePolicy struct{}

// Type returns the discriminator string for this policy.
func (*NonePolicy) Type() PolicyType {
	return TypeNone
}

// Validate always succeeds: the policy has no configuration.
func (*NonePolicy) Validate() error {
	return nil
}

// NextLoad returns the last working weight in the state's unit.
func (*NonePolicy) NextLoad(in Inputs) load.Load {
	return in.State.LastWorkingWeight.ConvertedTo(in.baseUnit())
}

// NextTargetReps returns the range lower bound.
func (*NonePolicy) NextTargetReps(in Inputs) int {
	return in.Prescription.TargetReps.Lo
}

// MarshalJSON includes the type discriminator.
func (n *NonePolicy) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type PolicyType `json:"type"`
	}{Type: TypeNone})
}

// UnmarshalNonePolicy deserializes a NonePolicy from JSON.
func UnmarshalNonePolicy(json.RawMessage) (Policy, error) {
	return &NonePolicy{}, nil
}

// RegisterNonePolicy registers the NonePolicy type with a factory.
func RegisterNonePolicy(factory *Factory) {
	factory.Register(TypeNone, UnmarshalNonePolicy)
}
