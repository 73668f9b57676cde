package insession

import (
	"encoding/json"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/history"
)

// NonePolicy performs no in-session adjustment.
type NonePolicy struct{}

// Type returns the discriminator string for this policy.
func (*NonePolicy) Type() PolicyType {
	return TypeNone
}

// Validate always succeeds: the policy has no configuration.
func (*NonePolicy) Validate() error {
	return nil
}

// Adjust returns the planned set unchanged.
func (*NonePolicy) Adjust(_ history.SetResult, next SetPlan) SetPlan {
	return next
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
