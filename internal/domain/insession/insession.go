// Package insession provides the within-workout adjustment policies: given
// the set just performed and the next planned set, a policy returns a
// possibly revised plan for the next set. The package also owns SetPlan, the
// per-set output unit the planner emits and clients log against.
package insession

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/history"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/load"
)

// PolicyType identifies the type of in-session policy.
// Uses string constants for JSON serialization compatibility.
type PolicyType string

const (
	// TypeNone performs no in-session adjustment.
	TypeNone PolicyType = "NONE"
	// TypeRIRAutoregulation adjusts the next set from observed RIR.
	TypeRIRAutoregulation PolicyType = "RIR_AUTOREGULATION"
	// TypeTopSetBackoff recomputes backoff loads from the observed top set.
	TypeTopSetBackoff PolicyType = "TOP_SET_BACKOFF"
)

// ValidPolicyTypes contains all valid policy type values.
var ValidPolicyTypes = map[PolicyType]bool{
	TypeNone:              true,
	TypeRIRAutoregulation: true,
	TypeTopSetBackoff:     true,
}

// Errors for in-session policy operations.
var (
	ErrUnknownPolicyType   = errors.New("unknown in-session policy type")
	ErrInvalidParams       = errors.New("invalid in-session policy parameters")
	ErrPolicyNotRegistered = errors.New("in-session policy type not registered in factory")
)

// SetPlan is one planned set: the unit of prescription the engine emits and
// the unit of adjustment during a workout.
type SetPlan struct {
	// SetIndex is the 0-based position of the set within the exercise.
	SetIndex int `json:"setIndex"`
	// TargetLoad is the prescribed working load, rounded in the plan unit.
	TargetLoad load.Load `json:"targetLoad"`
	// TargetReps is the prescribed rep count (>= 1).
	TargetReps int `json:"targetReps"`
	// TargetRIR is the prescribed reps-in-reserve.
	TargetRIR float64 `json:"targetRIR"`
	// RestSeconds is the rest before the following set.
	RestSeconds int `json:"restSeconds"`
	// IsWarmup marks ramp-in sets that never count as working sets.
	IsWarmup bool `json:"isWarmup,omitempty"`
	// BackoffPercentage is the top-set fraction this set works at, when the
	// exercise runs a top-set scheme.
	BackoffPercentage *float64 `json:"backoffPercentage,omitempty"`
	// Policy is the in-session adjustment policy governing this set.
	Policy Policy `json:"inSessionPolicy"`
	// RoundingPolicy is the rounding applied to any adjusted load.
	RoundingPolicy load.RoundingPolicy `json:"roundingPolicy"`
}

// UnmarshalJSON decodes a SetPlan, resolving the polymorphic policy field
// through the default factory.
func (s *SetPlan) UnmarshalJSON(data []byte) error {
	type alias SetPlan
	raw := struct {
		*alias
		Policy json.RawMessage `json:"inSessionPolicy"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse set plan: %w", err)
	}
	if len(raw.Policy) > 0 && string(raw.Policy) != "null" {
		policy, err := UnmarshalPolicy(raw.Policy)
		if err != nil {
			return err
		}
		s.Policy = policy
	}
	return nil
}

// Policy is the in-session adjustment strategy interface. Adjust never
// mutates its inputs; it returns the next set's plan, revised or unchanged.
type Policy interface {
	// Type returns the discriminator string for this policy.
	Type() PolicyType

	// Adjust transforms the next planned set given the just-performed set.
	Adjust(current history.SetResult, next SetPlan) SetPlan

	// Validate validates the policy's configuration parameters.
	Validate() error
}

// AdjustDuringSession applies the next set's own policy to itself given the
// just-performed set. A plan without a policy is returned unchanged.
func AdjustDuringSession(current history.SetResult, next SetPlan) SetPlan {
	if next.Policy == nil {
		return next
	}
	return next.Policy.Adjust(current, next)
}

// Envelope is the JSON wrapper for polymorphic Policy serialization.
type Envelope struct {
	Type PolicyType `json:"type"`
	// Raw contains the policy-specific JSON data (excluding the type field).
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON extracts the type field and stores the raw JSON for later
// parsing by the factory.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var typeOnly struct {
		Type PolicyType `json:"type"`
	}
	if err := json.Unmarshal(data, &typeOnly); err != nil {
		return fmt.Errorf("failed to parse in-session policy type: %w", err)
	}
	e.Type = typeOnly.Type
	e.Raw = data
	return nil
}

// Factory creates Policy instances from their type and JSON data.
type Factory struct {
	creators map[PolicyType]func(json.RawMessage) (Policy, error)
}

// NewFactory creates a Factory with no registered types.
func NewFactory() *Factory {
	return &Factory{creators: make(map[PolicyType]func(json.RawMessage) (Policy, error))}
}

// Register registers a policy constructor for a given type.
func (f *Factory) Register(policyType PolicyType, creator func(json.RawMessage) (Policy, error)) {
	f.creators[policyType] = creator
}

// Create creates a Policy from a type and raw JSON data.
func (f *Factory) Create(policyType PolicyType, data json.RawMessage) (Policy, error) {
	creator, ok := f.creators[policyType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPolicyNotRegistered, policyType)
	}
	return creator(data)
}

// CreateFromJSON creates a Policy from raw JSON containing the discriminator.
func (f *Factory) CreateFromJSON(data json.RawMessage) (Policy, error) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse in-session envelope: %w", err)
	}
	return f.Create(envelope.Type, data)
}

// DefaultFactory returns a factory with all built-in policy types registered.
func DefaultFactory() *Factory {
	f := NewFactory()
	RegisterNonePolicy(f)
	RegisterRIRPolicy(f)
	RegisterTopSetPolicy(f)
	return f
}

// UnmarshalPolicy deserializes a Policy using the default factory.
func UnmarshalPolicy(data json.RawMessage) (Policy, error) {
	return DefaultFactory().CreateFromJSON(data)
}
