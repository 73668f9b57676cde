// Package progression provides the between-session progression policies.
// Each policy is a tagged variant with its own configuration record; the
// envelope/factory pair gives them a discriminated-union JSON encoding so
// plans can persist per-exercise policies polymorphically.
package progression

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/history"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/load"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/prescription"
)

// PolicyType identifies the type of progression policy.
// Uses string constants for JSON serialization compatibility.
type PolicyType string

const (
	// TypeNone carries the last working weight forward unchanged.
	TypeNone PolicyType = "NONE"
	// TypeLinear adds a fixed increment after successful sessions.
	TypeLinear PolicyType = "LINEAR_PROGRESSION"
	// TypeDouble increases reps to a ceiling, then weight.
	TypeDouble PolicyType = "DOUBLE_PROGRESSION"
	// TypeTopSetBackoff runs a top set with percentage backoff sets.
	TypeTopSetBackoff PolicyType = "TOP_SET_BACKOFF"
	// TypePercentageE1RM loads a percentage of the rolling e1rm.
	TypePercentageE1RM PolicyType = "PERCENTAGE_E1RM"
	// TypeRIRAutoregulation is a legacy value: RIR autoregulation is an
	// in-session policy, so plans storing it here are coerced to the default
	// between-session progression.
	TypeRIRAutoregulation PolicyType = "RIR_AUTOREGULATION"
)

// ValidPolicyTypes contains all valid policy type values.
var ValidPolicyTypes = map[PolicyType]bool{
	TypeNone:              true,
	TypeLinear:            true,
	TypeDouble:            true,
	TypeTopSetBackoff:     true,
	TypePercentageE1RM:    true,
	TypeRIRAutoregulation: true,
}

// Errors for progression operations.
var (
	ErrUnknownPolicyType    = errors.New("unknown progression policy type")
	ErrInvalidParams        = errors.New("invalid progression parameters")
	ErrPolicyNotRegistered  = errors.New("progression policy type not registered in factory")
	ErrIncrementNotPositive = errors.New("increment must be positive")
)

// Inputs carries everything a policy may consult when computing the next
// exposure. All fields are read-only; policies never mutate them.
type Inputs struct {
	// ExerciseID is the lift being progressed.
	ExerciseID string
	// State is the effective lift state (possibly seeded or rebased).
	State history.LiftState
	// LastResult is the latest exposure of this lift, nil when never trained.
	LastResult *history.ExerciseSessionResult
	// History is the full training record, for policies that scan streaks.
	History history.WorkoutHistory
	// Prescription is the set prescription in effect for the next session.
	Prescription prescription.SetPrescription
	// PlanUnit is the plan's rounding-policy unit, used when the state
	// carries no unit of its own.
	PlanUnit load.Unit
}

// baseUnit returns the unit progression math runs in: the state's unit when
// it has one, the plan unit otherwise.
func (in Inputs) baseUnit() load.Unit {
	return in.State.Unit(in.PlanUnit)
}

// lastSuccess reports whether the latest exposure met the rep floor on every
// working set. No exposure counts as no success.
func (in Inputs) lastSuccess() bool {
	if in.LastResult == nil {
		return false
	}
	return in.LastResult.AllWorkingSetsAtOrAbove(in.Prescription.TargetReps.Lo)
}

// Policy is the between-session progression strategy interface.
// NextLoad returns the unrounded base working load for the next exposure;
// the planner converts it to the plan unit and rounds. NextTargetReps
// returns the working rep target.
type Policy interface {
	// Type returns the discriminator string for this policy.
	Type() PolicyType

	// NextLoad computes the next base working load from the lift's state and
	// recent results. The returned load is unrounded.
	NextLoad(in Inputs) load.Load

	// NextTargetReps computes the next working rep target within the
	// prescription's range.
	NextTargetReps(in Inputs) int

	// Validate validates the policy's configuration parameters.
	Validate() error
}

// Envelope is the JSON wrapper for polymorphic Policy serialization.
// It uses the discriminated union pattern with a "type" field.
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
		return fmt.Errorf("failed to parse progression policy type: %w", err)
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
		return nil, fmt.Errorf("failed to parse progression envelope: %w", err)
	}
	return f.Create(envelope.Type, data)
}

// DefaultFactory returns a factory with all built-in policy types registered.
func DefaultFactory() *Factory {
	f := NewFactory()
	RegisterNonePolicy(f)
	RegisterLinearPolicy(f)
	RegisterDoublePolicy(f)
	RegisterTopSetBackoffPolicy(f)
	RegisterPercentageE1RMPolicy(f)
	return f
}

// UnmarshalPolicy deserializes a Policy using the default factory.
// The legacy RIR_AUTOREGULATION type is coerced to the in-session role by
// substituting the default between-session progression for the prescription
// it will be resolved against; since that prescription is unknown at decode
// time, the coercion returns nil and callers substitute DefaultFor.
func UnmarshalPolicy(data json.RawMessage) (Policy, error) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse progression envelope: %w", err)
	}
	if envelope.Type == TypeRIRAutoregulation {
		return nil, nil
	}
	return DefaultFactory().Create(envelope.Type, data)
}

// DefaultFor returns the default between-session progression for a
// prescription: double progression when the rep range is open, linear when
// the prescription pins a single rep count.
func DefaultFor(rx prescription.SetPrescription) Policy {
	if rx.TargetReps.Lo == rx.TargetReps.Hi {
		return &LinearPolicy{
			SuccessIncrement:     rx.Increment,
			DeloadPercentage:     0.10,
			FailuresBeforeDeload: 3,
		}
	}
	return &DoublePolicy{
		SessionsAtTopBeforeIncrease: 1,
		LoadIncrement:               rx.Increment,
		DeloadPercentage:            0.10,
		FailuresBeforeDeload:        3,
	}
}
