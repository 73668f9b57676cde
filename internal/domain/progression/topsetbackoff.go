package progression

import (
	"encoding/json"
	"fmt"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/e1rm"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/load"
)

// TopSetBackoffPolicy runs the first working set at the projected max and the
// remaining sets at a fixed percentage of it. With UseDailyMax the in-session
// policy recomputes backoffs from the e1rm the top set actually demonstrated.
type TopSetBackoffPolicy struct {
	// BackoffSetCount is the number of backoff sets after the top set.
	BackoffSetCount int `json:"backoffSetCount"`
	// BackoffPercentage is the fraction of the top-set load backoffs use.
	BackoffPercentage float64 `json:"backoffPercentage"`
	// LoadIncrement is added to the top set after a successful session.
	LoadIncrement load.Load `json:"loadIncrement"`
	// UseDailyMax recomputes backoffs in session from the observed top set.
	UseDailyMax bool `json:"useDailyMax"`
	// MinimumTopSetReps is the rep floor below which a top set is not
	// trusted as a daily-max signal.
	MinimumTopSetReps int `json:"minimumTopSetReps"`
}

// Type returns the discriminator string for this policy.
func (*TopSetBackoffPolicy) Type() PolicyType {
	return TypeTopSetBackoff
}

// Validate validates the policy's configuration parameters.
func (t *TopSetBackoffPolicy) Validate() error {
	if t.BackoffSetCount < 0 {
		return fmt.Errorf("%w: backoff set count cannot be negative, got %d", ErrInvalidParams, t.BackoffSetCount)
	}
	if t.BackoffPercentage <= 0 || t.BackoffPercentage > 1 {
		return fmt.Errorf("%w: backoff percentage must be in (0, 1], got %.2f", ErrInvalidParams, t.BackoffPercentage)
	}
	if t.LoadIncrement.Value <= 0 {
		return fmt.Errorf("%w: load increment", ErrIncrementNotPositive)
	}
	if err := t.LoadIncrement.Validate(); err != nil {
		return err
	}
	if t.MinimumTopSetReps < 0 {
		return fmt.Errorf("%w: minimum top set reps cannot be negative, got %d", ErrInvalidParams, t.MinimumTopSetReps)
	}
	return nil
}

// NextLoad computes the top-set load: the last working weight plus the
// increment after a successful session, the last weight after an
// unsuccessful one, or a projection from the rolling e1rm when the lift has
// an estimate but no recorded weight.
func (t *TopSetBackoffPolicy) NextLoad(in Inputs) load.Load {
	last := in.State.LastWorkingWeight.ConvertedTo(in.baseUnit())
	if last.IsZero() && in.State.RollingE1RM > 0 {
		projected := e1rm.WorkingWeight(in.State.RollingE1RM, in.Prescription.TargetReps.Lo)
		return load.Load{Value: projected, Unit: in.baseUnit()}
	}
	if in.lastSuccess() {
		return last.Plus(t.LoadIncrement)
	}
	return last
}

// NextTargetReps returns the range lower bound: top-set schemes hold reps and
// move the max.
func (t *TopSetBackoffPolicy) NextTargetReps(in Inputs) int {
	return in.Prescription.TargetReps.Lo
}

// MarshalJSON includes the type discriminator.
func (t *TopSetBackoffPolicy) MarshalJSON() ([]byte, error) {
	type alias TopSetBackoffPolicy
	return json.Marshal(&struct {
		Type PolicyType `json:"type"`
		*alias
	}{Type: TypeTopSetBackoff, alias: (*alias)(t)})
}

// UnmarshalTopSetBackoffPolicy deserializes a TopSetBackoffPolicy from JSON.
func UnmarshalTopSetBackoffPolicy(data json.RawMessage) (Policy, error) {
	var t TopSetBackoffPolicy
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal top-set backoff progression: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid top-set backoff progression: %w", err)
	}
	return &t, nil
}

// RegisterTopSetBackoffPolicy registers the policy type with a factory.
func RegisterTopSetBackoffPolicy(factory *Factory) {
	factory.Register(TypeTopSetBackoff, UnmarshalTopSetBackoffPolicy)
}
