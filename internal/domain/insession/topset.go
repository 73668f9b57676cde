package insession

import (
	"encoding/json"
	"fmt"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/e1rm"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/history"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/load"
)

// TopSetPolicy recomputes the first backoff set from the e1rm the top set
// actually demonstrated. Later backoff sets inherit the adjustment when the
// client carries the revised load forward.
type TopSetPolicy struct {
	// BackoffPercentage is the fraction of the daily-max working weight the
	// backoff sets run at.
	BackoffPercentage float64 `json:"backoffPercentage"`
	// MinimumTopSetReps is the rep floor below which the top set is not
	// trusted as a daily-max signal.
	MinimumTopSetReps int `json:"minimumTopSetReps"`
}

// Type returns the discriminator string for this policy.
func (*TopSetPolicy) Type() PolicyType {
	return TypeTopSetBackoff
}

// Validate validates the policy's configuration parameters.
func (t *TopSetPolicy) Validate() error {
	if t.BackoffPercentage <= 0 || t.BackoffPercentage > 1 {
		return fmt.Errorf("%w: backoff percentage must be in (0, 1], got %.2f", ErrInvalidParams, t.BackoffPercentage)
	}
	if t.MinimumTopSetReps < 0 {
		return fmt.Errorf("%w: minimum top set reps cannot be negative, got %d", ErrInvalidParams, t.MinimumTopSetReps)
	}
	return nil
}

// Adjust recomputes the backoff load immediately after the top set. An
// aborted top set (not completed, zero reps, or below the rep floor) leaves
// the planned backoffs untouched so a bogus daily max never propagates.
func (t *TopSetPolicy) Adjust(current history.SetResult, next SetPlan) SetPlan {
	if next.SetIndex != 1 {
		return next
	}
	if !current.Completed || current.Reps == 0 || current.Reps < t.MinimumTopSetReps {
		return next
	}

	dailyMax := e1rm.Estimate(current.Load.Value, current.Reps)
	if dailyMax <= 0 {
		return next
	}

	working := e1rm.WorkingWeight(dailyMax, next.TargetReps) * t.BackoffPercentage
	adjusted := next
	adjusted.TargetLoad = next.RoundingPolicy.Apply(load.Load{Value: working, Unit: current.Load.Unit})
	pct := t.BackoffPercentage
	adjusted.BackoffPercentage = &pct
	return adjusted
}

// MarshalJSON includes the type discriminator.
func (t *TopSetPolicy) MarshalJSON() ([]byte, error) {
	type alias TopSetPolicy
	return json.Marshal(&struct {
		Type PolicyType `json:"type"`
		*alias
	}{Type: TypeTopSetBackoff, alias: (*alias)(t)})
}

// UnmarshalTopSetPolicy deserializes a TopSetPolicy from JSON.
func UnmarshalTopSetPolicy(data json.RawMessage) (Policy, error) {
	var t TopSetPolicy
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal top-set policy: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid top-set policy: %w", err)
	}
	return &t, nil
}

// RegisterTopSetPolicy registers the TopSetPolicy type with a factory.
func RegisterTopSetPolicy(factory *Factory) {
	factory.Register(TypeTopSetBackoff, UnmarshalTopSetPolicy)
}
