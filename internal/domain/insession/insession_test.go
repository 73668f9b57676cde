package insession

import (
	"encoding/json"
	"testing"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/history"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/load"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/prescription"
)

func lb(v float64) load.Load {
	return load.Load{Value: v, Unit: load.Pounds}
}

var rounding = load.RoundingPolicy{Increment: 5, Unit: load.Pounds, Mode: load.RoundNearest}

func plannedSet(index int, weight float64, reps int, rir float64) SetPlan {
	return SetPlan{
		SetIndex:       index,
		TargetLoad:     lb(weight),
		TargetReps:     reps,
		TargetRIR:      rir,
		RestSeconds:    120,
		RoundingPolicy: rounding,
	}
}

func rirOf(v float64) *float64 {
	return &v
}

func TestRIRPolicy_Adjust(t *testing.T) {
	p := &RIRPolicy{Increment: lb(5), RepRange: prescription.RepRange{Lo: 8, Hi: 12}}

	tests := []struct {
		name     string
		current  history.SetResult
		wantLoad float64
		wantReps int
	}{
		{
			name:     "within deadband unchanged",
			current:  history.SetResult{Reps: 10, Completed: true, Load: lb(100), ObservedRIR: rirOf(2.5)},
			wantLoad: 100,
			wantReps: 10,
		},
		{
			name:     "too easy raises load and reps",
			current:  history.SetResult{Reps: 10, Completed: true, Load: lb(100), ObservedRIR: rirOf(4)},
			wantLoad: 105,
			wantReps: 11,
		},
		{
			name:     "slightly easy tunes reps only",
			current:  history.SetResult{Reps: 10, Completed: true, Load: lb(100), ObservedRIR: rirOf(3.2)},
			wantLoad: 100,
			wantReps: 11,
		},
		{
			name:     "too hard lowers load and reps",
			current:  history.SetResult{Reps: 10, Completed: true, Load: lb(100), ObservedRIR: rirOf(0.5)},
			wantLoad: 95,
			wantReps: 9,
		},
		{
			name:     "incomplete set unchanged",
			current:  history.SetResult{Reps: 10, Completed: false, Load: lb(100), ObservedRIR: rirOf(0)},
			wantLoad: 100,
			wantReps: 10,
		},
		{
			name:     "zero reps unchanged",
			current:  history.SetResult{Reps: 0, Completed: true, Load: lb(100), ObservedRIR: rirOf(0)},
			wantLoad: 100,
			wantReps: 10,
		},
		{
			name:     "no observed RIR unchanged",
			current:  history.SetResult{Reps: 10, Completed: true, Load: lb(100)},
			wantLoad: 100,
			wantReps: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := plannedSet(1, 100, 10, 2)
			got := p.Adjust(tt.current, next)
			if got.TargetLoad.Value != tt.wantLoad {
				t.Errorf("load = %v, want %v", got.TargetLoad.Value, tt.wantLoad)
			}
			if got.TargetReps != tt.wantReps {
				t.Errorf("reps = %d, want %d", got.TargetReps, tt.wantReps)
			}
		})
	}
}

func TestRIRPolicy_RepTuningClampsToRange(t *testing.T) {
	p := &RIRPolicy{Increment: lb(5), RepRange: prescription.RepRange{Lo: 8, Hi: 12}}

	atCeiling := plannedSet(1, 100, 12, 2)
	got := p.Adjust(history.SetResult{Reps: 12, Completed: true, Load: lb(100), ObservedRIR: rirOf(5)}, atCeiling)
	if got.TargetReps != 12 {
		t.Errorf("reps should clamp at ceiling, got %d", got.TargetReps)
	}

	atFloor := plannedSet(1, 100, 8, 2)
	got = p.Adjust(history.SetResult{Reps: 8, Completed: true, Load: lb(100), ObservedRIR: rirOf(0)}, atFloor)
	if got.TargetReps != 8 {
		t.Errorf("reps should clamp at floor, got %d", got.TargetReps)
	}
}

func TestTopSetPolicy_RecomputesBackoff(t *testing.T) {
	p := &TopSetPolicy{BackoffPercentage: 0.85, MinimumTopSetReps: 3}

	// Top set: 300x5 -> e1rm 337.5; working weight at 8 reps = 271.875;
	// backoff 85% = 231.09; rounded to 230.
	top := history.SetResult{SetIndex: 0, Reps: 5, Completed: true, Load: lb(300)}
	next := plannedSet(1, 255, 8, 2)

	got := p.Adjust(top, next)
	if got.TargetLoad.Value != 230 {
		t.Errorf("backoff load = %v, want 230", got.TargetLoad.Value)
	}
	if got.BackoffPercentage == nil || *got.BackoffPercentage != 0.85 {
		t.Error("backoff percentage not recorded")
	}
}

func TestTopSetPolicy_AbortPreservesBackoffs(t *testing.T) {
	p := &TopSetPolicy{BackoffPercentage: 0.85, MinimumTopSetReps: 3}
	next := plannedSet(1, 190, 8, 2)

	tests := []struct {
		name string
		top  history.SetResult
	}{
		{"failed top set", history.SetResult{SetIndex: 0, Reps: 0, Completed: false, Load: lb(300)}},
		{"zero reps", history.SetResult{SetIndex: 0, Reps: 0, Completed: true, Load: lb(300)}},
		{"below minimum reps", history.SetResult{SetIndex: 0, Reps: 2, Completed: true, Load: lb(300)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Adjust(tt.top, next)
			if got.TargetLoad.Value != 190 {
				t.Errorf("load = %v, want 190 unchanged", got.TargetLoad.Value)
			}
		})
	}
}

func TestTopSetPolicy_OnlyAdjustsFirstBackoff(t *testing.T) {
	p := &TopSetPolicy{BackoffPercentage: 0.85, MinimumTopSetReps: 3}
	top := history.SetResult{SetIndex: 1, Reps: 8, Completed: true, Load: lb(250)}
	later := plannedSet(2, 230, 8, 2)

	if got := p.Adjust(top, later); got.TargetLoad.Value != 230 {
		t.Errorf("set index 2 must not adjust, got %v", got.TargetLoad.Value)
	}
}

func TestAdjustDuringSession_NilPolicyUnchanged(t *testing.T) {
	next := plannedSet(1, 100, 8, 2)
	got := AdjustDuringSession(history.SetResult{Reps: 8, Completed: true, Load: lb(100)}, next)
	if got.TargetLoad.Value != 100 {
		t.Errorf("nil policy must not adjust")
	}
}

func TestSetPlanJSONRoundTrip(t *testing.T) {
	next := plannedSet(1, 100, 8, 2)
	next.Policy = &RIRPolicy{Increment: lb(5), RepRange: prescription.RepRange{Lo: 8, Hi: 12}}

	data, err := json.Marshal(next)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var back SetPlan
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if back.Policy == nil || back.Policy.Type() != TypeRIRAutoregulation {
		t.Errorf("policy did not round trip: %+v", back.Policy)
	}
	if back.TargetLoad != next.TargetLoad {
		t.Errorf("target load did not round trip")
	}
}

func TestPolicyJSONRoundTrip(t *testing.T) {
	policies := []Policy{
		&NonePolicy{},
		&RIRPolicy{Increment: lb(5), RepRange: prescription.RepRange{Lo: 8, Hi: 12}},
		&TopSetPolicy{BackoffPercentage: 0.85, MinimumTopSetReps: 3},
	}

	for _, p := range policies {
		t.Run(string(p.Type()), func(t *testing.T) {
			data, err := json.Marshal(p)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			back, err := UnmarshalPolicy(data)
			if err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if back.Type() != p.Type() {
				t.Errorf("round trip type = %s, want %s", back.Type(), p.Type())
			}
		})
	}
}
