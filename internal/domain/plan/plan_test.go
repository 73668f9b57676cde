package plan

import (
	"encoding/json"
	"testing"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/exercise"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/insession"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/load"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/prescription"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/progression"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/scheduler"
)

func benchTemplate() WorkoutTemplate {
	return WorkoutTemplate{
		ID:   "push-day",
		Name: "Push Day",
		Exercises: []TemplateExercise{{
			Exercise: exercise.Exercise{
				ID:              "barbell-bench-press",
				Name:            "Barbell Bench Press",
				Equipment:       exercise.EquipmentBarbell,
				PrimaryMuscles:  []exercise.MuscleGroup{exercise.MuscleChest},
				MovementPattern: exercise.PatternHorizontalPush,
			},
			Prescription: prescription.SetPrescription{
				SetCount:     3,
				TargetReps:   prescription.RepRange{Lo: 8, Hi: 12},
				TargetRIR:    2,
				RestSeconds:  150,
				LoadStrategy: prescription.StrategyAbsolute,
				Increment:    load.Load{Value: 5, Unit: load.Pounds},
			},
			Order: 0,
		}},
	}
}

const templateJSON = `{
	"id": "push-day",
	"name": "Push Day",
	"exercises": [{
		"exercise": {
			"id": "barbell-bench-press",
			"name": "Barbell Bench Press",
			"equipment": "BARBELL",
			"primaryMuscles": ["CHEST"],
			"movementPattern": "HORIZONTAL_PUSH"
		},
		"prescription": {
			"setCount": 3,
			"targetReps": {"lo": 8, "hi": 12},
			"targetRIR": 2,
			"restSeconds": 150,
			"loadStrategy": "ABSOLUTE",
			"increment": {"value": 5, "unit": "LB"}
		},
		"order": 0
	}]
}`

func TestUnmarshal_MapTemplates(t *testing.T) {
	raw := `{
		"id": "plan-1", "name": "Test",
		"templates": {"push-day": ` + templateJSON + `},
		"schedule": {"kind": "ROTATION", "rotation": ["push-day"]},
		"roundingPolicy": {"increment": 5, "unit": "LB", "mode": "NEAREST"}
	}`

	var p TrainingPlan
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := p.Template("push-day"); !ok {
		t.Fatal("template missing after map decode")
	}
	if err := p.Validate(); err != nil {
		t.Errorf("validate failed: %v", err)
	}
	if p.InSessionPolicies == nil {
		t.Error("missing inSessionPolicies must decode to empty map")
	}
}

func TestUnmarshal_LegacyPairArrayTemplates(t *testing.T) {
	raw := `{
		"id": "plan-1", "name": "Test",
		"templates": ["push-day", ` + templateJSON + `],
		"schedule": {"kind": "MANUAL"},
		"roundingPolicy": {"increment": 5, "unit": "LB", "mode": "NEAREST"}
	}`

	var p TrainingPlan
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	tpl, ok := p.Template("push-day")
	if !ok {
		t.Fatal("template missing after pair-array decode")
	}
	if tpl.Name != "Push Day" {
		t.Errorf("template name = %q", tpl.Name)
	}
}

func TestUnmarshal_Policies(t *testing.T) {
	raw := `{
		"id": "plan-1", "name": "Test",
		"templates": {"push-day": ` + templateJSON + `},
		"schedule": {"kind": "MANUAL"},
		"roundingPolicy": {"increment": 5, "unit": "LB", "mode": "NEAREST"},
		"progressionPolicies": {
			"barbell-bench-press": {"type": "LINEAR_PROGRESSION", "successIncrement": {"value": 5, "unit": "LB"}, "deloadPercentage": 0.1, "failuresBeforeDeload": 3},
			"legacy-lift": {"type": "RIR_AUTOREGULATION"}
		},
		"inSessionPolicies": {
			"barbell-bench-press": {"type": "TOP_SET_BACKOFF", "backoffPercentage": 0.85, "minimumTopSetReps": 3}
		}
	}`

	var p TrainingPlan
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	policy := p.ProgressionPolicies["barbell-bench-press"]
	if policy == nil || policy.Type() != progression.TypeLinear {
		t.Errorf("linear policy not decoded: %+v", policy)
	}
	if !p.HasLegacyRIRProgression("legacy-lift") {
		t.Error("legacy RIR progression not recorded")
	}
	if p.HasLegacyRIRProgression("barbell-bench-press") {
		t.Error("linear policy misreported as legacy")
	}

	is := p.InSessionPolicies["barbell-bench-press"]
	if is == nil || is.Type() != insession.TypeTopSetBackoff {
		t.Errorf("in-session policy not decoded: %+v", is)
	}
}

func TestPlanJSONRoundTrip(t *testing.T) {
	p := TrainingPlan{
		ID:        "plan-1",
		Name:      "Test",
		Templates: map[string]WorkoutTemplate{"push-day": benchTemplate()},
		Schedule:  scheduler.Schedule{Kind: scheduler.KindRotation, Rotation: []string{"push-day"}},
		ProgressionPolicies: map[string]progression.Policy{
			"barbell-bench-press": &progression.LinearPolicy{
				SuccessIncrement:     load.Load{Value: 5, Unit: load.Pounds},
				DeloadPercentage:     0.1,
				FailuresBeforeDeload: 3,
			},
		},
		InSessionPolicies: map[string]insession.Policy{},
		RoundingPolicy:    load.RoundingPolicy{Increment: 5, Unit: load.Pounds, Mode: load.RoundNearest},
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var back TrainingPlan
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if back.ProgressionPolicies["barbell-bench-press"].Type() != progression.TypeLinear {
		t.Error("progression policy lost in round trip")
	}
	if _, ok := back.Template("push-day"); !ok {
		t.Error("template lost in round trip")
	}
}

func TestOrderedExercises_Deterministic(t *testing.T) {
	second := benchTemplate().Exercises[0]
	second.Exercise.ID = "overhead-press"
	second.Exercise.Name = "Overhead Press"
	second.Order = 0 // same order: tie breaks on id

	tpl := benchTemplate()
	tpl.Exercises = append(tpl.Exercises, second)

	ordered := tpl.OrderedExercises()
	if ordered[0].Exercise.ID != "barbell-bench-press" || ordered[1].Exercise.ID != "overhead-press" {
		t.Errorf("tie break wrong: %s, %s", ordered[0].Exercise.ID, ordered[1].Exercise.ID)
	}
}

func TestExerciseIndex_CoversTemplatesAndPool(t *testing.T) {
	pushUp := exercise.Exercise{
		ID: "push-up", Name: "Push-Up",
		Equipment:       exercise.EquipmentBodyweight,
		PrimaryMuscles:  []exercise.MuscleGroup{exercise.MuscleChest},
		MovementPattern: exercise.PatternHorizontalPush,
	}
	p := TrainingPlan{
		Templates:        map[string]WorkoutTemplate{"push-day": benchTemplate()},
		SubstitutionPool: []exercise.Exercise{pushUp},
	}

	index := p.ExerciseIndex()
	if _, ok := index["barbell-bench-press"]; !ok {
		t.Error("template exercise missing from index")
	}
	if _, ok := index["push-up"]; !ok {
		t.Error("pool exercise missing from index")
	}
}
