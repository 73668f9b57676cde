package planner

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/calendar"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/deload"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/exercise"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/history"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/insession"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/load"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/plan"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/prescription"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/progression"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/scheduler"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/user"
)

var cal = calendar.NewStandard()

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func lb(v float64) load.Load {
	return load.Load{Value: v, Unit: load.Pounds}
}

var benchPress = exercise.Exercise{
	ID:              "barbell-bench-press",
	Name:            "Barbell Bench Press",
	Equipment:       exercise.EquipmentBarbell,
	PrimaryMuscles:  []exercise.MuscleGroup{exercise.MuscleChest, exercise.MuscleTriceps, exercise.MuscleFrontDelt},
	MovementPattern: exercise.PatternHorizontalPush,
}

var squat = exercise.Exercise{
	ID:              "barbell-back-squat",
	Name:            "Barbell Back Squat",
	Equipment:       exercise.EquipmentBarbell,
	PrimaryMuscles:  []exercise.MuscleGroup{exercise.MuscleQuads, exercise.MuscleGlutes},
	MovementPattern: exercise.PatternSquat,
}

var pushUp = exercise.Exercise{
	ID:              "push-up",
	Name:            "Push-Up",
	Equipment:       exercise.EquipmentBodyweight,
	PrimaryMuscles:  []exercise.MuscleGroup{exercise.MuscleChest, exercise.MuscleTriceps},
	MovementPattern: exercise.PatternHorizontalPush,
}

var dumbbellBench = exercise.Exercise{
	ID:              "dumbbell-bench-press",
	Name:            "Dumbbell Bench Press",
	Equipment:       exercise.EquipmentDumbbell,
	PrimaryMuscles:  []exercise.MuscleGroup{exercise.MuscleChest, exercise.MuscleTriceps, exercise.MuscleFrontDelt},
	MovementPattern: exercise.PatternHorizontalPush,
}

func benchRx() prescription.SetPrescription {
	return prescription.SetPrescription{
		SetCount:     3,
		TargetReps:   prescription.RepRange{Lo: 8, Hi: 12},
		TargetRIR:    2,
		RestSeconds:  150,
		LoadStrategy: prescription.StrategyAbsolute,
		Increment:    lb(5),
	}
}

func basicPlan() plan.TrainingPlan {
	return plan.TrainingPlan{
		ID:   "plan-1",
		Name: "Test Plan",
		Templates: map[string]plan.WorkoutTemplate{
			"push-day": {
				ID:   "push-day",
				Name: "Push Day",
				Exercises: []plan.TemplateExercise{
					{Exercise: benchPress, Prescription: benchRx(), Order: 0},
				},
			},
		},
		Schedule:            scheduler.Schedule{Kind: scheduler.KindRotation, Rotation: []string{"push-day"}},
		ProgressionPolicies: map[string]progression.Policy{},
		InSessionPolicies:   map[string]insession.Policy{},
		SubstitutionPool:    []exercise.Exercise{pushUp, dumbbellBench},
		RoundingPolicy:      load.RoundingPolicy{Increment: 5, Unit: load.Pounds, Mode: load.RoundNearest},
	}
}

func barbellProfile() user.Profile {
	return user.Profile{
		Sex:                user.SexMale,
		Experience:         user.ExperienceIntermediate,
		Goal:               user.GoalStrength,
		AvailableEquipment: exercise.NewAvailability(exercise.EquipmentBarbell, exercise.EquipmentDumbbell),
	}
}

func stateFor(id string, weight float64, lastSession time.Time) history.LiftState {
	s := history.NewLiftState(id)
	s.LastWorkingWeight = lb(weight)
	s.RollingE1RM = weight * 36.0 / 28.0
	d := lastSession
	s.LastSessionDate = &d
	return s
}

func TestRecommendSessionForTemplate_UnknownTemplateEmptyPlan(t *testing.T) {
	got := RecommendSessionForTemplate(day(2024, 3, 1), "nope", barbellProfile(), basicPlan(), history.WorkoutHistory{}, 80, nil, cal)
	assert.Empty(t, got.Exercises)
	assert.Empty(t, got.TemplateID)
	assert.False(t, got.IsDeload)
}

func TestRecommendSessionForTemplate_Invariants(t *testing.T) {
	hist := history.WorkoutHistory{LiftStates: map[string]history.LiftState{
		"barbell-bench-press": stateFor("barbell-bench-press", 185, day(2024, 2, 27)),
	}}
	got := RecommendSessionForTemplate(day(2024, 3, 1), "push-day", barbellProfile(), basicPlan(), hist, 80, nil, cal)

	require.Len(t, got.Exercises, 1)
	ep := got.Exercises[0]
	require.NotEmpty(t, ep.Sets)
	for _, set := range ep.Sets {
		// Finite, non-negative, plan unit, exact multiple of the increment.
		assert.False(t, math.IsNaN(set.TargetLoad.Value) || math.IsInf(set.TargetLoad.Value, 0))
		assert.GreaterOrEqual(t, set.TargetLoad.Value, 0.0)
		assert.Equal(t, load.Pounds, set.TargetLoad.Unit)
		rem := math.Mod(set.TargetLoad.Value, 5)
		assert.InDelta(t, 0, math.Min(rem, 5-rem), 1e-9)
		assert.GreaterOrEqual(t, set.TargetReps, 1)
	}
	assert.True(t, barbellProfile().AvailableEquipment.IsAvailable(ep.Exercise.Equipment))
}

func TestRecommendSession_Determinism(t *testing.T) {
	hist := history.WorkoutHistory{LiftStates: map[string]history.LiftState{
		"barbell-bench-press": stateFor("barbell-bench-press", 185, day(2024, 2, 27)),
	}}
	a := RecommendSession(day(2024, 3, 1), barbellProfile(), basicPlan(), hist, 80, cal)
	b := RecommendSession(day(2024, 3, 1), barbellProfile(), basicPlan(), hist, 80, cal)

	aJSON, err := json.Marshal(a)
	require.NoError(t, err)
	bJSON, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, string(aJSON), string(bJSON))
}

func TestRecommendSession_RotationDrift(t *testing.T) {
	p := basicPlan()
	p.Templates["pull-day"] = plan.WorkoutTemplate{
		ID: "pull-day", Name: "Pull Day",
		Exercises: []plan.TemplateExercise{{Exercise: squat, Prescription: benchRx(), Order: 0}},
	}
	p.Templates["leg-day"] = plan.WorkoutTemplate{
		ID: "leg-day", Name: "Leg Day",
		Exercises: []plan.TemplateExercise{{Exercise: squat, Prescription: benchRx(), Order: 0}},
	}
	p.Schedule = scheduler.Schedule{Kind: scheduler.KindRotation, Rotation: []string{"push-day", "pull-day", "leg-day"}}

	hist := history.WorkoutHistory{Sessions: []history.CompletedSession{
		{ID: "s1", Date: day(2024, 1, 3), TemplateID: "push-day"},
	}}

	got := RecommendSession(day(2024, 1, 4), barbellProfile(), p, hist, 80, cal)
	assert.Equal(t, "pull-day", got.TemplateID)

	// Four missed days later the rotation has not advanced.
	got = RecommendSession(day(2024, 1, 8), barbellProfile(), p, hist, 80, cal)
	assert.Equal(t, "pull-day", got.TemplateID)

	// Completing pull-day advances to leg-day.
	hist.Sessions = append([]history.CompletedSession{
		{ID: "s2", Date: day(2024, 1, 8), TemplateID: "pull-day"},
	}, hist.Sessions...)
	got = RecommendSession(day(2024, 1, 9), barbellProfile(), p, hist, 80, cal)
	assert.Equal(t, "leg-day", got.TemplateID)
}

func TestPercentageE1RMLoad(t *testing.T) {
	p := basicPlan()
	pct := 0.80
	rx := benchRx()
	rx.LoadStrategy = prescription.StrategyPercentageE1RM
	rx.TargetPercentage = &pct
	p.Templates["push-day"] = plan.WorkoutTemplate{
		ID: "push-day", Name: "Push Day",
		Exercises: []plan.TemplateExercise{{Exercise: benchPress, Prescription: rx, Order: 0}},
	}

	state := stateFor("barbell-bench-press", 225, day(2024, 2, 27))
	state.RollingE1RM = 300
	hist := history.WorkoutHistory{LiftStates: map[string]history.LiftState{"barbell-bench-press": state}}

	got := RecommendSessionForTemplate(day(2024, 3, 1), "push-day", barbellProfile(), p, hist, 80, nil, cal)
	require.Len(t, got.Exercises, 1)
	for _, set := range got.Exercises[0].Sets {
		assert.Equal(t, 240.0, set.TargetLoad.Value)
	}
}

func TestBodyweightSubstitutionSafety(t *testing.T) {
	p := basicPlan()
	profile := barbellProfile()
	profile.AvailableEquipment = exercise.NewAvailability() // bodyweight only

	hist := history.WorkoutHistory{LiftStates: map[string]history.LiftState{
		"barbell-bench-press": stateFor("barbell-bench-press", 225, day(2024, 2, 27)),
	}}

	got := RecommendSessionForTemplate(day(2024, 3, 1), "push-day", profile, p, hist, 80, nil, cal)
	require.Len(t, got.Exercises, 1)
	assert.Equal(t, "push-up", got.Exercises[0].Exercise.ID)
	for _, set := range got.Exercises[0].Sets {
		assert.Zero(t, set.TargetLoad.Value)
	}
}

func TestSubstituteInheritsOriginalIntent(t *testing.T) {
	p := basicPlan()
	p.ProgressionPolicies["barbell-bench-press"] = &progression.TopSetBackoffPolicy{
		BackoffSetCount:   2,
		BackoffPercentage: 0.85,
		LoadIncrement:     lb(5),
		UseDailyMax:       true,
		MinimumTopSetReps: 3,
	}
	profile := barbellProfile()
	profile.AvailableEquipment = exercise.NewAvailability(exercise.EquipmentDumbbell)

	got := RecommendSessionForTemplate(day(2024, 3, 1), "push-day", profile, p, history.WorkoutHistory{}, 80, nil, cal)
	require.Len(t, got.Exercises, 1)
	assert.Equal(t, "dumbbell-bench-press", got.Exercises[0].Exercise.ID)
	// The substitute runs under the original's top-set progression.
	assert.Equal(t, progression.TypeTopSetBackoff, got.Exercises[0].ProgressionPolicy.Type())
	assert.Equal(t, insession.TypeTopSetBackoff, got.Exercises[0].InSessionPolicy.Type())
}

func TestDeloadApplication(t *testing.T) {
	p := basicPlan()
	p.DeloadConfig = &deload.Config{
		LowReadinessDaysRequired: 2,
		ReadinessThreshold:       50,
		IntensityReduction:       0.10,
		VolumeReduction:          1,
	}
	today := day(2024, 3, 1)
	hist := history.WorkoutHistory{
		LiftStates: map[string]history.LiftState{
			"barbell-bench-press": stateFor("barbell-bench-press", 200, day(2024, 2, 27)),
		},
		ReadinessHistory: []history.ReadinessEntry{
			{Date: today, Score: 40},
			{Date: cal.AddDays(today, -1), Score: 45},
		},
	}

	got := RecommendSessionForTemplate(today, "push-day", barbellProfile(), p, hist, 40, nil, cal)
	require.True(t, got.IsDeload)
	assert.Equal(t, deload.TriggerLowReadiness, got.DeloadReason)
	require.Len(t, got.Exercises, 1)

	ep := got.Exercises[0]
	// Volume reduced 3 -> 2, reps snapped to the floor, load reduced 10%.
	assert.Len(t, ep.Sets, 2)
	for _, set := range ep.Sets {
		assert.Equal(t, 8, set.TargetReps)
		assert.Equal(t, 180.0, set.TargetLoad.Value)
	}
}

func TestDetrainingReduction(t *testing.T) {
	p := basicPlan()
	tests := []struct {
		name     string
		lastDays int
		want     float64
	}{
		{"under four weeks no cut", 20, 200},
		{"four to eight weeks 10%", 30, 180},
		{"eight to twelve weeks 20%", 60, 160},
		{"over twelve weeks 30%", 100, 140},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			today := day(2024, 6, 1)
			hist := history.WorkoutHistory{LiftStates: map[string]history.LiftState{
				"barbell-bench-press": stateFor("barbell-bench-press", 200, cal.AddDays(today, -tt.lastDays)),
			}}
			got := RecommendSessionForTemplate(today, "push-day", barbellProfile(), p, hist, 80, nil, cal)
			require.Len(t, got.Exercises, 1)
			assert.Equal(t, tt.want, got.Exercises[0].Sets[0].TargetLoad.Value)
		})
	}
}

func TestExcludingSkipsExercise(t *testing.T) {
	got := RecommendSessionForTemplate(day(2024, 3, 1), "push-day", barbellProfile(), basicPlan(), history.WorkoutHistory{}, 80,
		map[string]bool{"barbell-bench-press": true}, cal)
	assert.Empty(t, got.Exercises)
}

func TestOmitWhenNothingUsable(t *testing.T) {
	p := basicPlan()
	p.SubstitutionPool = nil
	profile := barbellProfile()
	profile.AvailableEquipment = exercise.NewAvailability(exercise.EquipmentMachine)

	got := RecommendSessionForTemplate(day(2024, 3, 1), "push-day", profile, p, history.WorkoutHistory{}, 80, nil, cal)
	assert.Empty(t, got.Exercises)
	assert.NotEmpty(t, got.Insights)
}

func TestPlanUnitConversionFromKgHistory(t *testing.T) {
	// History tracked in kg, plan rounds in lb: output must be lb multiples.
	state := history.NewLiftState("barbell-bench-press")
	state.LastWorkingWeight = load.Load{Value: 100, Unit: load.Kilograms}
	state.RollingE1RM = 120
	d := day(2024, 2, 27)
	state.LastSessionDate = &d
	hist := history.WorkoutHistory{LiftStates: map[string]history.LiftState{"barbell-bench-press": state}}

	got := RecommendSessionForTemplate(day(2024, 3, 1), "push-day", barbellProfile(), basicPlan(), hist, 80, nil, cal)
	require.Len(t, got.Exercises, 1)
	set := got.Exercises[0].Sets[0]
	assert.Equal(t, load.Pounds, set.TargetLoad.Unit)
	assert.Equal(t, 220.0, set.TargetLoad.Value) // 100kg = 220.46lb, rounded to 220
}

func TestMaterialRxChangeRebasesFromE1RM(t *testing.T) {
	p := basicPlan()
	state := stateFor("barbell-bench-press", 200, day(2024, 2, 27))
	state.RollingE1RM = 250
	state.FailureCount = 0

	// Prior exposure ran under a 5x5 absolute prescription; the plan now
	// prescribes 3x8-12. The base must come from the e1rm, not the carried
	// weight.
	oldRx := benchRx()
	oldRx.SetCount = 5
	oldRx.TargetReps = prescription.RepRange{Lo: 5, Hi: 5}
	hist := history.WorkoutHistory{
		Sessions: []history.CompletedSession{{
			ID: "s1", Date: day(2024, 2, 27),
			Exercises: []history.ExerciseSessionResult{{
				ExerciseID:   "barbell-bench-press",
				Prescription: oldRx,
				Sets: []history.SetResult{
					{SetIndex: 0, Load: lb(200), Reps: 5, Completed: true},
				},
			}},
		}},
		LiftStates: map[string]history.LiftState{"barbell-bench-press": state},
	}

	got := RecommendSessionForTemplate(day(2024, 3, 1), "push-day", barbellProfile(), p, hist, 80, nil, cal)
	require.Len(t, got.Exercises, 1)
	// Inverse Brzycki at 8 reps: 250 * 29/36 = 201.39 -> rounded 200.
	assert.Equal(t, 200.0, got.Exercises[0].Sets[0].TargetLoad.Value)
}

func TestNextPrescriptionAgreesWithSessionPlan(t *testing.T) {
	p := basicPlan()
	state := stateFor("barbell-bench-press", 185, day(2024, 2, 27))
	hist := history.WorkoutHistory{LiftStates: map[string]history.LiftState{"barbell-bench-press": state}}

	session := RecommendSessionForTemplate(day(2024, 3, 1), "push-day", barbellProfile(), p, hist, 100, nil, cal)
	require.Len(t, session.Exercises, 1)

	single := NextPrescription(benchPress, benchRx(), nil, nil, hist, state, false,
		p.RoundingPolicy, nil, barbellProfile(), day(2024, 3, 1), cal)

	sessionJSON, err := json.Marshal(session.Exercises[0].Sets)
	require.NoError(t, err)
	singleJSON, err := json.Marshal(single.Sets)
	require.NoError(t, err)
	assert.Equal(t, string(sessionJSON), string(singleJSON))
}

func TestAdjustDuringSession_TopSetAbort(t *testing.T) {
	next := insession.SetPlan{
		SetIndex:       1,
		TargetLoad:     lb(190),
		TargetReps:     8,
		TargetRIR:      2,
		RestSeconds:    150,
		Policy:         &insession.TopSetPolicy{BackoffPercentage: 0.85, MinimumTopSetReps: 3},
		RoundingPolicy: load.RoundingPolicy{Increment: 5, Unit: load.Pounds, Mode: load.RoundNearest},
	}
	current := history.SetResult{SetIndex: 0, Reps: 0, Completed: false, Load: lb(300)}

	got := AdjustDuringSession(current, next)
	assert.Equal(t, 190.0, got.TargetLoad.Value)
}
