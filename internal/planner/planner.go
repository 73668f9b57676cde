package planner

import (
	"fmt"
	"time"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/calendar"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/deload"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/direction"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/e1rm"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/exercise"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/history"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/insession"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/load"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/plan"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/prescription"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/progression"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/scheduler"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/substitution"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/user"
)

// AutoregDeloadPercentage is the load reduction a direction-driven deload
// applies for autoregulated lifts.
const AutoregDeloadPercentage = 0.10

// DefaultFailuresBeforeDeload is the failure threshold assumed when the
// resolved progression policy does not define one.
const DefaultFailuresBeforeDeload = 3

// clampReadiness clamps a readiness score into [0, 100].
func clampReadiness(r int) int {
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}

// planStartAnchor returns the date scheduled-deload weeks are counted from.
func planStartAnchor(p plan.TrainingPlan) time.Time {
	if p.StartDate != nil {
		return *p.StartDate
	}
	return time.Time{}
}

// RecommendSession selects the date's template from the plan's schedule and
// prescribes the session. A schedule that selects nothing (manual schedules,
// unmapped weekdays) yields an empty plan.
func RecommendSession(date time.Time, profile user.Profile, p plan.TrainingPlan, hist history.WorkoutHistory, readiness int, cal calendar.Calendar) SessionPlan {
	templateID, ok := scheduler.SelectTemplate(p.Schedule, hist, date)
	if !ok {
		return SessionPlan{
			Date:     cal.StartOfDay(date),
			Insights: []string{"no template scheduled for this date"},
		}
	}
	return RecommendSessionForTemplate(date, templateID, profile, p, hist, readiness, nil, cal)
}

// RecommendSessionForTemplate prescribes the full session for a template:
// deload evaluation, substitution choice, per-exercise state derivation,
// policy resolution, and set emission. Unknown template ids yield an empty
// plan. Exercises in excluding are skipped; exercises whose equipment is
// unavailable with no usable substitute are omitted.
func RecommendSessionForTemplate(date time.Time, templateID string, profile user.Profile, p plan.TrainingPlan, hist history.WorkoutHistory, readiness int, excluding map[string]bool, cal calendar.Calendar) SessionPlan {
	day := cal.StartOfDay(date)
	readiness = clampReadiness(readiness)

	template, ok := p.Template(templateID)
	if !ok {
		return SessionPlan{
			Date:     day,
			Insights: []string{fmt.Sprintf("unknown template %q", templateID)},
		}
	}

	decision := deload.Evaluate(p.DeloadConfig, hist, planStartAnchor(p), day, cal)

	session := SessionPlan{
		Date:        day,
		TemplateID:  templateID,
		IsDeload:    decision.ShouldDeload,
		DeloadRules: decision.TriggeredRules,
	}
	if decision.ShouldDeload {
		session.DeloadReason = decision.Reason
		session.Insights = append(session.Insights, fmt.Sprintf("deload session: %s", decision.Reason))
	}

	index := p.ExerciseIndex()
	ordered := template.OrderedExercises()

	// Original ids in this template, for substitute collision avoidance.
	originals := make(map[string]bool, len(ordered))
	for _, te := range ordered {
		originals[te.Exercise.ID] = true
	}

	used := make(map[string]bool, len(ordered))
	for _, te := range ordered {
		if excluding[te.Exercise.ID] {
			continue
		}

		ranked := substitution.Rank(te.Exercise, p.SubstitutionPool, profile.AvailableEquipment, 0)
		performed, ok := chooseExercise(te.Exercise, ranked, profile.AvailableEquipment, used, originals)
		if !ok {
			session.Insights = append(session.Insights,
				fmt.Sprintf("%s omitted: no available equipment or substitute", te.Exercise.ID))
			continue
		}
		used[performed.ID] = true

		progPolicy, autoregulated := resolveProgression(p, te.Exercise.ID, te.Prescription)
		isPolicy := resolveInSession(p, te.Exercise.ID, te.Prescription, progPolicy, autoregulated)

		state := effectiveLiftState(performed, te.Exercise, hist, index, day, cal)
		lastResult := latestResultPtr(hist, performed.ID)

		exPlan := buildExercisePlan(exerciseArgs{
			performed:       performed,
			rx:              te.Prescription,
			progPolicy:      progPolicy,
			autoregulated:   autoregulated,
			inSessionPolicy: isPolicy,
			state:           state,
			lastResult:      lastResult,
			hist:            hist,
			isDeload:        decision.ShouldDeload,
			deloadCfg:       p.DeloadConfig,
			profile:         profile,
			readiness:       readiness,
			date:            day,
			cal:             cal,
			rounding:        p.RoundingPolicy,
			ranked:          ranked,
		})

		if performed.ID != te.Exercise.ID {
			session.Insights = append(session.Insights,
				fmt.Sprintf("%s unavailable: substituted %s", te.Exercise.ID, performed.ID))
		}
		session.Exercises = append(session.Exercises, exPlan)
	}

	session.Insights = append(session.Insights, trendInsights(session.Exercises, hist)...)
	return session
}

// NextPrescription builds a single exercise's plan from explicit inputs. It
// agrees exactly with the per-exercise plan RecommendSessionForTemplate
// produces for the same resolved inputs. A nil progression policy resolves
// to the prescription's default; a nil in-session policy resolves from the
// progression policy and prescription.
func NextPrescription(ex exercise.Exercise, rx prescription.SetPrescription, progPolicy progression.Policy, isPolicy insession.Policy, hist history.WorkoutHistory, state history.LiftState, isDeload bool, rounding load.RoundingPolicy, deloadCfg *deload.Config, profile user.Profile, date time.Time, cal calendar.Calendar) ExercisePlan {
	autoregulated := rx.LoadStrategy == prescription.StrategyRPEAutoregulated
	if progPolicy == nil {
		progPolicy = progression.DefaultFor(rx)
	}
	if isPolicy == nil {
		isPolicy = defaultInSession(rx, progPolicy, autoregulated)
	}

	return buildExercisePlan(exerciseArgs{
		performed:       ex,
		rx:              rx,
		progPolicy:      progPolicy,
		autoregulated:   autoregulated,
		inSessionPolicy: isPolicy,
		state:           state,
		lastResult:      latestResultPtr(hist, ex.ID),
		hist:            hist,
		isDeload:        isDeload,
		deloadCfg:       deloadCfg,
		profile:         profile,
		readiness:       100,
		date:            cal.StartOfDay(date),
		cal:             cal,
		rounding:        rounding,
	})
}

// AdjustDuringSession transforms the next planned set given the set just
// performed, under the next set's own in-session policy. Part of the stable
// engine contract alongside RecommendSession and UpdateLiftState.
func AdjustDuringSession(current history.SetResult, next insession.SetPlan) insession.SetPlan {
	return insession.AdjustDuringSession(current, next)
}

// chooseExercise picks the exercise actually performed: the original when
// its equipment is available and it has not been used this session, else
// the best usable substitute that does not collide with another original,
// relaxing the collision rule when nothing else survives.
func chooseExercise(original exercise.Exercise, ranked []substitution.Candidate, available exercise.Availability, used, originals map[string]bool) (exercise.Exercise, bool) {
	if available.IsAvailable(original.Equipment) && !used[original.ID] {
		return original, true
	}
	for _, c := range ranked {
		if used[c.Exercise.ID] {
			continue
		}
		if originals[c.Exercise.ID] && c.Exercise.ID != original.ID {
			continue
		}
		return c.Exercise, true
	}
	// Relax the collision rule: accept another original's exercise.
	for _, c := range ranked {
		if !used[c.Exercise.ID] {
			return c.Exercise, true
		}
	}
	return exercise.Exercise{}, false
}

// resolveProgression resolves the progression policy stored under the
// ORIGINAL exercise id. A legacy RIR-as-progression entry (decoded as nil)
// coerces to the default progression with autoregulation handed to the
// in-session policy; an absent entry defaults from the load strategy.
func resolveProgression(p plan.TrainingPlan, originalID string, rx prescription.SetPrescription) (progression.Policy, bool) {
	if policy, present := p.ProgressionPolicies[originalID]; present {
		if policy == nil {
			return progression.DefaultFor(rx), true
		}
		return policy, false
	}
	switch rx.LoadStrategy {
	case prescription.StrategyPercentageE1RM:
		return &progression.PercentageE1RMPolicy{}, false
	case prescription.StrategyRPEAutoregulated:
		return progression.DefaultFor(rx), true
	default:
		return progression.DefaultFor(rx), false
	}
}

// resolveInSession resolves the in-session policy: explicit override first,
// then the legacy/strategy-derived RIR policy, then the top-set policy when
// the progression runs a daily max, then none.
func resolveInSession(p plan.TrainingPlan, originalID string, rx prescription.SetPrescription, progPolicy progression.Policy, autoregulated bool) insession.Policy {
	if policy, present := p.InSessionPolicies[originalID]; present && policy != nil {
		return policy
	}
	return defaultInSession(rx, progPolicy, autoregulated)
}

// defaultInSession derives the in-session policy from the prescription and
// resolved progression.
func defaultInSession(rx prescription.SetPrescription, progPolicy progression.Policy, autoregulated bool) insession.Policy {
	if autoregulated {
		return &insession.RIRPolicy{Increment: rx.Increment, RepRange: rx.TargetReps}
	}
	if top, ok := progPolicy.(*progression.TopSetBackoffPolicy); ok && top.UseDailyMax {
		return &insession.TopSetPolicy{
			BackoffPercentage: top.BackoffPercentage,
			MinimumTopSetReps: top.MinimumTopSetReps,
		}
	}
	return &insession.NonePolicy{}
}

// latestResultPtr returns a pointer to the exercise's most recent result.
func latestResultPtr(hist history.WorkoutHistory, exerciseID string) *history.ExerciseSessionResult {
	result, _, ok := hist.LatestResultFor(exerciseID)
	if !ok {
		return nil
	}
	return &result
}

// exerciseArgs bundles everything one exercise's plan is built from.
type exerciseArgs struct {
	performed       exercise.Exercise
	rx              prescription.SetPrescription
	progPolicy      progression.Policy
	autoregulated   bool
	inSessionPolicy insession.Policy
	state           history.LiftState
	lastResult      *history.ExerciseSessionResult
	hist            history.WorkoutHistory
	isDeload        bool
	deloadCfg       *deload.Config
	profile         user.Profile
	readiness       int
	date            time.Time
	cal             calendar.Calendar
	rounding        load.RoundingPolicy
	ranked          []substitution.Candidate
}

// buildExercisePlan runs the per-exercise pipeline: base load (bodyweight
// zero, material-change rebase, direction-driven autoregulation, or the
// progression policy), detraining reduction, deload reduction, conversion
// to the plan unit with rounding, and per-set shaping.
func buildExercisePlan(args exerciseArgs) ExercisePlan {
	in := progression.Inputs{
		ExerciseID:   args.performed.ID,
		State:        args.state,
		LastResult:   args.lastResult,
		History:      args.hist,
		Prescription: args.rx,
		PlanUnit:     args.rounding.Unit,
	}

	signals := buildSignals(args)
	decision := direction.Decide(signals, args.profile)

	var base load.Load
	switch {
	case args.performed.IsBodyweight():
		base = load.Zero(args.rounding.Unit)
	case progression.NeedsRebase(args.lastResult, args.rx):
		base = progression.RebaseLoad(args.state, args.rx, args.rounding.Unit)
	case args.autoregulated:
		base = autoregulatedBase(args, decision, signals)
	default:
		base = args.progPolicy.NextLoad(in)
	}

	if args.state.LastSessionDate != nil {
		daysSince := args.cal.DaysBetween(*args.state.LastSessionDate, args.date)
		base = base.Scaled(detrainingFactor(daysSince))
	}
	if args.isDeload && args.deloadCfg != nil {
		base = base.Scaled(1 - args.deloadCfg.IntensityReduction)
	}

	targetReps := args.progPolicy.NextTargetReps(in)
	setCount := args.rx.SetCount
	if args.isDeload {
		targetReps = args.rx.TargetReps.Lo
		if args.deloadCfg != nil {
			setCount = args.deloadCfg.ReducedSetCount(setCount)
		}
	}
	if decision.VolumeAdjustment < 0 {
		setCount += decision.VolumeAdjustment
		if setCount < 1 {
			setCount = 1
		}
	}
	if targetReps < 1 {
		targetReps = 1
	}

	sets := make([]insession.SetPlan, setCount)
	for i := 0; i < setCount; i++ {
		sets[i] = insession.SetPlan{
			SetIndex:          i,
			TargetLoad:        progression.ComputeSetLoad(i, base, args.progPolicy, args.rounding),
			TargetReps:        targetReps,
			TargetRIR:         args.rx.TargetRIR,
			RestSeconds:       args.rx.RestSeconds,
			BackoffPercentage: progression.BackoffPercentageFor(i, args.progPolicy),
			Policy:            args.inSessionPolicy,
			RoundingPolicy:    args.rounding,
		}
	}

	d := decision
	return ExercisePlan{
		Exercise:          args.performed,
		Prescription:      args.rx,
		Sets:              sets,
		ProgressionPolicy: args.progPolicy,
		InSessionPolicy:   args.inSessionPolicy,
		Substitutions:     args.ranked,
		Direction:         &d,
	}
}

// autoregulatedBase computes the next base load for autoregulated lifts
// from the direction decision and its sized magnitude.
func autoregulatedBase(args exerciseArgs, decision direction.Decision, signals direction.Signals) load.Load {
	unit := args.state.Unit(args.rounding.Unit)
	last := args.state.LastWorkingWeight.ConvertedTo(unit)

	tier := strengthTier(args)
	magnitude := direction.ComputeMagnitude(decision.Direction, args.rx.Increment, tier, args.profile.EffectiveExperience())

	switch decision.Direction {
	case direction.DirectionIncrease:
		return last.Plus(magnitude.AbsoluteIncrement)
	case direction.DirectionDecreaseSlightly:
		return last.Minus(magnitude.AbsoluteIncrement)
	case direction.DirectionDeload:
		return last.Scaled(1 - AutoregDeloadPercentage)
	default:
		// Hold and reset carry the load; detraining handles the reset cut.
		return last
	}
}

// strengthTier derives the lifter's relative-strength tier for the lift.
// Without a bodyweight on the profile the tier defaults to intermediate.
func strengthTier(args exerciseArgs) direction.Tier {
	if args.profile.Bodyweight == nil || args.profile.Bodyweight.IsZero() || args.state.RollingE1RM <= 0 {
		return direction.TierIntermediate
	}
	unit := args.state.Unit(args.rounding.Unit)
	e1rmKg := (load.Load{Value: args.state.RollingE1RM, Unit: unit}).Kilograms()
	relative := e1rmKg / args.profile.Bodyweight.Kilograms()
	return direction.StrengthTier(args.performed.MovementPattern, relative, args.profile.EffectiveSex())
}

// buildSignals distills the lift's direction evidence from state, the last
// exposure, readiness, and the resolved policy.
func buildSignals(args exerciseArgs) direction.Signals {
	s := direction.Signals{
		HasTrained:           args.state.HasHistory(),
		FailStreak:           args.state.FailureCount,
		FailuresBeforeDeload: failuresBeforeDeload(args.progPolicy),
		TodayReadiness:       args.readiness,
		TargetRIR:            args.rx.TargetRIR,
		TrendDeclining:       args.state.Trend == e1rm.TrendDeclining,
		Pattern:              args.performed.MovementPattern,
	}
	if args.state.LastSessionDate != nil {
		s.DaysSinceLastExposure = args.cal.DaysBetween(*args.state.LastSessionDate, args.date)
	}

	if args.lastResult != nil {
		if hardest, ok := hardestObservedRIR(*args.lastResult); ok {
			s.ObservedRIR = &hardest
			s.Grinder = hardest <= direction.GrinderRIRThreshold
		}
		s.Missed = args.lastResult.AnyWorkingSetBelow(args.rx.TargetReps.Lo)
		s.RepsAtCeiling = args.lastResult.AllWorkingSetsAtOrAbove(args.rx.TargetReps.Hi)
	}

	s.RecentEasySessionCount = recentEasySessions(args.hist, args.performed.ID, args.rx.TargetRIR)
	return s
}

// failuresBeforeDeload extracts the policy's failure threshold when the
// variant defines one.
func failuresBeforeDeload(policy progression.Policy) int {
	switch p := policy.(type) {
	case *progression.LinearPolicy:
		return p.FailuresBeforeDeload
	case *progression.DoublePolicy:
		return p.FailuresBeforeDeload
	default:
		return DefaultFailuresBeforeDeload
	}
}

// hardestObservedRIR returns the minimum logged RIR across working sets.
func hardestObservedRIR(result history.ExerciseSessionResult) (float64, bool) {
	hardest, found := 0.0, false
	for _, s := range result.WorkingSets() {
		if s.ObservedRIR == nil {
			continue
		}
		if !found || *s.ObservedRIR < hardest {
			hardest = *s.ObservedRIR
		}
		found = true
	}
	return hardest, found
}

// recentEasySessions counts the lift's current run of consecutive sessions
// whose hardest working set still had at least one RIR in hand over target.
func recentEasySessions(hist history.WorkoutHistory, exerciseID string, targetRIR float64) int {
	count := 0
	for _, session := range hist.Sessions {
		result, ok := session.ResultFor(exerciseID)
		if !ok {
			continue
		}
		hardest, logged := hardestObservedRIR(result)
		if !logged || hardest < targetRIR+direction.EasySessionRIRMargin {
			return count
		}
		count++
	}
	return count
}

// trendInsights summarizes declining lifts among the planned exercises.
func trendInsights(plans []ExercisePlan, hist history.WorkoutHistory) []string {
	var out []string
	for _, ep := range plans {
		if state, ok := hist.LiftStateFor(ep.Exercise.ID); ok && state.Trend == e1rm.TrendDeclining {
			out = append(out, fmt.Sprintf("%s e1rm is trending down", ep.Exercise.ID))
		}
	}
	return out
}
