// Package deload evaluates whether a date should be trained at reduced
// intensity and volume. Four trigger rules are evaluated in a fixed order;
// the first match supplies the reason, and every rule's outcome is reported
// so callers can surface why a deload did or did not fire.
package deload

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/calendar"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/e1rm"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/history"
)

// Trigger identifies a deload trigger rule.
type Trigger string

const (
	// TriggerScheduled fires on the plan's scheduled deload cadence.
	TriggerScheduled Trigger = "SCHEDULED_DELOAD"
	// TriggerLowReadiness fires on a run of consecutive low-readiness days.
	TriggerLowReadiness Trigger = "LOW_READINESS"
	// TriggerHighFatigue fires when recent volume outpaces baseline volume.
	TriggerHighFatigue Trigger = "HIGH_ACCUMULATED_FATIGUE"
	// TriggerPerformanceDecline fires when multiple lifts trend downward.
	TriggerPerformanceDecline Trigger = "PERFORMANCE_DECLINE"
)

// ruleOrder is the fixed evaluation order; the first triggered rule wins.
var ruleOrder = []Trigger{
	TriggerScheduled,
	TriggerLowReadiness,
	TriggerHighFatigue,
	TriggerPerformanceDecline,
}

// Window and threshold constants.
const (
	// RecentWindowDays is the window for the recent volume mean.
	RecentWindowDays = 7
	// BaselineWindowDays is the window for the baseline volume mean.
	BaselineWindowDays = 28
	// BaselineCoverageDays is the minimum recorded days the baseline needs;
	// a sparser baseline disables the fatigue trigger.
	BaselineCoverageDays = 21
	// FatigueRatio is the recent/baseline mean ratio that triggers a deload.
	FatigueRatio = 1.35
	// DeloadSpacingDays suppresses scheduled deloads this soon after one.
	DeloadSpacingDays = 14
	// DeclineWindowDays is the lookback for performance-decline samples.
	DeclineWindowDays = 21
	// DeclineMinSamples is the minimum recent e1rm samples per declining lift.
	DeclineMinSamples = 4
	// DeclineMinLifts is how many declining lifts the rule requires.
	DeclineMinLifts = 2
)

// Configuration errors.
var (
	ErrInvalidIntensityReduction = errors.New("intensity reduction must be in [0, 1)")
	ErrInvalidVolumeReduction    = errors.New("volume reduction cannot be negative")
	ErrInvalidScheduledWeeks     = errors.New("scheduled deload weeks cannot be negative")
	ErrInvalidReadinessThreshold = errors.New("readiness threshold must be in [0, 100]")
)

// Config is the plan's deload configuration.
type Config struct {
	// ScheduledDeloadWeeks deloads every Nth training week (0 disables).
	ScheduledDeloadWeeks int `json:"scheduledDeloadWeeks,omitempty"`
	// LowReadinessDaysRequired is the consecutive low-readiness day count
	// that triggers a deload (0 disables).
	LowReadinessDaysRequired int `json:"lowReadinessDaysRequired,omitempty"`
	// ReadinessThreshold is the score at or below which a day counts as low.
	ReadinessThreshold int `json:"readinessThreshold,omitempty"`
	// IntensityReduction is the fraction removed from working loads.
	IntensityReduction float64 `json:"intensityReduction"`
	// VolumeReduction is the number of sets removed (floored at one set).
	VolumeReduction int `json:"volumeReduction"`
}

// Validate validates the config.
func (c Config) Validate() error {
	if c.IntensityReduction < 0 || c.IntensityReduction >= 1 {
		return fmt.Errorf("%w: got %.2f", ErrInvalidIntensityReduction, c.IntensityReduction)
	}
	if c.VolumeReduction < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidVolumeReduction, c.VolumeReduction)
	}
	if c.ScheduledDeloadWeeks < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidScheduledWeeks, c.ScheduledDeloadWeeks)
	}
	if c.ReadinessThreshold < 0 || c.ReadinessThreshold > 100 {
		return fmt.Errorf("%w: got %d", ErrInvalidReadinessThreshold, c.ReadinessThreshold)
	}
	return nil
}

// ReducedSetCount applies the volume reduction, never dropping below one set.
func (c Config) ReducedSetCount(setCount int) int {
	reduced := setCount - c.VolumeReduction
	if reduced < 1 {
		return 1
	}
	return reduced
}

// RuleResult reports one rule's outcome.
type RuleResult struct {
	// Trigger identifies the rule.
	Trigger Trigger `json:"trigger"`
	// Triggered reports whether the rule fired.
	Triggered bool `json:"triggered"`
}

// Decision is the outcome of evaluating all deload rules for a date.
type Decision struct {
	// ShouldDeload reports whether any rule fired.
	ShouldDeload bool `json:"shouldDeload"`
	// Reason is the first triggered rule in evaluation order, when any.
	Reason Trigger `json:"reason,omitempty"`
	// TriggeredRules reports every rule's outcome in evaluation order.
	TriggeredRules []RuleResult `json:"triggeredRules"`
}

// Evaluate runs the deload rules for a date. A nil config never deloads.
// planStart anchors the scheduled cadence; when zero, the oldest session
// date stands in, and with no sessions the scheduled rule is disabled.
func Evaluate(cfg *Config, hist history.WorkoutHistory, planStart, date time.Time, cal calendar.Calendar) Decision {
	if cfg == nil {
		return Decision{TriggeredRules: allClear()}
	}

	fired := map[Trigger]bool{
		TriggerScheduled:          scheduledTriggered(*cfg, hist, planStart, date, cal),
		TriggerLowReadiness:       lowReadinessTriggered(*cfg, hist, date, cal),
		TriggerHighFatigue:        fatigueTriggered(hist, date, cal),
		TriggerPerformanceDecline: declineTriggered(hist, date, cal),
	}

	decision := Decision{TriggeredRules: make([]RuleResult, 0, len(ruleOrder))}
	for _, trigger := range ruleOrder {
		triggered := fired[trigger]
		decision.TriggeredRules = append(decision.TriggeredRules, RuleResult{Trigger: trigger, Triggered: triggered})
		if triggered && !decision.ShouldDeload {
			decision.ShouldDeload = true
			decision.Reason = trigger
		}
	}
	return decision
}

// allClear returns an all-false rule report in evaluation order.
func allClear() []RuleResult {
	out := make([]RuleResult, len(ruleOrder))
	for i, trigger := range ruleOrder {
		out[i] = RuleResult{Trigger: trigger}
	}
	return out
}

// scheduledTriggered fires when the date falls in the Nth training week of
// the cadence (weeks counted from plan start) and no deload occurred in the
// trailing spacing window.
func scheduledTriggered(cfg Config, hist history.WorkoutHistory, planStart, date time.Time, cal calendar.Calendar) bool {
	if cfg.ScheduledDeloadWeeks <= 0 {
		return false
	}
	anchor := planStart
	if anchor.IsZero() {
		oldest, ok := hist.OldestSessionDate()
		if !ok {
			return false
		}
		anchor = oldest
	}
	days := cal.DaysBetween(anchor, date)
	if days < 0 {
		return false
	}
	weekIndex := days / 7
	if (weekIndex+1)%cfg.ScheduledDeloadWeeks != 0 {
		return false
	}
	return !hist.DeloadWithin(DeloadSpacingDays, date, cal)
}

// lowReadinessTriggered fires on a long enough run of consecutive low days.
// Missing days break the run.
func lowReadinessTriggered(cfg Config, hist history.WorkoutHistory, date time.Time, cal calendar.Calendar) bool {
	if cfg.LowReadinessDaysRequired <= 0 {
		return false
	}
	run := hist.ConsecutiveLowReadinessDays(cfg.ReadinessThreshold, date, cal)
	return run >= cfg.LowReadinessDaysRequired
}

// fatigueTriggered fires when the recent volume mean meaningfully exceeds
// the baseline mean, and only when both windows are well covered.
func fatigueTriggered(hist history.WorkoutHistory, date time.Time, cal calendar.Calendar) bool {
	if hist.VolumeCoverage(BaselineWindowDays, date, cal) < BaselineCoverageDays {
		return false
	}
	if hist.VolumeCoverage(RecentWindowDays, date, cal) < RecentWindowDays {
		return false
	}
	baselineMean := hist.TotalVolume(BaselineWindowDays, date, cal) / BaselineWindowDays
	if baselineMean <= 0 {
		return false
	}
	recentMean := hist.TotalVolume(RecentWindowDays, date, cal) / RecentWindowDays
	return recentMean >= FatigueRatio*baselineMean
}

// declineTriggered fires when at least two lifts trend declining with enough
// recent samples each.
func declineTriggered(hist history.WorkoutHistory, date time.Time, cal calendar.Calendar) bool {
	cutoff := cal.AddDays(cal.StartOfDay(date), -DeclineWindowDays)

	ids := make([]string, 0, len(hist.LiftStates))
	for id := range hist.LiftStates {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	declining := 0
	for _, id := range ids {
		state := hist.LiftStates[id]
		if state.Trend != e1rm.TrendDeclining {
			continue
		}
		if state.SamplesSince(cutoff) < DeclineMinSamples {
			continue
		}
		declining++
		if declining >= DeclineMinLifts {
			return true
		}
	}
	return false
}
