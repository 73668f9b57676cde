// Package planner orchestrates the domain policies into full session
// prescriptions and applies completed sessions back onto lift state. Every
// entry point is a pure function of its arguments: no clocks, no I/O, and
// deterministic iteration everywhere, so identical inputs always produce
// byte-identical outputs.
package planner

import (
	"time"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/deload"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/direction"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/exercise"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/insession"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/prescription"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/progression"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/substitution"
)

// ExercisePlan is one exercise's fully resolved prescription for a session.
type ExercisePlan struct {
	// Exercise is the exercise actually performed (original or substitute).
	Exercise exercise.Exercise `json:"exercise"`
	// Prescription is the prescription in effect.
	Prescription prescription.SetPrescription `json:"prescription"`
	// Sets are the planned sets in order.
	Sets []insession.SetPlan `json:"sets"`
	// ProgressionPolicy is the resolved between-session policy.
	ProgressionPolicy progression.Policy `json:"progressionPolicy"`
	// InSessionPolicy is the resolved within-session policy.
	InSessionPolicy insession.Policy `json:"inSessionPolicy"`
	// Substitutions are the ranked alternatives for the original exercise.
	Substitutions []substitution.Candidate `json:"substitutions,omitempty"`
	// Direction is the between-session movement decision, when computed.
	Direction *direction.Decision `json:"direction,omitempty"`
}

// SessionPlan is the full prescription for one date.
type SessionPlan struct {
	// Date is the session's day (start of day under the call's calendar).
	Date time.Time `json:"date"`
	// TemplateID is the template the plan follows, when one was resolved.
	TemplateID string `json:"templateId,omitempty"`
	// Exercises are the planned exercises in template order.
	Exercises []ExercisePlan `json:"exercises"`
	// IsDeload reports whether the session runs at reduced load and volume.
	IsDeload bool `json:"isDeload"`
	// DeloadReason is the first triggered deload rule, when deloading.
	DeloadReason deload.Trigger `json:"deloadReason,omitempty"`
	// DeloadRules reports every deload rule's outcome.
	DeloadRules []deload.RuleResult `json:"deloadRules,omitempty"`
	// Insights are advisory, deterministic observations about the session.
	Insights []string `json:"insights,omitempty"`
}
