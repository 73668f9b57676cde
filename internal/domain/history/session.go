// Package history holds the training record consumed by the engine: completed
// sessions, per-lift states, readiness scores, and day-bucketed volume. The
// engine reads history by value and never mutates it; updated lift states are
// returned to the caller as new values.
package history

import (
	"time"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/load"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/prescription"
)

// SetResult records a single performed set.
type SetResult struct {
	// SetIndex is the 0-based position of the set within the exercise.
	SetIndex int `json:"setIndex"`
	// Load is the weight used.
	Load load.Load `json:"load"`
	// Reps is the number of repetitions performed.
	Reps int `json:"reps"`
	// Completed reports whether the set was actually attempted and finished.
	Completed bool `json:"completed"`
	// IsWarmup marks warmup sets, which never count as working sets.
	IsWarmup bool `json:"isWarmup,omitempty"`
	// ObservedRIR is the lifter's reported reps-in-reserve, when logged.
	ObservedRIR *float64 `json:"observedRIR,omitempty"`
}

// IsWorkingSet reports whether the set counts toward progression:
// completed, not a warmup, and at least one rep performed.
func (s SetResult) IsWorkingSet() bool {
	return s.Completed && !s.IsWarmup && s.Reps > 0
}

// ExerciseSessionResult records all sets performed for one exercise in a
// session, together with the prescription that was in effect.
type ExerciseSessionResult struct {
	// ExerciseID identifies the exercise actually performed.
	ExerciseID string `json:"exerciseId"`
	// Prescription is the set prescription the exercise was performed under.
	Prescription prescription.SetPrescription `json:"prescription"`
	// Sets are the performed sets in order.
	Sets []SetResult `json:"sets"`
}

// WorkingSets returns the sets that count toward progression, in order.
func (r ExerciseSessionResult) WorkingSets() []SetResult {
	out := make([]SetResult, 0, len(r.Sets))
	for _, s := range r.Sets {
		if s.IsWorkingSet() {
			out = append(out, s)
		}
	}
	return out
}

// MaxWorkingLoad returns the heaviest working-set load, reported in the
// given unit. Returns zero load when there are no working sets.
func (r ExerciseSessionResult) MaxWorkingLoad(unit load.Unit) load.Load {
	best := load.Zero(unit)
	for _, s := range r.WorkingSets() {
		if s.Load.Compare(best) > 0 {
			best = s.Load.ConvertedTo(unit)
		}
	}
	return best
}

// AllWorkingSetsAtOrAbove reports whether every working set reached the given
// rep floor. Returns false when there are no working sets.
func (r ExerciseSessionResult) AllWorkingSetsAtOrAbove(reps int) bool {
	working := r.WorkingSets()
	if len(working) == 0 {
		return false
	}
	for _, s := range working {
		if s.Reps < reps {
			return false
		}
	}
	return true
}

// AnyWorkingSetBelow reports whether any working set fell short of the floor.
func (r ExerciseSessionResult) AnyWorkingSetBelow(reps int) bool {
	for _, s := range r.WorkingSets() {
		if s.Reps < reps {
			return true
		}
	}
	return false
}

// CompletedSession records one logged training session.
type CompletedSession struct {
	// ID is the unique session identifier.
	ID string `json:"id"`
	// Date is when the session was performed.
	Date time.Time `json:"date"`
	// TemplateID identifies the template the session followed, if any.
	TemplateID string `json:"templateId,omitempty"`
	// WasDeload marks sessions performed at deliberately reduced loads.
	WasDeload bool `json:"wasDeload,omitempty"`
	// Exercises are the per-exercise results.
	Exercises []ExerciseSessionResult `json:"exercises"`
}

// ResultFor returns the result for the given exercise, if present.
func (s CompletedSession) ResultFor(exerciseID string) (ExerciseSessionResult, bool) {
	for _, r := range s.Exercises {
		if r.ExerciseID == exerciseID {
			return r, true
		}
	}
	return ExerciseSessionResult{}, false
}
