// Package plan defines the training plan aggregate: workout templates, the
// schedule, per-exercise policies, the substitution pool, and the deload and
// rounding configuration. A plan is a serializable value tree owned by the
// caller; the engine reads it and never mutates it.
package plan

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/exercise"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/prescription"
	"github.com/Rahulvijayan123/workout-engine/internal/validation"
)

// MaxTemplateIDLength is the maximum length for template ids.
const MaxTemplateIDLength = 100

// Validation errors.
var (
	ErrTemplateIDRequired = errors.New("template id is required")
	ErrTemplateEmpty      = errors.New("template requires at least one exercise")
)

// TemplateExercise binds an exercise to its prescription within a template.
type TemplateExercise struct {
	// Exercise is the prescribed exercise.
	Exercise exercise.Exercise `json:"exercise"`
	// Prescription is how its working sets are performed.
	Prescription prescription.SetPrescription `json:"prescription"`
	// Order is the exercise's position within the workout.
	Order int `json:"order"`
}

// Validate validates the binding.
func (t TemplateExercise) Validate() error {
	if err := t.Exercise.Validate(); err != nil {
		return err
	}
	if err := t.Prescription.Validate(); err != nil {
		return fmt.Errorf("prescription for %s: %w", t.Exercise.ID, err)
	}
	return nil
}

// WorkoutTemplate is an ordered list of prescribed exercises.
type WorkoutTemplate struct {
	// ID is the unique slug identifier for this template.
	ID string `json:"id"`
	// Name is the human-readable template name.
	Name string `json:"name"`
	// Exercises are the template's exercises. Emission order follows the
	// Order field with ties broken by exercise id.
	Exercises []TemplateExercise `json:"exercises"`
}

// Validate validates the template and its exercises.
func (w WorkoutTemplate) Validate() error {
	if w.ID == "" {
		return ErrTemplateIDRequired
	}
	if err := validation.ValidateSlug(w.ID, MaxTemplateIDLength); err != nil {
		return fmt.Errorf("template id: %w", err)
	}
	if len(w.Exercises) == 0 {
		return fmt.Errorf("%w: %s", ErrTemplateEmpty, w.ID)
	}
	for _, te := range w.Exercises {
		if err := te.Validate(); err != nil {
			return fmt.Errorf("template %s: %w", w.ID, err)
		}
	}
	return nil
}

// OrderedExercises returns the exercises sorted by Order, ties broken by
// exercise id, so emission never depends on slice or map ordering upstream.
func (w WorkoutTemplate) OrderedExercises() []TemplateExercise {
	out := make([]TemplateExercise, len(w.Exercises))
	copy(out, w.Exercises)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Exercise.ID < out[j].Exercise.ID
	})
	return out
}
