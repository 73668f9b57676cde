package exercise

import (
	"errors"
	"fmt"

	"github.com/Rahulvijayan123/workout-engine/internal/validation"
)

// MaxIDLength is the maximum length for exercise ids.
const MaxIDLength = 100

// ErrNameRequired indicates a missing exercise name.
var ErrNameRequired = errors.New("exercise name is required")

// Slug errors re-exported from the shared validation package.
var (
	ErrSlugEmpty   = validation.ErrSlugEmpty
	ErrSlugInvalid = validation.ErrSlugInvalid
)

// Exercise is a catalog entry binding a movement to its equipment and the
// muscles it trains. Exercises are identified by slug ids (e.g.
// "barbell-bench-press") supplied by the caller's catalog.
type Exercise struct {
	// ID is the unique slug identifier for this exercise.
	ID string `json:"id"`
	// Name is the human-readable exercise name.
	Name string `json:"name"`
	// Equipment is the implement the exercise is performed with.
	Equipment Equipment `json:"equipment"`
	// PrimaryMuscles are the muscles the exercise primarily trains.
	PrimaryMuscles []MuscleGroup `json:"primaryMuscles"`
	// SecondaryMuscles are the muscles trained as assistance.
	SecondaryMuscles []MuscleGroup `json:"secondaryMuscles,omitempty"`
	// MovementPattern classifies the mechanical pattern.
	MovementPattern MovementPattern `json:"movementPattern"`
}

// New creates an Exercise after validation.
func New(id, name string, equipment Equipment, pattern MovementPattern, primary, secondary []MuscleGroup) (Exercise, error) {
	e := Exercise{
		ID:               id,
		Name:             name,
		Equipment:        equipment,
		PrimaryMuscles:   primary,
		SecondaryMuscles: secondary,
		MovementPattern:  pattern,
	}
	if err := e.Validate(); err != nil {
		return Exercise{}, err
	}
	return e, nil
}

// Validate validates the exercise's fields.
func (e Exercise) Validate() error {
	if err := validation.ValidateSlug(e.ID, MaxIDLength); err != nil {
		return fmt.Errorf("exercise id: %w", err)
	}
	if e.Name == "" {
		return ErrNameRequired
	}
	if _, err := ParseEquipment(string(e.Equipment)); err != nil {
		return err
	}
	if err := ValidateMovementPattern(e.MovementPattern); err != nil {
		return err
	}
	for _, m := range e.PrimaryMuscles {
		if !ValidMuscleGroups[m] {
			return fmt.Errorf("%w: %s", ErrInvalidMuscleGroup, m)
		}
	}
	for _, m := range e.SecondaryMuscles {
		if !ValidMuscleGroups[m] {
			return fmt.Errorf("%w: %s", ErrInvalidMuscleGroup, m)
		}
	}
	return nil
}

// IsBodyweight reports whether the exercise carries no external load.
func (e Exercise) IsBodyweight() bool {
	return e.Equipment == EquipmentBodyweight
}

// IsCompound reports whether the exercise's pattern is compound.
func (e Exercise) IsCompound() bool {
	return e.MovementPattern.IsCompound()
}
