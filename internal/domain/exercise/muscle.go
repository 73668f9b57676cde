package exercise

import (
	"errors"
	"fmt"
)

// MuscleGroup represents a trackable muscle region.
type MuscleGroup string

const (
	MuscleChest      MuscleGroup = "CHEST"
	MuscleFrontDelt  MuscleGroup = "FRONT_DELT"
	MuscleSideDelt   MuscleGroup = "SIDE_DELT"
	MuscleRearDelt   MuscleGroup = "REAR_DELT"
	MuscleTriceps    MuscleGroup = "TRICEPS"
	MuscleBiceps     MuscleGroup = "BICEPS"
	MuscleForearms   MuscleGroup = "FOREARMS"
	MuscleLats       MuscleGroup = "LATS"
	MuscleTraps      MuscleGroup = "TRAPS"
	MuscleUpperBack  MuscleGroup = "UPPER_BACK"
	MuscleQuads      MuscleGroup = "QUADS"
	MuscleGlutes     MuscleGroup = "GLUTES"
	MuscleHamstrings MuscleGroup = "HAMSTRINGS"
	MuscleCalves     MuscleGroup = "CALVES"
	MuscleLowerBack  MuscleGroup = "LOWER_BACK"
	MuscleCore       MuscleGroup = "CORE"
)

// ValidMuscleGroups contains all valid muscle group values.
var ValidMuscleGroups = map[MuscleGroup]bool{
	MuscleChest:      true,
	MuscleFrontDelt:  true,
	MuscleSideDelt:   true,
	MuscleRearDelt:   true,
	MuscleTriceps:    true,
	MuscleBiceps:     true,
	MuscleForearms:   true,
	MuscleLats:       true,
	MuscleTraps:      true,
	MuscleUpperBack:  true,
	MuscleQuads:      true,
	MuscleGlutes:     true,
	MuscleHamstrings: true,
	MuscleCalves:     true,
	MuscleLowerBack:  true,
	MuscleCore:       true,
}

// ErrInvalidMuscleGroup indicates an unrecognized muscle group value.
var ErrInvalidMuscleGroup = errors.New("invalid muscle group")

// ParseMuscleGroup safely converts a string to MuscleGroup with validation.
func ParseMuscleGroup(s string) (MuscleGroup, error) {
	m := MuscleGroup(s)
	if !ValidMuscleGroups[m] {
		return "", fmt.Errorf("%w: %s", ErrInvalidMuscleGroup, s)
	}
	return m, nil
}

// MuscleOverlap computes the Jaccard overlap |A∩B| / |A∪B| of two muscle
// group sets. Two empty sets overlap fully by convention.
func MuscleOverlap(a, b []MuscleGroup) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	inA := make(map[MuscleGroup]bool, len(a))
	for _, m := range a {
		inA[m] = true
	}
	union := make(map[MuscleGroup]bool, len(a)+len(b))
	for _, m := range a {
		union[m] = true
	}
	intersection := 0
	for _, m := range b {
		if !union[m] {
			union[m] = true
		}
	}
	seen := make(map[MuscleGroup]bool, len(b))
	for _, m := range b {
		if inA[m] && !seen[m] {
			intersection++
		}
		seen[m] = true
	}
	if len(union) == 0 {
		return 1.0
	}
	return float64(intersection) / float64(len(union))
}
