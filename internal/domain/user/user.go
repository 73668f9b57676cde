// Package user defines the lifter profile the engine prescribes for.
package user

import (
	"errors"
	"fmt"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/exercise"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/load"
)

// Sex is the lifter's sex as used for strength-tier scaling. Direction
// decisions never depend on it; only increment magnitude does.
type Sex string

const (
	SexMale   Sex = "MALE"
	SexFemale Sex = "FEMALE"
	SexOther  Sex = "OTHER"
)

// ValidSexes contains all valid sex values.
var ValidSexes = map[Sex]bool{
	SexMale:   true,
	SexFemale: true,
	SexOther:  true,
}

// Experience is the lifter's training experience tier.
type Experience string

const (
	ExperienceBeginner     Experience = "BEGINNER"
	ExperienceIntermediate Experience = "INTERMEDIATE"
	ExperienceAdvanced     Experience = "ADVANCED"
	ExperienceElite        Experience = "ELITE"
)

// ValidExperiences contains all valid experience values.
var ValidExperiences = map[Experience]bool{
	ExperienceBeginner:     true,
	ExperienceIntermediate: true,
	ExperienceAdvanced:     true,
	ExperienceElite:        true,
}

// Goal is the lifter's current training phase.
type Goal string

const (
	GoalStrength    Goal = "STRENGTH"
	GoalHypertrophy Goal = "HYPERTROPHY"
	GoalFatLoss     Goal = "FAT_LOSS"
	GoalMaintenance Goal = "MAINTENANCE"
)

// ValidGoals contains all valid goal values.
var ValidGoals = map[Goal]bool{
	GoalStrength:    true,
	GoalHypertrophy: true,
	GoalFatLoss:     true,
	GoalMaintenance: true,
}

// Validation errors.
var (
	ErrInvalidSex        = errors.New("invalid sex")
	ErrInvalidExperience = errors.New("invalid experience")
	ErrInvalidGoal       = errors.New("invalid goal")
)

// Profile describes the lifter a session is prescribed for.
type Profile struct {
	// Sex scales strength-tier thresholds for increment magnitude.
	Sex Sex `json:"sex"`
	// Experience gates progression aggressiveness.
	Experience Experience `json:"experience"`
	// Goal is the current training phase (fat loss gates easy increases).
	Goal Goal `json:"goal"`
	// Bodyweight is used for relative-strength tiering, when known.
	Bodyweight *load.Load `json:"bodyweight,omitempty"`
	// AvailableEquipment is what the lifter can train with.
	AvailableEquipment exercise.Availability `json:"availableEquipment"`
}

// Validate validates the profile's enumerated fields.
func (p Profile) Validate() error {
	if p.Sex != "" && !ValidSexes[p.Sex] {
		return fmt.Errorf("%w: %s", ErrInvalidSex, p.Sex)
	}
	if p.Experience != "" && !ValidExperiences[p.Experience] {
		return fmt.Errorf("%w: %s", ErrInvalidExperience, p.Experience)
	}
	if p.Goal != "" && !ValidGoals[p.Goal] {
		return fmt.Errorf("%w: %s", ErrInvalidGoal, p.Goal)
	}
	if p.Bodyweight != nil {
		return p.Bodyweight.Validate()
	}
	return nil
}

// EffectiveSex returns the profile's sex, defaulting to other when unset.
func (p Profile) EffectiveSex() Sex {
	if p.Sex == "" {
		return SexOther
	}
	return p.Sex
}

// EffectiveExperience returns the experience tier, defaulting to intermediate.
func (p Profile) EffectiveExperience() Experience {
	if p.Experience == "" {
		return ExperienceIntermediate
	}
	return p.Experience
}

// IsCutting reports whether the lifter is in a fat-loss phase.
func (p Profile) IsCutting() bool {
	return p.Goal == GoalFatLoss
}
