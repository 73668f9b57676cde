// Package prescription defines the set prescription value types: rep ranges,
// load strategies, and the per-exercise SetPrescription templates bind to.
package prescription

import (
	"errors"
	"fmt"
	"math"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/load"
)

// LoadStrategy identifies how a prescription's working load is derived.
type LoadStrategy string

const (
	// StrategyAbsolute prescribes a concrete weight carried between sessions.
	StrategyAbsolute LoadStrategy = "ABSOLUTE"
	// StrategyPercentageE1RM prescribes a percentage of the rolling e1rm.
	StrategyPercentageE1RM LoadStrategy = "PERCENTAGE_E1RM"
	// StrategyRPEAutoregulated prescribes by target RIR and adjusts in session.
	StrategyRPEAutoregulated LoadStrategy = "RPE_AUTOREGULATED"
)

// ValidLoadStrategies contains all valid load strategy values.
var ValidLoadStrategies = map[LoadStrategy]bool{
	StrategyAbsolute:         true,
	StrategyPercentageE1RM:   true,
	StrategyRPEAutoregulated: true,
}

// Validation errors.
var (
	ErrUnknownLoadStrategy = errors.New("unknown load strategy")
	ErrInvalidSetCount     = errors.New("set count must be >= 1")
	ErrInvalidRepRange     = errors.New("rep range must satisfy 1 <= lo <= hi")
	ErrInvalidTargetRIR    = errors.New("target RIR cannot be negative")
	ErrInvalidRest         = errors.New("rest seconds cannot be negative")
	ErrPercentageRequired  = errors.New("target percentage required for percentage strategy")
	ErrInvalidPercentage   = errors.New("target percentage must be in (0, 1]")
)

// RestToleranceSeconds is how far rest may drift between two prescriptions
// before the difference counts as material.
const RestToleranceSeconds = 15

// RepRange is an inclusive target rep window.
type RepRange struct {
	// Lo is the minimum acceptable working reps (>= 1).
	Lo int `json:"lo"`
	// Hi is the rep ceiling (>= Lo).
	Hi int `json:"hi"`
}

// Validate validates the range bounds.
func (r RepRange) Validate() error {
	if r.Lo < 1 || r.Hi < r.Lo {
		return fmt.Errorf("%w: got [%d..%d]", ErrInvalidRepRange, r.Lo, r.Hi)
	}
	return nil
}

// Contains reports whether reps falls inside the range.
func (r RepRange) Contains(reps int) bool {
	return reps >= r.Lo && reps <= r.Hi
}

// Clamp snaps reps into the range.
func (r RepRange) Clamp(reps int) int {
	if reps < r.Lo {
		return r.Lo
	}
	if reps > r.Hi {
		return r.Hi
	}
	return reps
}

// SetPrescription describes how an exercise's working sets are performed.
type SetPrescription struct {
	// SetCount is the number of working sets (>= 1).
	SetCount int `json:"setCount"`
	// TargetReps is the inclusive working rep range.
	TargetReps RepRange `json:"targetReps"`
	// TargetRIR is the intended reps-in-reserve for working sets (>= 0).
	TargetRIR float64 `json:"targetRIR"`
	// RestSeconds is the rest between working sets.
	RestSeconds int `json:"restSeconds"`
	// LoadStrategy is how the working load is derived.
	LoadStrategy LoadStrategy `json:"loadStrategy"`
	// TargetPercentage is the e1rm fraction for StrategyPercentageE1RM.
	TargetPercentage *float64 `json:"targetPercentage,omitempty"`
	// Tempo is the optional tempo notation (e.g. "3-1-1").
	Tempo string `json:"tempo,omitempty"`
	// Increment is the smallest load step used when progressing this exercise.
	Increment load.Load `json:"increment"`
}

// Validate validates the prescription's configuration.
func (p SetPrescription) Validate() error {
	if p.SetCount < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidSetCount, p.SetCount)
	}
	if err := p.TargetReps.Validate(); err != nil {
		return err
	}
	if p.TargetRIR < 0 {
		return fmt.Errorf("%w: got %.1f", ErrInvalidTargetRIR, p.TargetRIR)
	}
	if p.RestSeconds < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidRest, p.RestSeconds)
	}
	if !ValidLoadStrategies[p.LoadStrategy] {
		return fmt.Errorf("%w: %s", ErrUnknownLoadStrategy, p.LoadStrategy)
	}
	if p.LoadStrategy == StrategyPercentageE1RM {
		if p.TargetPercentage == nil {
			return ErrPercentageRequired
		}
		if *p.TargetPercentage <= 0 || *p.TargetPercentage > 1 {
			return fmt.Errorf("%w: got %.2f", ErrInvalidPercentage, *p.TargetPercentage)
		}
	}
	return p.Increment.Validate()
}

// MateriallyDifferent reports whether two prescriptions differ enough that a
// load carried from one to the other is meaningless: a changed load strategy,
// set count, rep range, target RIR, tempo, or a rest change beyond tolerance.
func (p SetPrescription) MateriallyDifferent(other SetPrescription) bool {
	if p.LoadStrategy != other.LoadStrategy {
		return true
	}
	if p.SetCount != other.SetCount {
		return true
	}
	if p.TargetReps != other.TargetReps {
		return true
	}
	if p.TargetRIR != other.TargetRIR {
		return true
	}
	if p.Tempo != other.Tempo {
		return true
	}
	return math.Abs(float64(p.RestSeconds-other.RestSeconds)) > RestToleranceSeconds
}
