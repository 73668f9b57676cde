package load

import (
	"errors"
	"fmt"
	"math"
)

// RoundingMode specifies how to round calculated weights.
type RoundingMode string

const (
	// RoundNearest rounds to the nearest increment (standard rounding).
	RoundNearest RoundingMode = "NEAREST"
	// RoundDown always rounds down (conservative/floor).
	RoundDown RoundingMode = "DOWN"
	// RoundUp always rounds up (ceiling).
	RoundUp RoundingMode = "UP"
)

// ValidRoundingModes contains all valid rounding mode values.
var ValidRoundingModes = map[RoundingMode]bool{
	RoundNearest: true,
	RoundDown:    true,
	RoundUp:      true,
}

// Rounding errors.
var (
	ErrInvalidIncrement    = errors.New("rounding increment must be greater than zero")
	ErrInvalidRoundingMode = errors.New("invalid rounding mode")
)

// DefaultRoundingIncrement is the default weight increment for rounding (5.0 lb/kg).
const DefaultRoundingIncrement = 5.0

// RoundingPolicy describes how emitted working loads are snapped to the
// plates or pin settings actually available in a gym. Every working load the
// engine emits is expressed in the policy's unit and rounded by it.
type RoundingPolicy struct {
	// Increment is the smallest step available (e.g. 2.5, 5.0); must be > 0.
	Increment float64 `json:"increment"`
	// Unit is the unit loads are emitted in.
	Unit Unit `json:"unit"`
	// Mode is how to round (NEAREST, DOWN, UP). Empty defaults to NEAREST.
	Mode RoundingMode `json:"mode"`
}

// DefaultRoundingPolicy returns a 5-unit nearest policy in the given unit.
func DefaultRoundingPolicy(unit Unit) RoundingPolicy {
	return RoundingPolicy{Increment: DefaultRoundingIncrement, Unit: unit, Mode: RoundNearest}
}

// Validate validates the policy's configuration.
func (p RoundingPolicy) Validate() error {
	if p.Increment <= 0 {
		return fmt.Errorf("%w: got %.2f", ErrInvalidIncrement, p.Increment)
	}
	if err := ValidateUnit(p.Unit); err != nil {
		return err
	}
	if p.Mode != "" && !ValidRoundingModes[p.Mode] {
		return fmt.Errorf("%w: %s", ErrInvalidRoundingMode, p.Mode)
	}
	return nil
}

// mode returns the effective rounding mode, defaulting to NEAREST.
func (p RoundingPolicy) mode() RoundingMode {
	if p.Mode == "" {
		return RoundNearest
	}
	return p.Mode
}

// RoundValue rounds a bare scalar already expressed in the policy unit.
// Zero rounds to zero under every mode.
func (p RoundingPolicy) RoundValue(value float64) float64 {
	if value <= 0 || p.Increment <= 0 {
		return 0
	}
	switch p.mode() {
	case RoundDown:
		return math.Floor(value/p.Increment) * p.Increment
	case RoundUp:
		return math.Ceil(value/p.Increment) * p.Increment
	default:
		return math.Round(value/p.Increment) * p.Increment
	}
}

// Apply converts a load to the policy unit and rounds it.
// This is the single path every emitted working load goes through.
func (p RoundingPolicy) Apply(l Load) Load {
	converted := l.ConvertedTo(p.Unit)
	return Load{Value: p.RoundValue(converted.Value), Unit: p.Unit}
}
