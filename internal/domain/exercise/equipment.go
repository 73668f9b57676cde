package exercise

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Equipment identifies the implement an exercise is performed with.
type Equipment string

const (
	EquipmentBarbell    Equipment = "BARBELL"
	EquipmentDumbbell   Equipment = "DUMBBELL"
	EquipmentMachine    Equipment = "MACHINE"
	EquipmentCable      Equipment = "CABLE"
	EquipmentKettlebell Equipment = "KETTLEBELL"
	EquipmentBand       Equipment = "BAND"
	EquipmentBodyweight Equipment = "BODYWEIGHT"
)

// ValidEquipment contains all valid equipment values.
var ValidEquipment = map[Equipment]bool{
	EquipmentBarbell:    true,
	EquipmentDumbbell:   true,
	EquipmentMachine:    true,
	EquipmentCable:      true,
	EquipmentKettlebell: true,
	EquipmentBand:       true,
	EquipmentBodyweight: true,
}

// ErrInvalidEquipment indicates an unrecognized equipment value.
var ErrInvalidEquipment = errors.New("invalid equipment")

// ParseEquipment safely converts a string to Equipment with validation.
func ParseEquipment(s string) (Equipment, error) {
	e := Equipment(s)
	if !ValidEquipment[e] {
		return "", fmt.Errorf("%w: %s", ErrInvalidEquipment, s)
	}
	return e, nil
}

// IsLoadable reports whether the equipment takes external load.
// Bodyweight exercises are always prescribed at load zero.
func (e Equipment) IsLoadable() bool {
	return e != EquipmentBodyweight && e != EquipmentBand
}

// Availability is the set of equipment a user can train with. Bodyweight is
// always considered available even when not listed.
type Availability struct {
	available map[Equipment]bool
}

// NewAvailability builds an Availability from the listed equipment.
func NewAvailability(equipment ...Equipment) Availability {
	m := make(map[Equipment]bool, len(equipment))
	for _, e := range equipment {
		m[e] = true
	}
	return Availability{available: m}
}

// IsAvailable reports whether the given equipment can be used.
func (a Availability) IsAvailable(e Equipment) bool {
	if e == EquipmentBodyweight {
		return true
	}
	return a.available[e]
}

// List returns the available equipment in sorted order.
func (a Availability) List() []Equipment {
	out := make([]Equipment, 0, len(a.available))
	for e := range a.available {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MarshalJSON encodes the availability as a sorted equipment list.
func (a Availability) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.List())
}

// UnmarshalJSON decodes an equipment list into an Availability.
func (a *Availability) UnmarshalJSON(data []byte) error {
	var list []Equipment
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("failed to parse equipment list: %w", err)
	}
	*a = NewAvailability(list...)
	return nil
}
