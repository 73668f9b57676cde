// Package scheduler selects which workout template a plan prescribes for a
// date. Selection is a pure function of the schedule and the session log:
// fixed-weekday schedules map the date's weekday, rotations advance one step
// per completed rotation session, and manual schedules never select.
package scheduler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/history"
)

// Kind identifies the schedule variant.
type Kind string

const (
	// KindFixedWeekday maps each weekday to a template id.
	KindFixedWeekday Kind = "FIXED_WEEKDAY"
	// KindRotation cycles through an ordered template list, advancing only
	// when a session with one of the rotation's templates is completed.
	KindRotation Kind = "ROTATION"
	// KindManual performs no automatic selection.
	KindManual Kind = "MANUAL"
)

// ValidKinds contains all valid schedule kinds.
var ValidKinds = map[Kind]bool{
	KindFixedWeekday: true,
	KindRotation:     true,
	KindManual:       true,
}

// Validation errors.
var (
	ErrUnknownKind     = errors.New("unknown schedule kind")
	ErrInvalidWeekday  = errors.New("invalid weekday key")
	ErrEmptyRotation   = errors.New("rotation schedule requires at least one template id")
	ErrMappingRequired = errors.New("fixed-weekday schedule requires a weekday mapping")
)

// weekdayKeys maps uppercase weekday names to time.Weekday.
var weekdayKeys = map[string]time.Weekday{
	"SUNDAY":    time.Sunday,
	"MONDAY":    time.Monday,
	"TUESDAY":   time.Tuesday,
	"WEDNESDAY": time.Wednesday,
	"THURSDAY":  time.Thursday,
	"FRIDAY":    time.Friday,
	"SATURDAY":  time.Saturday,
}

// WeekdayKey formats a weekday as its mapping key.
func WeekdayKey(d time.Weekday) string {
	return strings.ToUpper(d.String())
}

// Schedule describes how templates are assigned to dates.
type Schedule struct {
	// Kind selects the variant.
	Kind Kind `json:"kind"`
	// WeekdayTemplates maps weekday keys (e.g. "MONDAY") to template ids.
	// Used by KindFixedWeekday.
	WeekdayTemplates map[string]string `json:"weekdayTemplates,omitempty"`
	// Rotation is the ordered template id cycle. Used by KindRotation.
	Rotation []string `json:"rotation,omitempty"`
}

// Validate validates the schedule's configuration.
func (s Schedule) Validate() error {
	if !ValidKinds[s.Kind] {
		return fmt.Errorf("%w: %s", ErrUnknownKind, s.Kind)
	}
	switch s.Kind {
	case KindFixedWeekday:
		if len(s.WeekdayTemplates) == 0 {
			return ErrMappingRequired
		}
		for key := range s.WeekdayTemplates {
			if _, ok := weekdayKeys[strings.ToUpper(key)]; !ok {
				return fmt.Errorf("%w: %s", ErrInvalidWeekday, key)
			}
		}
	case KindRotation:
		if len(s.Rotation) == 0 {
			return ErrEmptyRotation
		}
	}
	return nil
}

// SelectTemplate picks the template id for a date. The boolean is false when
// the schedule makes no selection (manual schedules, unmapped weekdays).
func SelectTemplate(s Schedule, hist history.WorkoutHistory, date time.Time) (string, bool) {
	switch s.Kind {
	case KindFixedWeekday:
		id, ok := lookupWeekday(s.WeekdayTemplates, date.Weekday())
		return id, ok && id != ""
	case KindRotation:
		if len(s.Rotation) == 0 {
			return "", false
		}
		count := completedRotationSessions(s.Rotation, hist)
		return s.Rotation[count%len(s.Rotation)], true
	default:
		return "", false
	}
}

// lookupWeekday finds the mapping entry for a weekday, case-insensitively.
func lookupWeekday(mapping map[string]string, d time.Weekday) (string, bool) {
	want := WeekdayKey(d)
	for key, id := range mapping {
		if strings.ToUpper(key) == want {
			return id, true
		}
	}
	return "", false
}

// completedRotationSessions counts history sessions whose template id is part
// of the rotation. Missed calendar days never advance the rotation.
func completedRotationSessions(order []string, hist history.WorkoutHistory) int {
	inRotation := make(map[string]bool, len(order))
	for _, id := range order {
		inRotation[id] = true
	}
	count := 0
	for _, s := range hist.Sessions {
		if inRotation[s.TemplateID] {
			count++
		}
	}
	return count
}
