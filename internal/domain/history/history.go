package history

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/calendar"
)

// DayKeyLayout is the date layout volume and readiness entries are bucketed
// under. All buckets are start-of-day.
const DayKeyLayout = "2006-01-02"

// DayKey formats a date as its day bucket key.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// ReadinessEntry is one dated readiness score in [0, 100].
type ReadinessEntry struct {
	// Date is the day the score was recorded for.
	Date time.Time `json:"date"`
	// Score is the readiness score, clamped to [0, 100] on decode.
	Score int `json:"score"`
}

// WorkoutHistory is the full training record the engine consumes.
type WorkoutHistory struct {
	// Sessions is the completed-session log, newest first.
	Sessions []CompletedSession `json:"sessions"`
	// LiftStates maps exercise id to the lift's persisted state.
	LiftStates map[string]LiftState `json:"liftStates"`
	// ReadinessHistory is the recorded daily readiness scores.
	ReadinessHistory []ReadinessEntry `json:"readinessHistory,omitempty"`
	// RecentVolumeByDate maps day keys to total volume (kg x reps) that day.
	RecentVolumeByDate map[string]float64 `json:"recentVolumeByDate,omitempty"`
}

// Normalize puts the history into canonical form: sessions newest first
// (ties broken by id for determinism), volume buckets re-keyed to
// start-of-day, and readiness scores clamped into [0, 100].
func (h *WorkoutHistory) Normalize(cal calendar.Calendar) {
	sort.SliceStable(h.Sessions, func(i, j int) bool {
		di, dj := h.Sessions[i].Date, h.Sessions[j].Date
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return h.Sessions[i].ID < h.Sessions[j].ID
	})

	if len(h.RecentVolumeByDate) > 0 {
		rebucketed := make(map[string]float64, len(h.RecentVolumeByDate))
		for key, vol := range h.RecentVolumeByDate {
			day, err := time.Parse(DayKeyLayout, key)
			if err != nil {
				// Try the full timestamp form some writers produce.
				if ts, tsErr := time.Parse(time.RFC3339, key); tsErr == nil {
					day = cal.StartOfDay(ts)
				} else {
					continue
				}
			}
			rebucketed[DayKey(day)] += vol
		}
		h.RecentVolumeByDate = rebucketed
	}

	for i, entry := range h.ReadinessHistory {
		if entry.Score < 0 {
			h.ReadinessHistory[i].Score = 0
		} else if entry.Score > 100 {
			h.ReadinessHistory[i].Score = 100
		}
	}

	if h.LiftStates == nil {
		h.LiftStates = map[string]LiftState{}
	}
}

// UnmarshalJSON decodes and normalizes the history using the standard
// calendar. Callers with a custom calendar can re-run Normalize afterwards.
func (h *WorkoutHistory) UnmarshalJSON(data []byte) error {
	type alias WorkoutHistory
	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse workout history: %w", err)
	}
	*h = WorkoutHistory(raw)
	h.Normalize(calendar.NewStandard())
	return nil
}

// LatestSession returns the most recent session, if any.
func (h WorkoutHistory) LatestSession() (CompletedSession, bool) {
	if len(h.Sessions) == 0 {
		return CompletedSession{}, false
	}
	return h.Sessions[0], true
}

// OldestSessionDate returns the date of the earliest session, if any.
func (h WorkoutHistory) OldestSessionDate() (time.Time, bool) {
	if len(h.Sessions) == 0 {
		return time.Time{}, false
	}
	return h.Sessions[len(h.Sessions)-1].Date, true
}

// LatestResultFor returns the most recent result and session date for an
// exercise, scanning newest first.
func (h WorkoutHistory) LatestResultFor(exerciseID string) (ExerciseSessionResult, CompletedSession, bool) {
	for _, s := range h.Sessions {
		if r, ok := s.ResultFor(exerciseID); ok {
			return r, s, true
		}
	}
	return ExerciseSessionResult{}, CompletedSession{}, false
}

// LiftStateFor returns the stored state for an exercise, if present.
func (h WorkoutHistory) LiftStateFor(exerciseID string) (LiftState, bool) {
	s, ok := h.LiftStates[exerciseID]
	return s, ok
}

// DeloadWithin reports whether any deload session falls within the trailing
// window of the given day count ending at the date (inclusive).
func (h WorkoutHistory) DeloadWithin(days int, at time.Time, cal calendar.Calendar) bool {
	cutoff := cal.AddDays(cal.StartOfDay(at), -days)
	for _, s := range h.Sessions {
		if !s.WasDeload {
			continue
		}
		day := cal.StartOfDay(s.Date)
		if !day.Before(cutoff) && !day.After(cal.StartOfDay(at)) {
			return true
		}
	}
	return false
}

// TotalVolume sums volume over the trailing window of lastDays days ending at
// the given date, inclusive of the date's own bucket. A 7-day window from day
// 0 covers days 0 through -6; day -7 is excluded.
func (h WorkoutHistory) TotalVolume(lastDays int, from time.Time, cal calendar.Calendar) float64 {
	total := 0.0
	day := cal.StartOfDay(from)
	for i := 0; i < lastDays; i++ {
		total += h.RecentVolumeByDate[DayKey(cal.AddDays(day, -i))]
	}
	return total
}

// VolumeCoverage counts the days in the trailing window with a recorded
// non-zero volume bucket.
func (h WorkoutHistory) VolumeCoverage(lastDays int, from time.Time, cal calendar.Calendar) int {
	covered := 0
	day := cal.StartOfDay(from)
	for i := 0; i < lastDays; i++ {
		if h.RecentVolumeByDate[DayKey(cal.AddDays(day, -i))] > 0 {
			covered++
		}
	}
	return covered
}

// ReadinessOn returns the recorded readiness score for a day, if present.
// When the same day is recorded more than once, the lowest score wins.
func (h WorkoutHistory) ReadinessOn(date time.Time, cal calendar.Calendar) (int, bool) {
	key := DayKey(cal.StartOfDay(date))
	score, found := 0, false
	for _, entry := range h.ReadinessHistory {
		if DayKey(cal.StartOfDay(entry.Date)) != key {
			continue
		}
		if !found || entry.Score < score {
			score = entry.Score
		}
		found = true
	}
	return score, found
}

// ConsecutiveLowReadinessDays counts the consecutive days ending at the date
// whose recorded score is at or below the threshold. Counting stops at the
// first day with no recorded score: missing days break the streak.
func (h WorkoutHistory) ConsecutiveLowReadinessDays(threshold int, at time.Time, cal calendar.Calendar) int {
	count := 0
	day := cal.StartOfDay(at)
	for {
		score, ok := h.ReadinessOn(day, cal)
		if !ok || score > threshold {
			return count
		}
		count++
		day = cal.AddDays(day, -1)
	}
}
