package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/calendar"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/history"
)

// HistoryRepository persists completed sessions, lift states, and readiness
// entries, and assembles them into the WorkoutHistory the engine consumes.
type HistoryRepository struct {
	db     *sql.DB
	cal    calendar.Calendar
	logger *slog.Logger
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(db *sql.DB, logger *slog.Logger) *HistoryRepository {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &HistoryRepository{db: db, cal: calendar.NewStandard(), logger: logger}
}

// RecordSession stores a completed session, minting an id when absent.
// Returns the stored session (with its id filled in).
func (r *HistoryRepository) RecordSession(ctx context.Context, session history.CompletedSession) (history.CompletedSession, error) {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	document, err := json.Marshal(session)
	if err != nil {
		return history.CompletedSession{}, fmt.Errorf("failed to encode session: %w", err)
	}

	wasDeload := 0
	if session.WasDeload {
		wasDeload = 1
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO workout_sessions (id, session_date, template_id, was_deload, document)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			session_date = excluded.session_date,
			template_id = excluded.template_id,
			was_deload = excluded.was_deload,
			document = excluded.document
	`, session.ID, session.Date.UTC().Format(time.RFC3339), session.TemplateID, wasDeload, string(document))
	if err != nil {
		return history.CompletedSession{}, fmt.Errorf("failed to save session: %w", err)
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, "session recorded",
		slog.String("session_id", session.ID),
		slog.String("template_id", session.TemplateID),
		slog.Bool("was_deload", session.WasDeload),
		slog.Int("exercises", len(session.Exercises)))
	return session, nil
}

// RecordReadiness stores a readiness score for a day, replacing any prior
// entry for that day.
func (r *HistoryRepository) RecordReadiness(ctx context.Context, date time.Time, score int) error {
	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}
	key := history.DayKey(r.cal.StartOfDay(date))
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO readiness_entries (entry_date, score)
		VALUES (?, ?)
		ON CONFLICT (entry_date) DO UPDATE SET score = excluded.score
	`, key, score)
	if err != nil {
		return fmt.Errorf("failed to save readiness entry: %w", err)
	}
	return nil
}

// SaveLiftStates stores updated lift states, replacing prior versions.
func (r *HistoryRepository) SaveLiftStates(ctx context.Context, states []history.LiftState) error {
	now := time.Now().UTC().Format(time.RFC3339)
	for _, state := range states {
		document, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("failed to encode lift state: %w", err)
		}
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO lift_states (exercise_id, document, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT (exercise_id) DO UPDATE SET
				document = excluded.document,
				updated_at = excluded.updated_at
		`, state.ExerciseID, string(document), now)
		if err != nil {
			return fmt.Errorf("failed to save lift state for %s: %w", state.ExerciseID, err)
		}
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, "lift states saved",
		slog.Int("count", len(states)))
	return nil
}

// LoadHistory assembles the full WorkoutHistory: sessions newest first,
// lift states by exercise id, readiness entries, and per-day training
// volume (kilogram-reps) rebuilt from the session documents.
func (r *HistoryRepository) LoadHistory(ctx context.Context) (history.WorkoutHistory, error) {
	hist := history.WorkoutHistory{
		LiftStates:         map[string]history.LiftState{},
		RecentVolumeByDate: map[string]float64{},
	}

	rows, err := r.db.QueryContext(ctx, `SELECT document FROM workout_sessions ORDER BY session_date DESC, id`)
	if err != nil {
		return history.WorkoutHistory{}, fmt.Errorf("failed to load sessions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return history.WorkoutHistory{}, fmt.Errorf("failed to scan session row: %w", err)
		}
		var session history.CompletedSession
		if err := json.Unmarshal([]byte(document), &session); err != nil {
			return history.WorkoutHistory{}, fmt.Errorf("failed to decode session: %w", err)
		}
		hist.Sessions = append(hist.Sessions, session)

		day := history.DayKey(r.cal.StartOfDay(session.Date))
		for _, result := range session.Exercises {
			for _, set := range result.WorkingSets() {
				hist.RecentVolumeByDate[day] += set.Load.Kilograms() * float64(set.Reps)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return history.WorkoutHistory{}, err
	}

	stateRows, err := r.db.QueryContext(ctx, `SELECT document FROM lift_states ORDER BY exercise_id`)
	if err != nil {
		return history.WorkoutHistory{}, fmt.Errorf("failed to load lift states: %w", err)
	}
	defer stateRows.Close()

	for stateRows.Next() {
		var document string
		if err := stateRows.Scan(&document); err != nil {
			return history.WorkoutHistory{}, fmt.Errorf("failed to scan lift state row: %w", err)
		}
		var state history.LiftState
		if err := json.Unmarshal([]byte(document), &state); err != nil {
			return history.WorkoutHistory{}, fmt.Errorf("failed to decode lift state: %w", err)
		}
		hist.LiftStates[state.ExerciseID] = state
	}
	if err := stateRows.Err(); err != nil {
		return history.WorkoutHistory{}, err
	}

	readinessRows, err := r.db.QueryContext(ctx, `SELECT entry_date, score FROM readiness_entries ORDER BY entry_date`)
	if err != nil {
		return history.WorkoutHistory{}, fmt.Errorf("failed to load readiness entries: %w", err)
	}
	defer readinessRows.Close()

	for readinessRows.Next() {
		var key string
		var score int
		if err := readinessRows.Scan(&key, &score); err != nil {
			return history.WorkoutHistory{}, fmt.Errorf("failed to scan readiness row: %w", err)
		}
		date, err := time.Parse(history.DayKeyLayout, key)
		if err != nil {
			continue
		}
		hist.ReadinessHistory = append(hist.ReadinessHistory, history.ReadinessEntry{Date: date, Score: score})
	}
	if err := readinessRows.Err(); err != nil {
		return history.WorkoutHistory{}, err
	}

	hist.Normalize(r.cal)
	r.logger.LogAttrs(ctx, slog.LevelDebug, "history loaded",
		slog.Int("sessions", len(hist.Sessions)),
		slog.Int("lift_states", len(hist.LiftStates)),
		slog.Int("readiness_entries", len(hist.ReadinessHistory)))
	return hist, nil
}
