// Package repository provides the SQLite document repositories for the
// engine's persisted state: training plans, workout history, and lift
// states. Documents are stored as JSON value trees and decoded through the
// domain codecs, so legacy encodings are accepted transparently.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	apperrors "github.com/Rahulvijayan123/workout-engine/internal/errors"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/plan"
)

// PlanRepository persists TrainingPlan documents.
type PlanRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(db *sql.DB, logger *slog.Logger) *PlanRepository {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &PlanRepository{db: db, logger: logger}
}

// Save inserts or replaces a plan document.
func (r *PlanRepository) Save(ctx context.Context, p plan.TrainingPlan) error {
	if err := p.Validate(); err != nil {
		return apperrors.Validation(err)
	}
	document, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO plans (id, name, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			document = excluded.document,
			updated_at = excluded.updated_at
	`, p.ID, p.Name, string(document), now, now)
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, "plan saved",
		slog.String("plan_id", p.ID),
		slog.Int("templates", len(p.Templates)))
	return nil
}

// Get retrieves a plan by id.
func (r *PlanRepository) Get(ctx context.Context, id string) (plan.TrainingPlan, error) {
	var document string
	err := r.db.QueryRowContext(ctx, `SELECT document FROM plans WHERE id = ?`, id).Scan(&document)
	if err == sql.ErrNoRows {
		return plan.TrainingPlan{}, apperrors.NotFound("plan", id)
	}
	if err != nil {
		return plan.TrainingPlan{}, fmt.Errorf("failed to get plan: %w", err)
	}

	var p plan.TrainingPlan
	if err := json.Unmarshal([]byte(document), &p); err != nil {
		return plan.TrainingPlan{}, apperrors.Validation(err)
	}
	r.logger.LogAttrs(ctx, slog.LevelDebug, "plan loaded",
		slog.String("plan_id", p.ID),
		slog.Int("templates", len(p.Templates)))
	return p, nil
}

// List returns the ids and names of all stored plans, ordered by id.
func (r *PlanRepository) List(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM plans ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan plan row: %w", err)
		}
		out[id] = name
	}
	return out, rows.Err()
}
