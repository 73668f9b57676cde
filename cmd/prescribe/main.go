// Package main provides the prescribe CLI: load the stored plan and history,
// run the engine for a date, and print the prescribed session as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Rahulvijayan123/workout-engine/internal/database"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/calendar"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/exercise"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/user"
	"github.com/Rahulvijayan123/workout-engine/internal/planner"
	"github.com/Rahulvijayan123/workout-engine/internal/repository"
)

func main() {
	if err := run(); err != nil {
		slog.Error("prescribe failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env file may carry WORKOUT_DB and WORKOUT_MIGRATIONS; flags win.
	_ = godotenv.Load()

	dbPath := flag.String("db", envOr("WORKOUT_DB", "workout.db"), "Database file path")
	migrationsPath := flag.String("migrations", envOr("WORKOUT_MIGRATIONS", "migrations"), "Migrations directory path")
	planID := flag.String("plan", "", "Training plan id")
	dateArg := flag.String("date", "", "Session date (YYYY-MM-DD, default today)")
	readiness := flag.Int("readiness", 75, "Readiness score for the date (0-100)")
	profilePath := flag.String("profile", "", "Optional JSON file with the user profile")
	flag.Parse()

	if *planID == "" {
		return fmt.Errorf("-plan is required")
	}

	date := time.Now()
	if *dateArg != "" {
		parsed, err := time.Parse("2006-01-02", *dateArg)
		if err != nil {
			return fmt.Errorf("invalid -date: %w", err)
		}
		date = parsed
	}

	profile, err := loadProfile(*profilePath)
	if err != nil {
		return err
	}

	logger := slog.Default()
	db, err := database.Open(database.Config{Path: *dbPath, MigrationsPath: *migrationsPath, Logger: logger})
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	plans := repository.NewPlanRepository(db, logger)
	histories := repository.NewHistoryRepository(db, logger)

	trainingPlan, err := plans.Get(ctx, *planID)
	if err != nil {
		return err
	}
	hist, err := histories.LoadHistory(ctx)
	if err != nil {
		return err
	}

	session := planner.RecommendSession(date, profile, trainingPlan, hist, *readiness, calendar.NewStandard())
	slog.Info("session prescribed",
		"plan", *planID,
		"template", session.TemplateID,
		"exercises", len(session.Exercises),
		"deload", session.IsDeload,
	)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(session)
}

// envOr returns the environment value or a default.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadProfile reads a user profile JSON file, defaulting to an intermediate
// lifter with full free-weight equipment when no file is given.
func loadProfile(path string) (user.Profile, error) {
	if path == "" {
		return user.Profile{
			Sex:        user.SexOther,
			Experience: user.ExperienceIntermediate,
			Goal:       user.GoalStrength,
			AvailableEquipment: exercise.NewAvailability(
				exercise.EquipmentBarbell,
				exercise.EquipmentDumbbell,
				exercise.EquipmentMachine,
				exercise.EquipmentCable,
			),
		}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return user.Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}
	var profile user.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return user.Profile{}, fmt.Errorf("failed to parse profile: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return user.Profile{}, err
	}
	return profile, nil
}
