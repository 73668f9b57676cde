// Package database opens the engine's SQLite document store. The store is a
// handful of flat tables holding JSON value trees (plans, sessions, lift
// states, readiness entries) with no relational constraints between them;
// the pragmas and connection settings here are chosen for that shape: a
// single local file with one writer and short transactions.
package database

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// Config holds document-store configuration.
type Config struct {
	// Path is the SQLite file path (":memory:" for an in-memory store).
	Path string
	// MigrationsPath is the goose migrations directory; empty skips them.
	MigrationsPath string
	// Logger receives open/migration logs. Nil discards them.
	Logger *slog.Logger
}

// logger returns the configured logger, discarding when none is set.
func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.Logger
}

// Open opens the document store and brings its schema up to date.
// The tables are free-standing JSON documents, so no foreign-key pragma is
// needed; WAL and a busy timeout keep a reader (the CLI) and a writer (a
// session being recorded) from tripping over each other on the same file.
func Open(cfg Config) (*sql.DB, error) {
	logger := cfg.logger()

	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Debug("document store opened", "path", cfg.Path)

	if cfg.MigrationsPath != "" {
		if err := migrate(db, cfg.MigrationsPath, logger); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

// migrate runs all pending migrations against the store.
func migrate(db *sql.DB, migrationsPath string, logger *slog.Logger) error {
	goose.SetBaseFS(nil)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	before, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if err := goose.Up(db, migrationsPath); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	after, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if after != before {
		logger.Info("document store migrated", "from", before, "to", after)
	} else {
		logger.Debug("document store schema current", "version", after)
	}
	return nil
}

// OpenInMemory opens an in-memory document store with migrations applied.
// Useful for testing.
func OpenInMemory(migrationsPath string) (*sql.DB, error) {
	return Open(Config{Path: ":memory:", MigrationsPath: migrationsPath})
}
