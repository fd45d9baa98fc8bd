// Package store is the Record Store: durable local persistence for the
// five entity tables (memories, canvas, financial model, settings, chat
// sessions) backed by an embedded SQLite database.
//
// Error policy: every operation that fails is logged here and returns a
// safe zero value alongside the error. Callers on the UI path ignore the
// error and use the degraded value; callers that need write confirmation
// (the legacy migration) check it. Storage faults never panic and never
// carry sqlite internals upward unwrapped.
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/koopa0/pocketexpert/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store holds the database handle shared by all tables.
// Safe for concurrent use; sqlite serializes individual operations, but
// there are no cross-table transactions: a session save and a memory
// write are independent, non-atomic operations.
type Store struct {
	db     *sql.DB
	logger log.Logger
}

// Open opens (creating if absent) the database at path and brings the
// schema to the current version.
func Open(path string, logger log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	logger = logger.With("component", "store")

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Single connection: the app is a single-user local service and
	// modernc sqlite handles one writer at a time anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			logger.Debug("pragma failed", "pragma", pragma, "error", err)
		}
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrateSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("record store ready", "path", path)
	return s, nil
}

// migrateSchema applies the embedded schema migrations in order. Only
// versions not yet applied run; golang-migrate tracks them in its own
// table.
func (s *Store) migrateSchema() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading schema migrations: %w", err)
	}

	driver, err := sqlitemigrate.WithInstance(s.db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("preparing schema driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying schema migrations: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable. Used by the readiness probe.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// fail logs a storage fault and returns a wrapped error. Every table
// operation routes its failures through here so faults are visible even
// when the caller degrades.
func (s *Store) fail(op string, err error) error {
	s.logger.Error("storage fault", "op", op, "error", err)
	return fmt.Errorf("%s: %w", op, err)
}
