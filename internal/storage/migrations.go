package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// migration is one versioned schema step.
type migration struct {
	version int
	name    string
	up      func(tx *sql.Tx) error
}

// schema lists every migration in version order.
var schema = []migration{
	{version: 1, name: "initial_schema", up: migrateV001},
	{version: 2, name: "outcome_indexes", up: migrateV002},
}

// MigrationRunner brings a SQLite database up to the current schema.
type MigrationRunner struct {
	db          *sql.DB
	journalMode string
}

// NewMigrationRunner returns a runner that uses WAL journaling.
func NewMigrationRunner(db *sql.DB) *MigrationRunner {
	return &MigrationRunner{db: db, journalMode: "WAL"}
}

// WithJournalMode overrides the journal mode. An empty mode keeps the
// current one.
func (r *MigrationRunner) WithJournalMode(mode string) *MigrationRunner {
	if mode != "" {
		r.journalMode = mode
	}
	return r
}

// Run configures the connection and applies every migration newer than the
// recorded schema version, each in its own transaction.
func (r *MigrationRunner) Run(ctx context.Context) error {
	pragmas := []string{
		"journal_mode = " + r.journalMode,
		"foreign_keys = ON",
		"busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := r.db.ExecContext(ctx, "PRAGMA "+p); err != nil {
			return fmt.Errorf("pragma %s: %w", p, err)
		}
	}

	if _, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	current, err := r.Version(ctx)
	if err != nil {
		return err
	}
	for _, m := range schema {
		if m.version <= current {
			continue
		}
		if err := r.apply(ctx, m); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

// Version returns the newest applied schema version, or 0 before the first
// Run.
func (r *MigrationRunner) Version(ctx context.Context) (int, error) {
	var version int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM schema_migrations",
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// Latest is the version a fully migrated database reports.
func Latest() int {
	return schema[len(schema)-1].version
}

func (r *MigrationRunner) apply(ctx context.Context, m migration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := m.up(tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		m.version, m.name,
	); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}
