package migration

import (
	"context"

	"prithvipulse/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createDispatchUsageTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create dispatch_usage table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createDispatchUsageTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS dispatch_usage (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			request_id VARCHAR(64) NOT NULL,
			operation VARCHAR(50) NOT NULL,
			source VARCHAR(20) NOT NULL,
			failure_class VARCHAR(20) NOT NULL DEFAULT 'none',
			status_code INTEGER NOT NULL DEFAULT 0,
			latency_ms BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_dispatch_usage_created_at ON dispatch_usage(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_dispatch_usage_operation ON dispatch_usage(operation, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_dispatch_usage_failure_class ON dispatch_usage(failure_class)`,
	}

	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
