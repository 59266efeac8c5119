package postgres

import (
	"context"
	"time"

	"prithvipulse/internal/errors"
	"prithvipulse/models"
	"prithvipulse/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// DispatchUsageRepositoryImpl implements DispatchUsageRepository for PostgreSQL
type DispatchUsageRepositoryImpl struct {
	db *sqlx.DB
}

// NewDispatchUsageRepository creates a new PostgreSQL dispatch usage repository
func NewDispatchUsageRepository(db *sqlx.DB) ports.DispatchUsageRepository {
	return &DispatchUsageRepositoryImpl{db: db}
}

// RecordUsage records one dispatcher call
func (r *DispatchUsageRepositoryImpl) RecordUsage(ctx context.Context, usage *models.DispatchUsage) error {
	row := *usage
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO dispatch_usage (
			id, request_id, operation, source, failure_class,
			status_code, latency_ms, created_at
		) VALUES (
			:id, :request_id, :operation, :source, :failure_class,
			:status_code, :latency_ms, :created_at
		)
	`, &row)
	if err != nil {
		return errors.Wrap(errors.DatabaseError(err.Error()), "insert dispatch usage")
	}
	return nil
}

// ListUsage retrieves usage records within a date range
func (r *DispatchUsageRepositoryImpl) ListUsage(ctx context.Context, start, end time.Time) ([]*models.DispatchUsage, error) {
	var usages []*models.DispatchUsage
	err := r.db.SelectContext(ctx, &usages, `
		SELECT id, request_id, operation, source, failure_class,
		       status_code, latency_ms, created_at
		FROM dispatch_usage
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at DESC
	`, start, end)
	if err != nil {
		return nil, errors.Wrap(errors.DatabaseError(err.Error()), "list dispatch usage")
	}
	return usages, nil
}
