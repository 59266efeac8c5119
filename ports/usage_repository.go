package ports

import (
	"context"
	"time"

	"prithvipulse/models"
)

// DispatchUsageRepository defines the interface for dispatch usage data operations
type DispatchUsageRepository interface {
	// Record usage for a dispatcher call
	RecordUsage(ctx context.Context, usage *models.DispatchUsage) error

	// Get usage within a date range, newest first
	ListUsage(ctx context.Context, start, end time.Time) ([]*models.DispatchUsage, error)
}
