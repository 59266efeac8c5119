package usage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"prithvipulse/models"
	"prithvipulse/ports"
)

// MemoryRepository keeps the most recent dispatch usage rows in a ring buffer.
// It backs the ledger when no database is configured.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows []*models.DispatchUsage
	next int
	full bool
}

// NewMemoryRepository creates a ring holding up to capacity rows
func NewMemoryRepository(capacity int) *MemoryRepository {
	if capacity <= 0 {
		capacity = 1024
	}
	return &MemoryRepository{rows: make([]*models.DispatchUsage, capacity)}
}

var _ ports.DispatchUsageRepository = (*MemoryRepository)(nil)

// RecordUsage stores a copy of usage, evicting the oldest row when full
func (r *MemoryRepository) RecordUsage(ctx context.Context, usage *models.DispatchUsage) error {
	row := *usage
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[r.next] = &row
	r.next = (r.next + 1) % len(r.rows)
	if r.next == 0 {
		r.full = true
	}
	return nil
}

// ListUsage returns rows created within [start, end], newest first
func (r *MemoryRepository) ListUsage(ctx context.Context, start, end time.Time) ([]*models.DispatchUsage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := r.next
	if r.full {
		count = len(r.rows)
	}

	out := make([]*models.DispatchUsage, 0, count)
	for i := 1; i <= count; i++ {
		idx := (r.next - i + len(r.rows)) % len(r.rows)
		row := r.rows[idx]
		if row.CreatedAt.Before(start) || row.CreatedAt.After(end) {
			continue
		}
		copied := *row
		out = append(out, &copied)
	}
	return out, nil
}
