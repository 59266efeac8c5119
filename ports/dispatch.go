package ports

import (
	"context"

	"prithvipulse/models"
)

// DispatchRecorder receives the outcome of every dispatcher call. Implementations
// must not block the caller.
type DispatchRecorder interface {
	Record(ctx context.Context, outcome models.Outcome)
}

// MarketSnapshotStore keeps the last backend-sourced market snapshot per
// requested region. The snapshot's own Region may differ from the key.
type MarketSnapshotStore interface {
	Put(region string, snapshot models.MarketTrendsResponse)
	Latest(region string) (models.MarketTrendsResponse, bool)
}
