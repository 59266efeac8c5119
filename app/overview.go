package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"prithvipulse/models"
)

// Overview is the dashboard landing data
type Overview struct {
	Health  models.Dispatched[HealthStatus]
	Market  models.Dispatched[models.MarketTrendsResponse]
	Healthy bool
}

// Overview fetches backend health and the regional market concurrently
func (d *Dispatcher) Overview(ctx context.Context, region string) (*Overview, error) {
	var out Overview
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		out.Health = d.Health(gctx)
		return nil
	})
	g.Go(func() error {
		out.Market = d.MarketTrends(gctx, models.MarketTrendsRequest{Region: region})
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	out.Healthy = out.Health.Value.Healthy
	return &out, nil
}
