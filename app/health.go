package app

import (
	"context"
	stderrors "errors"

	"prithvipulse/adapters/backend"
	"prithvipulse/domain/core"
	"prithvipulse/internal/errors"
	"prithvipulse/models"
)

// HealthStatus is the answer of a backend liveness probe
type HealthStatus struct {
	Healthy bool   `json:"healthy"`
	BaseURL string `json:"base_url"`
}

// Health probes GET /health within the health timeout. Concurrent probes share
// one request.
func (d *Dispatcher) Health(ctx context.Context) models.Dispatched[HealthStatus] {
	ch := d.health.DoChan(models.OpHealth, func() (interface{}, error) {
		// the probe outlives any single caller that gives up early
		probeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.healthTimeout)
		defer cancel()
		return d.probeHealth(probeCtx), nil
	})

	select {
	case res := <-ch:
		return res.Val.(models.Dispatched[HealthStatus])
	case <-ctx.Done():
		return models.Dispatched[HealthStatus]{
			Value: HealthStatus{Healthy: false, BaseURL: d.client.BaseURL()},
			Outcome: models.Outcome{
				Operation: models.OpHealth,
				Source:    models.SourceFallback,
				Failure:   ClassifyFailure(classifyContextErr(ctx.Err())),
				Detail:    ctx.Err().Error(),
			},
		}
	}
}

func (d *Dispatcher) probeHealth(ctx context.Context) models.Dispatched[HealthStatus] {
	requestID := core.NewRequestID()
	started := d.now()
	outcome := models.Outcome{Operation: models.OpHealth, RequestID: requestID.String()}
	status := HealthStatus{BaseURL: d.client.BaseURL()}

	resp, err := d.client.Get(ctx, requestID, backend.PathHealth)
	if err != nil {
		outcome.Source = models.SourceFallback
		outcome.Failure = ClassifyFailure(err)
		outcome.Detail = err.Error()
		if code := errors.GetStatus(err); code != 0 {
			outcome.StatusCode = code
		}
		return finish(ctx, d, status, outcome, started, err)
	}

	status.Healthy = true
	outcome.Source = models.SourceBackend
	outcome.Failure = models.FailureNone
	outcome.StatusCode = resp.StatusCode
	return finish(ctx, d, status, outcome, started, nil)
}

func classifyContextErr(err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Timeout(err)
	}
	return errors.Transport(err)
}
