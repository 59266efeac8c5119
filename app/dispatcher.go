package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"

	"prithvipulse/adapters/backend"
	"prithvipulse/domain/core"
	"prithvipulse/internal"
	"prithvipulse/internal/errors"
	"prithvipulse/models"
	"prithvipulse/ports"
)

const defaultAdvisoryLocation = "India"

// Dispatcher issues one backend call per operation and always hands back a
// canonical value. Failures are classified into the Outcome and replaced by
// the operation's fallback.
type Dispatcher struct {
	client        ports.BackendClient
	logger        *internal.Logger
	recorder      ports.DispatchRecorder
	snapshots     ports.MarketSnapshotStore
	healthTimeout time.Duration
	health        singleflight.Group
	now           func() time.Time
}

// DispatcherOption customises a Dispatcher
type DispatcherOption func(*Dispatcher)

func WithRecorder(r ports.DispatchRecorder) DispatcherOption {
	return func(d *Dispatcher) { d.recorder = r }
}

func WithSnapshotStore(s ports.MarketSnapshotStore) DispatcherOption {
	return func(d *Dispatcher) { d.snapshots = s }
}

func WithDispatchLogger(l *internal.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

// WithHealthTimeout bounds GET /health; the default is 5s
func WithHealthTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) { d.healthTimeout = timeout }
}

func NewDispatcher(client ports.BackendClient, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		client:        client,
		logger:        internal.DefaultLogger,
		healthTimeout: 5 * time.Second,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// BaseURL exposes the backend root used by the client
func (d *Dispatcher) BaseURL() string {
	return d.client.BaseURL()
}

// Diagnose uploads a leaf image and normalizes the analysis
func (d *Dispatcher) Diagnose(ctx context.Context, upload models.ImageUpload) models.Dispatched[models.DiagnosisResult] {
	requestID := core.NewRequestID()
	started := d.now()
	hash := core.NewImageHash(upload.Content)

	d.logger.Info("[Dispatcher] diagnose upload file=%s size=%.2fKB hash=%s request_id=%s",
		upload.Filename, upload.SizeKB(), hash.Prefix(), requestID)

	outcome := models.Outcome{Operation: models.OpDiagnose, RequestID: requestID.String()}

	resp, err := d.client.PostFile(ctx, requestID, backend.PathScanDisease, backend.FieldFile, upload)
	if err == nil {
		outcome.StatusCode = resp.StatusCode
		var result models.DiagnosisResult
		var class models.FailureClass
		result, class, err = NormalizeDiagnosis(resp.Body)
		if err == nil {
			outcome.Source = models.SourceBackend
			outcome.Failure = class
			if class == models.FailureSemantic {
				outcome.Detail = result.DiseaseName
			}
			d.logger.Debug("[Dispatcher] diagnose method=%s source=%s disease=%q confidence=%.3f",
				gjson.GetBytes(resp.Body, "method").String(), result.Source, result.DiseaseName, result.Confidence)
			return finish(ctx, d, result, outcome, started, nil)
		}
	}

	outcome.Source = models.SourceFallback
	outcome.Failure = ClassifyFailure(err)
	if status := errors.GetStatus(err); status != 0 {
		outcome.StatusCode = status
	}
	outcome.Detail = err.Error()
	return finish(ctx, d, ConnectionErrorResult(err, d.client.BaseURL()), outcome, started, err)
}

// SmartPlan requests a crop strategy for the farm form
func (d *Dispatcher) SmartPlan(ctx context.Context, req models.SmartPlanRequest) models.Dispatched[models.SmartPlanResponse] {
	return dispatchJSON(ctx, d, models.OpSmartPlan, backend.PathSmartPlan, req, func() models.SmartPlanResponse {
		return FallbackSmartPlan(req)
	})
}

// ExecutionPlan requests the precision manual for one crop
func (d *Dispatcher) ExecutionPlan(ctx context.Context, req models.ExecutionPlanRequest) models.Dispatched[models.ExecutionPlanResponse] {
	return dispatchJSON(ctx, d, models.OpExecutionPlan, backend.PathExecutionPlan, req, func() models.ExecutionPlanResponse {
		return FallbackExecutionPlan(req)
	})
}

// MarketTrends requests regional mandi prices. Backend answers are remembered
// in the snapshot store, under the requested region, when one is configured.
func (d *Dispatcher) MarketTrends(ctx context.Context, req models.MarketTrendsRequest) models.Dispatched[models.MarketTrendsResponse] {
	out := dispatchJSON(ctx, d, models.OpMarketTrends, backend.PathMarketTrends, req, func() models.MarketTrendsResponse {
		return FallbackMarketTrends(req.Region)
	})
	if d.snapshots != nil && !out.Outcome.FellBack() {
		snapshot := out.Value.Clone()
		if snapshot.Region == "" {
			snapshot.Region = req.Region
		}
		d.snapshots.Put(req.Region, snapshot)
	}
	return out
}

// LatestMarketSnapshot returns the last backend-sourced snapshot for region
func (d *Dispatcher) LatestMarketSnapshot(region string) (models.MarketTrendsResponse, error) {
	if d.snapshots != nil {
		if snapshot, ok := d.snapshots.Latest(region); ok {
			return snapshot, nil
		}
	}
	return models.MarketTrendsResponse{}, &errors.AppError{
		Code:    errors.CodeNotFound,
		Message: "no snapshot for region " + region,
		Cause:   core.ErrSnapshotNotFound,
	}
}

// CropAdvisory asks which crops suit a soil and season
func (d *Dispatcher) CropAdvisory(ctx context.Context, req models.CropAdvisoryRequest) models.Dispatched[models.CropAdvisoryResponse] {
	if strings.TrimSpace(req.Location) == "" {
		req.Location = defaultAdvisoryLocation
	}
	return dispatchJSON(ctx, d, models.OpCropAdvisory, backend.PathAdviseCrop, req, func() models.CropAdvisoryResponse {
		return FallbackCropAdvisory(req)
	})
}

// FarmPlan requests the quick planner result
func (d *Dispatcher) FarmPlan(ctx context.Context, req models.FarmPlanRequest) models.Dispatched[models.FarmPlanResponse] {
	return dispatchJSON(ctx, d, models.OpFarmPlan, backend.PathFarmPlan, req, func() models.FarmPlanResponse {
		return FallbackFarmPlan(req)
	})
}

// dispatchJSON posts payload and decodes the body straight into T. The body
// must be a JSON object; anything else is a decode failure.
func dispatchJSON[T any](ctx context.Context, d *Dispatcher, op, path string, payload any, fallback func() T) models.Dispatched[T] {
	requestID := core.NewRequestID()
	started := d.now()
	outcome := models.Outcome{Operation: op, RequestID: requestID.String()}

	resp, err := d.client.PostJSON(ctx, requestID, path, payload)
	if err == nil {
		outcome.StatusCode = resp.StatusCode
		var value T
		if value, err = decodeObject[T](resp.Body); err == nil {
			outcome.Source = models.SourceBackend
			outcome.Failure = models.FailureNone
			return finish(ctx, d, value, outcome, started, nil)
		}
	}

	outcome.Source = models.SourceFallback
	outcome.Failure = ClassifyFailure(err)
	if status := errors.GetStatus(err); status != 0 {
		outcome.StatusCode = status
	}
	outcome.Detail = err.Error()
	return finish(ctx, d, fallback(), outcome, started, err)
}

func decodeObject[T any](body []byte) (T, error) {
	var value T
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		return value, errors.Decode(fmt.Errorf("body is not a JSON object"))
	}
	if err := json.Unmarshal(body, &value); err != nil {
		return value, errors.Decode(err)
	}
	return value, nil
}

func finish[T any](ctx context.Context, d *Dispatcher, value T, outcome models.Outcome, started time.Time, cause error) models.Dispatched[T] {
	outcome.Latency = d.now().Sub(started)

	if cause != nil && core.IsSuperseded(context.Cause(ctx)) {
		outcome.Failure = models.FailureSuperseded
		d.logger.Debug("[Dispatcher] %s superseded latency=%s request_id=%s",
			outcome.Operation, outcome.Latency, outcome.RequestID)
		return models.Dispatched[T]{Value: value, Outcome: outcome}
	}

	if cause != nil {
		d.logger.Warn("[Dispatcher] %s fell back class=%s status=%d latency=%s request_id=%s: %v",
			outcome.Operation, outcome.Failure, outcome.StatusCode, outcome.Latency, outcome.RequestID, cause)
	} else {
		d.logger.Info("[Dispatcher] %s ok source=%s class=%s latency=%s request_id=%s",
			outcome.Operation, outcome.Source, outcome.Failure, outcome.Latency, outcome.RequestID)
	}

	if d.recorder != nil {
		d.recorder.Record(ctx, outcome)
	}
	return models.Dispatched[T]{Value: value, Outcome: outcome}
}

// ClassifyFailure maps a backend client error onto a FailureClass. Errors the
// client does not classify count as transport failures.
func ClassifyFailure(err error) models.FailureClass {
	if err == nil {
		return models.FailureNone
	}
	switch errors.GetCode(err) {
	case errors.CodeTimeout:
		return models.FailureTimeout
	case errors.CodeProtocolError:
		if errors.GetStatus(err) == http.StatusNotFound {
			return models.FailureNotFound
		}
		return models.FailureProtocol
	case errors.CodeDecodeError:
		return models.FailureDecode
	default:
		return models.FailureTransport
	}
}
