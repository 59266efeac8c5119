package app

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"prithvipulse/adapters/backend"
	"prithvipulse/domain/core"
	"prithvipulse/models"
)

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(ctx context.Context, outcome models.Outcome) {
	m.Called(ctx, outcome)
}

type memorySnapshots struct {
	mu    sync.Mutex
	items map[string]models.MarketTrendsResponse
}

func (m *memorySnapshots) Put(region string, s models.MarketTrendsResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = make(map[string]models.MarketTrendsResponse)
	}
	m.items[region] = s
}

func (m *memorySnapshots) Latest(region string) (models.MarketTrendsResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.items[region]
	return s, ok
}

func leaf(name string) models.ImageUpload {
	return models.ImageUpload{Filename: name, Content: []byte("\x89PNG fake image"), Language: "en"}
}

func TestDiagnoseSuccess(t *testing.T) {
	h := newHarness(t, 2*time.Second)

	out := h.dispatcher.Diagnose(context.Background(), leaf("tomato.jpg"))

	assert.Equal(t, models.SourceBackend, out.Outcome.Source)
	assert.Equal(t, models.FailureNone, out.Outcome.Failure)
	assert.Equal(t, http.StatusOK, out.Outcome.StatusCode)
	assert.Equal(t, "Tomato - Early Blight", out.Value.DiseaseName)
	assert.Equal(t, "Tomato", out.Value.LocalName)
	assert.Equal(t, "Mancozeb 75% WP", out.Value.VisualAdvice.MedicineName)
	assert.True(t, out.Value.IsPlant)
	assert.Equal(t, 1, h.mock.Hits(backend.PathScanDisease))
}

func TestDiagnoseNotPlantIsSemantic(t *testing.T) {
	h := newHarness(t, 2*time.Second)

	out := h.dispatcher.Diagnose(context.Background(), leaf("cat.jpg"))

	assert.Equal(t, models.SourceBackend, out.Outcome.Source)
	assert.Equal(t, models.FailureSemantic, out.Outcome.Failure)
	assert.Equal(t, "Not a Plant Leaf", out.Value.DiseaseName)
}

func TestDiagnoseHTTPFailures(t *testing.T) {
	tests := []struct {
		status    int
		wantTitle string
		wantClass models.FailureClass
	}{
		{http.StatusInternalServerError, "Cannot connect to backend server", models.FailureProtocol},
		{http.StatusNotFound, "Backend endpoint not found", models.FailureNotFound},
		{http.StatusBadGateway, "Cannot connect to backend server", models.FailureProtocol},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			h := newHarness(t, 2*time.Second)
			h.mock.Fail(backend.PathScanDisease, tt.status)

			out := h.dispatcher.Diagnose(context.Background(), leaf("leaf.jpg"))

			assert.Equal(t, "Error", out.Value.Source)
			assert.Equal(t, tt.wantTitle, out.Value.DiseaseName)
			assert.False(t, out.Value.IsPlant)
			assert.Equal(t, models.SourceFallback, out.Outcome.Source)
			assert.Equal(t, tt.wantClass, out.Outcome.Failure)
			assert.Equal(t, tt.status, out.Outcome.StatusCode)
			assert.Equal(t, 1, h.mock.Hits(backend.PathScanDisease), "exactly one attempt")
		})
	}
}

func TestDiagnoseTimeout(t *testing.T) {
	h := newHarness(t, 50*time.Millisecond)
	h.mock.Stall(backend.PathScanDisease, time.Second)

	out := h.dispatcher.Diagnose(context.Background(), leaf("leaf.jpg"))

	assert.Equal(t, "Analysis timeout - backend took too long", out.Value.DiseaseName)
	assert.Equal(t, models.FailureTimeout, out.Outcome.Failure)
}

func TestDiagnoseUnreachable(t *testing.T) {
	d := unreachableDispatcher(t)

	out := d.Diagnose(context.Background(), leaf("leaf.jpg"))

	assert.Equal(t, "Cannot connect to backend server", out.Value.DiseaseName)
	assert.Contains(t, out.Value.Treatment[1], d.BaseURL())
	assert.Equal(t, models.FailureTransport, out.Outcome.Failure)
}

func TestDiagnoseMalformedBody(t *testing.T) {
	h := newHarness(t, 2*time.Second)
	h.mock.Respond(backend.PathScanDisease, `<html>gateway</html>`)

	out := h.dispatcher.Diagnose(context.Background(), leaf("leaf.jpg"))

	assert.Equal(t, "Connection Error", out.Value.DiseaseName)
	assert.Equal(t, models.FailureDecode, out.Outcome.Failure)
	assert.Equal(t, http.StatusOK, out.Outcome.StatusCode)
}

func TestMarketTrendsNetworkFailureFallsBack(t *testing.T) {
	d := unreachableDispatcher(t)

	out := d.MarketTrends(context.Background(), models.MarketTrendsRequest{Region: "Punjab"})

	assert.Equal(t, "Punjab", out.Value.Region)
	assert.Equal(t, models.MarketNeutral, out.Value.MarketStatus)
	assert.Equal(t, models.SourceFallback, out.Outcome.Source)
	assert.Equal(t, models.FailureTransport, out.Outcome.Failure)
}

func TestMarketTrendsBackendAnswerIsSnapshotted(t *testing.T) {
	store := &memorySnapshots{}
	h := newHarness(t, 2*time.Second, WithSnapshotStore(store))

	_, err := h.dispatcher.LatestMarketSnapshot("Punjab")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSnapshotNotFound)
	assert.True(t, core.IsNotFoundError(err))

	out := h.dispatcher.MarketTrends(context.Background(), models.MarketTrendsRequest{Region: "Punjab"})
	assert.Equal(t, models.MarketBullish, out.Value.MarketStatus)
	assert.Len(t, out.Value.Crops, 3)

	snapshot, err := h.dispatcher.LatestMarketSnapshot("Punjab")
	require.NoError(t, err)
	assert.Equal(t, out.Value, snapshot)

	h.mock.Fail(backend.PathMarketTrends, http.StatusServiceUnavailable)
	fallback := h.dispatcher.MarketTrends(context.Background(), models.MarketTrendsRequest{Region: "Punjab"})
	assert.True(t, fallback.Outcome.FellBack())

	snapshot, err = h.dispatcher.LatestMarketSnapshot("Punjab")
	require.NoError(t, err)
	assert.Equal(t, models.MarketBullish, snapshot.MarketStatus, "fallbacks never replace a real snapshot")
}

func TestMarketSnapshotKeyedByRequestedRegion(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantRegion string
	}{
		{"backend renames region", `{"region":"Punjab, India","market_status":"Bullish","crops":[]}`, "Punjab, India"},
		{"backend omits region", `{"market_status":"Bearish","crops":[]}`, "Punjab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memorySnapshots{}
			h := newHarness(t, 2*time.Second, WithSnapshotStore(store))
			h.mock.Respond(backend.PathMarketTrends, tt.body)

			out := h.dispatcher.MarketTrends(context.Background(), models.MarketTrendsRequest{Region: "Punjab"})
			require.False(t, out.Outcome.FellBack())

			snapshot, err := h.dispatcher.LatestMarketSnapshot("Punjab")
			require.NoError(t, err)
			assert.Equal(t, tt.wantRegion, snapshot.Region)
		})
	}
}

func TestJSONDispatchersFallBackOnServerError(t *testing.T) {
	h := newHarness(t, 2*time.Second)
	for _, path := range []string{backend.PathSmartPlan, backend.PathExecutionPlan, backend.PathAdviseCrop, backend.PathFarmPlan} {
		h.mock.Fail(path, http.StatusInternalServerError)
	}
	ctx := context.Background()

	smart := h.dispatcher.SmartPlan(ctx, models.SmartPlanRequest{SoilType: "Black"})
	assert.Equal(t, FallbackSmartPlan(models.SmartPlanRequest{}), smart.Value)
	assert.Equal(t, models.FailureProtocol, smart.Outcome.Failure)

	exec := h.dispatcher.ExecutionPlan(ctx, models.ExecutionPlanRequest{CropName: "Paddy"})
	assert.Equal(t, FallbackExecutionPlan(models.ExecutionPlanRequest{}), exec.Value)

	advice := h.dispatcher.CropAdvisory(ctx, models.CropAdvisoryRequest{Soil: "Red", Season: "Rabi"})
	assert.Equal(t, FallbackCropAdvisory(models.CropAdvisoryRequest{}), advice.Value)

	farm := h.dispatcher.FarmPlan(ctx, models.FarmPlanRequest{Budget: 50000, LandSize: 2})
	assert.Equal(t, FallbackFarmPlan(models.FarmPlanRequest{}), farm.Value)
	assert.Equal(t, http.StatusInternalServerError, farm.Outcome.StatusCode)
}

func TestJSONDispatchersDecodeBackendAnswers(t *testing.T) {
	h := newHarness(t, 2*time.Second)
	ctx := context.Background()

	smart := h.dispatcher.SmartPlan(ctx, models.SmartPlanRequest{SoilType: "Black"})
	assert.Equal(t, "Groundnut - K6", smart.Value.Summary.CropName)
	assert.Equal(t, models.SourceBackend, smart.Outcome.Source)

	exec := h.dispatcher.ExecutionPlan(ctx, models.ExecutionPlanRequest{CropName: "Paddy"})
	assert.Equal(t, float64(82), exec.Value.YieldForecast.PotentialPercentage)

	farm := h.dispatcher.FarmPlan(ctx, models.FarmPlanRequest{})
	assert.Equal(t, "Chickpea (Desi)", farm.Value.CropName)
}

func TestCropAdvisoryDefaultsLocation(t *testing.T) {
	h := newHarness(t, 2*time.Second)

	out := h.dispatcher.CropAdvisory(context.Background(), models.CropAdvisoryRequest{Soil: "Sandy", Season: "Kharif"})

	require.Len(t, out.Value.Recommendations, 1)
	assert.Contains(t, out.Value.Recommendations[0].Reason, "around India")
}

func TestJSONDispatchRejectsNonObjectBody(t *testing.T) {
	h := newHarness(t, 2*time.Second)
	h.mock.Respond(backend.PathSmartPlan, `null`)

	out := h.dispatcher.SmartPlan(context.Background(), models.SmartPlanRequest{})

	assert.Equal(t, models.FailureDecode, out.Outcome.Failure)
	assert.Equal(t, "Chilli - Guntur Hot", out.Value.Summary.CropName)
}

func TestEveryDispatchSendsFreshRequestID(t *testing.T) {
	h := newHarness(t, 2*time.Second)
	ctx := context.Background()

	a := h.dispatcher.SmartPlan(ctx, models.SmartPlanRequest{})
	b := h.dispatcher.SmartPlan(ctx, models.SmartPlanRequest{})

	ids := h.mock.RequestIDs()
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
	assert.Equal(t, []string{a.Outcome.RequestID, b.Outcome.RequestID}, ids)
}

func TestDispatchRecordsOutcome(t *testing.T) {
	rec := &mockRecorder{}
	rec.On("Record", mock.Anything, mock.MatchedBy(func(o models.Outcome) bool {
		return o.Operation == models.OpMarketTrends && o.Source == models.SourceFallback && o.Failure == models.FailureNotFound
	})).Once()

	h := newHarness(t, 2*time.Second, WithRecorder(rec))
	h.mock.Fail(backend.PathMarketTrends, http.StatusNotFound)

	h.dispatcher.MarketTrends(context.Background(), models.MarketTrendsRequest{Region: "Kerala"})

	rec.AssertExpectations(t)
}

func TestSupersededDispatchIsNotRecorded(t *testing.T) {
	rec := &mockRecorder{}
	h := newHarness(t, 2*time.Second, WithRecorder(rec))
	h.mock.Stall(backend.PathMarketTrends, 300*time.Millisecond)
	s := NewSurfaces()

	stale := s.Begin(context.Background(), "tab-1/market")
	defer stale.Release()

	done := make(chan models.Dispatched[models.MarketTrendsResponse], 1)
	go func() {
		done <- h.dispatcher.MarketTrends(stale.Context(), models.MarketTrendsRequest{Region: "Punjab"})
	}()

	require.Eventually(t, func() bool { return h.mock.Hits(backend.PathMarketTrends) == 1 }, time.Second, 5*time.Millisecond)
	fresh := s.Begin(context.Background(), "tab-1/market")
	defer fresh.Release()

	out := <-done
	assert.Equal(t, models.FailureSuperseded, out.Outcome.Failure)
	assert.Equal(t, models.SourceFallback, out.Outcome.Source)
	assert.Equal(t, "Punjab", out.Value.Region)
	rec.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestCancelledDispatchIsStillRecorded(t *testing.T) {
	rec := &mockRecorder{}
	rec.On("Record", mock.Anything, mock.MatchedBy(func(o models.Outcome) bool {
		return o.Failure != models.FailureSuperseded && o.Source == models.SourceFallback
	})).Once()
	h := newHarness(t, 2*time.Second, WithRecorder(rec))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := h.dispatcher.SmartPlan(ctx, models.SmartPlanRequest{})

	assert.True(t, out.Outcome.FellBack())
	rec.AssertExpectations(t)
}

func TestHealth(t *testing.T) {
	h := newHarness(t, 2*time.Second)

	out := h.dispatcher.Health(context.Background())
	assert.True(t, out.Value.Healthy)
	assert.Equal(t, models.SourceBackend, out.Outcome.Source)

	h.mock.Fail(backend.PathHealth, http.StatusServiceUnavailable)
	out = h.dispatcher.Health(context.Background())
	assert.False(t, out.Value.Healthy)
	assert.Equal(t, models.FailureProtocol, out.Outcome.Failure)
}

func TestHealthTimeoutIsBounded(t *testing.T) {
	h := newHarness(t, 0, WithHealthTimeout(50*time.Millisecond))
	h.mock.Stall(backend.PathHealth, time.Second)

	start := time.Now()
	out := h.dispatcher.Health(context.Background())

	assert.False(t, out.Value.Healthy)
	assert.Equal(t, models.FailureTimeout, out.Outcome.Failure)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestConcurrentHealthChecksShareOneProbe(t *testing.T) {
	h := newHarness(t, 2*time.Second)
	h.mock.Stall(backend.PathHealth, 100*time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, h.dispatcher.Health(context.Background()).Value.Healthy)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, h.mock.Hits(backend.PathHealth))
}

func TestOverview(t *testing.T) {
	h := newHarness(t, 2*time.Second)

	ov, err := h.dispatcher.Overview(context.Background(), "Punjab")
	require.NoError(t, err)

	assert.True(t, ov.Healthy)
	assert.Equal(t, "Punjab", ov.Market.Value.Region)
	assert.Equal(t, models.SourceBackend, ov.Market.Outcome.Source)
}

func TestClassifyFailureOfNil(t *testing.T) {
	assert.Equal(t, models.FailureNone, ClassifyFailure(nil))
}
