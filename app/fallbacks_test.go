package app

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prithvipulse/internal/errors"
	"prithvipulse/models"
)

func TestFallbackSmartPlanIgnoresRequest(t *testing.T) {
	requests := []models.SmartPlanRequest{
		{},
		{SoilType: "Black", LandSize: "2", Budget: "50000", WaterSource: "Canal", Season: "Kharif"},
		{SoilType: "Red", LandSize: "0.5", Budget: "abc", WaterSource: "Rain", Season: "Rabi", SowingMonth: "Nov"},
	}

	base := FallbackSmartPlan(requests[0])
	assert.Equal(t, "Chilli - Guntur Hot", base.Summary.CropName)
	assert.Equal(t, "₹85,000", base.Summary.NetProfit)
	assert.Equal(t, "91%", base.Summary.SuitabilityScore)
	assert.Len(t, base.FinancialBreakdown, 5)
	assert.Len(t, base.TimelineWeeks, 4)
	require.NoError(t, base.Validate())

	for _, req := range requests[1:] {
		if diff := cmp.Diff(base, FallbackSmartPlan(req)); diff != "" {
			t.Errorf("fallback depends on request %+v:\n%s", req, diff)
		}
	}
}

func TestFallbacksAreCopies(t *testing.T) {
	plan := FallbackSmartPlan(models.SmartPlanRequest{})
	plan.Summary.CropName = "mutated"
	plan.FinancialBreakdown[0].Cost = "mutated"
	assert.Equal(t, "Chilli - Guntur Hot", FallbackSmartPlan(models.SmartPlanRequest{}).Summary.CropName)
	assert.Equal(t, "₹2,500", FallbackSmartPlan(models.SmartPlanRequest{}).FinancialBreakdown[0].Cost)

	farm := FallbackFarmPlan(models.FarmPlanRequest{})
	farm.ShoppingList[0] = "mutated"
	assert.Equal(t, "Seeds (certified hybrid or local desi)", FallbackFarmPlan(models.FarmPlanRequest{}).ShoppingList[0])

	market := FallbackMarketTrends("Punjab")
	market.Crops[0].Price = 1
	assert.Equal(t, float64(1800), FallbackMarketTrends("Punjab").Crops[0].Price)
}

func TestFallbackMarketTrendsEchoesRegion(t *testing.T) {
	for _, region := range []string{"Punjab", "Vidarbha", ""} {
		m := FallbackMarketTrends(region)
		assert.Equal(t, region, m.Region)
		assert.Equal(t, models.MarketNeutral, m.MarketStatus)
		assert.Equal(t, "Market data unavailable. Showing cached information.", m.AnalystNote)
		assert.Equal(t, "Cached data", m.LastUpdated)
		require.NoError(t, m.CheckTrendConsistency())
	}
}

func TestFallbackExecutionPlan(t *testing.T) {
	p := FallbackExecutionPlan(models.ExecutionPlanRequest{CropName: "Paddy"})
	assert.Equal(t, float64(94), p.YieldForecast.PotentialPercentage)
	assert.Equal(t, "4200 kg", p.YieldForecast.EstimatedOutput)
	assert.Len(t, p.InputRequirements, 5)
	assert.Len(t, p.CriticalTimeline, 5)
	require.NoError(t, p.Validate())
}

func TestFallbackCropAdvisory(t *testing.T) {
	a := FallbackCropAdvisory(models.CropAdvisoryRequest{Soil: "Loamy", Season: "Kharif"})
	require.Len(t, a.Recommendations, 2)
	assert.Equal(t, "Tomato (Solanum lycopersicum)", a.Recommendations[0].Name)
	assert.Equal(t, 85, a.Recommendations[0].Suitability)
	assert.Equal(t, "Stable", a.Recommendations[1].MarketTrend)
}

func TestConnectionErrorResult(t *testing.T) {
	const baseURL = "http://localhost:8000"

	tests := []struct {
		name      string
		err       error
		wantTitle string
		wantSteps int
	}{
		{"transport", errors.Transport(fmt.Errorf("connection refused")), "Cannot connect to backend server", 4},
		{"server error", errors.Protocol(http.StatusInternalServerError), "Cannot connect to backend server", 4},
		{"not found", errors.Protocol(http.StatusNotFound), "Backend endpoint not found", 2},
		{"timeout", errors.Timeout(fmt.Errorf("deadline")), "Analysis timeout - backend took too long", 3},
		{"decode", errors.Decode(fmt.Errorf("unexpected token")), "Connection Error", 3},
		{"unclassified", fmt.Errorf("boom"), "Connection Error", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ConnectionErrorResult(tt.err, baseURL)
			assert.Equal(t, tt.wantTitle, r.DiseaseName)
			assert.Len(t, r.Treatment, tt.wantSteps)
			assert.Equal(t, "Error", r.Source)
			assert.Equal(t, "Backend Error", r.LocalName)
			assert.Equal(t, "Connection Failed", r.AdviceTitle)
			assert.False(t, r.IsPlant)
			assert.False(t, r.Healthy)
			assert.Zero(t, r.Confidence)
			require.NoError(t, r.Validate())
		})
	}

	r := ConnectionErrorResult(errors.Transport(fmt.Errorf("refused")), baseURL)
	assert.Contains(t, r.Treatment[1], baseURL)

	r = ConnectionErrorResult(fmt.Errorf("boom"), baseURL)
	assert.Equal(t, "Error: boom", r.Treatment[0])
	assert.Contains(t, r.Treatment[2], baseURL)
}
