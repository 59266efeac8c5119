package app

import (
	"fmt"
	"net/http"

	"prithvipulse/internal/errors"
	"prithvipulse/models"
)

// Static payloads served when the backend cannot answer. They are built once
// and handed out as copies; request parameters never change their content
// except the echoed market region.
var (
	smartPlanFallback = models.SmartPlanResponse{
		Summary: models.PlanSummary{
			CropName:         "Chilli - Guntur Hot",
			SuitabilityScore: "91%",
			ExpectedRevenue:  "₹1.3 Lakhs",
			NetProfit:        "₹85,000",
			ROI:              "2.3x",
			Duration:         "130 Days",
		},
		FinancialBreakdown: []models.CostLine{
			{Category: "Seeds", Cost: "₹2,500", Percent: 5},
			{Category: "Fertilizers", Cost: "₹12,000", Percent: 25},
			{Category: "Labor", Cost: "₹20,000", Percent: 40},
			{Category: "Pesticides", Cost: "₹8,000", Percent: 15},
			{Category: "Other", Cost: "₹7,500", Percent: 15},
		},
		RiskAnalysis: models.RiskAnalysis{
			PrimaryRisk: "Thrips infestation during dry spells",
			Mitigation:  "Use blue sticky traps and Spinosad early in flowering.",
		},
		TimelineWeeks: []models.TimelinePhase{
			{Phase: "Week 1-2: Soil Prep", Action: "Deep Ploughing", Details: "Plow 30cm deep. Apply 5 tons FYM/acre.", Icon: "plow"},
			{Phase: "Week 3-4: Nursery", Action: "Seedling Raise", Details: "Sow in trays; maintain moisture and shade.", Icon: "leaf"},
			{Phase: "Week 6: Critical Care", Action: "Micronutrient Spray", Details: "Spray micronutrients (5g/L) to boost flowering.", Icon: "spray"},
			{Phase: "Week 12+: Harvest", Action: "Selective Harvest", Details: "Harvest for better Mandi pricing and quality.", Icon: "sun"},
		},
	}

	executionPlanFallback = models.ExecutionPlanResponse{
		YieldForecast: models.YieldForecast{
			PotentialPercentage: 94,
			EstimatedOutput:     "4200 kg",
			LimitingFactor:      "Water availability during flowering may reduce yield by 6%.",
		},
		InputRequirements: []models.InputRequirement{
			{Item: "Seeds", Quantity: "25 kg", Note: "Use certified seeds for better germination"},
			{Item: "Urea", Quantity: "120 kg", Note: "Apply in 3 split doses (basal, tillering, flowering)"},
			{Item: "DAP", Quantity: "65 kg", Note: "Full dose as basal application"},
			{Item: "Muriate of Potash (MOP)", Quantity: "40 kg", Note: "50% basal, 50% at flowering"},
			{Item: "Zinc Sulfate", Quantity: "10 kg", Note: "Mix with soil before sowing"},
		},
		CriticalTimeline: []models.TimelineDay{
			{Day: "Day 0 (Sowing)", Action: "Land Preparation", Detail: "Deep plow to 30cm. Apply FYM (5 tons/acre) and full DAP dose.", Icon: "plow"},
			{Day: "Day 21 (3 Weeks)", Action: "First Top Dressing", Detail: "Apply 40kg Urea per acre. Ensure soil moisture before application.", Icon: "fertilizer"},
			{Day: "Day 45 (6-7 Weeks)", Action: "Critical Irrigation", Detail: "Crown root initiation stage. Maintain 5cm water depth for 7 days.", Icon: "irrigation"},
			{Day: "Day 60 (Flowering)", Action: "Second Top Dressing + Pest Watch", Detail: "Apply remaining 40kg Urea and 20kg MOP. Monitor for stem borers.", Icon: "spray"},
			{Day: "Day 90-110", Action: "Harvest", Detail: "Harvest when 80% grains turn golden. Dry to 14% moisture before storage.", Icon: "harvest"},
		},
	}

	marketTrendsFallback = models.MarketTrendsResponse{
		MarketStatus: models.MarketNeutral,
		AnalystNote:  "Market data unavailable. Showing cached information.",
		LastUpdated:  "Cached data",
		Crops: []models.MarketCrop{
			{ID: "1", Name: "Tomato (Hybrid F1)", Price: 1800, Unit: "₹/Quintal", Change: "+5.2", Trend: models.TrendUp, Forecast: "Rising", MarketNote: "Supply tight"},
			{ID: "2", Name: "Onion (Red)", Price: 2200, Unit: "₹/Quintal", Change: "-2.0", Trend: models.TrendDown, Forecast: "Stable", MarketNote: "Good stock"},
		},
	}

	cropAdvisoryFallback = models.CropAdvisoryResponse{
		Recommendations: []models.CropRecommendation{
			{
				Name:             "Tomato (Solanum lycopersicum)",
				Suitability:      85,
				Yield:            "25-30 quintals/acre",
				Duration:         "90-120 days",
				Reason:           "Tomatoes are versatile crops with high market demand. They adapt well to various soil conditions and offer good returns for small to medium farmers.",
				MarketTrend:      "Up",
				WaterRequirement: "Medium",
				Investment:       "₹40,000-50,000/acre",
			},
			{
				Name:             "Okra/Bhindi (Abelmoschus esculentus)",
				Suitability:      78,
				Yield:            "80-100 quintals/acre",
				Duration:         "60-70 days",
				Reason:           "Quick-growing crop with consistent market demand. Suitable for successive plantings and provides regular income throughout the season.",
				MarketTrend:      "Stable",
				WaterRequirement: "Low",
				Investment:       "₹25,000-35,000/acre",
			},
		},
		SeasonalTips: "Ensure proper irrigation and use recommended fertilizers for optimal yield.",
		Warnings:     "Monitor for common pests and diseases. Weather fluctuations may affect harvest timing.",
	}

	farmPlanFallback = models.FarmPlanResponse{
		CropName:       "Tomato (Desi Hybrid)",
		ExpectedProfit: "₹70,000 - ₹95,000 per acre",
		Duration:       "90 - 110 days",
		ShoppingList: []string{
			"Seeds (certified hybrid or local desi)",
			"FYM/Compost (well decomposed)",
			"Drip lines or sprinkler set",
			"Neem oil + bio pesticides",
			"Basal fertilizer mix (NPK 10:26:26)",
		},
		Timeline: []models.TreatmentStep{
			{Action: "Plowing", Description: "Deep plough and add FYM to improve soil structure and moisture holding.", Icon: models.IconPackage},
			{Action: "Sowing", Description: "Raise seedlings and transplant with proper spacing for airflow and yield.", Icon: models.IconLeaf},
			{Action: "Irrigation", Description: "Use drip irrigation to reduce water loss and prevent fungal spread.", Icon: models.IconWater},
			{Action: "Spray", Description: "Apply neem oil or recommended spray during early pest pressure.", Icon: models.IconSpray},
			{Action: "Harvest", Description: "Pick fruits at breaker stage for better Mandi price and shelf life.", Icon: models.IconSun},
		},
	}
)

// FallbackSmartPlan returns the static crop strategy
func FallbackSmartPlan(models.SmartPlanRequest) models.SmartPlanResponse {
	return smartPlanFallback.Clone()
}

// FallbackExecutionPlan returns the static execution manual
func FallbackExecutionPlan(models.ExecutionPlanRequest) models.ExecutionPlanResponse {
	return executionPlanFallback.Clone()
}

// FallbackMarketTrends returns the cached-looking snapshot for region
func FallbackMarketTrends(region string) models.MarketTrendsResponse {
	out := marketTrendsFallback.Clone()
	out.Region = region
	return out
}

// FallbackCropAdvisory returns the two evergreen recommendations
func FallbackCropAdvisory(models.CropAdvisoryRequest) models.CropAdvisoryResponse {
	return cropAdvisoryFallback.Clone()
}

func FallbackFarmPlan(models.FarmPlanRequest) models.FarmPlanResponse {
	return farmPlanFallback.Clone()
}

// ConnectionErrorResult turns a failed /scan_disease call into a result whose
// treatment lines tell the farmer what to check.
func ConnectionErrorResult(err error, baseURL string) models.DiagnosisResult {
	var title string
	var steps []string

	switch code := errors.GetCode(err); {
	case code == errors.CodeProtocolError && errors.GetStatus(err) == http.StatusNotFound:
		title = "Backend endpoint not found"
		steps = []string{
			"✓ Check the /predict endpoint exists in backend/main.py",
			"✓ Restart the backend server",
		}
	case code == errors.CodeTransportError || code == errors.CodeProtocolError:
		title = "Cannot connect to backend server"
		steps = []string{
			"✓ Ensure backend is running: python main.py (in Backend folder)",
			fmt.Sprintf("✓ Check backend is on %s", baseURL),
			"✓ Verify no firewall blocking port 8000",
			"✓ Try restarting both frontend and backend",
		}
	case code == errors.CodeTimeout:
		title = "Analysis timeout - backend took too long"
		steps = []string{
			"✓ The server may be processing another request",
			"✓ Try again in a moment",
			"✓ Check backend server status",
		}
	default:
		msg := "Unknown error occurred"
		if err != nil && err.Error() != "" {
			msg = err.Error()
		}
		title = "Connection Error"
		steps = []string{
			fmt.Sprintf("Error: %s", msg),
			"Check browser console (F12) for more details",
			fmt.Sprintf("Ensure backend server is running at %s", baseURL),
		}
	}

	return models.DiagnosisResult{
		Healthy:              false,
		DiseaseName:          title,
		Confidence:           0,
		Treatment:            steps,
		PreventativeMeasures: []string{},
		LocalName:            "Backend Error",
		AdviceTitle:          "Connection Failed",
		Source:               "Error",
		IsPlant:              false,
	}
}
