package testkit

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"prithvipulse/adapters/backend"
	"prithvipulse/internal"
	"prithvipulse/models"
)

// routeBehaviour overrides the canned answer of one backend route
type routeBehaviour struct {
	status int
	body   string
	delay  time.Duration
}

// MockBackend imitates the AI backend routes with canned answers. Routes can be
// made to fail, stall, or answer with a custom body.
type MockBackend struct {
	router *chi.Mux
	logger *internal.Logger

	mu         sync.Mutex
	behaviours map[string]routeBehaviour
	hits       map[string]int
	requestIDs []string
	crops      []models.MarketCrop
}

// NewMockBackend builds the router. verbose enables chi's request logger.
func NewMockBackend(verbose bool) *MockBackend {
	m := &MockBackend{
		router:     chi.NewRouter(),
		logger:     internal.DefaultLogger,
		behaviours: make(map[string]routeBehaviour),
		hits:       make(map[string]int),
		crops:      defaultCrops(),
	}

	if verbose {
		m.router.Use(middleware.Logger)
	}
	m.router.Use(middleware.Recoverer)
	m.router.Use(m.recordRequest)
	m.router.Use(m.applyBehaviour)

	m.router.Get(backend.PathHealth, m.handleHealth)
	m.router.Post(backend.PathScanDisease, m.handleScanDisease)
	m.router.Post(backend.PathSmartPlan, m.handleSmartPlan)
	m.router.Post(backend.PathExecutionPlan, m.handleExecutionPlan)
	m.router.Post(backend.PathMarketTrends, m.handleMarketTrends)
	m.router.Post(backend.PathAdviseCrop, m.handleAdviseCrop)
	m.router.Post(backend.PathFarmPlan, m.handleFarmPlan)

	return m
}

// Handler exposes the router
func (m *MockBackend) Handler() http.Handler {
	return m.router
}

// Fail makes path answer with status and an empty JSON object
func (m *MockBackend) Fail(path string, status int) {
	m.setBehaviour(path, routeBehaviour{status: status, body: `{"detail":"mock failure"}`})
}

// Respond makes path answer 200 with body verbatim
func (m *MockBackend) Respond(path, body string) {
	m.setBehaviour(path, routeBehaviour{status: http.StatusOK, body: body})
}

// Stall delays path by d before its normal answer
func (m *MockBackend) Stall(path string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.behaviours[path]
	b.delay = d
	m.behaviours[path] = b
}

// Reset restores every route to its canned answer
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.behaviours = make(map[string]routeBehaviour)
}

// Hits returns how many requests path received
func (m *MockBackend) Hits(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits[path]
}

// RequestIDs returns every X-Request-ID seen, in arrival order
func (m *MockBackend) RequestIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.requestIDs...)
}

// SetMarketCrops replaces the prices served by /get-market-trends
func (m *MockBackend) SetMarketCrops(crops []models.MarketCrop) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.crops = append([]models.MarketCrop(nil), crops...)
}

func (m *MockBackend) setBehaviour(path string, b routeBehaviour) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.delay = m.behaviours[path].delay
	m.behaviours[path] = b
}

func (m *MockBackend) recordRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.hits[r.URL.Path]++
		if id := r.Header.Get(backend.HeaderRequestID); id != "" {
			m.requestIDs = append(m.requestIDs, id)
		}
		m.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (m *MockBackend) applyBehaviour(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		b, ok := m.behaviours[r.URL.Path]
		m.mu.Unlock()

		if b.delay > 0 {
			select {
			case <-time.After(b.delay):
			case <-r.Context().Done():
				return
			}
		}
		if !ok || b.status == 0 {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(b.status)
		io.WriteString(w, b.body)
	})
}

func (m *MockBackend) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		m.logger.Error("[MockBackend] encode response: %v", err)
	}
}

func (m *MockBackend) handleHealth(w http.ResponseWriter, r *http.Request) {
	m.writeJSON(w, map[string]string{"status": "healthy"})
}

// handleScanDisease answers in the snake_case analysis vocabulary
func (m *MockBackend) handleScanDisease(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile(backend.FieldFile)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		m.writeJSON(w, map[string]string{"detail": "file is required"})
		return
	}
	file.Close()

	if strings.Contains(strings.ToLower(header.Filename), "cat") {
		m.writeJSON(w, map[string]interface{}{"is_plant": false, "source": "Gemini 3 Vision"})
		return
	}

	m.writeJSON(w, map[string]interface{}{
		"is_plant":                   true,
		"diagnosis_name":             "Tomato - Early Blight",
		"confidence":                 0.91,
		"is_healthy":                 false,
		"physical_actions_checklist": []string{"Remove infected lower leaves", "Spray copper fungicide every 7 days", "Avoid overhead watering"},
		"preventative_measures":      "Rotate crops every season",
		"chemical_prescription": map[string]interface{}{
			"specific_active_ingredients": []string{"Mancozeb 75% WP"},
		},
		"professional_summary": "Concentric brown rings on older leaves",
		"source":               "Gemini 3 Vision",
		"method":               "gemini",
	})
}

func (m *MockBackend) handleSmartPlan(w http.ResponseWriter, r *http.Request) {
	m.writeJSON(w, models.SmartPlanResponse{
		Summary: models.PlanSummary{
			CropName: "Groundnut - K6", SuitabilityScore: "88%", ExpectedRevenue: "₹1.1 Lakhs",
			NetProfit: "₹62,000", ROI: "2.1x", Duration: "110 Days",
		},
		FinancialBreakdown: []models.CostLine{
			{Category: "Seeds", Cost: "₹9,000", Percent: 20},
			{Category: "Labor", Cost: "₹18,000", Percent: 40},
			{Category: "Other", Cost: "₹18,000", Percent: 40},
		},
		RiskAnalysis: models.RiskAnalysis{PrimaryRisk: "Leaf spot in humid weeks", Mitigation: "Spray Carbendazim at first symptoms."},
		TimelineWeeks: []models.TimelinePhase{
			{Phase: "Week 1", Action: "Sowing", Details: "Treat seed with Trichoderma.", Icon: "leaf"},
		},
	})
}

func (m *MockBackend) handleExecutionPlan(w http.ResponseWriter, r *http.Request) {
	m.writeJSON(w, models.ExecutionPlanResponse{
		YieldForecast: models.YieldForecast{PotentialPercentage: 82, EstimatedOutput: "3100 kg", LimitingFactor: "Late sowing"},
		InputRequirements: []models.InputRequirement{
			{Item: "Seeds", Quantity: "40 kg", Note: "Certified"},
		},
		CriticalTimeline: []models.TimelineDay{
			{Day: "Day 0", Action: "Sowing", Detail: "Line sowing at 30cm.", Icon: "plow"},
		},
	})
}

func (m *MockBackend) handleMarketTrends(w http.ResponseWriter, r *http.Request) {
	var req models.MarketTrendsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		m.writeJSON(w, map[string]string{"detail": "invalid body"})
		return
	}
	m.mu.Lock()
	crops := append([]models.MarketCrop(nil), m.crops...)
	m.mu.Unlock()

	m.writeJSON(w, models.MarketTrendsResponse{
		Region:       req.Region,
		MarketStatus: models.MarketBullish,
		AnalystNote:  "Arrivals thin after rains.",
		LastUpdated:  "Today",
		Crops:        crops,
	})
}

func defaultCrops() []models.MarketCrop {
	return []models.MarketCrop{
		{ID: "1", Name: "Wheat (Sharbati)", Price: 2450, Unit: "₹/Quintal", Change: "+3.1", Trend: models.TrendUp, Forecast: "Rising", MarketNote: "Mill demand"},
		{ID: "2", Name: "Potato", Price: 1200, Unit: "₹/Quintal", Change: "-1.4", Trend: models.TrendDown, Forecast: "Soft", MarketNote: "Cold storage release"},
		{ID: "3", Name: "Mustard", Price: 5600, Unit: "₹/Quintal", Change: "0", Trend: models.TrendStable, Forecast: "Flat", MarketNote: "Balanced"},
	}
}

func (m *MockBackend) handleAdviseCrop(w http.ResponseWriter, r *http.Request) {
	var req models.CropAdvisoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	m.writeJSON(w, models.CropAdvisoryResponse{
		Recommendations: []models.CropRecommendation{
			{Name: "Pearl Millet (Bajra)", Suitability: 90, Yield: "12-15 quintals/acre", Duration: "75-90 days",
				Reason:      "Tolerates " + req.Soil + " soil in " + req.Season + " around " + req.Location + ".",
				MarketTrend: "Up", WaterRequirement: "Low", Investment: "₹12,000-15,000/acre"},
		},
		SeasonalTips: "Sow after the first good shower.",
		Warnings:     "Watch for downy mildew.",
	})
}

func (m *MockBackend) handleFarmPlan(w http.ResponseWriter, r *http.Request) {
	m.writeJSON(w, models.FarmPlanResponse{
		CropName:       "Chickpea (Desi)",
		ExpectedProfit: "₹35,000 - ₹45,000 per acre",
		Duration:       "100 - 120 days",
		ShoppingList:   []string{"Seeds", "Rhizobium culture"},
		Timeline: []models.TreatmentStep{
			{Action: "Sowing", Description: "Sow treated seed in rows.", Icon: models.IconLeaf},
		},
	})
}
