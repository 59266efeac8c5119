package models

import (
	"fmt"
)

// SmartPlanRequest carries the farm planner form. Every field is passed through
// as typed by the farmer; no numeric coercion happens on this side.
type SmartPlanRequest struct {
	SoilType    string `json:"soil_type"`
	LandSize    string `json:"land_size"`
	Budget      string `json:"budget"`
	WaterSource string `json:"water_source"`
	Season      string `json:"season"`
	SowingMonth string `json:"sowing_month,omitempty"`
}

// SmartPlanResponse is the crop-strategy recommendation bundle. Currency and
// percentage values are display strings.
type SmartPlanResponse struct {
	Summary            PlanSummary     `json:"summary"`
	FinancialBreakdown []CostLine      `json:"financial_breakdown"`
	RiskAnalysis       RiskAnalysis    `json:"risk_analysis"`
	TimelineWeeks      []TimelinePhase `json:"timeline_weeks"`
}

type PlanSummary struct {
	CropName         string `json:"crop_name"`
	SuitabilityScore string `json:"suitability_score"`
	ExpectedRevenue  string `json:"expected_revenue"`
	NetProfit        string `json:"net_profit"`
	ROI              string `json:"roi"`
	Duration         string `json:"duration"`
}

type CostLine struct {
	Category string  `json:"category"`
	Cost     string  `json:"cost"`
	Percent  float64 `json:"percent"`
}

type RiskAnalysis struct {
	PrimaryRisk string `json:"primary_risk"`
	Mitigation  string `json:"mitigation"`
}

type TimelinePhase struct {
	Phase   string `json:"phase"`
	Action  string `json:"action"`
	Details string `json:"details"`
	Icon    string `json:"icon"`
}

// Validate checks that no cost line is negative. The percentages are not
// required to sum to 100.
func (p SmartPlanResponse) Validate() error {
	for i, line := range p.FinancialBreakdown {
		if line.Percent < 0 {
			return fmt.Errorf("financial_breakdown[%d] (%s) has negative percent %.2f", i, line.Category, line.Percent)
		}
	}
	return nil
}

// Clone returns a deep copy
func (p SmartPlanResponse) Clone() SmartPlanResponse {
	out := p
	out.FinancialBreakdown = append([]CostLine(nil), p.FinancialBreakdown...)
	out.TimelineWeeks = append([]TimelinePhase(nil), p.TimelineWeeks...)
	return out
}

// ExecutionPlanRequest asks for a precision execution manual for one crop
type ExecutionPlanRequest struct {
	CropName    string `json:"crop_name"`
	Variety     string `json:"variety,omitempty"`
	LandSize    string `json:"land_size"`
	SoilType    string `json:"soil_type"`
	WaterSource string `json:"water_source"`
	SowingDate  string `json:"sowing_date"`
}

// ExecutionPlanResponse is the precision execution manual
type ExecutionPlanResponse struct {
	YieldForecast     YieldForecast      `json:"yield_forecast"`
	InputRequirements []InputRequirement `json:"input_requirements"`
	CriticalTimeline  []TimelineDay      `json:"critical_timeline"`
}

type YieldForecast struct {
	PotentialPercentage float64 `json:"potential_percentage"`
	EstimatedOutput     string  `json:"estimated_output"`
	LimitingFactor      string  `json:"limiting_factor"`
}

type InputRequirement struct {
	Item     string `json:"item"`
	Quantity string `json:"quantity"`
	Note     string `json:"note"`
}

type TimelineDay struct {
	Day    string `json:"day"`
	Action string `json:"action"`
	Detail string `json:"detail"`
	Icon   string `json:"icon"`
}

// Validate checks the yield potential is a percentage
func (p ExecutionPlanResponse) Validate() error {
	if p.YieldForecast.PotentialPercentage < 0 || p.YieldForecast.PotentialPercentage > 100 {
		return fmt.Errorf("potential_percentage %.2f outside [0,100]", p.YieldForecast.PotentialPercentage)
	}
	return nil
}

// Clone returns a deep copy
func (p ExecutionPlanResponse) Clone() ExecutionPlanResponse {
	out := p
	out.InputRequirements = append([]InputRequirement(nil), p.InputRequirements...)
	out.CriticalTimeline = append([]TimelineDay(nil), p.CriticalTimeline...)
	return out
}

// FarmPlanRequest is the quick planner form. Unlike the smart plan, budget and
// land size travel as numbers.
type FarmPlanRequest struct {
	SoilType    string  `json:"soilType"`
	WaterSource string  `json:"waterSource"`
	Budget      float64 `json:"budget"`
	LandSize    float64 `json:"landSize"`
}

// FarmPlanResponse is the quick planner result
type FarmPlanResponse struct {
	CropName       string          `json:"cropName"`
	ExpectedProfit string          `json:"expectedProfit"`
	Duration       string          `json:"duration"`
	ShoppingList   []string        `json:"shoppingList"`
	Timeline       []TreatmentStep `json:"timeline"`
}

// Clone returns a deep copy
func (p FarmPlanResponse) Clone() FarmPlanResponse {
	out := p
	out.ShoppingList = cloneStrings(p.ShoppingList)
	out.Timeline = append([]TreatmentStep(nil), p.Timeline...)
	return out
}
