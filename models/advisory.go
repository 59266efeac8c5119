package models

// CropAdvisoryRequest asks which crops suit a soil and season
type CropAdvisoryRequest struct {
	Soil     string `json:"soil"`
	Season   string `json:"season"`
	Location string `json:"location,omitempty"`
}

// CropRecommendation is one advised crop
type CropRecommendation struct {
	Name             string `json:"name"`
	Suitability      int    `json:"suitability"`
	Yield            string `json:"yield"`
	Duration         string `json:"duration"`
	Reason           string `json:"reason"`
	MarketTrend      string `json:"marketTrend"` // Up | Down | Stable
	WaterRequirement string `json:"waterRequirement"`
	Investment       string `json:"investment"`
}

// CropAdvisoryResponse bundles recommendations with seasonal notes
type CropAdvisoryResponse struct {
	Recommendations []CropRecommendation `json:"recommendations"`
	SeasonalTips    string               `json:"seasonalTips"`
	Warnings        string               `json:"warnings"`
}

// Clone returns a deep copy
func (a CropAdvisoryResponse) Clone() CropAdvisoryResponse {
	out := a
	out.Recommendations = append([]CropRecommendation(nil), a.Recommendations...)
	return out
}
