package models

import (
	"fmt"
	"strconv"
	"strings"
)

// MarketStatus is the overall regional sentiment
type MarketStatus string

const (
	MarketBullish MarketStatus = "Bullish"
	MarketBearish MarketStatus = "Bearish"
	MarketNeutral MarketStatus = "Neutral"
)

// Trend is the direction of one crop price
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// MarketTrendsRequest selects the mandi region
type MarketTrendsRequest struct {
	Region string `json:"region"`
}

// MarketTrendsResponse is a regional price snapshot
type MarketTrendsResponse struct {
	Region       string       `json:"region"`
	MarketStatus MarketStatus `json:"market_status"`
	AnalystNote  string       `json:"analyst_note"`
	LastUpdated  string       `json:"last_updated"`
	Crops        []MarketCrop `json:"crops"`
}

// MarketCrop is one priced commodity. Change is a signed percentage string.
type MarketCrop struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Unit       string  `json:"unit"`
	Change     string  `json:"change"`
	Trend      Trend   `json:"trend"`
	Forecast   string  `json:"forecast"`
	MarketNote string  `json:"market_note"`
}

// TrendFromChange derives a trend from a signed change such as "+5.2" or "-2.0%".
// Unparseable and zero changes are stable.
func TrendFromChange(change string) Trend {
	s := strings.TrimSpace(change)
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimPrefix(s, "+")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	switch {
	case err != nil || v == 0:
		return TrendStable
	case v > 0:
		return TrendUp
	default:
		return TrendDown
	}
}

// CheckTrendConsistency reports the first crop whose trend disagrees with the
// sign of its change.
func (m MarketTrendsResponse) CheckTrendConsistency() error {
	for _, crop := range m.Crops {
		if want := TrendFromChange(crop.Change); want != crop.Trend {
			return fmt.Errorf("crop %s: trend %q disagrees with change %q", crop.ID, crop.Trend, crop.Change)
		}
	}
	return nil
}

// Clone returns a deep copy
func (m MarketTrendsResponse) Clone() MarketTrendsResponse {
	out := m
	out.Crops = append([]MarketCrop(nil), m.Crops...)
	return out
}
