package advisory

import (
	"math"
	"sort"
	"strings"
)

// Suitability grades how well current conditions match a crop.
type Suitability string

const (
	SuitabilityHigh   Suitability = "High"
	SuitabilityMedium Suitability = "Medium"
	SuitabilityLow    Suitability = "Low"
)

// Risk grades the downside on a crop's expected profit.
type Risk string

const (
	RiskLow    Risk = "Low"
	RiskMedium Risk = "Medium"
	RiskHigh   Risk = "High"
)

// Trend is the direction of the profit adjustment.
type Trend string

const (
	TrendUp     Trend = "Up"
	TrendDown   Trend = "Down"
	TrendStable Trend = "Stable"
)

type cropMeta struct {
	Crop        string
	MinTempC    float64
	MaxTempC    float64
	MinHumidity float64
	RainNeeded  bool
	BaseProfit  float64
}

// cropTable covers the staple crops of the target regions. Thresholds and
// base profits are per-season rupee estimates.
var cropTable = []cropMeta{
	{Crop: "Rice", MinTempC: 20, MaxTempC: 38, MinHumidity: 60, RainNeeded: true, BaseProfit: 45000},
	{Crop: "Wheat", MinTempC: 10, MaxTempC: 25, MinHumidity: 40, RainNeeded: false, BaseProfit: 38000},
	{Crop: "Maize", MinTempC: 18, MaxTempC: 27, MinHumidity: 50, RainNeeded: true, BaseProfit: 32000},
	{Crop: "Sugarcane", MinTempC: 21, MaxTempC: 35, MinHumidity: 60, RainNeeded: true, BaseProfit: 85000},
	{Crop: "Cotton", MinTempC: 21, MaxTempC: 30, MinHumidity: 40, RainNeeded: false, BaseProfit: 55000},
	{Crop: "Pulses", MinTempC: 18, MaxTempC: 30, MinHumidity: 30, RainNeeded: false, BaseProfit: 28000},
}

// Recommendation grades one crop against current conditions.
type Recommendation struct {
	Crop        string      `json:"crop"`
	Suitability Suitability `json:"suitability"`
	Reason      string      `json:"reason"`
}

// Insight projects profit and risk for one crop from the forecast.
type Insight struct {
	Crop            string `json:"crop"`
	PredictedProfit int64  `json:"predicted_profit"`
	RiskLevel       Risk   `json:"risk_level"`
	RiskReason      string `json:"risk_reason"`
	MarketTrend     Trend  `json:"market_trend"`
}

// Scheme is a government support scheme shown on the dashboard.
type Scheme struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Recommendations grades every crop in the table against current
// temperature, humidity and precipitation, highest suitability first.
func Recommendations(tempC, humidity, precipMM float64) []Recommendation {
	out := make([]Recommendation, 0, len(cropTable))
	for _, meta := range cropTable {
		tempOK := tempC >= meta.MinTempC && tempC <= meta.MaxTempC
		humidityOK := humidity >= meta.MinHumidity
		rainOK := !meta.RainNeeded || precipMM > 0.1

		suitability := SuitabilityLow
		if tempOK && humidityOK && rainOK {
			suitability = SuitabilityHigh
		} else if tempOK || (humidityOK && rainOK) {
			suitability = SuitabilityMedium
		}

		var reasons []string
		if !tempOK {
			if tempC < meta.MinTempC {
				reasons = append(reasons, "Temperature too low")
			} else {
				reasons = append(reasons, "Temperature too high")
			}
		}
		if !humidityOK {
			reasons = append(reasons, "Humidity too low")
		}
		if meta.RainNeeded && !rainOK {
			reasons = append(reasons, "Needs rain")
		}
		reason := "Ideal conditions"
		if len(reasons) > 0 {
			reason = strings.Join(reasons, ", ")
		}
		out = append(out, Recommendation{Crop: meta.Crop, Suitability: suitability, Reason: reason})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return suitabilityRank(out[i].Suitability) < suitabilityRank(out[j].Suitability)
	})
	return out
}

func suitabilityRank(s Suitability) int {
	switch s {
	case SuitabilityHigh:
		return 0
	case SuitabilityMedium:
		return 1
	default:
		return 2
	}
}

// MarketRiskFn reports whether a crop currently carries market-side risk.
// The default never flags any crop so insights are reproducible; callers
// with a price feed can supply their own.
type MarketRiskFn func(crop string) bool

// Insights projects risk and profit per crop from forecast-day humidity and
// rain-chance averages. marketRisk may be nil.
func Insights(avgHumidity, avgRainChance float64, marketRisk MarketRiskFn) []Insight {
	out := make([]Insight, 0, len(cropTable))
	for _, meta := range cropTable {
		risk := RiskLow
		reason := "riskNone"
		profitFactor := 1.0

		switch {
		case meta.RainNeeded && avgRainChance < 20:
			risk = RiskHigh
			reason = "riskRainfall"
			profitFactor *= 0.7
		case avgHumidity > 80:
			risk = RiskMedium
			reason = "riskHumidity"
			profitFactor *= 0.85
		case marketRisk != nil && marketRisk(meta.Crop):
			risk = RiskMedium
			reason = "riskMarket"
			profitFactor *= 0.9
		}

		trend := TrendStable
		if profitFactor > 1 {
			trend = TrendUp
		} else if profitFactor < 0.9 {
			trend = TrendDown
		}

		out = append(out, Insight{
			Crop:            meta.Crop,
			PredictedProfit: int64(math.Round(meta.BaseProfit * profitFactor)),
			RiskLevel:       risk,
			RiskReason:      reason,
			MarketTrend:     trend,
		})
	}
	return out
}

// Schemes returns the static government scheme catalog.
func Schemes() []Scheme {
	return []Scheme{
		{ID: 1, Name: "PM Kisan Samman Nidhi", Description: "Financial benefit of Rs. 6,000/- per year in three equal installments."},
		{ID: 2, Name: "Pradhan Mantri Fasal Bima Yojana", Description: "Comprehensive insurance cover against crop failure."},
		{ID: 3, Name: "Soil Health Card Scheme", Description: "Testing soil for nutrients and recommending dosage of fertilizers."},
		{ID: 4, Name: "Kisan Credit Card (KCC)", Description: "Timely and adequate credit support to farmers."},
	}
}
