package advisory

import "testing"

func findRec(t *testing.T, recs []Recommendation, crop string) Recommendation {
	t.Helper()
	for _, r := range recs {
		if r.Crop == crop {
			return r
		}
	}
	t.Fatalf("crop %s missing from recommendations", crop)
	return Recommendation{}
}

func TestRecommendationsGrading(t *testing.T) {
	// Warm, humid, raining: rice territory.
	recs := Recommendations(30, 75, 2.0)

	rice := findRec(t, recs, "Rice")
	if rice.Suitability != SuitabilityHigh || rice.Reason != "Ideal conditions" {
		t.Errorf("rice = %+v", rice)
	}
	// Wheat tops out at 25C, so temperature is the only complaint.
	wheat := findRec(t, recs, "Wheat")
	if wheat.Suitability != SuitabilityMedium {
		t.Errorf("wheat suitability = %s", wheat.Suitability)
	}
	if wheat.Reason != "Temperature too high" {
		t.Errorf("wheat reason = %q", wheat.Reason)
	}
}

func TestRecommendationsDryColdConditions(t *testing.T) {
	recs := Recommendations(5, 20, 0)

	for _, r := range recs {
		if r.Suitability != SuitabilityLow {
			t.Errorf("%s graded %s in 5C drought, want Low", r.Crop, r.Suitability)
		}
	}
	rice := findRec(t, recs, "Rice")
	if rice.Reason != "Temperature too low, Humidity too low, Needs rain" {
		t.Errorf("rice reason = %q", rice.Reason)
	}
}

func TestRecommendationsSortedBySuitability(t *testing.T) {
	recs := Recommendations(22, 65, 1.0)
	last := 0
	for _, r := range recs {
		rank := suitabilityRank(r.Suitability)
		if rank < last {
			t.Fatalf("recommendations not sorted: %+v", recs)
		}
		last = rank
	}
}

func TestInsightsRainfallRisk(t *testing.T) {
	// Dry forecast: rain-dependent crops carry high risk at 70% profit.
	insights := Insights(50, 5, nil)

	for _, in := range insights {
		switch in.Crop {
		case "Rice":
			if in.RiskLevel != RiskHigh || in.RiskReason != "riskRainfall" {
				t.Errorf("rice = %+v", in)
			}
			if in.PredictedProfit != 31500 {
				t.Errorf("rice profit = %d, want 31500", in.PredictedProfit)
			}
			if in.MarketTrend != TrendDown {
				t.Errorf("rice trend = %s", in.MarketTrend)
			}
		case "Wheat":
			if in.RiskLevel != RiskLow || in.PredictedProfit != 38000 || in.MarketTrend != TrendStable {
				t.Errorf("wheat = %+v", in)
			}
		}
	}
}

func TestInsightsHumidityRisk(t *testing.T) {
	insights := Insights(85, 60, nil)
	for _, in := range insights {
		if in.RiskLevel != RiskMedium || in.RiskReason != "riskHumidity" {
			t.Errorf("%s = %+v, want medium humidity risk", in.Crop, in)
		}
	}
}

func TestInsightsMarketRiskInjectable(t *testing.T) {
	insights := Insights(50, 60, func(crop string) bool { return crop == "Cotton" })
	for _, in := range insights {
		if in.Crop == "Cotton" {
			if in.RiskLevel != RiskMedium || in.RiskReason != "riskMarket" || in.PredictedProfit != 49500 {
				t.Errorf("cotton = %+v", in)
			}
		} else if in.RiskLevel != RiskLow {
			t.Errorf("%s flagged %s without market risk", in.Crop, in.RiskLevel)
		}
	}
}

func TestInsightsDeterministicWithoutMarketFeed(t *testing.T) {
	a := Insights(50, 60, nil)
	b := Insights(50, 60, nil)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("insights not reproducible: %+v vs %+v", a[i], b[i])
		}
	}
}

func TestSchemesCatalog(t *testing.T) {
	schemes := Schemes()
	if len(schemes) != 4 {
		t.Fatalf("schemes = %d, want 4", len(schemes))
	}
	if schemes[0].Name != "PM Kisan Samman Nidhi" {
		t.Errorf("first scheme = %q", schemes[0].Name)
	}
}
