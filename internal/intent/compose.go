package intent

import "github.com/hemanyagillurkar28-lab/Krishi/internal/locale"

// FinancialFigures is the analytics snapshot consumed by the composer when
// the financial-query branch fires.
type FinancialFigures struct {
	NetProfit       float64
	PredictedProfit float64
}

// Compose merges the remote intent with the local keyword flag into the
// final confirmation. Only a QUERY intent that the keyword classifier also
// flagged as financial gets the locale's fixed financial sentence appended;
// every other combination passes the classifier confirmation through
// unchanged. Pure: identical inputs yield identical output.
func Compose(parsed ParsedIntent, financialQuery bool, lang locale.Language, figures FinancialFigures) string {
	switch parsed.Kind {
	case KindQuery:
		if financialQuery {
			return parsed.Confirmation + locale.FinancialSummary(lang, figures.NetProfit, figures.PredictedProfit)
		}
		return parsed.Confirmation
	case KindActivity, KindTransaction, KindSoilTest, KindUnknown:
		return parsed.Confirmation
	default:
		return parsed.Confirmation
	}
}
