package intent

import "strings"

// financialKeywords covers profit/money/budget vocabulary across the
// supported scripts: English, Devanagari (Hindi and Marathi) and Gujarati.
var financialKeywords = []string{
	"profit", "money", "budget", "income", "expense", "balance",
	"मुनाफा", "पैसे", "बजट", "आय", "खर्च", "हिसाब",
	"नफा", "उत्पन्न", "शिल्लक",
	"નફો", "પૈસા", "આવક", "ખર્ચ", "હિસાબ", "ફાયદો",
}

// IsFinancialQuery reports whether the transcript asks about money,
// profit or budget. Case-insensitive substring match, pure and total; it
// never gates the flow on its own, it only decides whether financial
// figures are appended to a query confirmation.
func IsFinancialQuery(transcript string) bool {
	text := strings.ToLower(transcript)
	for _, kw := range financialKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
