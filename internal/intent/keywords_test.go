package intent

import "testing"

func TestIsFinancialQueryMatchesAllScripts(t *testing.T) {
	positives := []string{
		"what is my profit this month",
		"How much MONEY did I make",
		"बजट कितना बचा है",
		"मेरा मुनाफा बताओ",
		"या महिन्यात नफा किती झाला",
		"माझे उत्पन्न किती आहे",
		"મારો નફો કેટલો છે",
		"કેટલો ખર્ચ થયો",
	}
	for _, tc := range positives {
		if !IsFinancialQuery(tc) {
			t.Errorf("expected financial query: %q", tc)
		}
	}

	negatives := []string{
		"",
		"sowed tomato on two acres",
		"कल बारिश होगी क्या",
		"माती परीक्षण करायचे आहे",
		"વરસાદ ક્યારે આવશે",
	}
	for _, tc := range negatives {
		if IsFinancialQuery(tc) {
			t.Errorf("expected non-financial query: %q", tc)
		}
	}
}

func TestIsFinancialQueryCaseInsensitive(t *testing.T) {
	if IsFinancialQuery("Profit time") != IsFinancialQuery("pRoFiT time") {
		t.Fatal("classification must be case-insensitive")
	}
}

func TestIsFinancialQueryIsPure(t *testing.T) {
	in := "income and expense summary"
	first := IsFinancialQuery(in)
	for i := 0; i < 10; i++ {
		if IsFinancialQuery(in) != first {
			t.Fatal("classification must be a pure function of the input")
		}
	}
}
