package locale

import (
	"strings"
	"testing"
)

func TestParseRoundTrip(t *testing.T) {
	for _, lang := range All() {
		got, err := Parse(string(lang))
		if err != nil {
			t.Fatalf("Parse(%q): %v", lang, err)
		}
		if got != lang {
			t.Fatalf("Parse(%q) = %q", lang, got)
		}
		if !lang.Valid() {
			t.Fatalf("%q should be valid", lang)
		}
	}
	if _, err := Parse("ta-IN"); err == nil {
		t.Fatal("expected error for unsupported tag")
	}
	if Language("fr-FR").Valid() {
		t.Fatal("fr-FR should not be valid")
	}
}

func TestVoiceStringsPerLanguage(t *testing.T) {
	seen := map[string]bool{}
	for _, lang := range All() {
		for _, s := range []string{RetryPrompt(lang), GenericFailure(lang), Saved(lang)} {
			if s == "" {
				t.Fatalf("empty voice string for %q", lang)
			}
			seen[s] = true
		}
	}
	// Three strings per language, all distinct across languages.
	if len(seen) != 3*len(All()) {
		t.Fatalf("expected %d distinct strings, got %d", 3*len(All()), len(seen))
	}
}

func TestUnknownLanguageFallsBackToEnglish(t *testing.T) {
	if got := Saved(Language("ta-IN")); got != Saved(English) {
		t.Fatalf("fallback = %q", got)
	}
}

func TestFinancialSummaryFormatting(t *testing.T) {
	got := FinancialSummary(English, 12000, 1800)
	if got != ". Your net profit is 12000 rupees. Next month prediction: 1800." {
		t.Fatalf("english summary = %q", got)
	}
	for _, lang := range All() {
		s := FinancialSummary(lang, 1234.5, 200)
		if !strings.Contains(s, "1234.5") || !strings.Contains(s, "200") {
			t.Fatalf("summary for %q missing figures: %q", lang, s)
		}
	}
}

func TestFormatAmountTrimsWholeValues(t *testing.T) {
	if got := FormatAmount(45000); got != "45000" {
		t.Fatalf("FormatAmount(45000) = %q", got)
	}
	if got := FormatAmount(0.72); got != "0.72" {
		t.Fatalf("FormatAmount(0.72) = %q", got)
	}
}
