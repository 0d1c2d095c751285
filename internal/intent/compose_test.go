package intent

import (
	"testing"

	"github.com/hemanyagillurkar28-lab/Krishi/internal/locale"
)

func TestComposeAppendsHindiFinancialDetail(t *testing.T) {
	parsed := ParsedIntent{
		Kind:         KindQuery,
		Confirmation: "आपका डेटा तैयार है",
	}
	figures := FinancialFigures{NetProfit: 12000, PredictedProfit: 1800}

	got := Compose(parsed, true, locale.Hindi, figures)
	want := "आपका डेटा तैयार है" + locale.FinancialSummary(locale.Hindi, 12000, 1800)
	if got != want {
		t.Fatalf("composed message mismatch:\n got %q\nwant %q", got, want)
	}
	if got == parsed.Confirmation {
		t.Fatal("expected financial detail appended")
	}
}

func TestComposeLeavesNonFinancialQueryUnchanged(t *testing.T) {
	parsed := ParsedIntent{Kind: KindQuery, Confirmation: "हवामान चांगले आहे"}
	got := Compose(parsed, false, locale.Marathi, FinancialFigures{NetProfit: 99})
	if got != parsed.Confirmation {
		t.Fatalf("expected unchanged confirmation, got %q", got)
	}
}

func TestComposeLeavesNonQueryUnchanged(t *testing.T) {
	for _, kind := range []Kind{KindActivity, KindTransaction, KindSoilTest, KindUnknown} {
		parsed := ParsedIntent{Kind: kind, Confirmation: "noted"}
		got := Compose(parsed, true, locale.English, FinancialFigures{NetProfit: 1, PredictedProfit: 2})
		if got != "noted" {
			t.Fatalf("kind %s: expected unchanged confirmation, got %q", kind, got)
		}
	}
}

func TestComposeIdempotent(t *testing.T) {
	parsed := ParsedIntent{Kind: KindQuery, Confirmation: "તમારો ડેટા તૈયાર છે"}
	figures := FinancialFigures{NetProfit: 4500.5, PredictedProfit: 675}
	first := Compose(parsed, true, locale.Gujarati, figures)
	second := Compose(parsed, true, locale.Gujarati, figures)
	if first != second {
		t.Fatalf("composer must be idempotent: %q vs %q", first, second)
	}
}
