package intent

import (
	"context"
	"time"

	"github.com/hemanyagillurkar28-lab/Krishi/internal/locale"
)

type mockClassifier struct{}

// NewMockClassifier returns the offline fallback classifier: same contract
// as the remote one, deterministic content, so the rest of the pipeline is
// exercised without a network dependency.
func NewMockClassifier() Classifier { return &mockClassifier{} }

var mockConfirmations = map[locale.Language]string{
	locale.Hindi:    "मैंने नोट किया: २ एकड़ में टमाटर की बुवाई।",
	locale.Marathi:  "मी नोंदवले: २ एकरात टोमॅटो लावले.",
	locale.Gujarati: "મેં નોંધ્યું: ૨ એકરમાં ટામેટાની વાવણી.",
	locale.English:  "Noted: sowing tomato on 2 acres.",
}

func (m *mockClassifier) Classify(ctx context.Context, text string, lang locale.Language) (ParsedIntent, error) {
	select {
	case <-ctx.Done():
		return ParsedIntent{}, ctx.Err()
	case <-time.After(20 * time.Millisecond):
	}
	msg, ok := mockConfirmations[lang]
	if !ok {
		msg = mockConfirmations[locale.English]
	}
	return ParsedIntent{
		Kind:         KindActivity,
		Confidence:   0.9,
		RawText:      text,
		Confirmation: msg,
		Activity: &ActivityDetail{
			ActivityType: "Sowing",
			Crop:         "Tomato",
			AreaAcres:    2,
		},
	}, nil
}
