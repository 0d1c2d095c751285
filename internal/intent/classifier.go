package intent

import (
	"context"

	"github.com/hemanyagillurkar28-lab/Krishi/internal/locale"
)

// Classifier turns a finalized transcript into a structured intent. One
// call per session: the core never retries a failed classification, the
// user does.
type Classifier interface {
	Classify(ctx context.Context, text string, lang locale.Language) (ParsedIntent, error)
}
