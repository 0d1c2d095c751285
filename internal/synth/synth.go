package synth

import (
	"context"

	"github.com/hemanyagillurkar28-lab/Krishi/internal/locale"
)

// Synthesizer voices a message in the given language. Callers treat it as
// fire-and-forget: a failed synthesis is logged, never fatal to a session.
type Synthesizer interface {
	Speak(ctx context.Context, text string, lang locale.Language) error
}
