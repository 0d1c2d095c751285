package synth

import (
	"context"
	"sync"

	"github.com/hemanyagillurkar28-lab/Krishi/internal/locale"
)

// MockSynth records spoken messages instead of producing audio.
type MockSynth struct {
	mu     sync.Mutex
	spoken []string
}

func NewMockSynth() *MockSynth { return &MockSynth{} }

func (m *MockSynth) Speak(ctx context.Context, text string, lang locale.Language) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	m.mu.Lock()
	m.spoken = append(m.spoken, text)
	m.mu.Unlock()
	return nil
}

// Spoken returns a copy of everything spoken so far.
func (m *MockSynth) Spoken() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.spoken...)
}
