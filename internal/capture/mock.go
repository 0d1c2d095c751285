package capture

import (
	"context"
	"sync"
	"time"

	"github.com/hemanyagillurkar28-lab/Krishi/internal/locale"
)

// MockEngine replays scripted transcripts, used in development and tests.
type MockEngine struct {
	mu       sync.Mutex
	queue    []Result
	busy     bool
	delay    time.Duration
	cancelFn context.CancelFunc
}

func NewMockEngine() *MockEngine {
	return &MockEngine{delay: 50 * time.Millisecond}
}

// Queue appends a transcript to be returned by the next Start.
func (m *MockEngine) Queue(text string, confidence float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, Result{Text: text, Confidence: confidence})
}

func (m *MockEngine) Start(ctx context.Context, lang locale.Language) (*Capture, error) {
	m.mu.Lock()
	if m.busy {
		m.mu.Unlock()
		return nil, ErrAlreadyCapturing
	}
	m.busy = true
	var next Result
	if len(m.queue) > 0 {
		next = m.queue[0]
		m.queue = m.queue[1:]
	} else {
		next = Result{Text: "[mock transcript " + string(lang) + "]", Confidence: 0.9}
	}
	cctx, cancel := context.WithCancel(ctx)
	m.cancelFn = cancel
	m.mu.Unlock()

	cap := newCapture()
	go func() {
		defer m.release()
		select {
		case <-cctx.Done():
			cap.fail(cctx.Err())
		case <-time.After(m.delay):
			cap.deliver(next)
		}
	}()
	return cap, nil
}

func (m *MockEngine) Stop() {
	m.mu.Lock()
	cancel := m.cancelFn
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (m *MockEngine) release() {
	m.mu.Lock()
	m.busy = false
	m.cancelFn = nil
	m.mu.Unlock()
}
