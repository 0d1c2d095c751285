package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hemanyagillurkar28-lab/Krishi/internal/locale"
)

func TestMockEngineDeliversQueuedTranscript(t *testing.T) {
	engine := NewMockEngine()
	engine.Queue("sowed tomato on 2 acres", 0.95)

	cap, err := engine.Start(context.Background(), locale.English)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	select {
	case res := <-cap.Results():
		if res.Text != "sowed tomato on 2 acres" {
			t.Fatalf("unexpected transcript %q", res.Text)
		}
	case err := <-cap.Errs():
		t.Fatalf("unexpected capture error: %v", err)
	case <-time.After(time.Second):
		t.Fatal("capture did not complete")
	}
}

func TestMockEngineRejectsConcurrentStart(t *testing.T) {
	engine := NewMockEngine()
	engine.delay = 500 * time.Millisecond

	first, err := engine.Start(context.Background(), locale.Hindi)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := engine.Start(context.Background(), locale.Hindi); !errors.Is(err, ErrAlreadyCapturing) {
		t.Fatalf("expected ErrAlreadyCapturing, got %v", err)
	}

	engine.Stop()
	select {
	case <-first.Errs():
	case <-time.After(time.Second):
		t.Fatal("stop did not abort the capture")
	}
}

func TestMockEngineRestartableAfterStop(t *testing.T) {
	engine := NewMockEngine()
	cap, err := engine.Start(context.Background(), locale.Gujarati)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	engine.Stop()
	<-cap.Errs()

	// allow the goroutine to release the engine
	deadline := time.Now().Add(time.Second)
	for {
		if _, err = engine.Start(context.Background(), locale.Gujarati); err == nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("engine not restartable: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
