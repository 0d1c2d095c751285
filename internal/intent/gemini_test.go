package intent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hemanyagillurkar28-lab/Krishi/internal/locale"
)

func TestGeminiClassifierParsesStructuredOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-3-flash-preview:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"intent\":\"QUERY\",\"confidence\":0.7,\"data\":{\"raw_text\":\"profit?\"},\"confirmation_message\":\"आपका डेटा तैयार है\"}"}]}}]}`))
	}))
	defer srv.Close()

	c := NewGeminiClassifier(srv.URL, "test-key", "gemini-3-flash-preview", 0.1, 5*time.Second)
	parsed, err := c.Classify(context.Background(), "profit?", locale.Hindi)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if parsed.Kind != KindQuery {
		t.Fatalf("expected QUERY, got %s", parsed.Kind)
	}
	if parsed.Confirmation != "आपका डेटा तैयार है" {
		t.Fatalf("unexpected confirmation %q", parsed.Confirmation)
	}
}

func TestGeminiClassifierSurfacesHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewGeminiClassifier(srv.URL, "k", "m", 0.1, 5*time.Second)
	if _, err := c.Classify(context.Background(), "hello", locale.English); err == nil {
		t.Fatal("expected error from failing backend")
	}
}

func TestMockClassifierIsDeterministic(t *testing.T) {
	c := NewMockClassifier()
	first, err := c.Classify(context.Background(), "anything", locale.Marathi)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	second, err := c.Classify(context.Background(), "anything", locale.Marathi)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if first.Confirmation != second.Confirmation || first.Kind != second.Kind {
		t.Fatal("mock classifier must be deterministic")
	}
	if first.Activity == nil {
		t.Fatal("mock intent must exercise the activity variant")
	}
}
