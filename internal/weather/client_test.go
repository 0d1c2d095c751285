package weather

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hemanyagillurkar28-lab/Krishi/internal/config"
)

const sampleResponse = `{
  "location": {"name": "Nagpur"},
  "current": {
    "temp_c": 31.5,
    "humidity": 62,
    "precip_mm": 0.2,
    "condition": {"text": "Partly cloudy", "icon": "//cdn.example/day/116.png"}
  },
  "forecast": {"forecastday": [
    {"date": "2026-08-29", "day": {
      "avgtemp_c": 30.1, "avghumidity": 70, "daily_chance_of_rain": 65,
      "condition": {"text": "Patchy rain nearby", "icon": "//cdn.example/day/176.png"}
    }},
    {"date": "2026-08-30", "day": {
      "avgtemp_c": 29.4, "avghumidity": 74, "daily_chance_of_rain": 80,
      "condition": {"text": "Moderate rain", "icon": "//cdn.example/day/302.png"}
    }}
  ]},
  "alerts": {"alert": [{"headline": "Heavy rainfall warning"}]}
}`

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Default().Weather
	cfg.Endpoint = srv.URL
	cfg.APIKey = "test-key"
	return NewClient(cfg, slog.New(slog.NewTextHandler(testWriter{t}, nil))), srv
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func TestForecastDecodesProviderResponse(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "20.5937,78.9629" {
			t.Errorf("unexpected location query %q", got)
		}
		if got := r.URL.Query().Get("alerts"); got != "yes" {
			t.Errorf("alerts query = %q, want yes", got)
		}
		w.Write([]byte(sampleResponse))
	}))

	forecast, err := client.Forecast(context.Background())
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if forecast.LocationName != "Nagpur" {
		t.Errorf("location = %q", forecast.LocationName)
	}
	if forecast.CurrentTempC != 31.5 || forecast.CurrentCondition != "Partly cloudy" {
		t.Errorf("current conditions = %+v", forecast)
	}
	if len(forecast.Days) != 2 || forecast.Days[1].ChanceOfRain != 80 {
		t.Errorf("forecast days = %+v", forecast.Days)
	}
	if len(forecast.Alerts) != 1 || forecast.Alerts[0].Headline != "Heavy rainfall warning" {
		t.Errorf("alerts = %+v", forecast.Alerts)
	}
	if forecast.Stale {
		t.Error("fresh forecast marked stale")
	}
}

func TestForecastServedFromCacheWithinTTL(t *testing.T) {
	var calls atomic.Int64
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(sampleResponse))
	}))

	for i := 0; i < 3; i++ {
		if _, err := client.Forecast(context.Background()); err != nil {
			t.Fatalf("Forecast call %d: %v", i, err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("provider called %d times, want 1", got)
	}
}

func TestForecastServesStaleOnProviderFailure(t *testing.T) {
	var failing atomic.Bool
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		w.Write([]byte(sampleResponse))
	}))

	if _, err := client.Forecast(context.Background()); err != nil {
		t.Fatalf("initial fetch: %v", err)
	}

	// Age the cache past its TTL so the next call refetches.
	now := time.Now()
	client.clock = func() time.Time { return now.Add(2 * time.Hour) }
	failing.Store(true)

	forecast, err := client.Forecast(context.Background())
	if err != nil {
		t.Fatalf("expected stale forecast, got error: %v", err)
	}
	if !forecast.Stale {
		t.Error("forecast not marked stale")
	}
	if forecast.LocationName != "Nagpur" {
		t.Errorf("stale forecast lost data: %+v", forecast)
	}
}

func TestForecastErrorsWithoutCache(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	if _, err := client.Forecast(context.Background()); err == nil {
		t.Fatal("expected error when no cached forecast exists")
	}
}
