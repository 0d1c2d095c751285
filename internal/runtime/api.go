package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hemanyagillurkar28-lab/Krishi/internal/advisory"
	"github.com/hemanyagillurkar28-lab/Krishi/internal/session"
	"github.com/hemanyagillurkar28-lab/Krishi/internal/weather"
)

const defaultListLimit = 100

func (r *Runtime) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", r.handleHealth)
	mux.HandleFunc("/readyz", r.handleReady)

	mux.HandleFunc("GET /api/activities", r.handleActivities)
	mux.HandleFunc("GET /api/transactions", r.handleTransactions)
	mux.HandleFunc("GET /api/analytics", r.handleAnalytics)
	mux.HandleFunc("GET /api/weather", r.handleWeather)
	mux.HandleFunc("GET /api/insights", r.handleInsights)
	mux.HandleFunc("GET /api/schemes", r.handleSchemes)

	mux.HandleFunc("POST /api/voice/capture", r.handleVoiceCapture)
	mux.HandleFunc("POST /api/voice/accept", r.voiceAction(r.manager.Accept))
	mux.HandleFunc("POST /api/voice/reject", r.voiceAction(r.manager.Reject))
	mux.HandleFunc("POST /api/voice/retry", r.voiceAction(r.manager.Retry))
	mux.HandleFunc("GET /api/voice/session", r.handleVoiceSession)
	return mux
}

func (r *Runtime) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (r *Runtime) handleReady(w http.ResponseWriter, _ *http.Request) {
	if r.ready.Load() && r.manager.Healthy() && r.busClient.Healthy() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("not ready"))
}

func (r *Runtime) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		r.log.Warn("response encode failed", slog.String("error", err.Error()))
	}
}

func (r *Runtime) writeError(w http.ResponseWriter, status int, err error) {
	r.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func listLimit(req *http.Request) int {
	raw := req.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return defaultListLimit
	}
	return n
}

func (r *Runtime) handleActivities(w http.ResponseWriter, req *http.Request) {
	activities, err := r.store.ListActivities(req.Context(), r.cfg.Assistant.FarmerID, listLimit(req))
	if err != nil {
		r.writeError(w, http.StatusInternalServerError, err)
		return
	}
	r.writeJSON(w, http.StatusOK, activities)
}

func (r *Runtime) handleTransactions(w http.ResponseWriter, req *http.Request) {
	transactions, err := r.store.ListTransactions(req.Context(), r.cfg.Assistant.FarmerID, listLimit(req))
	if err != nil {
		r.writeError(w, http.StatusInternalServerError, err)
		return
	}
	r.writeJSON(w, http.StatusOK, transactions)
}

func (r *Runtime) handleAnalytics(w http.ResponseWriter, req *http.Request) {
	summary, err := r.analytics.Summary(req.Context())
	if err != nil {
		r.writeError(w, http.StatusInternalServerError, err)
		return
	}
	r.writeJSON(w, http.StatusOK, summary)
}

// weatherResponse pairs the forecast with crop recommendations derived
// from the current conditions.
type weatherResponse struct {
	weather.Forecast
	Recommendations []advisory.Recommendation `json:"recommendations"`
}

func (r *Runtime) handleWeather(w http.ResponseWriter, req *http.Request) {
	if r.weather == nil {
		r.writeError(w, http.StatusServiceUnavailable, errors.New("weather disabled"))
		return
	}
	forecast, err := r.weather.Forecast(req.Context())
	if err != nil {
		r.writeError(w, http.StatusBadGateway, err)
		return
	}
	r.writeJSON(w, http.StatusOK, weatherResponse{
		Forecast:        forecast,
		Recommendations: advisory.Recommendations(forecast.CurrentTempC, forecast.CurrentHumidity, forecast.PrecipMM),
	})
}

func (r *Runtime) handleInsights(w http.ResponseWriter, req *http.Request) {
	if r.weather == nil {
		r.writeError(w, http.StatusServiceUnavailable, errors.New("weather disabled"))
		return
	}
	forecast, err := r.weather.Forecast(req.Context())
	if err != nil {
		r.writeError(w, http.StatusBadGateway, err)
		return
	}
	var humidity, rain float64
	if n := len(forecast.Days); n > 0 {
		for _, d := range forecast.Days {
			humidity += d.Humidity
			rain += d.ChanceOfRain
		}
		humidity /= float64(n)
		rain /= float64(n)
	}
	r.writeJSON(w, http.StatusOK, advisory.Insights(humidity, rain, nil))
}

func (r *Runtime) handleSchemes(w http.ResponseWriter, _ *http.Request) {
	r.writeJSON(w, http.StatusOK, advisory.Schemes())
}

func (r *Runtime) handleVoiceCapture(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Language string `json:"language"`
		Text     string `json:"text"`
	}
	if req.Body != nil {
		// An empty body means capture in the default language.
		_ = json.NewDecoder(req.Body).Decode(&body)
	}

	var (
		snap session.Snapshot
		err  error
	)
	if body.Text != "" {
		snap, err = r.manager.SubmitText(req.Context(), body.Text, body.Language)
	} else {
		snap, err = r.manager.StartCapture(req.Context(), body.Language)
	}
	if err != nil {
		r.writeError(w, voiceStatus(err), err)
		return
	}
	r.writeJSON(w, http.StatusAccepted, snap)
}

func (r *Runtime) voiceAction(action func(ctx context.Context) (session.Snapshot, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		snap, err := action(req.Context())
		if err != nil {
			r.writeError(w, voiceStatus(err), err)
			return
		}
		r.writeJSON(w, http.StatusOK, snap)
	}
}

func (r *Runtime) handleVoiceSession(w http.ResponseWriter, req *http.Request) {
	snap := r.manager.Snapshot()
	resp := struct {
		session.Snapshot
		Events any `json:"events,omitempty"`
	}{Snapshot: snap}
	if snap.ID != "" {
		events, err := r.store.ListSessionEvents(req.Context(), snap.ID, listLimit(req))
		if err == nil {
			resp.Events = events
		}
	}
	r.writeJSON(w, http.StatusOK, resp)
}

func voiceStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrNoConfirmation), errors.Is(err, session.ErrNoFailure):
		return http.StatusConflict
	case errors.Is(err, session.ErrNotReady), errors.Is(err, session.ErrFatal):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}
