package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/hemanyagillurkar28-lab/Krishi/internal/config"
)

// Day is one forecast day.
type Day struct {
	Date         string  `json:"date"`
	AvgTempC     float64 `json:"temp_c"`
	Condition    string  `json:"condition"`
	Icon         string  `json:"icon"`
	ChanceOfRain float64 `json:"chance_of_rain"`
	Humidity     float64 `json:"humidity"`
}

// Alert is an active weather alert.
type Alert struct {
	Headline string `json:"message"`
	Severity string `json:"severity"`
}

// Forecast is the decoded provider response plus current conditions.
type Forecast struct {
	LocationName     string    `json:"location_name"`
	CurrentTempC     float64   `json:"current_temp"`
	CurrentCondition string    `json:"current_condition"`
	CurrentIcon      string    `json:"current_icon"`
	CurrentHumidity  float64   `json:"current_humidity"`
	PrecipMM         float64   `json:"precip_mm"`
	Alerts           []Alert   `json:"alerts"`
	Days             []Day     `json:"forecast"`
	FetchedAt        time.Time `json:"fetched_at"`
	Stale            bool      `json:"stale"`
}

// Client fetches forecasts and keeps the last good response so the
// dashboard keeps working through provider outages.
type Client struct {
	cfg    config.WeatherConfig
	http   *http.Client
	log    *slog.Logger
	clock  func() time.Time
	mu     sync.Mutex
	cached *Forecast
}

func NewClient(cfg config.WeatherConfig, log *slog.Logger) *Client {
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: 15 * time.Second},
		log:   log.With(slog.String("component", "weather")),
		clock: time.Now,
	}
}

// providerResponse mirrors the WeatherAPI forecast.json shape, trimmed to
// the fields the dashboards consume.
type providerResponse struct {
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
	Current struct {
		TempC     float64 `json:"temp_c"`
		Humidity  float64 `json:"humidity"`
		PrecipMM  float64 `json:"precip_mm"`
		Condition struct {
			Text string `json:"text"`
			Icon string `json:"icon"`
		} `json:"condition"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				AvgTempC     float64 `json:"avgtemp_c"`
				AvgHumidity  float64 `json:"avghumidity"`
				ChanceOfRain float64 `json:"daily_chance_of_rain"`
				Condition    struct {
					Text string `json:"text"`
					Icon string `json:"icon"`
				} `json:"condition"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
	Alerts struct {
		Alert []struct {
			Headline string `json:"headline"`
		} `json:"alert"`
	} `json:"alerts"`
}

// Forecast returns the current forecast, serving the cached copy while it
// is fresh and falling back to a stale copy when the provider fails.
func (c *Client) Forecast(ctx context.Context) (Forecast, error) {
	c.mu.Lock()
	cached := c.cached
	c.mu.Unlock()

	ttl := time.Duration(c.cfg.CacheTTLMin) * time.Minute
	if cached != nil && ttl > 0 && c.clock().Sub(cached.FetchedAt) < ttl {
		return *cached, nil
	}

	fresh, err := c.fetch(ctx)
	if err != nil {
		if cached != nil {
			c.log.Warn("weather fetch failed, serving cached forecast", slog.String("error", err.Error()))
			stale := *cached
			stale.Stale = true
			return stale, nil
		}
		return Forecast{}, err
	}

	c.mu.Lock()
	c.cached = &fresh
	c.mu.Unlock()
	return fresh, nil
}

func (c *Client) fetch(ctx context.Context) (Forecast, error) {
	query := url.Values{}
	query.Set("key", c.cfg.APIKey)
	query.Set("q", fmt.Sprintf("%v,%v", c.cfg.Latitude, c.cfg.Longitude))
	query.Set("days", fmt.Sprintf("%d", c.cfg.ForecastDays))
	query.Set("aqi", "no")
	query.Set("alerts", "yes")

	endpoint := fmt.Sprintf("%s/forecast.json?%s", c.cfg.Endpoint, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Forecast{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Forecast{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return Forecast{}, fmt.Errorf("weather provider returned status %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Forecast{}, err
	}
	var decoded providerResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Forecast{}, fmt.Errorf("decode weather response: %w", err)
	}

	forecast := Forecast{
		LocationName:     decoded.Location.Name,
		CurrentTempC:     decoded.Current.TempC,
		CurrentCondition: decoded.Current.Condition.Text,
		CurrentIcon:      decoded.Current.Condition.Icon,
		CurrentHumidity:  decoded.Current.Humidity,
		PrecipMM:         decoded.Current.PrecipMM,
		FetchedAt:        c.clock().UTC(),
	}
	for _, a := range decoded.Alerts.Alert {
		forecast.Alerts = append(forecast.Alerts, Alert{Headline: a.Headline, Severity: "high"})
	}
	for _, d := range decoded.Forecast.ForecastDay {
		forecast.Days = append(forecast.Days, Day{
			Date:         d.Date,
			AvgTempC:     d.Day.AvgTempC,
			Condition:    d.Day.Condition.Text,
			Icon:         d.Day.Condition.Icon,
			ChanceOfRain: d.Day.ChanceOfRain,
			Humidity:     d.Day.AvgHumidity,
		})
	}
	return forecast, nil
}
