package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type TelemetryConfig struct {
	LogLevel       string `yaml:"log_level"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	OTLPInsecure   bool   `yaml:"otlp_insecure"`
	PrometheusBind string `yaml:"prometheus_bind"`
}

type HTTPConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type Config struct {
	RuntimeName string            `yaml:"runtime_name"`
	Environment string            `yaml:"environment"`
	HTTP        HTTPConfig        `yaml:"http"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Bus         BusConfig         `yaml:"bus"`
	RecordStore RecordStoreConfig `yaml:"record_store"`
	Capture     CaptureConfig     `yaml:"capture"`
	Synth       SynthConfig       `yaml:"synth"`
	Classifier  ClassifierConfig  `yaml:"classifier"`
	Weather     WeatherConfig     `yaml:"weather"`
	Assistant   AssistantConfig   `yaml:"assistant"`
}

type BusConfig struct {
	Embedded       bool     `yaml:"embedded"`
	Port           int      `yaml:"port"`
	StoreDir       string   `yaml:"store_dir"`
	Servers        []string `yaml:"servers"`
	Username       string   `yaml:"username"`
	Password       string   `yaml:"password"`
	Token          string   `yaml:"token"`
	TLSInsecure    bool     `yaml:"tls_insecure"`
	ConnectTimeout int      `yaml:"connect_timeout_ms"`
}

type RecordStoreConfig struct {
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
	VacuumOnStart bool   `yaml:"vacuum_on_start"`
}

type CaptureConfig struct {
	Mode            string `yaml:"mode"` // mock, exec
	RecordCommand   string `yaml:"record_command"`
	Command         string `yaml:"command"`
	SampleRate      int    `yaml:"sample_rate"`
	Channels        int    `yaml:"channels"`
	MaxUtteranceSec int    `yaml:"max_utterance_sec"`
}

type SynthConfig struct {
	Mode       string `yaml:"mode"` // mock, exec
	Command    string `yaml:"command"`
	Voice      string `yaml:"voice"`
	SampleRate int    `yaml:"sample_rate"`
	Channels   int    `yaml:"channels"`
}

type ClassifierConfig struct {
	Mode        string  `yaml:"mode"` // mock, gemini, exec
	Endpoint    string  `yaml:"endpoint"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Command     string  `yaml:"command"`
	Temperature float64 `yaml:"temperature"`
	TimeoutMS   int     `yaml:"timeout_ms"`
}

type WeatherConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Endpoint     string  `yaml:"endpoint"`
	APIKey       string  `yaml:"api_key"`
	Latitude     float64 `yaml:"latitude"`
	Longitude    float64 `yaml:"longitude"`
	ForecastDays int     `yaml:"forecast_days"`
	CacheTTLMin  int     `yaml:"cache_ttl_min"`
}

type AssistantConfig struct {
	FarmerID           int    `yaml:"farmer_id"`
	DefaultLanguage    string `yaml:"default_language"`
	AckDelayMS         int    `yaml:"ack_delay_ms"`
	CaptureRetryWaitMS int    `yaml:"capture_retry_wait_ms"`
}

func Default() Config {
	return Config{
		RuntimeName: "krishi-runtime",
		Environment: "development",
		HTTP: HTTPConfig{
			Bind: "0.0.0.0",
			Port: 8080,
		},
		Telemetry: TelemetryConfig{
			LogLevel:       "info",
			OTLPEndpoint:   "",
			OTLPInsecure:   true,
			PrometheusBind: ":9091",
		},
		Bus: BusConfig{
			Embedded:       true,
			Port:           4222,
			StoreDir:       "./data/nats",
			Servers:        []string{"nats://localhost:4222"},
			ConnectTimeout: 2000,
		},
		RecordStore: RecordStoreConfig{
			Path:          "./data/krishi-records.db",
			RetentionDays: 0,
		},
		Capture: CaptureConfig{
			Mode:            "mock",
			SampleRate:      16000,
			Channels:        1,
			MaxUtteranceSec: 30,
		},
		Synth: SynthConfig{
			Mode:       "mock",
			SampleRate: 22050,
			Channels:   1,
		},
		Classifier: ClassifierConfig{
			Mode:        "mock",
			Endpoint:    "https://generativelanguage.googleapis.com",
			Model:       "gemini-3-flash-preview",
			Temperature: 0.1,
			TimeoutMS:   20000,
		},
		Weather: WeatherConfig{
			Enabled:      true,
			Endpoint:     "https://api.weatherapi.com/v1",
			Latitude:     20.5937,
			Longitude:    78.9629,
			ForecastDays: 5,
			CacheTTLMin:  30,
		},
		Assistant: AssistantConfig{
			FarmerID:           1,
			DefaultLanguage:    "hi-IN",
			AckDelayMS:         3000,
			CaptureRetryWaitMS: 200,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.RuntimeName, "KRISHI_RUNTIME_NAME")
	overrideString(&cfg.Environment, "KRISHI_RUNTIME_ENVIRONMENT")
	overrideString(&cfg.HTTP.Bind, "KRISHI_HTTP_BIND")
	overrideInt(&cfg.HTTP.Port, "KRISHI_HTTP_PORT")
	overrideString(&cfg.Telemetry.LogLevel, "KRISHI_TELEMETRY_LOG_LEVEL")
	overrideString(&cfg.Telemetry.OTLPEndpoint, "KRISHI_TELEMETRY_OTLP_ENDPOINT")
	overrideBool(&cfg.Telemetry.OTLPInsecure, "KRISHI_TELEMETRY_OTLP_INSECURE")
	overrideString(&cfg.Telemetry.PrometheusBind, "KRISHI_TELEMETRY_PROMETHEUS_BIND")
	overrideBool(&cfg.Bus.Embedded, "KRISHI_BUS_EMBEDDED")
	overrideInt(&cfg.Bus.Port, "KRISHI_BUS_PORT")
	overrideString(&cfg.Bus.StoreDir, "KRISHI_BUS_STORE_DIR")
	overrideStringSlice(&cfg.Bus.Servers, "KRISHI_BUS_SERVERS")
	overrideString(&cfg.Bus.Username, "KRISHI_BUS_USERNAME")
	overrideString(&cfg.Bus.Password, "KRISHI_BUS_PASSWORD")
	overrideString(&cfg.Bus.Token, "KRISHI_BUS_TOKEN")
	overrideBool(&cfg.Bus.TLSInsecure, "KRISHI_BUS_TLS_INSECURE")
	overrideInt(&cfg.Bus.ConnectTimeout, "KRISHI_BUS_CONNECT_TIMEOUT_MS")
	overrideString(&cfg.RecordStore.Path, "KRISHI_RECORD_STORE_PATH")
	overrideInt(&cfg.RecordStore.RetentionDays, "KRISHI_RECORD_STORE_RETENTION_DAYS")
	overrideBool(&cfg.RecordStore.VacuumOnStart, "KRISHI_RECORD_STORE_VACUUM_ON_START")
	overrideString(&cfg.Capture.Mode, "KRISHI_CAPTURE_MODE")
	overrideString(&cfg.Capture.RecordCommand, "KRISHI_CAPTURE_RECORD_COMMAND")
	overrideString(&cfg.Capture.Command, "KRISHI_CAPTURE_COMMAND")
	overrideInt(&cfg.Capture.SampleRate, "KRISHI_CAPTURE_SAMPLE_RATE")
	overrideInt(&cfg.Capture.Channels, "KRISHI_CAPTURE_CHANNELS")
	overrideInt(&cfg.Capture.MaxUtteranceSec, "KRISHI_CAPTURE_MAX_UTTERANCE_SEC")
	overrideString(&cfg.Synth.Mode, "KRISHI_SYNTH_MODE")
	overrideString(&cfg.Synth.Command, "KRISHI_SYNTH_COMMAND")
	overrideString(&cfg.Synth.Voice, "KRISHI_SYNTH_VOICE")
	overrideInt(&cfg.Synth.SampleRate, "KRISHI_SYNTH_SAMPLE_RATE")
	overrideInt(&cfg.Synth.Channels, "KRISHI_SYNTH_CHANNELS")
	overrideString(&cfg.Classifier.Mode, "KRISHI_CLASSIFIER_MODE")
	overrideString(&cfg.Classifier.Endpoint, "KRISHI_CLASSIFIER_ENDPOINT")
	overrideString(&cfg.Classifier.APIKey, "KRISHI_CLASSIFIER_API_KEY")
	overrideString(&cfg.Classifier.Model, "KRISHI_CLASSIFIER_MODEL")
	overrideString(&cfg.Classifier.Command, "KRISHI_CLASSIFIER_COMMAND")
	overrideFloat(&cfg.Classifier.Temperature, "KRISHI_CLASSIFIER_TEMPERATURE")
	overrideInt(&cfg.Classifier.TimeoutMS, "KRISHI_CLASSIFIER_TIMEOUT_MS")
	overrideBool(&cfg.Weather.Enabled, "KRISHI_WEATHER_ENABLED")
	overrideString(&cfg.Weather.Endpoint, "KRISHI_WEATHER_ENDPOINT")
	overrideString(&cfg.Weather.APIKey, "KRISHI_WEATHER_API_KEY")
	overrideFloat(&cfg.Weather.Latitude, "KRISHI_WEATHER_LATITUDE")
	overrideFloat(&cfg.Weather.Longitude, "KRISHI_WEATHER_LONGITUDE")
	overrideInt(&cfg.Weather.ForecastDays, "KRISHI_WEATHER_FORECAST_DAYS")
	overrideInt(&cfg.Weather.CacheTTLMin, "KRISHI_WEATHER_CACHE_TTL_MIN")
	overrideInt(&cfg.Assistant.FarmerID, "KRISHI_ASSISTANT_FARMER_ID")
	overrideString(&cfg.Assistant.DefaultLanguage, "KRISHI_ASSISTANT_DEFAULT_LANGUAGE")
	overrideInt(&cfg.Assistant.AckDelayMS, "KRISHI_ASSISTANT_ACK_DELAY_MS")
	overrideInt(&cfg.Assistant.CaptureRetryWaitMS, "KRISHI_ASSISTANT_CAPTURE_RETRY_WAIT_MS")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideStringSlice(target *[]string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		parts := strings.Split(value, ",")
		var trimmed []string
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			*target = trimmed
		}
	}
}

func overrideFloat(target *float64, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			*target = parsed
		}
	}
}

func validate(cfg Config) error {
	if cfg.RuntimeName == "" {
		return errors.New("runtime_name must not be empty")
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return errors.New("http.port must be between 1 and 65535")
	}
	if cfg.Bus.Embedded {
		if cfg.Bus.Port <= 0 || cfg.Bus.Port > 65535 {
			return errors.New("bus.port must be between 1 and 65535 when embedded mode is enabled")
		}
	} else {
		if len(cfg.Bus.Servers) == 0 {
			return errors.New("bus.servers must not be empty when embedded mode is disabled")
		}
	}
	if cfg.Telemetry.PrometheusBind == "" {
		return errors.New("telemetry.prometheus_bind must not be empty")
	}
	if cfg.RecordStore.Path == "" {
		return errors.New("record_store.path must not be empty")
	}
	if cfg.RecordStore.RetentionDays < 0 {
		return errors.New("record_store.retention_days must be >= 0")
	}
	switch cfg.Capture.Mode {
	case "mock", "exec":
	default:
		return errors.New("capture.mode must be one of mock|exec")
	}
	if cfg.Capture.Mode == "exec" {
		if cfg.Capture.RecordCommand == "" {
			return errors.New("capture.record_command must be set when mode=exec")
		}
		if cfg.Capture.Command == "" {
			return errors.New("capture.command must be set when mode=exec")
		}
	}
	if cfg.Capture.SampleRate <= 0 {
		return errors.New("capture.sample_rate must be positive")
	}
	if cfg.Capture.Channels <= 0 {
		return errors.New("capture.channels must be positive")
	}
	switch cfg.Synth.Mode {
	case "mock", "exec":
	default:
		return errors.New("synth.mode must be one of mock|exec")
	}
	if cfg.Synth.Mode == "exec" && cfg.Synth.Command == "" {
		return errors.New("synth.command must be set when mode=exec")
	}
	switch cfg.Classifier.Mode {
	case "mock", "gemini", "exec":
	default:
		return errors.New("classifier.mode must be one of mock|gemini|exec")
	}
	if cfg.Classifier.Mode == "gemini" && cfg.Classifier.Endpoint == "" {
		return errors.New("classifier.endpoint must be set when mode=gemini")
	}
	if cfg.Classifier.Mode == "exec" && cfg.Classifier.Command == "" {
		return errors.New("classifier.command must be set when mode=exec")
	}
	if cfg.Classifier.TimeoutMS <= 0 {
		return errors.New("classifier.timeout_ms must be positive")
	}
	if cfg.Weather.Enabled {
		if cfg.Weather.Endpoint == "" {
			return errors.New("weather.endpoint must not be empty when weather is enabled")
		}
		if cfg.Weather.ForecastDays <= 0 {
			return errors.New("weather.forecast_days must be positive")
		}
		if cfg.Weather.CacheTTLMin < 0 {
			return errors.New("weather.cache_ttl_min must be >= 0")
		}
	}
	if cfg.Assistant.FarmerID <= 0 {
		return errors.New("assistant.farmer_id must be positive")
	}
	switch cfg.Assistant.DefaultLanguage {
	case "hi-IN", "mr-IN", "gu-IN", "en-US":
	default:
		return errors.New("assistant.default_language must be one of hi-IN|mr-IN|gu-IN|en-US")
	}
	if cfg.Assistant.AckDelayMS < 0 {
		return errors.New("assistant.ack_delay_ms must be >= 0")
	}
	if cfg.Assistant.CaptureRetryWaitMS < 0 {
		return errors.New("assistant.capture_retry_wait_ms must be >= 0")
	}
	return nil
}
