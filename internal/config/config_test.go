package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Bus.Servers[0] != "nats://localhost:4222" {
		t.Fatalf("expected default server, got %v", cfg.Bus.Servers)
	}
	if cfg.Assistant.AckDelayMS != 3000 {
		t.Fatalf("expected default ack delay 3000, got %d", cfg.Assistant.AckDelayMS)
	}
	if cfg.Assistant.CaptureRetryWaitMS != 200 {
		t.Fatalf("expected default capture retry wait 200, got %d", cfg.Assistant.CaptureRetryWaitMS)
	}
	if cfg.Classifier.Mode != "mock" {
		t.Fatalf("expected mock classifier by default, got %s", cfg.Classifier.Mode)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("KRISHI_BUS_SERVERS", "nats://one:4222, nats://two:4222")
	t.Setenv("KRISHI_BUS_USERNAME", "alice")
	t.Setenv("KRISHI_BUS_PASSWORD", "secret")
	t.Setenv("KRISHI_RECORD_STORE_PATH", "./tmp.db")
	t.Setenv("KRISHI_RECORD_STORE_RETENTION_DAYS", "7")
	t.Setenv("KRISHI_CLASSIFIER_MODE", "gemini")
	t.Setenv("KRISHI_CLASSIFIER_API_KEY", "k")
	t.Setenv("KRISHI_ASSISTANT_DEFAULT_LANGUAGE", "mr-IN")
	t.Setenv("KRISHI_ASSISTANT_ACK_DELAY_MS", "1500")
	t.Setenv("KRISHI_WEATHER_LATITUDE", "18.52")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Bus.Servers) != 2 {
		t.Fatalf("expected 2 servers, got %v", cfg.Bus.Servers)
	}
	if cfg.Bus.Username != "alice" || cfg.Bus.Password != "secret" {
		t.Fatalf("expected credentials override")
	}
	if cfg.RecordStore.Path != "./tmp.db" {
		t.Fatalf("expected record store path override")
	}
	if cfg.RecordStore.RetentionDays != 7 {
		t.Fatalf("expected retention days override")
	}
	if cfg.Classifier.Mode != "gemini" {
		t.Fatalf("expected classifier mode override")
	}
	if cfg.Assistant.DefaultLanguage != "mr-IN" {
		t.Fatalf("expected default language override")
	}
	if cfg.Assistant.AckDelayMS != 1500 {
		t.Fatalf("expected ack delay override")
	}
	if cfg.Weather.Latitude != 18.52 {
		t.Fatalf("expected latitude override, got %v", cfg.Weather.Latitude)
	}
}

func TestValidateRejectsBadMode(t *testing.T) {
	t.Setenv("KRISHI_CAPTURE_MODE", "telepathy")
	if _, err := Load(""); err == nil {
		t.Fatal("expected validation error for unknown capture mode")
	}
}
