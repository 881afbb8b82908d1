package confs

import (
	"log/slog"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_ADDR", "CORS_ALLOWED_ORIGINS", "COLLECTOR_HTTP_TIMEOUT", "COLLECTOR_INTERVAL",
		"COLLECTOR_RUN_HISTORY", "DB_URL", "DB_HOST", "DB_AUTO_MIGRATE", "WEATHER_API_URL",
		"INFLUX_URL", "INFLUX_TOKEN", "INFLUX_ORG", "INFLUX_BUCKET",
	} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.HTTPAddr != "0.0.0.0:3536" {
		t.Errorf("HTTPAddr: got %q", cfg.HTTPAddr)
	}
	if cfg.Collector.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout: got %v, want 30s", cfg.Collector.HTTPTimeout)
	}
	if cfg.Collector.Interval != 0 {
		t.Errorf("Interval: got %v, want 0", cfg.Collector.Interval)
	}
	if cfg.Collector.RunHistory != 20 {
		t.Errorf("RunHistory: got %d, want 20", cfg.Collector.RunHistory)
	}
	if cfg.Database.Configured() {
		t.Error("database should not be configured without env")
	}
	if cfg.Influx.Enabled() {
		t.Error("influx should be disabled without env")
	}
	if cfg.Weather.URL != defaultWeatherURL {
		t.Errorf("Weather.URL: got %q", cfg.Weather.URL)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("COLLECTOR_HTTP_TIMEOUT", "5s")
	t.Setenv("COLLECTOR_INTERVAL", "10m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("DB_URL", "postgres://u:p@db/agro")
	t.Setenv("DB_AUTO_MIGRATE", "true")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Collector.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout: got %v", cfg.Collector.HTTPTimeout)
	}
	if cfg.Collector.Interval != 10*time.Minute {
		t.Errorf("Interval: got %v", cfg.Collector.Interval)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins: got %v", cfg.CORSOrigins)
	}
	if !cfg.Database.Configured() || !cfg.Database.AutoMigrate {
		t.Errorf("database: got %+v", cfg.Database)
	}
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"COLLECTOR_HTTP_TIMEOUT", "soon"},
		{"COLLECTOR_INTERVAL", "-1m"},
		{"COLLECTOR_RUN_HISTORY", "many"},
		{"DB_AUTO_MIGRATE", "perhaps"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := FromEnv(); err == nil {
				t.Errorf("%s=%q: expected error", tt.key, tt.value)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"chatty", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
