package confs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingDatabaseConfig = errors.New("missing required database configuration: DB_URL or (DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME)")

const defaultWeatherURL = "https://api.openweathermap.org"

type DatabaseConfig struct {
	URL         string
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	AutoMigrate bool
	LogLevel    string
}

// Configured reports whether enough settings exist to reach the database.
func (c DatabaseConfig) Configured() bool {
	if c.URL != "" {
		return true
	}
	return c.Host != "" && c.Port != "" && c.User != "" && c.Password != "" && c.Name != ""
}

type CollectorConfig struct {
	HTTPTimeout time.Duration
	Interval    time.Duration
	RunHistory  int
}

type WeatherConfig struct {
	URL    string
	APIKey string
}

type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// Enabled is true only when every Influx setting is present.
func (c InfluxConfig) Enabled() bool {
	return c.URL != "" && c.Token != "" && c.Org != "" && c.Bucket != ""
}

type Config struct {
	HTTPAddr    string
	CORSOrigins []string
	LogLevel    string
	LogFormat   string
	Database    DatabaseConfig
	Collector   CollectorConfig
	Weather     WeatherConfig
	Influx      InfluxConfig
}

// LoadConfig loads environment variables from a .env file if present.
func LoadConfig() error {
	// Load .env if it exists; ignore error if file not found
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("could not load .env", "error", err)
		}
	}
	return nil
}

// Load reads .env (if any) and builds the typed configuration from the environment.
func Load() (*Config, error) {
	if err := LoadConfig(); err != nil {
		return nil, err
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current process environment.
func FromEnv() (*Config, error) {
	timeout, err := durationEnv("COLLECTOR_HTTP_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	interval, err := durationEnv("COLLECTOR_INTERVAL", 0)
	if err != nil {
		return nil, err
	}
	runHistory, err := intEnv("COLLECTOR_RUN_HISTORY", 20)
	if err != nil {
		return nil, err
	}
	autoMigrate, err := boolEnv("DB_AUTO_MIGRATE", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:    stringEnv("HTTP_ADDR", "0.0.0.0:3536"),
		CORSOrigins: listEnv("CORS_ALLOWED_ORIGINS"),
		LogLevel:    stringEnv("LOG_LEVEL", "info"),
		LogFormat:   stringEnv("LOG_FORMAT", "text"),
		Database: DatabaseConfig{
			URL:         os.Getenv("DB_URL"),
			Host:        os.Getenv("DB_HOST"),
			Port:        os.Getenv("DB_PORT"),
			User:        os.Getenv("DB_USER"),
			Password:    os.Getenv("DB_PASSWORD"),
			Name:        os.Getenv("DB_NAME"),
			AutoMigrate: autoMigrate,
			LogLevel:    stringEnv("DB_LOG_LEVEL", "warn"),
		},
		Collector: CollectorConfig{
			HTTPTimeout: timeout,
			Interval:    interval,
			RunHistory:  runHistory,
		},
		Weather: WeatherConfig{
			URL:    stringEnv("WEATHER_API_URL", defaultWeatherURL),
			APIKey: os.Getenv("WEATHER_API_KEY"),
		},
		Influx: InfluxConfig{
			URL:    os.Getenv("INFLUX_URL"),
			Token:  os.Getenv("INFLUX_TOKEN"),
			Org:    os.Getenv("INFLUX_ORG"),
			Bucket: os.Getenv("INFLUX_BUCKET"),
		},
	}
	return cfg, nil
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func listEnv(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	if raw == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", key, raw)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func boolEnv(key string, def bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}
