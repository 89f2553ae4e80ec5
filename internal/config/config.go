package config

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

type AppConfig struct {
	Port      string
	LogLevel  string
	LogFormat string

	// DatabasePath is the SQLite file; ":memory:" keeps everything in process.
	DatabasePath string
	// ArtifactDir holds trained bundles; empty keeps them in memory.
	ArtifactDir string

	TrainingWindow  int
	ForecastMaxDays int

	// FetchInterval controls how often the scheduler backfills each city.
	FetchInterval time.Duration
	BackfillDays  int

	// Cities backfilled by the scheduler.
	Cities  []string
	Sources []string

	WeatherAPIKey     string
	OpenWeatherAPIKey string
	GeocoderAPIKey    string

	HTTPTimeout     time.Duration
	ShutdownTimeout time.Duration

	ForestTrees int
	ForestSeed  uint64
}

// Load reads configuration from .env and the environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	return fromEnv(os.LookupEnv)
}

func fromEnv(lookup func(string) (string, bool)) (*AppConfig, error) {
	e := env{lookup: lookup}
	cfg := &AppConfig{
		Port:              e.str("PORT", "8080"),
		LogLevel:          e.str("LOG_LEVEL", "info"),
		LogFormat:         e.str("LOG_FORMAT", "json"),
		DatabasePath:      e.str("DATABASE_PATH", "weather.db"),
		ArtifactDir:       e.raw("ARTIFACT_DIR", "artifacts"),
		TrainingWindow:    e.positive("TRAINING_WINDOW", 30),
		ForecastMaxDays:   e.positive("FORECAST_MAX_DAYS", 14),
		FetchInterval:     e.duration("FETCH_INTERVAL", time.Hour),
		BackfillDays:      e.positive("BACKFILL_DAYS", 10),
		Cities:            list(e.str("WEATHER_CITIES", "")),
		Sources:           list(e.str("SOURCES", "synthetic")),
		WeatherAPIKey:     e.str("WEATHERAPI_API_KEY", ""),
		OpenWeatherAPIKey: e.str("OPENWEATHER_API_KEY", ""),
		GeocoderAPIKey:    e.str("GEOCODER_API_KEY", ""),
		HTTPTimeout:       e.duration("HTTP_TIMEOUT", 10*time.Second),
		ShutdownTimeout:   e.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		ForestTrees:       e.positive("FOREST_TREES", 100),
		ForestSeed:        e.unsigned("FOREST_SEED", 42),
	}
	if e.err != nil {
		return nil, e.err
	}

	for _, s := range cfg.Sources {
		switch s {
		case "synthetic", "openmeteo", "weatherapi", "openweather":
		default:
			return nil, fmt.Errorf("invalid SOURCES: unknown source %q", s)
		}
	}
	return cfg, nil
}

// env collects the first parse error so Load can report it by key.
type env struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *env) get(key string) string {
	v, _ := e.lookup(key)
	return strings.TrimSpace(v)
}

func (e *env) str(key, def string) string {
	if v := e.get(key); v != "" {
		return v
	}
	return def
}

// raw is like str but keeps an explicitly empty value.
func (e *env) raw(key, def string) string {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	return strings.TrimSpace(v)
}

func (e *env) positive(key string, def int) int {
	v := e.get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err == nil && n <= 0 {
		err = errors.New("must be positive")
	}
	if err != nil {
		e.fail(key, err)
		return def
	}
	return n
}

func (e *env) unsigned(key string, def uint64) uint64 {
	v := e.get(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return n
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v := e.get(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err == nil && d <= 0 {
		err = errors.New("must be positive")
	}
	if err != nil {
		e.fail(key, err)
		return def
	}
	return d
}

func (e *env) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}

func list(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
