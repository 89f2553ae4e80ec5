// Package app assembles the service graph shared by the server and the CLI.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/i474232898/weather-forecast/internal/config"
	"github.com/i474232898/weather-forecast/internal/forecast"
	"github.com/i474232898/weather-forecast/internal/observability"
	"github.com/i474232898/weather-forecast/internal/service"
	"github.com/i474232898/weather-forecast/internal/store"
	"github.com/i474232898/weather-forecast/internal/weather"
	"github.com/i474232898/weather-forecast/internal/weather/providers"
	"github.com/jonboulle/clockwork"
)

const geocodeCacheSize = 256

// App is a fully wired service plus the resources it owns.
type App struct {
	Service *service.Service
	store   store.Store
}

// Close releases the store.
func (a *App) Close() error {
	return a.store.Close()
}

// Build wires store, artifact repository, sources, trainer and generator
// according to cfg.
func Build(cfg *config.AppConfig, logger *slog.Logger, metrics *observability.Metrics) (*App, error) {
	clock := clockwork.NewRealClock()

	st, err := openStore(cfg.DatabasePath, logger)
	if err != nil {
		return nil, err
	}

	repo, err := openRepository(cfg.ArtifactDir)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	sources, err := buildSources(cfg, clock, metrics)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	trainer := forecast.NewTrainer(repo,
		forecast.WithClock(clock),
		forecast.WithLogger(logger),
		forecast.WithForest(forecast.ForestConfig{Trees: cfg.ForestTrees, Seed: cfg.ForestSeed}),
	)
	generator := forecast.NewGenerator(repo, trainer)

	svc := service.New(st, sources, trainer, generator,
		service.WithClock(clock),
		service.WithLogger(logger),
		service.WithMetrics(metrics),
		service.WithConfig(service.Config{
			TrainingWindow:   cfg.TrainingWindow,
			DefaultRangeDays: cfg.BackfillDays,
		}),
	)

	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name())
	}
	logger.Info("service ready", "database", cfg.DatabasePath, "artifacts", cfg.ArtifactDir, "sources", names)

	return &App{Service: svc, store: st}, nil
}

func openStore(path string, logger *slog.Logger) (store.Store, error) {
	if path == ":memory:" {
		return store.NewMemoryStore(store.WithLogger(logger)), nil
	}
	st, err := store.NewSQLite(path, store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

func openRepository(dir string) (forecast.Repository, error) {
	if dir == "" {
		return forecast.NewMemoryRepository(), nil
	}
	repo, err := forecast.NewFileRepository(dir)
	if err != nil {
		return nil, fmt.Errorf("open artifact dir: %w", err)
	}
	return repo, nil
}

func buildSources(cfg *config.AppConfig, clock clockwork.Clock, metrics *observability.Metrics) ([]weather.Source, error) {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	// Known cities resolve offline; anything else goes to Google when a key is set.
	chain := providers.ChainGeocoder{providers.KnownCities}
	if cfg.GeocoderAPIKey != "" {
		chain = append(chain, providers.NewGoogleGeocoder(cfg.GeocoderAPIKey))
	}
	geo := providers.NewCachedGeocoder(chain, geocodeCacheSize, func(hit bool) {
		result := "miss"
		if hit {
			result = "hit"
		}
		metrics.GeocodeCache.WithLabelValues(result).Inc()
	})

	var sources []weather.Source
	for _, name := range cfg.Sources {
		switch name {
		case "synthetic":
			sources = append(sources, providers.NewSyntheticProvider())
		case "openmeteo":
			sources = append(sources, providers.NewOpenMeteoProvider(httpClient, geo))
		case "weatherapi":
			sources = append(sources, providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey))
		case "openweather":
			sources = append(sources, providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey, geo, clock))
		default:
			return nil, fmt.Errorf("unknown source %q", name)
		}
	}
	if len(sources) == 0 {
		return nil, errors.New("no sources configured")
	}
	return sources, nil
}
