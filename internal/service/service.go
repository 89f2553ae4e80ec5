// Package service exposes the operations of the weather archive and
// forecaster to transports (HTTP, CLI, scheduler).
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/i474232898/weather-forecast/internal/forecast"
	"github.com/i474232898/weather-forecast/internal/observability"
	"github.com/i474232898/weather-forecast/internal/weather"
	"github.com/jonboulle/clockwork"
)

// Store is the persistence the service needs.
type Store interface {
	weather.ObservationStore
	weather.OperationLog
}

// Config holds tunables with their defaults applied by New.
type Config struct {
	// TrainingWindow is how many of the most recent rows train and forecast read.
	TrainingWindow int
	// DefaultRangeDays is the ingest range used when no dates are given.
	DefaultRangeDays int
}

const (
	defaultTrainingWindow = 30
	defaultRangeDays      = 10
)

// Service implements ingest, query, training and forecasting for all cities.
type Service struct {
	store     Store
	sources   []weather.Source
	trainer   *forecast.Trainer
	generator *forecast.Generator
	gaps      *weather.GapResolver

	cfg     Config
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	// per-city write locks; key: city, value: *sync.Mutex
	locks sync.Map
}

// Option configures a Service.
type Option func(*Service)

func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithConfig(cfg Config) Option {
	return func(s *Service) { s.cfg = cfg }
}

// New creates a Service. Sources are queried concurrently on ingest and their
// results merged per day.
func New(st Store, sources []weather.Source, trainer *forecast.Trainer, generator *forecast.Generator, opts ...Option) *Service {
	s := &Service{
		store:     st,
		sources:   sources,
		trainer:   trainer,
		generator: generator,
		gaps:      weather.NewGapResolver(st),
		clock:     clockwork.NewRealClock(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.TrainingWindow <= 0 {
		s.cfg.TrainingWindow = defaultTrainingWindow
	}
	if s.cfg.DefaultRangeDays <= 0 {
		s.cfg.DefaultRangeDays = defaultRangeDays
	}
	if s.metrics == nil {
		s.metrics = observability.NewMetricsForTesting()
	}
	return s
}

func (s *Service) today() time.Time {
	return weather.Day(s.clock.Now())
}

// lock serializes writes (ingest, train) for one city.
func (s *Service) lock(city string) func() {
	m, _ := s.locks.LoadOrStore(city, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func requireCity(city string) (string, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return "", &weather.ValidationError{Field: "city", Reason: "is required"}
	}
	return city, nil
}

// ListCities returns every city with stored observations.
func (s *Service) ListCities(ctx context.Context) ([]string, error) {
	return s.store.DistinctCities(ctx)
}

// GetObservations returns stored rows newest first. An empty city matches all
// cities; a nil sinceDays returns the full history, otherwise rows dated on or
// after today minus sinceDays.
func (s *Service) GetObservations(ctx context.Context, city string, sinceDays *int) ([]weather.Observation, error) {
	var since *time.Time
	if sinceDays != nil {
		if *sinceDays < 0 {
			return nil, &weather.ValidationError{Field: "days", Reason: "must be >= 0"}
		}
		d := s.today().AddDate(0, 0, -*sinceDays)
		since = &d
	}
	obs, err := s.store.Query(ctx, strings.TrimSpace(city), since)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	return obs, nil
}

// GetOperationLog returns up to limit entries newest first.
func (s *Service) GetOperationLog(ctx context.Context, city string, limit int) ([]weather.OperationLogEntry, error) {
	return s.store.List(ctx, strings.TrimSpace(city), limit)
}

// GetAvailability reports the stored extent of city and the days missing
// from [start, end]. Omitted bounds default to the stored extent.
func (s *Service) GetAvailability(ctx context.Context, city string, start, end *time.Time) (weather.Availability, error) {
	city, err := requireCity(city)
	if err != nil {
		return weather.Availability{}, err
	}

	ext, err := s.store.DateExtent(ctx, city)
	if err != nil {
		return weather.Availability{}, fmt.Errorf("date extent: %w", err)
	}

	av := weather.Availability{
		City:         city,
		Available:    ext.Count > 0,
		MinDate:      ext.MinDate,
		MaxDate:      ext.MaxDate,
		Count:        ext.Count,
		MissingDates: []time.Time{},
	}

	lo, hi := start, end
	if lo == nil {
		lo = ext.MinDate
	}
	if hi == nil {
		hi = ext.MaxDate
	}
	if lo == nil || hi == nil {
		return av, nil
	}

	missing, err := s.gaps.MissingDates(ctx, city, *lo, *hi)
	if err != nil {
		return weather.Availability{}, err
	}
	av.MissingDates = weather.SortDates(missing)
	return av, nil
}

// recent returns the training window of city, newest first.
func (s *Service) recent(ctx context.Context, city string) ([]weather.Observation, error) {
	obs, err := s.store.Query(ctx, city, nil)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	if len(obs) > s.cfg.TrainingWindow {
		obs = obs[:s.cfg.TrainingWindow]
	}
	return obs, nil
}
