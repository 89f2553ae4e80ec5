package forecast

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/i474232898/weather-forecast/internal/weather"
	"github.com/jonboulle/clockwork"
)

type options struct {
	clock  clockwork.Clock
	logger *slog.Logger
	forest ForestConfig
}

// Option configures a Trainer.
type Option func(*options)

// WithClock sets the time source for TrainedAt.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithForest overrides DefaultForestConfig.
func WithForest(cfg ForestConfig) Option {
	return func(o *options) { o.forest = cfg }
}

// Trainer fits per-city bundles and stores them in a Repository.
type Trainer struct {
	repo   Repository
	clock  clockwork.Clock
	logger *slog.Logger
	forest ForestConfig
}

func NewTrainer(repo Repository, opts ...Option) *Trainer {
	o := options{clock: clockwork.NewRealClock(), logger: slog.Default(), forest: DefaultForestConfig}
	for _, opt := range opts {
		opt(&o)
	}
	return &Trainer{repo: repo, clock: o.clock, logger: o.logger, forest: o.forest}
}

// Train fits a bundle on obs, persists it under the city of obs (replacing
// any previous bundle) and returns it with its in-sample metrics.
func (t *Trainer) Train(ctx context.Context, obs []weather.Observation) (*Bundle, Metrics, error) {
	if len(obs) < weather.MinTrainingObservations {
		return nil, nil, weather.InsufficientData(len(obs))
	}
	city, err := singleCity(obs)
	if err != nil {
		return nil, nil, err
	}

	features := BuildFeatures(obs)
	scaler, err := FitScaler(features.X)
	if err != nil {
		return nil, nil, err
	}
	x, err := scaler.TransformAll(features.X)
	if err != nil {
		return nil, nil, err
	}

	yTemp, yHumidity, yPrecip := targets(obs)
	b := &Bundle{
		City:    city,
		Scaler:  scaler,
		Encoder: FitEncoder(features.Conditions),
		Metrics: make(Metrics, len(MetricKeys)),
	}

	for _, target := range []struct {
		prefix string
		y      []float64
		dst    **Forest
	}{
		{PrefixTemperature, yTemp, &b.Temperature},
		{PrefixHumidity, yHumidity, &b.Humidity},
		{PrefixPrecipitation, yPrecip, &b.Precipitation},
	} {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		f, err := FitForest(x, target.y, t.forest)
		if err != nil {
			return nil, nil, fmt.Errorf("fit %s: %w", target.prefix, err)
		}
		*target.dst = f
		b.Metrics.record(target.prefix, target.y, f.PredictAll(x))
	}

	b.TrainedAt = t.clock.Now().UTC()
	if err := t.repo.Put(ctx, b); err != nil {
		return nil, nil, fmt.Errorf("store bundle for %s: %w", city, err)
	}

	t.logger.Info("model trained",
		"city", city,
		"rows", len(obs),
		"temp_rmse", b.Metrics["temp_rmse"],
	)
	return b, b.Metrics, nil
}

// singleCity returns the city shared by every observation.
func singleCity(obs []weather.Observation) (string, error) {
	city := obs[0].City
	for _, o := range obs[1:] {
		if o.City != city {
			return "", &weather.ValidationError{Field: "city", Reason: "must be the same for every observation"}
		}
	}
	if city == "" {
		return "", &weather.ValidationError{Field: "city", Reason: "is required"}
	}
	return city, nil
}
