package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/i474232898/weather-forecast/internal/weather"
)

// Generator produces forecasts from stored bundles, training lazily on a miss.
type Generator struct {
	repo      Repository
	trainer   *Trainer
	autoTrain bool
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithAutoTrain controls whether a missing bundle is trained on demand.
// When disabled, forecasting a city without a bundle fails with
// weather.ErrArtifactMissing.
func WithAutoTrain(enabled bool) GeneratorOption {
	return func(g *Generator) { g.autoTrain = enabled }
}

func NewGenerator(repo Repository, trainer *Trainer, opts ...GeneratorOption) *Generator {
	g := &Generator{repo: repo, trainer: trainer, autoTrain: true}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GetOrTrain returns the stored bundle for city. On a miss it trains one on
// obs; trained reports whether that happened.
func (g *Generator) GetOrTrain(ctx context.Context, city string, obs []weather.Observation) (b *Bundle, trained bool, err error) {
	b, err = g.repo.Get(ctx, city)
	if err == nil {
		return b, false, nil
	}
	if !errors.Is(err, weather.ErrArtifactMissing) || !g.autoTrain {
		return nil, false, err
	}

	b, _, err = g.trainer.Train(ctx, obs)
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Forecast predicts horizon days following the latest date in obs.
//
// Calendar features advance with each step while the meteorological
// features stay at the most recent observation's values.
func (g *Generator) Forecast(ctx context.Context, obs []weather.Observation, horizon int) ([]weather.ForecastPoint, error) {
	if horizon < 1 {
		return nil, &weather.ValidationError{Field: "horizon", Reason: "must be >= 1"}
	}
	if len(obs) < weather.MinTrainingObservations {
		return nil, weather.InsufficientData(len(obs))
	}
	city, err := singleCity(obs)
	if err != nil {
		return nil, err
	}

	b, _, err := g.GetOrTrain(ctx, city, obs)
	if err != nil {
		return nil, err
	}

	last := latest(obs)
	lastDate := weather.Day(last.Date)

	points := make([]weather.ForecastPoint, 0, horizon)
	for i := 1; i <= horizon; i++ {
		date := lastDate.AddDate(0, 0, i)
		row, err := b.Scaler.Transform(featureRow(date, last))
		if err != nil {
			return nil, fmt.Errorf("scale features for %s: %w", date.Format(weather.DateLayout), err)
		}

		temp := b.Temperature.Predict(row)
		humidity := b.Humidity.Predict(row)
		precip := b.Precipitation.Predict(row)

		points = append(points, weather.ForecastPoint{
			City:          city,
			Date:          date,
			Temperature:   round1(temp),
			Humidity:      round1(humidity),
			Precipitation: round1(precip),
			Condition:     weather.DeriveCondition(temp, humidity, precip),
		})
	}
	return points, nil
}

// latest returns the observation with the greatest date.
func latest(obs []weather.Observation) weather.Observation {
	last := obs[0]
	for _, o := range obs[1:] {
		if o.Date.After(last.Date) {
			last = o
		}
	}
	return last
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
