package service

import (
	"context"
	"time"

	"github.com/i474232898/weather-forecast/internal/forecast"
	"github.com/i474232898/weather-forecast/internal/weather"
)

// TrainResult reports a finished training run.
type TrainResult struct {
	City      string           `json:"city"`
	TrainedAt time.Time        `json:"trainedAt"`
	Rows      int              `json:"rows"`
	Metrics   forecast.Metrics `json:"metrics"`
}

// Train fits and stores a new bundle for city from its most recent rows.
func (s *Service) Train(ctx context.Context, city string) (TrainResult, error) {
	city, err := requireCity(city)
	if err != nil {
		return TrainResult{}, err
	}

	unlock := s.lock(city)
	defer unlock()

	obs, err := s.recent(ctx, city)
	if err != nil {
		return TrainResult{}, err
	}

	started := s.clock.Now()
	b, metrics, err := s.trainer.Train(ctx, obs)
	if err != nil {
		return TrainResult{}, err
	}
	s.metrics.TrainingDuration.Observe(s.clock.Since(started).Seconds())
	s.metrics.TrainingRuns.WithLabelValues("explicit").Inc()

	return TrainResult{City: city, TrainedAt: b.TrainedAt, Rows: len(obs), Metrics: metrics}, nil
}

// GetForecast forecasts horizon days after the latest stored observation of
// city, training a bundle first if the city has none.
func (s *Service) GetForecast(ctx context.Context, city string, horizon int) (points []weather.ForecastPoint, err error) {
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		s.metrics.ForecastRequests.WithLabelValues(outcome).Inc()
	}()

	city, err = requireCity(city)
	if err != nil {
		return nil, err
	}
	if horizon < 1 {
		return nil, &weather.ValidationError{Field: "days", Reason: "must be >= 1"}
	}

	obs, err := s.recent(ctx, city)
	if err != nil {
		return nil, err
	}
	if len(obs) < weather.MinTrainingObservations {
		return nil, weather.InsufficientData(len(obs))
	}

	unlock := s.lock(city)
	started := s.clock.Now()
	_, trained, err := s.generator.GetOrTrain(ctx, city, obs)
	unlock()
	if err != nil {
		return nil, err
	}
	if trained {
		s.metrics.TrainingDuration.Observe(s.clock.Since(started).Seconds())
		s.metrics.TrainingRuns.WithLabelValues("lazy").Inc()
		s.logger.Info("trained missing bundle on demand", "city", city, "rows", len(obs))
	}

	return s.generator.Forecast(ctx, obs, horizon)
}
