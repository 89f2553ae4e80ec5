package store

import (
	"log/slog"

	"github.com/i474232898/weather-forecast/internal/weather"
	"github.com/jonboulle/clockwork"
)

// Store bundles the observation table and the operation log behind one handle.
type Store interface {
	weather.ObservationStore
	weather.OperationLog
	Close() error
}

type options struct {
	clock  clockwork.Clock
	logger *slog.Logger
}

// Option configures a store.
type Option func(*options)

// WithClock sets the time source used for created_at stamps.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger that reports skipped rows.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{clock: clockwork.NewRealClock(), logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// prepare normalizes a batch, dropping invalid rows and collapsing duplicate
// (city, date) keys so the last occurrence wins. Input order is preserved
// for the surviving rows.
func prepare(obs []weather.Observation, logger *slog.Logger) []weather.Observation {
	index := make(map[weather.ObservationKey]int, len(obs))
	out := make([]weather.Observation, 0, len(obs))

	for _, o := range obs {
		n, err := weather.Normalize(o)
		if err != nil {
			logger.Warn("skipping invalid observation",
				"city", o.City,
				"date", o.Date.Format(weather.DateLayout),
				"error", err,
			)
			continue
		}
		k := n.Key()
		if i, ok := index[k]; ok {
			out[i] = n
			continue
		}
		index[k] = len(out)
		out = append(out, n)
	}
	return out
}
