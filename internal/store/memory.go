package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-forecast/internal/weather"
	"github.com/jonboulle/clockwork"
)

// CityHistory holds the observations of one city keyed by UTC day.
type CityHistory struct {
	Days map[time.Time]weather.Observation
}

// MemoryStore is a concurrency-safe in-memory implementation of Store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: city, value: history
	data map[string]*CityHistory

	// append-only, oldest first
	log []weather.OperationLogEntry

	clock  clockwork.Clock
	logger *slog.Logger
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := buildOptions(opts)
	return &MemoryStore{
		data:   make(map[string]*CityHistory),
		clock:  o.clock,
		logger: o.logger,
	}
}

// Upsert replaces any existing row with the same (city, date).
func (s *MemoryStore) Upsert(_ context.Context, obs []weather.Observation) (int, error) {
	rows := prepare(obs, s.logger)
	now := s.clock.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range rows {
		history, ok := s.data[o.City]
		if !ok {
			history = &CityHistory{Days: make(map[time.Time]weather.Observation)}
			s.data[o.City] = history
		}
		o.CreatedAt = now
		history.Days[o.Date] = o
	}
	return len(rows), nil
}

// Query returns rows ordered by date descending, then city ascending.
func (s *MemoryStore) Query(_ context.Context, city string, since *time.Time) ([]weather.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []weather.Observation
	collect := func(h *CityHistory) {
		for d, o := range h.Days {
			if since != nil && d.Before(weather.Day(*since)) {
				continue
			}
			result = append(result, o)
		}
	}

	if city != "" {
		if h, ok := s.data[city]; ok {
			collect(h)
		}
	} else {
		for _, h := range s.data {
			collect(h)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].City < result[j].City
	})
	return result, nil
}

// DistinctCities returns the cities with at least one observation, sorted.
func (s *MemoryStore) DistinctCities(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cities := make([]string, 0, len(s.data))
	for c, h := range s.data {
		if len(h.Days) > 0 {
			cities = append(cities, c)
		}
	}
	sort.Strings(cities)
	return cities, nil
}

// DateExtent reports the stored range of a city.
func (s *MemoryStore) DateExtent(_ context.Context, city string) (weather.Extent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.data[city]
	if !ok || len(h.Days) == 0 {
		return weather.Extent{}, nil
	}

	var lo, hi time.Time
	for d := range h.Days {
		if lo.IsZero() || d.Before(lo) {
			lo = d
		}
		if hi.IsZero() || d.After(hi) {
			hi = d
		}
	}
	return weather.Extent{MinDate: &lo, MaxDate: &hi, Count: len(h.Days)}, nil
}

// DatesInRange returns the stored days for city within [start, end].
func (s *MemoryStore) DatesInRange(_ context.Context, city string, start, end time.Time) ([]time.Time, error) {
	start, end = weather.Day(start), weather.Day(end)

	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.data[city]
	if !ok {
		return nil, nil
	}

	var out []time.Time
	for d := range h.Days {
		if !d.Before(start) && !d.After(end) {
			out = append(out, d)
		}
	}
	return out, nil
}

// Append records an operation log entry.
func (s *MemoryStore) Append(_ context.Context, entry weather.OperationLogEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.clock.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, entry)
	return nil
}

// List returns up to limit entries, newest first. A limit <= 0 means no limit.
func (s *MemoryStore) List(_ context.Context, city string, limit int) ([]weather.OperationLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []weather.OperationLogEntry
	for i := len(s.log) - 1; i >= 0; i-- {
		if city != "" && s.log[i].City != city {
			continue
		}
		out = append(out, s.log[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
