package weather

import (
	"context"
	"time"
)

// Source abstracts an external producer of daily observations
// (e.g. Open-Meteo archive, WeatherAPI history, synthetic generator).
// start and end are inclusive UTC days.
type Source interface {
	Name() string
	Fetch(ctx context.Context, city string, start, end time.Time) ([]Observation, error)
}

// ObservationStore is the contract both the in-memory and SQLite stores satisfy.
type ObservationStore interface {
	// Upsert validates and writes observations, replacing rows with the same
	// (city, date). Invalid rows are skipped; the count of persisted rows is returned.
	Upsert(ctx context.Context, obs []Observation) (int, error)

	// Query returns rows ordered by date descending. An empty city matches
	// every city; a nil since returns the full history.
	Query(ctx context.Context, city string, since *time.Time) ([]Observation, error)

	DistinctCities(ctx context.Context) ([]string, error)
	DateExtent(ctx context.Context, city string) (Extent, error)

	// DatesInRange returns the stored dates for city within [start, end].
	DatesInRange(ctx context.Context, city string, start, end time.Time) ([]time.Time, error)
}

// OperationLog is the append-only audit trail of ingestion attempts.
type OperationLog interface {
	Append(ctx context.Context, entry OperationLogEntry) error

	// List returns the newest entries first. An empty city matches every city.
	List(ctx context.Context, city string, limit int) ([]OperationLogEntry, error)
}
