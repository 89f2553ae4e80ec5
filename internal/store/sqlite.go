package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/i474232898/weather-forecast/internal/weather"
	"github.com/jonboulle/clockwork"

	_ "modernc.org/sqlite"
)

// timestampLayout is fixed-width so stored timestamps sort lexicographically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS observations (
    city TEXT NOT NULL,
    date TEXT NOT NULL,
    temperature REAL NOT NULL,
    humidity REAL NOT NULL,
    pressure REAL NOT NULL,
    wind_speed REAL NOT NULL,
    precipitation REAL NOT NULL,
    weather_condition TEXT NOT NULL,
    created_at TEXT NOT NULL,
    PRIMARY KEY (city, date)
);

CREATE INDEX IF NOT EXISTS idx_observations_date ON observations (date);

CREATE TABLE IF NOT EXISTS operation_log (
    id TEXT PRIMARY KEY,
    city TEXT NOT NULL,
    requested_start TEXT NOT NULL,
    requested_end TEXT NOT NULL,
    status TEXT NOT NULL,
    message TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_operation_log_city_created ON operation_log (city, created_at);
`

// SQLiteStore implements Store using sqlite (pure Go driver modernc.org/sqlite).
type SQLiteStore struct {
	db     *sql.DB
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewSQLite opens (or creates) the database at path and applies the schema.
func NewSQLite(path string, opts ...Option) (*SQLiteStore, error) {
	o := buildOptions(opts)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection keeps ":memory:" databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	// WAL gives better concurrency for small writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		o.logger.Warn("could not set WAL mode", "error", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db, clock: o.clock, logger: o.logger}, nil
}

// Upsert replaces any existing row with the same (city, date) inside one transaction.
func (s *SQLiteStore) Upsert(ctx context.Context, obs []weather.Observation) (int, error) {
	rows := prepare(obs, s.logger)
	if len(rows) == 0 {
		return 0, nil
	}
	now := s.clock.Now().UTC().Format(timestampLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO observations
        (city, date, temperature, humidity, pressure, wind_speed, precipitation, weather_condition, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, o := range rows {
		if _, err := stmt.ExecContext(ctx,
			o.City,
			o.Date.Format(weather.DateLayout),
			o.Temperature,
			o.Humidity,
			o.Pressure,
			o.WindSpeed,
			o.Precipitation,
			string(o.Condition),
			now,
		); err != nil {
			return 0, fmt.Errorf("upsert %s %s: %w", o.City, o.Date.Format(weather.DateLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert: %w", err)
	}
	return len(rows), nil
}

// Query returns rows ordered by date descending, then city ascending.
func (s *SQLiteStore) Query(ctx context.Context, city string, since *time.Time) ([]weather.Observation, error) {
	query := `
        SELECT city, date, temperature, humidity, pressure, wind_speed, precipitation, weather_condition, created_at
        FROM observations
        WHERE 1=1
    `
	var args []any

	if city != "" {
		query += " AND city = ?"
		args = append(args, city)
	}
	if since != nil {
		query += " AND date >= ?"
		args = append(args, weather.Day(*since).Format(weather.DateLayout))
	}
	query += " ORDER BY date DESC, city ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var out []weather.Observation
	for rows.Next() {
		var (
			o                 weather.Observation
			date, created, cd string
		)
		if err := rows.Scan(&o.City, &date, &o.Temperature, &o.Humidity, &o.Pressure,
			&o.WindSpeed, &o.Precipitation, &cd, &created); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		if o.Date, err = weather.ParseDate(date); err != nil {
			return nil, fmt.Errorf("parse date %q: %w", date, err)
		}
		o.Condition = weather.Condition(cd)
		if t, err := time.Parse(timestampLayout, created); err == nil {
			o.CreatedAt = t
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// DistinctCities returns every city with at least one observation, sorted.
func (s *SQLiteStore) DistinctCities(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT city FROM observations ORDER BY city`)
	if err != nil {
		return nil, fmt.Errorf("query cities: %w", err)
	}
	defer rows.Close()

	cities := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

// DateExtent reports the stored range of a city.
func (s *SQLiteStore) DateExtent(ctx context.Context, city string) (weather.Extent, error) {
	var (
		lo, hi sql.NullString
		count  int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT MIN(date), MAX(date), COUNT(*) FROM observations WHERE city = ?`, city,
	).Scan(&lo, &hi, &count)
	if err != nil {
		return weather.Extent{}, fmt.Errorf("query extent: %w", err)
	}

	ext := weather.Extent{Count: count}
	if count == 0 || !lo.Valid || !hi.Valid {
		return ext, nil
	}

	minDate, err := weather.ParseDate(lo.String)
	if err != nil {
		return weather.Extent{}, fmt.Errorf("parse min date: %w", err)
	}
	maxDate, err := weather.ParseDate(hi.String)
	if err != nil {
		return weather.Extent{}, fmt.Errorf("parse max date: %w", err)
	}
	ext.MinDate, ext.MaxDate = &minDate, &maxDate
	return ext, nil
}

// DatesInRange returns the stored days for city within [start, end].
func (s *SQLiteStore) DatesInRange(ctx context.Context, city string, start, end time.Time) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date FROM observations WHERE city = ? AND date >= ? AND date <= ? ORDER BY date`,
		city, weather.Day(start).Format(weather.DateLayout), weather.Day(end).Format(weather.DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("query dates: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var ds string
		if err := rows.Scan(&ds); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		d, err := weather.ParseDate(ds)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", ds, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Append records an operation log entry.
func (s *SQLiteStore) Append(ctx context.Context, e weather.OperationLogEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO operation_log(id, city, requested_start, requested_end, status, message, created_at) VALUES(?,?,?,?,?,?,?)`,
		e.ID,
		e.City,
		weather.Day(e.RequestedStart).Format(weather.DateLayout),
		weather.Day(e.RequestedEnd).Format(weather.DateLayout),
		string(e.Status),
		e.Message,
		e.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("append operation log: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first. A limit <= 0 means no limit.
func (s *SQLiteStore) List(ctx context.Context, city string, limit int) ([]weather.OperationLogEntry, error) {
	query := `SELECT id, city, requested_start, requested_end, status, message, created_at FROM operation_log WHERE 1=1`
	var args []any
	if city != "" {
		query += " AND city = ?"
		args = append(args, city)
	}
	if limit <= 0 {
		limit = -1
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query operation log: %w", err)
	}
	defer rows.Close()

	var out []weather.OperationLogEntry
	for rows.Next() {
		var (
			e                   weather.OperationLogEntry
			start, end, created string
			status              string
		)
		if err := rows.Scan(&e.ID, &e.City, &start, &end, &status, &e.Message, &created); err != nil {
			return nil, fmt.Errorf("scan operation log: %w", err)
		}
		e.Status = weather.OperationStatus(status)
		e.RequestedStart, _ = weather.ParseDate(start)
		e.RequestedEnd, _ = weather.ParseDate(end)
		if t, err := time.Parse(timestampLayout, created); err == nil {
			e.CreatedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
