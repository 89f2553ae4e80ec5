package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/i474232898/weather-forecast/internal/weather"
)

// ErrFetchFailed is returned when no source produced data for an ingest.
var ErrFetchFailed = errors.New("no source returned data")

// IngestResult is the outcome of one ingest or backfill.
type IngestResult struct {
	ID      string                  `json:"id"`
	City    string                  `json:"city"`
	Start   time.Time               `json:"start"`
	End     time.Time               `json:"end"`
	Written int                     `json:"written"`
	Status  weather.OperationStatus `json:"status"`
	Message string                  `json:"message"`
}

// Ingest fetches [start, end] for city from every source and upserts the
// merged rows. Nil bounds default to the last DefaultRangeDays days ending
// today. Every call that names a city appends one operation log entry.
func (s *Service) Ingest(ctx context.Context, city string, start, end *time.Time) (IngestResult, error) {
	city, err := requireCity(city)
	if err != nil {
		return IngestResult{}, err
	}
	from, to := s.resolveRange(start, end)

	unlock := s.lock(city)
	defer unlock()

	if from.After(to) {
		err := fmt.Errorf("%w: start %s is after end %s", weather.ErrInvalidRange,
			from.Format(weather.DateLayout), to.Format(weather.DateLayout))
		return s.finish(ctx, "ingest", city, from, to, 0, err)
	}

	written, err := s.fetchAndStore(ctx, city, []weather.DateRun{{Start: from, End: to}})
	return s.finish(ctx, "ingest", city, from, to, written, err)
}

// Backfill behaves like Ingest but only fetches the days of [start, end]
// that have no stored observation.
func (s *Service) Backfill(ctx context.Context, city string, start, end *time.Time) (IngestResult, error) {
	city, err := requireCity(city)
	if err != nil {
		return IngestResult{}, err
	}
	from, to := s.resolveRange(start, end)

	unlock := s.lock(city)
	defer unlock()

	missing, err := s.gaps.MissingDates(ctx, city, from, to)
	if err != nil {
		return s.finish(ctx, "backfill", city, from, to, 0, err)
	}
	runs := weather.Runs(weather.SortDates(missing))
	if len(runs) == 0 {
		return s.finish(ctx, "backfill", city, from, to, 0, nil)
	}

	written, err := s.fetchAndStore(ctx, city, runs)
	return s.finish(ctx, "backfill", city, from, to, written, err)
}

func (s *Service) resolveRange(start, end *time.Time) (time.Time, time.Time) {
	to := s.today()
	if end != nil {
		to = weather.Day(*end)
	}
	from := to.AddDate(0, 0, -(s.cfg.DefaultRangeDays - 1))
	if start != nil {
		from = weather.Day(*start)
	}
	return from, to
}

// fetchAndStore fetches every run from all sources concurrently, merges the
// batches per day and upserts the result.
func (s *Service) fetchAndStore(ctx context.Context, city string, runs []weather.DateRun) (int, error) {
	if len(s.sources) == 0 {
		return 0, fmt.Errorf("%w: no sources configured", ErrFetchFailed)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		batches [][]weather.Observation
		errs    []error
	)

	for _, src := range s.sources {
		wg.Add(1)
		go func() {
			defer wg.Done()

			var rows []weather.Observation
			for _, run := range runs {
				started := s.clock.Now()
				obs, err := src.Fetch(ctx, city, run.Start, run.End)
				s.metrics.SourceFetchDuration.WithLabelValues(src.Name()).Observe(s.clock.Since(started).Seconds())
				if err != nil {
					s.metrics.SourceFetches.WithLabelValues(src.Name(), "error").Inc()
					s.logger.Warn("source fetch failed",
						"source", src.Name(),
						"city", city,
						"start", run.Start.Format(weather.DateLayout),
						"end", run.End.Format(weather.DateLayout),
						"error", err,
					)
					mu.Lock()
					errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
					mu.Unlock()
					return
				}
				s.metrics.SourceFetches.WithLabelValues(src.Name(), "success").Inc()
				rows = append(rows, obs...)
			}

			mu.Lock()
			batches = append(batches, rows)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(batches) == 0 {
		return 0, fmt.Errorf("%w: %w", ErrFetchFailed, errors.Join(errs...))
	}

	merged := weather.AggregateObservations(batches...)
	for i := range merged {
		merged[i].City = city
	}
	written, err := s.store.Upsert(ctx, merged)
	if err != nil {
		return 0, fmt.Errorf("upsert observations: %w", err)
	}
	if len(errs) > 0 {
		s.logger.Info("partial ingest", "city", city, "failed_sources", len(errs), "written", written)
	}
	return written, nil
}

// finish appends the operation log entry and builds the result.
func (s *Service) finish(ctx context.Context, kind, city string, from, to time.Time, written int, opErr error) (IngestResult, error) {
	res := IngestResult{
		ID:      uuid.NewString(),
		City:    city,
		Start:   from,
		End:     to,
		Written: written,
		Status:  weather.StatusSuccess,
		Message: fmt.Sprintf("%s: %d observations written", kind, written),
	}
	if opErr != nil {
		res.Status = weather.StatusError
		res.Message = fmt.Sprintf("%s failed: %v", kind, opErr)
	}

	entry := weather.OperationLogEntry{
		ID:             res.ID,
		City:           city,
		RequestedStart: from,
		RequestedEnd:   to,
		Status:         res.Status,
		Message:        res.Message,
		CreatedAt:      s.clock.Now().UTC(),
	}
	if err := s.store.Append(ctx, entry); err != nil {
		s.logger.Error("append operation log", "city", city, "error", err)
		if opErr == nil {
			opErr = fmt.Errorf("append operation log: %w", err)
		}
	}

	s.metrics.IngestRuns.WithLabelValues(kind, string(res.Status)).Inc()
	s.metrics.ObservationsWritten.Add(float64(written))
	s.logger.Info(kind+" finished",
		"city", city,
		"start", from.Format(weather.DateLayout),
		"end", to.Format(weather.DateLayout),
		"written", written,
		"status", res.Status,
	)
	return res, opErr
}

