package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/i474232898/weather-forecast/internal/observability"
	"github.com/i474232898/weather-forecast/internal/service"
)

// Backfiller is the part of the service the scheduler drives.
type Backfiller interface {
	Backfill(ctx context.Context, city string, start, end *time.Time) (service.IngestResult, error)
}

// Scheduler periodically backfills missing days for configured cities.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Backfiller
	cities    []string
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a new Scheduler. Each tick backfills the default range of
// every city in parallel, bounded by timeout per city.
func New(cities []string, interval, timeout time.Duration, svc Backfiller, logger *slog.Logger, metrics *observability.Metrics) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   svc,
		cities:    cities,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
		metrics:   metrics,
	}
}

// Start schedules the periodic job and starts the underlying scheduler. The
// first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.cities) == 0 {
		s.logger.Info("scheduler: no cities configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.RunOnce, context.Background())
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.metrics.SchedulerRunning.Set(1)
	s.logger.Info("scheduler started", "cities", len(s.cities), "interval", s.interval)
	return nil
}

// RunOnce backfills every configured city and waits for all of them.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.logger.Debug("scheduler: running backfill job")

	var wg sync.WaitGroup
	for _, city := range s.cities {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			res, err := s.service.Backfill(ctx, city, nil, nil)
			if err != nil {
				s.logger.Warn("scheduler: backfill failed", "city", city, "error", err)
				return
			}
			s.logger.Debug("scheduler: backfill done", "city", city, "written", res.Written)
		}()
	}
	wg.Wait()
	s.metrics.ScheduledBackfill.Inc()
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	s.metrics.SchedulerRunning.Set(0)
}
