package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"agro-collector/cache"
	"agro-collector/entities"

	"github.com/google/uuid"
)

const (
	TriggerHTTP     = "http"
	TriggerSchedule = "schedule"
	TriggerCLI      = "cli"
)

// Runner is satisfied by *Collector.
type Runner interface {
	Run(ctx context.Context) (*entities.RunReport, error)
}

// Scheduler triggers collector runs on demand or on a fixed interval and remembers
// recent outcomes in a RunCache.
type Scheduler struct {
	runner   Runner
	cache    *cache.RunCache
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	// tracks the ticker loop and every Trigger call in flight
	active sync.WaitGroup
}

func NewScheduler(runner Runner, runs *cache.RunCache, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if runs == nil {
		runs = cache.NewRunCache(1)
	}
	return &Scheduler{
		runner:   runner,
		cache:    runs,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Scheduler) Runs() *cache.RunCache { return s.cache }

// Trigger performs one run. A run rejected because another is in flight is not recorded.
func (s *Scheduler) Trigger(ctx context.Context, trigger string) (*cache.RunRecord, error) {
	s.active.Add(1)
	defer s.active.Done()

	record := cache.RunRecord{
		ID:        uuid.New().String(),
		Trigger:   trigger,
		StartedAt: s.now().UTC(),
	}

	report, err := s.runner.Run(ctx)
	if errors.Is(err, ErrRunInProgress) {
		s.logger.Warn("collector run skipped", "trigger", trigger, "reason", err)
		return nil, err
	}

	record.FinishedAt = s.now().UTC()
	record.Report = report
	if err != nil {
		record.Error = err.Error()
		s.logger.Error("collector run failed", "run_id", record.ID, "trigger", trigger, "error", err)
	}
	s.cache.Add(record)

	return &record, err
}

// Start runs the collector every interval until ctx is done. A non-positive interval
// disables the schedule.
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("scheduled collection disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	s.logger.Info("scheduled collection enabled", "interval", s.interval.String())
	s.active.Add(1)
	go func() {
		defer s.active.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Trigger(ctx, TriggerSchedule)
			}
		}
	}()
}

// Wait blocks until the schedule loop has stopped and no triggered run is in flight.
// Callers stop new triggers first (cancel the Start context, shut down HTTP).
func (s *Scheduler) Wait() {
	s.active.Wait()
}
