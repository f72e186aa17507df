package watch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/prismicgen/internal/logfields"
)

// Trigger names what caused a run.
type Trigger string

const (
	TriggerStartup  Trigger = "startup"
	TriggerSchedule Trigger = "schedule"
	TriggerFile     Trigger = "file"
)

// RunFunc performs one generation run.
type RunFunc func(ctx context.Context, trigger Trigger) error

// Serialize wraps run so that concurrent callers take turns.
func Serialize(run RunFunc) RunFunc {
	var mu sync.Mutex
	return func(ctx context.Context, trigger Trigger) error {
		mu.Lock()
		defer mu.Unlock()
		if err := ctx.Err(); err != nil {
			return err
		}
		return run(ctx, trigger)
	}
}

// Scheduler wraps a gocron scheduler running periodic regeneration.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{scheduler: s, logger: logger}, nil
}

// SchedulePeriodic runs run every interval until ctx is done. A run that is
// still going when the next one is due causes that tick to be skipped.
// Returns the job ID.
func (s *Scheduler) SchedulePeriodic(ctx context.Context, interval time.Duration, run RunFunc) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				return
			}
			if err := run(ctx, TriggerSchedule); err != nil {
				s.logger.Error("Scheduled regeneration failed", logfields.Error(err))
			}
		}),
		gocron.WithName("regenerate"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create periodic job: %w", err)
	}
	s.logger.Info("Scheduled periodic regeneration", slog.Duration("interval", interval))
	return job.ID().String(), nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.logger.Debug("Starting scheduler")
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() error {
	s.logger.Debug("Stopping scheduler")
	return s.scheduler.Shutdown()
}
