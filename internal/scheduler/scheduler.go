// Package scheduler runs weather flows on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work
type Job interface {
	Name() string
	RunOnce(ctx context.Context) error
}

// JobFunc adapts a function to Job
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

func (j JobFunc) Name() string                      { return j.JobName }
func (j JobFunc) RunOnce(ctx context.Context) error { return j.Fn(ctx) }

// Status is the outcome of the most recent run
type Status struct {
	Runs     int
	Failures int
	LastRun  time.Time
	LastErr  error
	Duration time.Duration
}

// Scheduler manages the execution of a job on a schedule.
// A run that is still in progress when the next tick fires makes that tick a no-op.
type Scheduler struct {
	schedule string
	job      Job
	cron     *cron.Cron
	logger   *slog.Logger

	mu     sync.Mutex
	status Status
}

func New(schedule string, job Job, logger *slog.Logger) *Scheduler {
	logger = logger.With("component", "scheduler", "job", job.Name())
	cronLogger := cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))
	return &Scheduler{
		schedule: schedule,
		job:      job,
		logger:   logger,
		// Prevent overlapping runs
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger)),
		),
	}
}

// Start runs the job immediately, then on every tick until ctx is cancelled
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(ctx); err != nil {
			s.logger.Warn("scheduled run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	if err := s.RunOnce(ctx); err != nil {
		s.logger.Warn("initial run failed", "error", err)
	}

	s.logger.Info("scheduler started", "schedule", s.schedule)
	s.cron.Start()

	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()
	s.logger.Info("scheduler stopped")
	return ctx.Err()
}

// RunOnce executes the job and records its outcome
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := time.Now()
	err := s.job.RunOnce(ctx)
	duration := time.Since(start)

	s.mu.Lock()
	s.status.Runs++
	if err != nil {
		s.status.Failures++
	}
	s.status.LastRun = start
	s.status.LastErr = err
	s.status.Duration = duration
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("%s run failed: %w", s.job.Name(), err)
	}
	s.logger.Debug("run completed", "duration", duration)
	return nil
}

// Status returns a snapshot of the run history
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}
