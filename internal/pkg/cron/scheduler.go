package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Job is a named function run every Interval.
type Job struct {
	Name     string
	Interval time.Duration
	// Timeout bounds a single run. Zero means the run lasts until the scheduler stops.
	Timeout time.Duration
	// RunOnStart runs the job once as soon as the scheduler starts instead of waiting a full interval.
	RunOnStart bool
	Fn         func(ctx context.Context) error
}

// Scheduler runs each job on its own ticker. Runs of one job never overlap.
type Scheduler struct {
	mu      sync.Mutex
	jobs    []Job
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	stopped sync.Once
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) AddJob(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, job)
	slog.Info("cron job registered", "name", job.Name, "interval", job.Interval, "timeout", job.Timeout)
}

// Jobs returns the registered job names in registration order.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for _, job := range s.jobs {
		names = append(names, job.Name)
	}
	return names
}

// Start launches every registered job. Jobs stop when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, s.cancel = context.WithCancel(ctx)
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, job)
	}

	slog.Info("cron scheduler started", "job_count", len(s.jobs))
}

// Stop cancels running jobs and waits for them to return. Calling it more than once is a no-op.
func (s *Scheduler) Stop() {
	s.stopped.Do(func() {
		s.mu.Lock()
		cancel := s.cancel
		s.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		s.wg.Wait()
		slog.Info("cron scheduler stopped")
	})
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	if job.RunOnStart {
		_ = s.execute(ctx, job)
	}

	for {
		select {
		case <-ctx.Done():
			slog.Debug("cron job stopping", "name", job.Name)
			return
		case <-ticker.C:
			_ = s.execute(ctx, job)
		}
	}
}

// execute runs one job with its timeout and logs the outcome.
func (s *Scheduler) execute(ctx context.Context, job Job) error {
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	start := time.Now()
	if err := job.Fn(ctx); err != nil {
		slog.Error("cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
		return fmt.Errorf("%s: %w", job.Name, err)
	}
	slog.Debug("cron job completed", "name", job.Name, "duration", time.Since(start))
	return nil
}

// RunOnce runs all jobs once in registration order and joins their errors.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.mu.Lock()
	jobs := append([]Job(nil), s.jobs...)
	s.mu.Unlock()

	var errs []error
	for _, job := range jobs {
		if err := s.execute(ctx, job); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
