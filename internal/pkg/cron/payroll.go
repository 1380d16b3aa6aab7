package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/statutory"
)

// PayrollResumer regenerates processing periods whose generation run was interrupted.
type PayrollResumer interface {
	ResumeInterrupted(ctx context.Context, staleAfter time.Duration) (int, error)
}

// RateBookCache is the cached statutory rate book.
type RateBookCache interface {
	Invalidate()
	ForYear(ctx context.Context, fy int) (*statutory.RateBook, error)
}

type PayrollJobConfig struct {
	ResumeInterval      time.Duration
	ResumeStaleAfter    time.Duration
	RateRefreshInterval time.Duration
}

type PayrollJobs struct {
	payrolls PayrollResumer
	rates    RateBookCache
	cfg      PayrollJobConfig
	now      func() time.Time
}

func NewPayrollJobs(payrolls PayrollResumer, rates RateBookCache, cfg PayrollJobConfig) *PayrollJobs {
	return &PayrollJobs{
		payrolls: payrolls,
		rates:    rates,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(Job{
		Name:     "resume_interrupted_payrolls",
		Interval: j.cfg.ResumeInterval,
		Timeout:  j.cfg.ResumeInterval,
		// a restart is the usual reason a run was interrupted
		RunOnStart: true,
		Fn:         j.ResumeInterruptedPayrolls,
	})
	scheduler.AddJob(Job{
		Name:     "refresh_rate_tables",
		Interval: j.cfg.RateRefreshInterval,
		Timeout:  time.Minute,
		Fn:       j.RefreshRateTables,
	})
}

// ResumeInterruptedPayrolls picks up periods stuck in processing, for example after a
// restart mid-generation. Generation is idempotent so re-running is safe.
func (j *PayrollJobs) ResumeInterruptedPayrolls(ctx context.Context) error {
	resumed, err := j.payrolls.ResumeInterrupted(ctx, j.cfg.ResumeStaleAfter)
	if err != nil {
		return err
	}
	if resumed > 0 {
		slog.Info("interrupted payrolls resumed", "count", resumed)
	}
	return nil
}

// RefreshRateTables drops cached rate books so newly inserted rows are seen, then warms
// the current financial year.
func (j *PayrollJobs) RefreshRateTables(ctx context.Context) error {
	j.rates.Invalidate()
	fy := statutory.FinancialYear(j.now())
	if _, err := j.rates.ForYear(ctx, fy); err != nil {
		return err
	}
	slog.Debug("rate tables refreshed", "financial_year", fy)
	return nil
}
