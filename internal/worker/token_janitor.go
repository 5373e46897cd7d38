package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// TokenPurger removes verification and recovery secrets that can no longer be used.
type TokenPurger interface {
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// TokenJanitorJob is a cron job deleting stale account secrets.
type TokenJanitorJob struct {
	tokens  TokenPurger
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewTokenJanitorJob constructs the job.
func NewTokenJanitorJob(tokens TokenPurger, logger *zap.Logger) *TokenJanitorJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenJanitorJob{tokens: tokens, logger: logger, timeout: time.Minute, now: time.Now}
}

// Run implements cron.Job.
func (j *TokenJanitorJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	removed, err := j.tokens.PurgeExpired(ctx, j.now().UTC())
	if err != nil {
		j.logger.Warn("token janitor failed", zap.Error(err))
		return
	}
	if removed > 0 {
		j.logger.Info("purged account tokens", zap.Int64("count", removed))
	}
}

// Scheduler owns the cron runner for background jobs.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// StartScheduler registers the janitor on schedule and starts the runner.
func StartScheduler(schedule string, tokens TokenPurger, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddJob(schedule, NewTokenJanitorJob(tokens, logger)); err != nil {
		return nil, err
	}
	c.Start()
	logger.Info("scheduler started", zap.String("janitor_schedule", schedule))
	return &Scheduler{cron: c, logger: logger}, nil
}

// Stop halts scheduling and waits for running jobs.
func (s *Scheduler) Stop() {
	if s == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}
