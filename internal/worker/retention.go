package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Purger deletes read notifications older than the retention window.
type Purger interface {
	PurgeRead(ctx context.Context, retention time.Duration) (int64, error)
}

// RetentionJob runs the notification purge on a cron schedule.
type RetentionJob struct {
	cron      *cron.Cron
	purger    Purger
	retention time.Duration
	logger    *zap.Logger
}

// NewRetentionJob registers the purge under schedule, a standard five-field expression
// or descriptor such as "@daily".
func NewRetentionJob(schedule string, retention time.Duration, purger Purger, logger *zap.Logger) (*RetentionJob, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	job := &RetentionJob{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		purger:    purger,
		retention: retention,
		logger:    logger,
	}
	if _, err := job.cron.AddFunc(schedule, job.RunOnce); err != nil {
		return nil, fmt.Errorf("retention: invalid schedule %q: %w", schedule, err)
	}
	return job, nil
}

// Start begins the scheduler. Blocks until ctx is cancelled.
func (j *RetentionJob) Start(ctx context.Context) {
	j.cron.Start()
	j.logger.Info("retention job started", zap.Duration("retention", j.retention))

	<-ctx.Done()
	<-j.cron.Stop().Done()
	j.logger.Info("retention job stopped")
}

// RunOnce performs a single purge.
func (j *RetentionJob) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := j.purger.PurgeRead(ctx, j.retention); err != nil {
		j.logger.Error("notification purge failed", zap.Error(err))
	}
}
