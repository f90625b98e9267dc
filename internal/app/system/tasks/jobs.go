// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"
)

// RouteCompleter closes routes whose day has passed.
type RouteCompleter interface {
	CompleteStaleRoutes(ctx context.Context, today civil.Date) (int64, error)
}

// AuditPruner removes audit events older than a cutoff.
type AuditPruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RouteRolloverJob marks every active route from an earlier day completed,
// which frees its ward for new assignments.
func RouteRolloverJob(routes RouteCompleter, today func() civil.Date, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:       "route-rollover",
		Interval:   interval,
		RunOnStart: true,
		Run: func(ctx context.Context) error {
			count, err := routes.CompleteStaleRoutes(ctx, today())
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("completed stale routes", zap.Int64("count", count))
			}
			return nil
		},
	}
}

// AuditRetentionJob deletes audit events older than retention, daily.
// A non-positive retention keeps events forever; the job is then a no-op.
func AuditRetentionJob(store AuditPruner, logger *zap.Logger, retention time.Duration) Job {
	return Job{
		Name:     "audit-retention",
		Interval: 24 * time.Hour,
		Timeout:  5 * time.Minute,
		Run: func(ctx context.Context) error {
			if retention <= 0 {
				return nil
			}
			cutoff := time.Now().UTC().Add(-retention)
			count, err := store.DeleteBefore(ctx, cutoff)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("pruned audit events",
					zap.Int64("count", count),
					zap.Time("cutoff", cutoff))
			}
			return nil
		},
	}
}
