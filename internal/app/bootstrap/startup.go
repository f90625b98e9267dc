// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/greenlink/internal/app/store/audit"
	"github.com/dalemusser/greenlink/internal/app/system/paging"
	"github.com/dalemusser/greenlink/internal/app/system/servicedate"
	"github.com/dalemusser/greenlink/internal/app/system/tasks"
	"github.com/dalemusser/greenlink/internal/app/system/timeouts"
	"github.com/dalemusser/greenlink/internal/app/workflows/assignments"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// It applies the list and timeout settings and starts the background jobs:
// route rollover and audit retention.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	paging.SetDefaultLimit(appCfg.ListLimit)
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n))
	}

	cal, err := servicedate.Load(appCfg.TimeZone)
	if err != nil {
		return err
	}

	if deps.Tasks == nil {
		return nil
	}
	for _, j := range backgroundJobs(appCfg, deps, cal, logger) {
		deps.Tasks.Add(j)
	}
	// The runner outlives this hook's context; Shutdown stops it.
	deps.Tasks.Start(context.Background())
	return nil
}

func backgroundJobs(appCfg AppConfig, deps DBDeps, cal *servicedate.Calendar, logger *zap.Logger) []tasks.Job {
	return []tasks.Job{
		tasks.RouteRolloverJob(
			assignments.New(deps.MongoDatabase, logger),
			cal.Today,
			logger,
			appCfg.RouteRolloverInterval,
		),
		tasks.AuditRetentionJob(audit.New(deps.MongoDatabase), logger, appCfg.AuditRetention),
	}
}
