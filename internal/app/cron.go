package app

import (
	"context"
	"fmt"
	"time"

	"github.com/art-beyond-sight/sight-core/internal/config"
	"github.com/art-beyond-sight/sight-core/internal/modules/tempimage"
	pkgcron "github.com/art-beyond-sight/sight-core/internal/pkg/cron"
	"go.uber.org/zap"
)

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, cfg *config.AppConfig, logger *zap.Logger) {
	cronLogger := logger.Named("CronService")

	retention, ok := cfg.TempImageRetention()
	if !ok {
		return
	}
	dir := cfg.TempImageDir()

	sched.Register(pkgcron.Job{
		Name:        "sweep_temp_images",
		Description: fmt.Sprintf("remove uploaded temp images older than %s", retention),
		Interval:    cfg.TempImageSweepInterval(),
		Fn: func(ctx context.Context) error {
			removed, err := tempimage.Sweep(dir, time.Now().Add(-retention))
			if err != nil {
				cronLogger.Warn("temp image sweep failed", zap.Error(err))
				return err
			}
			if removed > 0 {
				cronLogger.Info(fmt.Sprintf("temp image sweep removed %d files", removed))
			}
			return nil
		},
	})
}
