package app

import (
	"context"
	"time"

	pkgcron "github.com/tsystem/portal/internal/pkg/cron"
	sessionpkg "github.com/tsystem/portal/internal/pkg/session"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const JobPurgeExpiredTokens = "purge_expired_tokens"

func registerCronJobs(sched *pkgcron.Scheduler, db *gorm.DB, logger *zap.Logger) {
	cronLogger := logger.Named("CronService")

	sched.Register(pkgcron.Job{
		Name:        JobPurgeExpiredTokens,
		Description: "delete expired access tokens",
		Interval:    time.Hour,
		Fn: func(ctx context.Context) error {
			n, err := sessionpkg.PurgeExpired(ctx, db, time.Now())
			if err != nil {
				return err
			}
			if n > 0 {
				cronLogger.Info("purged expired access tokens", zap.Int64("deleted", n))
			}
			return nil
		},
	})
}
