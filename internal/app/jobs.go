package app

import (
	"context"
	"time"

	pkgcron "github.com/embracingthegirlchild/site/internal/pkg/cron"
	sessionpkg "github.com/embracingthegirlchild/site/internal/pkg/session"
	"go.uber.org/zap"
)

const JobPurgeSessions = "purge_sessions"

func registerJobs(sched *pkgcron.Scheduler, sessions *sessionpkg.Manager, log *zap.Logger) {
	sched.Register(pkgcron.Job{
		Name:     JobPurgeSessions,
		Interval: 6 * time.Hour,
		Fn: func(context.Context) error {
			n, err := sessions.PurgeExpired()
			if err != nil {
				return err
			}
			if n > 0 {
				log.Info("purged sessions", zap.Int64("count", n))
			}
			return nil
		},
	})
}
