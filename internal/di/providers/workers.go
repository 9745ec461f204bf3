package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/fablepress/fablepress-server/internal/logger"
	"github.com/fablepress/fablepress-server/internal/service"
)

// SessionCleanupJob periodically removes expired sessions from the store.
type SessionCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown stops the cleanup goroutine.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSessionCleanupJob starts the hourly expired-session sweep.
func ProvideSessionCleanupJob(injector do.Injector) (*SessionCleanupJob, error) {
	sessionService := do.MustInvoke[*service.SessionService](injector)
	log := do.MustInvoke[*logger.Logger](injector)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := sessionService.DeleteExpiredSessions(ctx)
				if err != nil {
					log.Error("session cleanup failed", "error", err)
					continue
				}
				if deleted > 0 {
					log.Info("expired sessions removed", "count", deleted)
				}
			}
		}
	}()

	log.Debug("session cleanup job started", "interval", "1h")

	return &SessionCleanupJob{cancel: cancel}, nil
}
