package auth

import (
	"context"

	"github.com/robfig/cron"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/telemetry/metrics"
)

const DefaultCleanupSchedule = "@every 8h"

type sessionCleaner interface {
	ScanAndClean(ctx context.Context) int
}

// StartSessionCleanup schedules periodic removal of expired sessions.
// The returned cron must be stopped on shutdown.
func StartSessionCleanup(
	ctx context.Context,
	cleaner sessionCleaner,
	schedule string,
	metricsManager *metrics.Manager,
) (*cron.Cron, error) {
	c := cron.New()
	err := c.AddFunc(schedule, func() {
		removed := cleaner.ScanAndClean(ctx)
		if metricsManager != nil {
			metricsManager.CounterSessionsCleaned.Add(float64(removed))
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	log.Debugf("session cleanup scheduled [%s]", schedule)

	return c, nil
}
