package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// DanglingPurger removes favorites whose product no longer exists
type DanglingPurger interface {
	PurgeDangling(ctx context.Context) (int64, error)
}

// LimiterCleaner drops idle rate limiter state
type LimiterCleaner interface {
	Cleanup() int
}

const sweepTimeout = 30 * time.Second

// MaintenanceScheduler runs the periodic favorites sweep
type MaintenanceScheduler struct {
	cron    *cron.Cron
	spec    string
	purger  DanglingPurger
	limiter LimiterCleaner
}

// NewMaintenanceScheduler builds the scheduler. limiter may be nil.
func NewMaintenanceScheduler(spec string, purger DanglingPurger, limiter LimiterCleaner) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		cron:    cron.New(),
		spec:    spec,
		purger:  purger,
		limiter: limiter,
	}
}

// Start schedules the sweep on spec (standard cron or @every)
func (s *MaintenanceScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.RunOnce)
	if err != nil {
		logger.Error("Failed to add cron job for favorites sweep", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Maintenance scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// RunOnce performs one sweep
func (s *MaintenanceScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	removed, err := s.purger.PurgeDangling(ctx)
	if err != nil {
		logger.Error("Failed to purge dangling favorites", err)
	} else if removed > 0 {
		logger.Info("Purged dangling favorites", map[string]interface{}{
			"removed": removed,
		})
	}

	if s.limiter != nil {
		if n := s.limiter.Cleanup(); n > 0 {
			logger.Debug("Dropped idle rate limiters", map[string]interface{}{
				"count": n,
			})
		}
	}
}

// Stop waits for a running sweep to finish
func (s *MaintenanceScheduler) Stop() {
	logger.Info("Stopping maintenance scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Maintenance scheduler stopped")
}
