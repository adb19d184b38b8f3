package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	calls   atomic.Int32
	removed int64
	err     error
}

func (p *fakePurger) PurgeDangling(ctx context.Context) (int64, error) {
	p.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("sweep must run with a deadline")
	}
	return p.removed, p.err
}

type fakeLimiter struct {
	calls atomic.Int32
}

func (l *fakeLimiter) Cleanup() int {
	l.calls.Add(1)
	return 2
}

func TestMaintenanceScheduler_RunOnce(t *testing.T) {
	purger := &fakePurger{removed: 3}
	limiter := &fakeLimiter{}
	s := NewMaintenanceScheduler("@every 1h", purger, limiter)

	s.RunOnce()

	assert.Equal(t, int32(1), purger.calls.Load())
	assert.Equal(t, int32(1), limiter.calls.Load())
}

func TestMaintenanceScheduler_RunOnce_PurgeErrorStillCleansLimiter(t *testing.T) {
	purger := &fakePurger{err: errors.New("db down")}
	limiter := &fakeLimiter{}
	s := NewMaintenanceScheduler("@every 1h", purger, limiter)

	s.RunOnce()

	assert.Equal(t, int32(1), limiter.calls.Load())
}

func TestMaintenanceScheduler_StartRunsOnSchedule(t *testing.T) {
	purger := &fakePurger{}
	s := NewMaintenanceScheduler("@every 1s", purger, nil)

	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)

	require.Eventually(t, func() bool {
		return purger.calls.Load() >= 1
	}, 3*time.Second, 50*time.Millisecond)
}

func TestMaintenanceScheduler_InvalidSpec(t *testing.T) {
	s := NewMaintenanceScheduler("not a cron spec", &fakePurger{}, nil)
	assert.Error(t, s.Start())
}
