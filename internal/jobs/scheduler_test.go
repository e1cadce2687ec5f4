package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtSlotService/pkg/logger"
)

type observation struct {
	job   string
	items int
	err   error
}

type recordMetrics struct {
	mu   sync.Mutex
	runs []observation
}

func (m *recordMetrics) ObserveJob(job string, _ time.Duration, items int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, observation{job: job, items: items, err: err})
}

func newTestScheduler(timeout time.Duration) (*Scheduler, *recordMetrics) {
	m := &recordMetrics{}
	return NewScheduler(time.UTC, timeout, m, logger.NewNop()), m
}

func TestRunNow(t *testing.T) {
	s, m := newTestScheduler(time.Minute)

	var hasDeadline bool
	require.NoError(t, s.Register(JobExpireReservations, "@every 5m", func(ctx context.Context) (int, error) {
		_, hasDeadline = ctx.Deadline()
		return 3, nil
	}))

	items, err := s.RunNow(context.Background(), JobExpireReservations)
	require.NoError(t, err)
	assert.Equal(t, 3, items)
	assert.True(t, hasDeadline)
	assert.Equal(t, []observation{{job: JobExpireReservations, items: 3}}, m.runs)
}

func TestRunNow_Failure(t *testing.T) {
	s, m := newTestScheduler(0)
	boom := errors.New("db down")
	require.NoError(t, s.Register(JobGenerateSlots, "", func(context.Context) (int, error) {
		return 0, boom
	}))

	_, err := s.RunNow(context.Background(), JobGenerateSlots)
	assert.ErrorIs(t, err, boom)
	require.Len(t, m.runs, 1)
	assert.ErrorIs(t, m.runs[0].err, boom)
}

func TestRunNow_UnknownJob(t *testing.T) {
	s, _ := newTestScheduler(time.Minute)
	_, err := s.RunNow(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestRunNow_SkipsOverlappingRun(t *testing.T) {
	s, _ := newTestScheduler(time.Minute)

	started := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, s.Register(JobMaterializeRecurring, "", func(context.Context) (int, error) {
		close(started)
		<-release
		return 1, nil
	}))

	done := make(chan error, 1)
	go func() {
		_, err := s.RunNow(context.Background(), JobMaterializeRecurring)
		done <- err
	}()
	<-started

	_, err := s.RunNow(context.Background(), JobMaterializeRecurring)
	assert.ErrorIs(t, err, ErrJobRunning)

	close(release)
	assert.NoError(t, <-done)
}

func TestRegister_Rejections(t *testing.T) {
	s, _ := newTestScheduler(time.Minute)
	noop := func(context.Context) (int, error) { return 0, nil }

	err := s.Register(JobGenerateSlots, "not a cron spec", noop)
	assert.ErrorIs(t, err, ErrInvalidSpec)

	require.NoError(t, s.Register(JobGenerateSlots, "30 3 * * *", noop))
	err = s.Register(JobGenerateSlots, "30 3 * * *", noop)
	assert.ErrorIs(t, err, ErrDuplicateJob)

	assert.Equal(t, []string{JobGenerateSlots}, s.Names())
}

func TestStartStop(t *testing.T) {
	s, _ := newTestScheduler(time.Minute)
	require.NoError(t, s.Register(JobExpireReservations, "@every 1h", func(context.Context) (int, error) { return 0, nil }))

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
