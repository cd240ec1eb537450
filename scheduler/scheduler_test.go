package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleRunsJob(t *testing.T) {
	s := NewScheduler()
	var runs atomic.Int32
	_, err := s.Schedule("tick", "* * * * * *", func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())
}

func TestScheduleGeneratesID(t *testing.T) {
	s := NewScheduler()
	id, err := s.Schedule("", "@every 1h", func(context.Context) error { return nil })
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, id, jobs[0].ID)
	assert.Equal(t, "@every 1h", jobs[0].Schedule)
}

func TestScheduleRejectsDuplicatesAndBadSpecs(t *testing.T) {
	s := NewScheduler()
	_, err := s.Schedule("job", "0 * * * *", func(context.Context) error { return nil })
	require.NoError(t, err)

	_, err = s.Schedule("job", "0 * * * *", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrJobExists)

	_, err = s.Schedule("bad", "not a cron", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestRemove(t *testing.T) {
	s := NewScheduler()
	_, err := s.Schedule("job", "@daily", func(context.Context) error { return nil })
	require.NoError(t, err)

	assert.True(t, s.Remove("job"))
	assert.False(t, s.Remove("job"))
	assert.Empty(t, s.Jobs())
}

func TestStopWithoutStart(t *testing.T) {
	s := NewScheduler()
	assert.NoError(t, s.Stop(context.Background()))
}

func TestStopReleasesLockWhileJobsFinish(t *testing.T) {
	s := NewScheduler()
	started := make(chan struct{})
	var first atomic.Bool
	_, err := s.Schedule("busy", "* * * * * *", func(ctx context.Context) error {
		if !first.CompareAndSwap(false, true) {
			return nil
		}
		close(started)
		<-ctx.Done()
		// A job finishing during Stop still reaches the scheduler lock.
		_ = s.IsRunning()
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("job never started")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	begin := time.Now()
	require.NoError(t, s.Stop(ctx))
	assert.Less(t, time.Since(begin), time.Second)
	assert.False(t, s.IsRunning())
}
