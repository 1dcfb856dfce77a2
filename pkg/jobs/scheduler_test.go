package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRegisterValidation(t *testing.T) {
	s := NewScheduler(SchedulerConfig{})

	assert.Error(t, s.Register(Task{Name: "", Interval: time.Second, Run: func(context.Context) error { return nil }}))
	assert.Error(t, s.Register(Task{Name: "sync", Interval: 0, Run: func(context.Context) error { return nil }}))
	require.NoError(t, s.Register(Task{Name: "sync", Interval: time.Second, Run: func(context.Context) error { return nil }}))
	assert.Error(t, s.Register(Task{Name: "sync", Interval: time.Second, Run: func(context.Context) error { return nil }}))
}

func TestSchedulerRunNowReportsResult(t *testing.T) {
	var (
		mu      sync.Mutex
		results []error
	)
	s := NewScheduler(SchedulerConfig{OnResult: func(name string, err error, _ time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, "sync", name)
		results = append(results, err)
	}})

	boom := errors.New("boom")
	require.NoError(t, s.Register(Task{Name: "sync", Interval: time.Hour, Run: func(context.Context) error { return boom }}))

	err := s.RunNow(context.Background(), "sync")
	assert.ErrorIs(t, err, boom)
	assert.Error(t, s.RunNow(context.Background(), "missing"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0], boom)
}

func TestSchedulerRunsOnStartAndTicks(t *testing.T) {
	var calls int32
	s := NewScheduler(SchedulerConfig{})
	require.NoError(t, s.Register(Task{
		Name:       "cleanup",
		Interval:   10 * time.Millisecond,
		RunOnStart: true,
		Run: func(context.Context) error {
			atomic.AddInt32(&calls, 1)
			return nil
		},
	}))

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	after := atomic.LoadInt32(&calls)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&calls))
}
