package watch

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsPeriodically(t *testing.T) {
	s, err := NewScheduler(nil)
	require.NoError(t, err)

	var runs atomic.Int32
	var triggers sync.Map
	id, err := s.SchedulePeriodic(context.Background(), 20*time.Millisecond, func(_ context.Context, tr Trigger) error {
		runs.Add(1)
		triggers.Store(tr, true)
		return stderrors.New("logged, not fatal")
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	s.Start()
	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop())

	_, ok := triggers.Load(TriggerSchedule)
	assert.True(t, ok)
}

func TestScheduler_SkipsAfterCancel(t *testing.T) {
	s, err := NewScheduler(nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var runs atomic.Int32
	_, err = s.SchedulePeriodic(ctx, 10*time.Millisecond, func(context.Context, Trigger) error {
		runs.Add(1)
		return nil
	})
	require.NoError(t, err)

	s.Start()
	time.Sleep(60 * time.Millisecond)
	require.NoError(t, s.Stop())
	assert.Equal(t, int32(0), runs.Load())
}

func TestSerialize(t *testing.T) {
	var active, maxActive atomic.Int32
	run := Serialize(func(context.Context, Trigger) error {
		n := active.Add(1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		active.Add(-1)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = run(context.Background(), TriggerFile)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxActive.Load())
}

func TestSerialize_CanceledContext(t *testing.T) {
	called := false
	run := Serialize(func(context.Context, Trigger) error {
		called = true
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, run(ctx, TriggerStartup), context.Canceled)
	assert.False(t, called)
}
