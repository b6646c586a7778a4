package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/loglines/internal/testutil"
)

func TestDebouncer_RunsLatestAfterQuiescence(t *testing.T) {
	timers := &ManualTimers{}
	d := NewDebouncer(100*time.Millisecond, Inline{}, timers)

	var got []string
	d.Trigger(func() { got = append(got, "a") })
	timers.Advance(50 * time.Millisecond)
	d.Trigger(func() { got = append(got, "ab") })
	timers.Advance(50 * time.Millisecond)
	assert.Empty(t, got)
	assert.True(t, d.Pending())

	timers.Advance(50 * time.Millisecond)
	assert.Equal(t, []string{"ab"}, got)
	assert.False(t, d.Pending())
}

func TestDebouncer_Cancel(t *testing.T) {
	timers := &ManualTimers{}
	d := NewDebouncer(10*time.Millisecond, Inline{}, timers)

	ran := false
	d.Trigger(func() { ran = true })
	d.Cancel()
	timers.Advance(time.Second)

	assert.False(t, ran)
	assert.False(t, d.Pending())
	assert.Zero(t, timers.Pending())
}

func TestDebouncer_LateFireAfterCancelIsDropped(t *testing.T) {
	timers := &ManualTimers{}
	var queued []Task
	post := PosterFunc(func(task Task) { queued = append(queued, task) })
	d := NewDebouncer(10*time.Millisecond, post, timers)

	ran := false
	d.Trigger(func() { ran = true })
	timers.Advance(10 * time.Millisecond)
	require.Len(t, queued, 1)

	// The timer fired but the loop has not run the task yet.
	d.Cancel()
	queued[0]()
	assert.False(t, ran)
}

func TestFrameQueue_DropsStaleGenerations(t *testing.T) {
	var q FrameQueue
	var ran []uint64

	q.Request(1, func() { ran = append(ran, 1) })
	q.Request(2, func() { ran = append(ran, 2) })
	q.Request(2, func() { ran = append(ran, 22) })
	assert.Equal(t, 3, q.Pending())

	n, dropped := q.Flush(2)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, []uint64{2, 22}, ran)
	assert.Zero(t, q.Pending())
}

func TestManualTimers_Order(t *testing.T) {
	timers := &ManualTimers{}
	var order []int
	timers.AfterFunc(30*time.Millisecond, func() { order = append(order, 3) })
	timers.AfterFunc(10*time.Millisecond, func() { order = append(order, 1) })
	stopped := timers.AfterFunc(20*time.Millisecond, func() { order = append(order, 2) })

	assert.True(t, stopped.Stop())
	assert.False(t, stopped.Stop())
	assert.Equal(t, 2, timers.Advance(time.Second))
	assert.Equal(t, []int{1, 3}, order)
}

func TestLoop_RunsTasksInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := NewLoop(testutil.NewTestLogger(t))
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	var n atomic.Int32
	for i := 0; i < 10; i++ {
		loop.Post(func() { n.Add(1) })
	}
	loop.Post(func() { panic("boom") })

	err := loop.Do(ctx, func() error {
		if n.Load() != 10 {
			return errors.New("tasks ran out of order")
		}
		return nil
	})
	require.NoError(t, err)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
	assert.ErrorIs(t, loop.Do(context.Background(), func() error { return nil }), ErrStopped)
}
