package renderthread

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startThread(t *testing.T, name string) *Thread {
	t.Helper()
	thread, err := New(name)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- thread.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error(`timed out waiting for thread to stop`)
		}
	})

	// wait until the loop is processing tasks
	require.Eventually(t, func() bool {
		ok := make(chan struct{})
		if thread.Dispatch(func() { close(ok) }) != nil {
			return false
		}
		select {
		case <-ok:
			return true
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	return thread
}

func TestThread_Dispatch_runsOnThread(t *testing.T) {
	thread := startThread(t, `render`)
	assert.Equal(t, `render`, thread.Name())
	assert.False(t, thread.IsCurrent())

	results := make(chan bool, 1)
	require.NoError(t, thread.Dispatch(func() { results <- thread.IsCurrent() }))
	select {
	case current := <-results:
		assert.True(t, current)
	case <-time.After(5 * time.Second):
		t.Fatal(`task did not run`)
	}
}

func TestThread_Dispatch_order(t *testing.T) {
	thread := startThread(t, `render`)

	const n = 100
	var got []int
	for i := range n {
		require.NoError(t, thread.Dispatch(func() { got = append(got, i) }))
	}
	require.NoError(t, thread.Do(context.Background(), func() {}))

	var order []int
	require.NoError(t, thread.Do(context.Background(), func() { order = append(order, got...) }))
	require.Len(t, order, n)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestThread_Do_inline(t *testing.T) {
	thread := startThread(t, `render`)

	var inner atomic.Bool
	require.NoError(t, thread.Do(context.Background(), func() {
		// re-entrant calls run inline, rather than deadlocking
		require.NoError(t, thread.Do(context.Background(), func() {
			inner.Store(thread.IsCurrent())
		}))
	}))
	assert.True(t, inner.Load())
}

func TestThread_Do_contextDone(t *testing.T) {
	thread := startThread(t, `render`)

	release := make(chan struct{})
	defer close(release)
	require.NoError(t, thread.Dispatch(func() { <-release }))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := thread.Do(ctx, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestThread_Shutdown(t *testing.T) {
	thread, err := New(`owner`)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- thread.Run(context.Background()) }()

	var ran atomic.Bool
	require.Eventually(t, func() bool {
		return thread.Dispatch(func() { ran.Store(true) }) == nil && ran.Load()
	}, 5*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, thread.Shutdown(ctx))
	require.NoError(t, <-done)

	// idempotent
	assert.NoError(t, thread.Shutdown(ctx))

	err = thread.Dispatch(func() {})
	assert.ErrorIs(t, err, ErrTerminated)
}

func TestThread_Run_twice(t *testing.T) {
	thread := startThread(t, `render`)
	assert.ErrorIs(t, thread.Run(context.Background()), ErrAlreadyRunning)
}
