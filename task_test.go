package framesched

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskKind_String(t *testing.T) {
	assert.Equal(t, `Composite`, KindComposite.String())
	assert.Equal(t, `VR`, KindVR.String())
	assert.Equal(t, `NeedsComposite`, KindNeedsComposite.String())
	assert.Equal(t, `Display`, KindDisplay.String())
	assert.Equal(t, `Unknown(4)`, numTaskKinds.String())
}

func TestTaskState_String(t *testing.T) {
	assert.Equal(t, `Pending`, TaskPending.String())
	assert.Equal(t, `Running`, TaskRunning.String())
	assert.Equal(t, `Canceled`, TaskCanceled.String())
	assert.Equal(t, `Unknown`, TaskState(42).String())
}

func TestNewTask_nilFunc(t *testing.T) {
	assert.Panics(t, func() { NewTask(KindComposite, nil) })
}

func TestTask_Run(t *testing.T) {
	var calls int
	var got *Task
	task := NewTask(KindVR, func(task *Task) {
		calls++
		got = task
	})
	assert.Equal(t, KindVR, task.Kind())
	assert.Equal(t, TaskPending, task.State())

	task.Run()
	assert.Equal(t, 1, calls)
	assert.Same(t, task, got)
	assert.Equal(t, TaskRunning, task.State())

	// runs at most once, and can't be canceled once started
	task.Run()
	assert.Equal(t, 1, calls)
	assert.False(t, task.Cancel())
	assert.Equal(t, TaskRunning, task.State())
}

func TestTask_Cancel(t *testing.T) {
	var calls int
	task := NewTask(KindComposite, func(*Task) { calls++ })

	assert.True(t, task.Cancel())
	assert.Equal(t, TaskCanceled, task.State())
	assert.False(t, task.Cancel())

	task.Run()
	assert.Zero(t, calls)
	assert.Equal(t, TaskCanceled, task.State())
}

func TestTask_RunCancelRace(t *testing.T) {
	for range 500 {
		var ran atomic.Bool
		task := NewTask(KindComposite, func(*Task) { ran.Store(true) })

		var wg sync.WaitGroup
		var canceled atomic.Bool
		wg.Add(2)
		go func() {
			defer wg.Done()
			task.Run()
		}()
		go func() {
			defer wg.Done()
			canceled.Store(task.Cancel())
		}()
		wg.Wait()

		// exactly one of the two wins
		require.NotEqual(t, ran.Load(), canceled.Load())
	}
}
