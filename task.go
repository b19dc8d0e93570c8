package framesched

import (
	"fmt"
	"sync/atomic"
)

// TaskKind identifies a category of cross-thread task. At most one task of
// each kind is in flight at a time, see [TaskMonitor].
type TaskKind uint8

const (
	// KindComposite is the vsync driven composite task.
	KindComposite TaskKind = iota
	// KindVR is the per-tick VR dispatch task.
	KindVR
	// KindNeedsComposite is a RequestComposite call, marshaled onto the
	// render thread.
	KindNeedsComposite
	// KindDisplay is a SetDisplayEnabled call, marshaled onto the render
	// thread.
	KindDisplay

	numTaskKinds
)

// String returns a human-readable representation of the kind.
func (k TaskKind) String() string {
	switch k {
	case KindComposite:
		return "Composite"
	case KindVR:
		return "VR"
	case KindNeedsComposite:
		return "NeedsComposite"
	case KindDisplay:
		return "Display"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}

// TaskState represents the lifecycle of a [Task].
//
// State Machine:
//
//	TaskPending → TaskRunning   [Run()]
//	TaskPending → TaskCanceled  [Cancel()]
//
// Both TaskRunning and TaskCanceled are terminal.
type TaskState uint32

const (
	// TaskPending indicates the task is queued, and may still be canceled.
	TaskPending TaskState = iota
	// TaskRunning indicates the task body has started (it may have finished).
	TaskRunning
	// TaskCanceled indicates the task was canceled before it started.
	TaskCanceled
)

// String returns a human-readable representation of the state.
func (s TaskState) String() string {
	switch s {
	case TaskPending:
		return "Pending"
	case TaskRunning:
		return "Running"
	case TaskCanceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// Task is a cancelable unit of work, posted to a [Thread].
//
// The body receives the task itself, so that it may clear its own slot, in
// the [TaskMonitor], before doing anything else.
type Task struct {
	fn    func(task *Task)
	state atomic.Uint32
	kind  TaskKind
}

// NewTask creates a pending task of the given kind.
func NewTask(kind TaskKind, fn func(task *Task)) *Task {
	if fn == nil {
		panic(`framesched: nil task func`)
	}
	return &Task{fn: fn, kind: kind}
}

// Kind returns the kind the task was created with.
func (x *Task) Kind() TaskKind { return x.kind }

// State returns the current state of the task.
func (x *Task) State() TaskState { return TaskState(x.state.Load()) }

// Run executes the task body, unless the task was canceled, or has already
// run. It is what gets dispatched to the [Thread].
func (x *Task) Run() {
	if x.state.CompareAndSwap(uint32(TaskPending), uint32(TaskRunning)) {
		x.fn(x)
	}
}

// Cancel prevents the task from running, returning false if it has already
// started (in which case it is a no-op) or was already canceled.
func (x *Task) Cancel() bool {
	return x.state.CompareAndSwap(uint32(TaskPending), uint32(TaskCanceled))
}
