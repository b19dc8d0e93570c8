package framesched

import (
	"sync"
)

// TaskMonitor guarantees that at most one task of each [TaskKind] is in
// flight, on a given [Thread].
//
// Each kind has a slot, guarded by its own mutex. The slot is filled by
// PostIfAbsent, and emptied exactly once per task, either by the task itself
// (ClearSelf, which must be the first thing the task body does) or by
// Cancel.
type TaskMonitor struct {
	thread Thread
	slots  [numTaskKinds]taskSlot
}

type taskSlot struct {
	task *Task
	mu   sync.Mutex
}

// NewTaskMonitor creates a monitor posting to the given thread.
func NewTaskMonitor(thread Thread) *TaskMonitor {
	if thread == nil {
		panic(ErrNilRenderThread)
	}
	return &TaskMonitor{thread: thread}
}

// PostIfAbsent dispatches the task, if there is no task of the same kind in
// flight. It returns true if the task was dispatched. If the slot was
// occupied, the task is discarded (coalesced). If dispatch fails, the slot is
// left empty, and the error is returned.
//
// WARNING: The thread's Dispatch is called with the slot locked, and so must
// not run the task inline.
func (x *TaskMonitor) PostIfAbsent(task *Task) (bool, error) {
	s := x.slot(task.kind)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task != nil {
		return false, nil
	}
	if err := x.thread.Dispatch(task.Run); err != nil {
		return false, err
	}
	s.task = task
	return true, nil
}

// ClearSelf empties the slot for the task's kind, if (and only if) it still
// holds the given task. Tasks call this on entry, before their body, so a
// fresh task of the same kind may be posted while they are still running.
func (x *TaskMonitor) ClearSelf(task *Task) {
	s := x.slot(task.kind)
	s.mu.Lock()
	if s.task == task {
		s.task = nil
	}
	s.mu.Unlock()
}

// Cancel cancels and removes the in-flight task of the given kind, returning
// true if there was one. A task that has already started is not interrupted,
// but the slot is still emptied.
func (x *TaskMonitor) Cancel(kind TaskKind) bool {
	s := x.slot(kind)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task == nil {
		return false
	}
	s.task.Cancel()
	s.task = nil
	return true
}

// Pending returns true if a task of the given kind is in flight.
func (x *TaskMonitor) Pending(kind TaskKind) bool {
	s := x.slot(kind)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task != nil
}

// CancelAll cancels every kind, in reverse order of declaration.
func (x *TaskMonitor) CancelAll() {
	for kind := numTaskKinds; kind > 0; kind-- {
		x.Cancel(kind - 1)
	}
}

func (x *TaskMonitor) slot(kind TaskKind) *taskSlot {
	if kind >= numTaskKinds {
		panic(`framesched: invalid task kind: ` + kind.String())
	}
	return &x.slots[kind]
}
