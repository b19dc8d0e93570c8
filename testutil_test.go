package framesched

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/joeycumines/go-framesched/internal/goid"
	"github.com/stretchr/testify/require"
)

var errThreadClosed = errors.New("test thread closed")

// manualThread is a Thread, where the goroutine that created it is the
// thread, and queued tasks only run when RunPending is called.
type manualThread struct {
	queue  []func()
	gid    uint64
	mu     sync.Mutex
	closed bool
}

func newManualThread() *manualThread {
	return &manualThread{gid: goid.Get()}
}

func (x *manualThread) Dispatch(fn func()) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return errThreadClosed
	}
	x.queue = append(x.queue, fn)
	return nil
}

func (x *manualThread) IsCurrent() bool { return goid.Get() == x.gid }

func (x *manualThread) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.queue)
}

func (x *manualThread) Close() {
	x.mu.Lock()
	x.closed = true
	x.mu.Unlock()
}

// RunPending runs queued tasks (including any they queue) until the queue
// is empty, returning the number run.
func (x *manualThread) RunPending() (n int) {
	for {
		x.mu.Lock()
		if len(x.queue) == 0 {
			x.mu.Unlock()
			return
		}
		fn := x.queue[0]
		x.queue = x.queue[1:]
		x.mu.Unlock()
		fn()
		n++
	}
}

type compositeCall struct {
	Target Target
	Region *Region
	ID     VsyncID
}

// fakeOwner is only accessed on the render thread.
type fakeOwner struct {
	composites []compositeCall
	interval   time.Duration
	finished   int
	pending    bool
}

func (x *fakeOwner) CompositeToTarget(id VsyncID, target Target, region *Region) {
	x.composites = append(x.composites, compositeCall{ID: id, Target: target, Region: region})
}

func (x *fakeOwner) IsPendingComposite() bool { return x.pending }

func (x *fakeOwner) FinishPendingComposite() {
	x.pending = false
	x.finished++
}

func (x *fakeOwner) GetTickInterval() time.Duration {
	if x.interval == 0 {
		return 16 * time.Millisecond
	}
	return x.interval
}

type fakeSource struct {
	observer VsyncObserver
	starts   int
	stops    int
	mu       sync.Mutex
}

func (x *fakeSource) ObserveVsync(observer VsyncObserver) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if observer == nil {
		x.stops++
	} else {
		x.starts++
	}
	x.observer = observer
}

func (x *fakeSource) Counts() (starts, stops int) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.starts, x.stops
}

// Notify delivers the event, if observed, as the signal goroutine would.
func (x *fakeSource) Notify(event VsyncEvent) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.observer == nil {
		return false
	}
	return x.observer.NotifyVsync(event)
}

type fakeClock struct {
	now time.Time
	mu  sync.Mutex
}

func (x *fakeClock) Now() time.Time {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.now
}

func (x *fakeClock) Set(t time.Time) {
	x.mu.Lock()
	x.now = t
	x.mu.Unlock()
}

type tickRecorder struct {
	ticks []time.Time
	mu    sync.Mutex
}

func (x *tickRecorder) NotifyTick(t time.Time) {
	x.mu.Lock()
	x.ticks = append(x.ticks, t)
	x.mu.Unlock()
}

func (x *tickRecorder) Ticks() []time.Time {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]time.Time(nil), x.ticks...)
}

type presentationFunc func() bool

func (f presentationFunc) DrivingFrames() bool { return f() }

type displayState bool

func (x displayState) DisplayEnabled() bool { return bool(x) }

var epoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// at returns epoch + d
func at(d time.Duration) time.Time { return epoch.Add(d) }

type harness struct {
	t      *testing.T
	s      *Scheduler
	thread *manualThread
	owner  *fakeOwner
	source *fakeSource
	clock  *fakeClock
}

func newHarness(t *testing.T, opts ...SchedulerOption) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		thread: newManualThread(),
		owner:  new(fakeOwner),
		source: new(fakeSource),
		clock:  &fakeClock{now: epoch},
	}
	s, err := New(h.owner, h.source, h.thread, append([]SchedulerOption{
		WithClock(h.clock.Now),
		WithMetrics(true),
		WithDebugAssertions(true),
	}, opts...)...)
	require.NoError(t, err)
	h.s = s
	return h
}

// tick advances the clock to the tick time, delivers the tick via the
// source, and runs the resulting tasks.
func (h *harness) tick(id VsyncID, d time.Duration) {
	h.t.Helper()
	h.clock.Set(at(d))
	h.source.Notify(NewVsyncEvent(id, at(d), 16*time.Millisecond))
	h.thread.RunPending()
}
