package framesched

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks runtime statistics for a [Scheduler], enabled via
// [WithMetrics].
//
// Thread Safety:
//   - Counters are atomic, and may be incremented from any goroutine.
//     The coalesced and dropped tick counters may be written by the signal
//     goroutine, the rest are written on the render thread.
//   - Roundtrip latency uses a mutex (single writer, multiple readers).
//   - Snapshot returns a copy, safe for concurrent reads.
//
// All methods are safe to call on a nil receiver, which is what a scheduler
// without metrics holds.
//
// Example:
//
//	sched, _ := framesched.New(owner, source, render, framesched.WithMetrics(true))
//	// ...
//	stats := sched.Metrics().Snapshot()
//	fmt.Printf("composites: %d, P99 roundtrip: %v\n",
//		stats.Composites, stats.Roundtrip.P99)
type Metrics struct {
	roundtrip     latencyTracker
	composites    atomic.Uint64
	forced        atomic.Uint64
	idleTicks     atomic.Uint64
	staleTicks    atomic.Uint64
	pendingTicks  atomic.Uint64
	coalesced     atomic.Uint64
	dropped       atomic.Uint64
	observeStarts atomic.Uint64
	observeStops  atomic.Uint64
}

// MetricsSnapshot is a point in time copy of [Metrics].
type MetricsSnapshot struct {
	// Roundtrip is the time from tick to the end of the owner's composite.
	Roundtrip LatencySnapshot

	// Composites counts vsync driven composites.
	Composites uint64
	// ForcedComposites counts ForceComposite calls, including flushes.
	ForcedComposites uint64
	// IdleTicks counts ticks with nothing to composite.
	IdleTicks uint64
	// StaleTicks counts ticks older than the last composite.
	StaleTicks uint64
	// PendingCompositeTicks counts ticks skipped, because the owner was still
	// compositing.
	PendingCompositeTicks uint64
	// CoalescedTicks counts ticks absorbed by an already pending composite
	// task.
	CoalescedTicks uint64
	// DroppedTicks counts ticks whose composite task could not be posted,
	// e.g. after the render thread terminated.
	DroppedTicks uint64
	// ObserveStarts and ObserveStops count vsync observation changes.
	ObserveStarts uint64
	ObserveStops  uint64
}

// LatencySnapshot summarizes a latency distribution.
type LatencySnapshot struct {
	P50   time.Duration
	P90   time.Duration
	P99   time.Duration
	Max   time.Duration
	Mean  time.Duration
	Count int
}

// latencyTracker uses streaming estimators, so that recording never
// allocates, on the render thread.
type latencyTracker struct {
	p50   quantileEstimator
	p90   quantileEstimator
	p99   quantileEstimator
	sum   float64
	max   float64
	count int
	mu    sync.RWMutex
}

func newMetrics() *Metrics {
	m := new(Metrics)
	m.roundtrip.reset()
	return m
}

func (l *latencyTracker) reset() {
	l.p50 = newQuantileEstimator(0.50)
	l.p90 = newQuantileEstimator(0.90)
	l.p99 = newQuantileEstimator(0.99)
	l.sum = 0
	l.max = -math.MaxFloat64
	l.count = 0
}

func (l *latencyTracker) record(d time.Duration) {
	x := float64(d)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.p50.add(x)
	l.p90.add(x)
	l.p99.add(x)
	l.sum += x
	if x > l.max {
		l.max = x
	}
	l.count++
}

func (l *latencyTracker) snapshot() (s LatencySnapshot) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.count == 0 {
		return
	}
	s.Count = l.count
	s.P50 = time.Duration(l.p50.value())
	s.P90 = time.Duration(l.p90.value())
	s.P99 = time.Duration(l.p99.value())
	s.Max = time.Duration(l.max)
	s.Mean = time.Duration(l.sum / float64(l.count))
	return
}

// Snapshot returns a copy of the current metrics. A nil receiver returns
// the zero value.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		Roundtrip:             m.roundtrip.snapshot(),
		Composites:            m.composites.Load(),
		ForcedComposites:      m.forced.Load(),
		IdleTicks:             m.idleTicks.Load(),
		StaleTicks:            m.staleTicks.Load(),
		PendingCompositeTicks: m.pendingTicks.Load(),
		CoalescedTicks:        m.coalesced.Load(),
		DroppedTicks:          m.dropped.Load(),
		ObserveStarts:         m.observeStarts.Load(),
		ObserveStops:          m.observeStops.Load(),
	}
}

func (m *Metrics) recordComposite(roundtrip time.Duration) {
	if m != nil {
		m.composites.Add(1)
		m.roundtrip.record(roundtrip)
	}
}

func (m *Metrics) recordForced() {
	if m != nil {
		m.forced.Add(1)
	}
}

func (m *Metrics) recordSkip(reason skipReason) {
	if m == nil {
		return
	}
	switch reason {
	case skipIdle:
		m.idleTicks.Add(1)
	case skipStale:
		m.staleTicks.Add(1)
	case skipPendingComposite:
		m.pendingTicks.Add(1)
	}
}

func (m *Metrics) recordCoalesced() {
	if m != nil {
		m.coalesced.Add(1)
	}
}

func (m *Metrics) recordDropped() {
	if m != nil {
		m.dropped.Add(1)
	}
}

func (m *Metrics) recordObserve(observe bool) {
	if m == nil {
		return
	}
	if observe {
		m.observeStarts.Add(1)
	} else {
		m.observeStops.Add(1)
	}
}
