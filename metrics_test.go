package framesched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_nil(t *testing.T) {
	var m *Metrics
	m.recordComposite(time.Second)
	m.recordForced()
	m.recordSkip(skipIdle)
	m.recordCoalesced()
	m.recordDropped()
	m.recordObserve(true)
	assert.Equal(t, MetricsSnapshot{}, m.Snapshot())
}

func TestMetrics_counters(t *testing.T) {
	m := newMetrics()
	m.recordForced()
	m.recordSkip(skipIdle)
	m.recordSkip(skipIdle)
	m.recordSkip(skipStale)
	m.recordSkip(skipPendingComposite)
	m.recordSkip(skipDisplayOff)
	m.recordCoalesced()
	m.recordDropped()
	m.recordObserve(true)
	m.recordObserve(true)
	m.recordObserve(false)

	assert.Equal(t, MetricsSnapshot{
		ForcedComposites:      1,
		IdleTicks:             2,
		StaleTicks:            1,
		PendingCompositeTicks: 1,
		CoalescedTicks:        1,
		DroppedTicks:          1,
		ObserveStarts:         2,
		ObserveStops:          1,
	}, m.Snapshot())
}

func TestMetrics_roundtrip(t *testing.T) {
	m := newMetrics()
	assert.Equal(t, LatencySnapshot{}, m.Snapshot().Roundtrip)

	for i := 1; i <= 100; i++ {
		m.recordComposite(time.Duration(i) * time.Millisecond)
	}

	s := m.Snapshot()
	assert.Equal(t, uint64(100), s.Composites)
	assert.Equal(t, 100, s.Roundtrip.Count)
	assert.Equal(t, 100*time.Millisecond, s.Roundtrip.Max)
	assert.Equal(t, 50500*time.Microsecond, s.Roundtrip.Mean)
	assert.InDelta(t, float64(50*time.Millisecond), float64(s.Roundtrip.P50), float64(10*time.Millisecond))
	assert.InDelta(t, float64(90*time.Millisecond), float64(s.Roundtrip.P90), float64(10*time.Millisecond))
	assert.LessOrEqual(t, s.Roundtrip.P99, s.Roundtrip.Max)
	assert.LessOrEqual(t, s.Roundtrip.P50, s.Roundtrip.P90)
}
