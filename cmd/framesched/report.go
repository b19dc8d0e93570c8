package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/joeycumines/go-framesched"
	"github.com/joeycumines/go-utilpkg/jsonenc"
)

type report struct {
	Scheduler framesched.MetricsSnapshot
	Frames    uint64
	Forced    uint64
	Touches   uint64
}

func (x report) write(w io.Writer, format string) error {
	var b []byte
	switch format {
	case "json":
		b = x.appendJSON(nil)
	default:
		b = x.appendText(nil)
	}
	b = append(b, '\n')
	_, err := w.Write(b)
	return err
}

type field struct {
	key   string
	value any
}

func (x report) fields() []field {
	s := x.Scheduler
	return []field{
		{`frames`, x.Frames},
		{`forced`, x.Forced},
		{`touches`, x.Touches},
		{`composites`, s.Composites},
		{`forced_composites`, s.ForcedComposites},
		{`idle_ticks`, s.IdleTicks},
		{`stale_ticks`, s.StaleTicks},
		{`pending_composite_ticks`, s.PendingCompositeTicks},
		{`coalesced_ticks`, s.CoalescedTicks},
		{`dropped_ticks`, s.DroppedTicks},
		{`observe_starts`, s.ObserveStarts},
		{`observe_stops`, s.ObserveStops},
		{`roundtrip_count`, s.Roundtrip.Count},
		{`roundtrip_p50`, s.Roundtrip.P50},
		{`roundtrip_p90`, s.Roundtrip.P90},
		{`roundtrip_p99`, s.Roundtrip.P99},
		{`roundtrip_max`, s.Roundtrip.Max},
		{`roundtrip_mean`, s.Roundtrip.Mean},
	}
}

func (x report) appendText(b []byte) []byte {
	for i, f := range x.fields() {
		if i != 0 {
			b = append(b, '\n')
		}
		b = append(b, f.key...)
		b = append(b, `: `...)
		b = fmt.Append(b, f.value)
	}
	return b
}

// appendJSON encodes durations as (fractional) milliseconds.
func (x report) appendJSON(b []byte) []byte {
	b = append(b, '{')
	for i, f := range x.fields() {
		if i != 0 {
			b = append(b, ',')
		}
		b = jsonenc.AppendString(b, f.key)
		b = append(b, ':')
		switch v := f.value.(type) {
		case uint64:
			b = strconv.AppendUint(b, v, 10)
		case int:
			b = strconv.AppendInt(b, int64(v), 10)
		case time.Duration:
			b = jsonenc.AppendFloat64(b, float64(v)/float64(time.Millisecond))
		default:
			b = jsonenc.AppendString(b, fmt.Sprint(v))
		}
	}
	return append(b, '}')
}
