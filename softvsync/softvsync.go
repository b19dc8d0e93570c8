// Package softvsync implements a software (timer driven) vsync
// [framesched.SignalSource], for use where there is no display hardware to
// provide one, e.g. headless rendering, or tests.
package softvsync

import (
	"errors"
	"sync"
	"time"

	"github.com/joeycumines/go-framesched"
	"github.com/joeycumines/logiface"
)

// ErrInvalidInterval is returned by New for a non-positive interval.
var ErrInvalidInterval = errors.New("softvsync: interval must be positive")

// Source ticks at a fixed interval, while it has an observer. It supports a
// single observer, which is replaced by subsequent ObserveVsync calls.
//
// Notifications are delivered with the source's mutex held, so that
// ObserveVsync(nil) synchronizes with any in-flight notification. Observers
// must therefore not call back into the source.
type Source struct {
	logger   *logiface.Logger[logiface.Event]
	observer framesched.VsyncObserver
	stop     chan struct{}
	done     chan struct{}
	interval time.Duration
	lastID   framesched.VsyncID
	mu       sync.Mutex
	closed   bool
}

// New creates a source, ticking at the given interval, once observed.
func New(interval time.Duration, opts ...Option) (*Source, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Source{
		interval: interval,
		logger: cfg.logger.Clone().
			Str(`component`, `softvsync`).
			Logger(),
	}, nil
}

// Interval returns the tick interval.
func (x *Source) Interval() time.Duration { return x.interval }

// ObserveVsync implements [framesched.SignalSource]. A nil observer stops
// ticking. Once a nil call returns, no further notifications are delivered.
func (x *Source) ObserveVsync(observer framesched.VsyncObserver) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return
	}

	x.observer = observer

	if observer == nil {
		if x.stop != nil {
			close(x.stop)
			x.stop = nil
			x.logger.Debug().Log(`stopped ticking`)
		}
		return
	}

	if x.stop == nil {
		x.stop = make(chan struct{})
		x.done = make(chan struct{})
		go x.run(x.stop, x.done)
		x.logger.Debug().
			Dur(`interval`, x.interval).
			Log(`started ticking`)
	}
}

// Observing returns true if the source currently has an observer.
func (x *Source) Observing() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.observer != nil
}

// LastID returns the ID of the most recently delivered tick.
func (x *Source) LastID() framesched.VsyncID {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.lastID
}

// Close stops ticking, and waits for the ticker goroutine to exit.
// Subsequent ObserveVsync calls are ignored.
func (x *Source) Close() error {
	x.mu.Lock()
	x.closed = true
	x.observer = nil
	done := x.done
	if x.stop != nil {
		close(x.stop)
		x.stop = nil
	}
	x.mu.Unlock()
	if done != nil {
		<-done
	}
	return nil
}

func (x *Source) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(x.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case t := <-ticker.C:
			x.tick(stop, t)
		}
	}
}

func (x *Source) tick(stop <-chan struct{}, t time.Time) {
	x.mu.Lock()
	defer x.mu.Unlock()

	select {
	case <-stop:
		// raced with stop, and possibly a new observer, which has its own goroutine
		return
	default:
	}

	if x.observer == nil {
		return
	}

	x.lastID = x.lastID.Next()
	event := framesched.NewVsyncEvent(x.lastID, t, x.interval)
	if !x.observer.NotifyVsync(event) {
		x.logger.Debug().
			Uint64(`vsync_id`, uint64(event.ID)).
			Log(`tick not consumed`)
	}
}
