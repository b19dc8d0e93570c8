package framesched

import (
	"fmt"
	"time"

	"github.com/joeycumines/logiface"
)

// DefaultUnobserveThreshold is the number of consecutive idle ticks tolerated
// before the scheduler stops observing vsync.
const DefaultUnobserveThreshold = 10

// schedulerOptions holds configuration options for Scheduler creation.
// Everything is read once, by New.
type schedulerOptions struct {
	logger             *logiface.Logger[logiface.Event]
	touch              TouchDispatcher
	vr                 VRDispatcher
	presentation       PresentationOverride
	display            DisplayController
	ownerThread        Thread
	clock              Clock
	skipLogRates       map[time.Duration]int
	unobserveThreshold uint
	asap               bool
	metricsEnabled     bool
	debugAssertions    bool
}

// --- Scheduler Options ---

// SchedulerOption configures a Scheduler instance.
type SchedulerOption interface {
	applyScheduler(*schedulerOptions) error
}

// schedulerOptionImpl implements SchedulerOption.
type schedulerOptionImpl struct {
	applySchedulerFunc func(*schedulerOptions) error
}

func (s *schedulerOptionImpl) applyScheduler(opts *schedulerOptions) error {
	return s.applySchedulerFunc(opts)
}

// WithASAP enables ASAP (benchmark/replay) mode, where every tick composites
// immediately, regardless of whether a composite was requested, with no
// stale tick or pending composite checks.
func WithASAP(enabled bool) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		opts.asap = enabled
		return nil
	}}
}

// WithUnobserveThreshold sets the number of consecutive idle ticks, after
// which vsync observation stops. Defaults to DefaultUnobserveThreshold.
func WithUnobserveThreshold(n uint) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		opts.unobserveThreshold = n
		return nil
	}}
}

// WithLogger configures structured logging. A nil logger disables logging,
// which is also the default.
func WithLogger(logger *logiface.Logger[logiface.Event]) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithSkipLogRates configures the per-reason rate limits applied to the
// (debug level) logging of skipped ticks, see
// [github.com/joeycumines/go-catrate]. An empty map disables limiting.
func WithSkipLogRates(rates map[time.Duration]int) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		for window, count := range rates {
			if window <= 0 || count <= 0 {
				return fmt.Errorf("framesched: invalid skip log rate: %v: %d", window, count)
			}
		}
		opts.skipLogRates = rates
		return nil
	}}
}

// WithTouchDispatcher configures the touch dispatcher, notified of ticks that
// reach the composite stage.
func WithTouchDispatcher(touch TouchDispatcher) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		opts.touch = touch
		return nil
	}}
}

// WithVRDispatcher configures the VR dispatcher, notified of every tick.
func WithVRDispatcher(vr VRDispatcher) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		opts.vr = vr
		return nil
	}}
}

// WithPresentationOverride configures a strategy that may suppress vsync
// driven composites.
func WithPresentationOverride(presentation PresentationOverride) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		opts.presentation = presentation
		return nil
	}}
}

// WithDisplayController enables display on/off handling, see
// [Scheduler.SetDisplayEnabled].
func WithDisplayController(display DisplayController) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		opts.display = display
		return nil
	}}
}

// WithOwnerThread configures the thread that the touch dispatcher is called
// on. If unset, the touch dispatcher is called directly, on the render thread.
func WithOwnerThread(thread Thread) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		opts.ownerThread = thread
		return nil
	}}
}

// WithMetrics enables metrics collection, see [Scheduler.Metrics].
func WithMetrics(enabled bool) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		opts.metricsEnabled = enabled
		return nil
	}}
}

// WithClock overrides the time source, primarily for testing.
func WithClock(clock Clock) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		opts.clock = clock
		return nil
	}}
}

// WithDebugAssertions makes contract violations (e.g. calling a render
// thread operation from another goroutine) panic, instead of logging.
func WithDebugAssertions(enabled bool) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		opts.debugAssertions = enabled
		return nil
	}}
}

// resolveSchedulerOptions applies SchedulerOption instances to schedulerOptions.
func resolveSchedulerOptions(opts []SchedulerOption) (*schedulerOptions, error) {
	cfg := &schedulerOptions{
		unobserveThreshold: DefaultUnobserveThreshold,
		skipLogRates: map[time.Duration]int{
			time.Second: 5,
			time.Minute: 60,
		},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyScheduler(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.clock == nil {
		cfg.clock = time.Now
	}
	return cfg, nil
}
