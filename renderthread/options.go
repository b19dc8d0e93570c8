package renderthread

import (
	"github.com/joeycumines/logiface"
)

type threadOptions struct {
	logger *logiface.Logger[logiface.Event]
}

// Option configures a Thread.
type Option interface {
	applyThread(*threadOptions) error
}

type optionImpl struct {
	applyThreadFunc func(*threadOptions) error
}

func (o *optionImpl) applyThread(opts *threadOptions) error {
	return o.applyThreadFunc(opts)
}

// WithLogger configures structured logging of the thread's lifecycle.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *threadOptions) error {
		opts.logger = logger
		return nil
	}}
}

func resolveOptions(opts []Option) (*threadOptions, error) {
	cfg := &threadOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyThread(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
