package softvsync

import (
	"github.com/joeycumines/logiface"
)

type sourceOptions struct {
	logger *logiface.Logger[logiface.Event]
}

// Option configures a Source.
type Option interface {
	applySource(*sourceOptions) error
}

type optionImpl struct {
	applySourceFunc func(*sourceOptions) error
}

func (o *optionImpl) applySource(opts *sourceOptions) error {
	return o.applySourceFunc(opts)
}

// WithLogger configures structured logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *sourceOptions) error {
		opts.logger = logger
		return nil
	}}
}

func resolveOptions(opts []Option) (*sourceOptions, error) {
	cfg := &sourceOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applySource(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
