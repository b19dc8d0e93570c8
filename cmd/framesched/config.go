package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeycumines/logiface"
)

type config struct {
	logLevel        logiface.Level
	format          string
	interval        time.Duration
	requestInterval time.Duration
	duration        time.Duration
	idle            time.Duration
	compositeCost   time.Duration
	unobserveCount  uint
	asap            bool
}

// newConfig validates the flag values.
func newConfig() (*config, error) {
	cfg := config{
		format:          format,
		interval:        interval,
		requestInterval: requestInterval,
		duration:        duration,
		idle:            idle,
		compositeCost:   compositeCost,
		asap:            asap,
	}
	if unobserveCount < 0 {
		return nil, errors.New("unobserve-count must not be negative")
	}
	cfg.unobserveCount = uint(unobserveCount)
	if cfg.interval <= 0 {
		return nil, errors.New("interval must be positive")
	}
	if cfg.requestInterval <= 0 {
		return nil, errors.New("request-interval must be positive")
	}
	if cfg.duration < 0 || cfg.idle < 0 || cfg.compositeCost < 0 {
		return nil, errors.New("durations must not be negative")
	}
	switch cfg.format {
	case "text", "json":
	default:
		return nil, fmt.Errorf("unknown format: %q", cfg.format)
	}
	level, err := parseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	cfg.logLevel = level
	return &cfg, nil
}

func parseLevel(s string) (logiface.Level, error) {
	for _, level := range [...]logiface.Level{
		logiface.LevelDisabled,
		logiface.LevelError,
		logiface.LevelWarning,
		logiface.LevelNotice,
		logiface.LevelInformational,
		logiface.LevelDebug,
		logiface.LevelTrace,
	} {
		if level.String() == s {
			return level, nil
		}
	}
	return logiface.LevelDisabled, fmt.Errorf("unknown log level: %q", s)
}
