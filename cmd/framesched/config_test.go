package main

import (
	"testing"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setFlags(t *testing.T) {
	t.Helper()
	prev := [...]any{asap, unobserveCount, interval, requestInterval, duration, idle, compositeCost, logLevel, format}
	t.Cleanup(func() {
		asap = prev[0].(bool)
		unobserveCount = prev[1].(int)
		interval = prev[2].(time.Duration)
		requestInterval = prev[3].(time.Duration)
		duration = prev[4].(time.Duration)
		idle = prev[5].(time.Duration)
		compositeCost = prev[6].(time.Duration)
		logLevel = prev[7].(string)
		format = prev[8].(string)
	})
	asap = false
	unobserveCount = 10
	interval = defaultInterval
	requestInterval = defaultRequestInterval
	duration = defaultDuration
	idle = defaultIdle
	compositeCost = 0
	logLevel = `info`
	format = `text`
}

func TestParseLevel(t *testing.T) {
	for s, want := range map[string]logiface.Level{
		`disabled`: logiface.LevelDisabled,
		`err`:      logiface.LevelError,
		`warning`:  logiface.LevelWarning,
		`info`:     logiface.LevelInformational,
		`debug`:    logiface.LevelDebug,
	} {
		level, err := parseLevel(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, level)
	}

	_, err := parseLevel(`verbose`)
	assert.ErrorContains(t, err, `unknown log level`)
}

func TestNewConfig(t *testing.T) {
	setFlags(t)
	asap = true
	unobserveCount = 3

	cfg, err := newConfig()
	require.NoError(t, err)
	assert.Equal(t, &config{
		logLevel:        logiface.LevelInformational,
		format:          `text`,
		interval:        defaultInterval,
		requestInterval: defaultRequestInterval,
		duration:        defaultDuration,
		idle:            defaultIdle,
		unobserveCount:  3,
		asap:            true,
	}, cfg)
}

func TestNewConfig_invalid(t *testing.T) {
	for name, mutate := range map[string]func(){
		`unobserve count`:  func() { unobserveCount = -1 },
		`interval`:         func() { interval = 0 },
		`request interval`: func() { requestInterval = -time.Second },
		`duration`:         func() { duration = -time.Second },
		`format`:           func() { format = `xml` },
		`log level`:        func() { logLevel = `loud` },
	} {
		t.Run(name, func(t *testing.T) {
			setFlags(t)
			mutate()
			cfg, err := newConfig()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
