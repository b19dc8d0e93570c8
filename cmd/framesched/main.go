// Command framesched runs a frame scheduler against a software vsync source,
// with a simulated content producer, and reports the scheduler's metrics.
//
// It is primarily a harness for observing scheduling behavior, e.g. the
// backoff once content stops changing, or the effect of ASAP mode.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli"
)

const (
	defaultInterval        = 16667 * time.Microsecond
	defaultRequestInterval = 10 * time.Millisecond
	defaultDuration        = 2 * time.Second
	defaultIdle            = 500 * time.Millisecond
)

var (
	asap            bool
	unobserveCount  int
	interval        time.Duration
	requestInterval time.Duration
	duration        time.Duration
	idle            time.Duration
	compositeCost   time.Duration
	logLevel        string
	format          string
)

var flags = []cli.Flag{
	cli.BoolFlag{
		Name:        "asap",
		Usage:       "composite on every tick, regardless of requests",
		EnvVar:      "FRAMESCHED_ASAP",
		Destination: &asap,
	},
	cli.IntFlag{
		Name:        "unobserve-count, u",
		Usage:       "consecutive idle ticks before vsync observation stops",
		EnvVar:      "FRAMESCHED_UNOBSERVE_COUNT",
		Value:       10,
		Destination: &unobserveCount,
	},
	cli.DurationFlag{
		Name:        "interval, i",
		Usage:       "vsync interval",
		EnvVar:      "FRAMESCHED_INTERVAL",
		Value:       defaultInterval,
		Destination: &interval,
	},
	cli.DurationFlag{
		Name:        "request-interval, r",
		Usage:       "interval between composite requests, made by the simulated producer",
		EnvVar:      "FRAMESCHED_REQUEST_INTERVAL",
		Value:       defaultRequestInterval,
		Destination: &requestInterval,
	},
	cli.DurationFlag{
		Name:        "duration, d",
		Usage:       "how long the producer requests composites for",
		EnvVar:      "FRAMESCHED_DURATION",
		Value:       defaultDuration,
		Destination: &duration,
	},
	cli.DurationFlag{
		Name:        "idle",
		Usage:       "how long to keep running after the producer stops",
		EnvVar:      "FRAMESCHED_IDLE",
		Value:       defaultIdle,
		Destination: &idle,
	},
	cli.DurationFlag{
		Name:        "composite-cost",
		Usage:       "simulated time taken by each composite",
		EnvVar:      "FRAMESCHED_COMPOSITE_COST",
		Destination: &compositeCost,
	},
	cli.StringFlag{
		Name:        "log-level, l",
		Usage:       "one of: disabled, err, warning, info, debug",
		EnvVar:      "FRAMESCHED_LOG_LEVEL",
		Value:       "info",
		Destination: &logLevel,
	},
	cli.StringFlag{
		Name:        "format, f",
		Usage:       "metrics report format, one of: text, json",
		EnvVar:      "FRAMESCHED_FORMAT",
		Value:       "text",
		Destination: &format,
	},
}

func main() {
	app := cli.App{
		Name:      "framesched",
		HelpName:  "framesched",
		Usage:     "vsync driven frame scheduling harness",
		Version:   "v0.1.0",
		UsageText: "framesched [options]",
		Flags:     flags,
		Action: func(*cli.Context) error {
			cfg, err := newConfig()
			if err != nil {
				return cli.NewExitError(err.Error(), 2)
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return run(ctx, cfg, os.Stdout, os.Stderr)
		},
		UseShortOptionHandling: true,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "framesched: %s\n", err.Error())
		os.Exit(1)
	}
}
