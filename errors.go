package framesched

import (
	"errors"
)

// Standard errors.
var (
	// ErrNilOwner is returned by New if the owner is nil.
	ErrNilOwner = errors.New("framesched: owner is nil")

	// ErrNilSignalSource is returned by New if the signal source is nil.
	ErrNilSignalSource = errors.New("framesched: signal source is nil")

	// ErrNilRenderThread is returned by New if the render thread is nil.
	ErrNilRenderThread = errors.New("framesched: render thread is nil")

	// ErrNotDestroyed is returned by Close if Destroy was never called.
	ErrNotDestroyed = errors.New("framesched: scheduler was not destroyed")

	// ErrWrongThread indicates a render-thread-only operation was called
	// from another goroutine. It is only ever used as a panic value, when
	// debug assertions are enabled.
	ErrWrongThread = errors.New("framesched: called off the render thread")
)
