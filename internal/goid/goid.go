// Package goid identifies goroutines, so that thread affinity (e.g. "is this
// the render thread") can be asserted.
package goid

import (
	"runtime"
)

// Get returns the current goroutine's ID, parsed from the header of its stack
// trace, i.e. "goroutine 123 [running]:". It returns 0 if parsing fails,
// which never matches a real goroutine.
func Get() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] < '0' || buf[i] > '9' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}
