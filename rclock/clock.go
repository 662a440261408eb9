// Package rclock is the steady-clock collaborator: a yield primitive, a
// millisecond-granularity duration, and a monotonic elapsed-time check,
// matching the minimal surface the original's Chronos/Timer pairing
// exposed to the core.
package rclock

import (
	"runtime"
	"time"
)

// Yield hands the current goroutine's turn back to the Go scheduler. It is
// the direct analogue of std::this_thread::yield() in the original source.
func Yield() { runtime.Gosched() }

// Millis builds a time.Duration from a count of milliseconds, matching the
// original's `Duration::Value{ n }[ MILLISEC ]` construction.
func Millis(n float64) time.Duration {
	return time.Duration(n * float64(time.Millisecond))
}

// Timer measures elapsed time from its creation, analogous to the
// original's Chronos.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer at the current instant.
func NewTimer() Timer { return Timer{start: time.Now()} }

// Elapsed returns the time since the timer was created.
func (t Timer) Elapsed() time.Duration { return time.Since(t.start) }

// Before reports whether the timer's elapsed time is still less than d,
// the idiomatic-Go replacement for the original's `timer < duration`
// comparison operator used to drive a bounded retry loop.
func (t Timer) Before(d time.Duration) bool { return t.Elapsed() < d }
