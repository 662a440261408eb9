// Package fluid wraps a value of an arbitrary type behind the guard state
// machine, giving callers two non-blocking access modes: Alter for
// exclusive mutation and Check for concurrent reads.
package fluid

import (
	"github.com/ahrav/go-fluid/guard"
	"github.com/ahrav/go-fluid/rclock"
	"github.com/ahrav/go-fluid/rlog"
)

// returnAccessTimeout bounds how long Alter/Check will keep retrying the
// terminating transition (Mt or Rt) once the callback has already
// returned. Exceeding it means the guard's invariants have been broken by
// something outside this package, and there is no safe way to continue.
var returnAccessTimeout = rclock.Millis(10.0)

// Fluid owns one value of type T plus the guard that mediates access to it.
// The value is reachable only through Alter and Check; no reference handed
// to a callback may be retained past the callback's return.
type Fluid[T any] struct {
	data  T
	guard *guard.Guard
	log   *rlog.Log
}

// New creates a fluid with a zero-valued T and the default active-reader
// limit.
func New[T any]() *Fluid[T] {
	return &Fluid[T]{guard: guard.NewDefault(), log: rlog.New("fluid")}
}

// NewWithReaderLimit creates a fluid with a zero-valued T and a caller-
// supplied active-reader limit.
func NewWithReaderLimit[T any](readerLimit uint32) *Fluid[T] {
	return &Fluid[T]{guard: guard.New(readerLimit), log: rlog.New("fluid")}
}

// Alter obtains exclusive access, invokes f with a pointer to the wrapped
// value, and releases access. It returns false - without calling f - if
// exclusive access could not be obtained right now. A true result means f
// ran to completion and the guard is back in a state consistent with Idle.
func (fl *Fluid[T]) Alter(f func(*T)) bool {
	if !fl.guard.Run(guard.GoalMi) {
		return false
	}
	f(&fl.data)
	return fl.release(guard.GoalMt)
}

// Check obtains shared access, invokes f with a pointer to the wrapped
// value for read-only use, and releases access. It returns false - without
// calling f - if shared access could not be obtained right now.
//
// Check drives the guard with the read goals (Ri/Rt), so multiple
// goroutines may run their callbacks concurrently up to the fluid's
// active-reader limit; see CheckSerialized for the literal source
// behaviour, which drives Check with the write goals instead.
func (fl *Fluid[T]) Check(f func(*T)) bool {
	if !fl.guard.Run(guard.GoalRi) {
		return false
	}
	f(&fl.data)
	return fl.release(guard.GoalRt)
}

// CheckSerialized reproduces the original source's check() literally: it
// drives the guard with Mi/Mt instead of Ri/Rt, so every access - read or
// write - serializes as a writer and the r/R modes are never reached. It
// exists only so tests can characterize the difference against Check; new
// code should use Check.
func (fl *Fluid[T]) CheckSerialized(f func(*T)) bool {
	if !fl.guard.Run(guard.GoalMi) {
		return false
	}
	f(&fl.data)
	return fl.release(guard.GoalMt)
}

// release returns access via terminateGoal. The first attempt almost always
// succeeds; if it doesn't (something else nudged the guard between our
// callback returning and now), it retries in a bounded loop and panics if
// the deadline elapses, since that means an invariant the rest of this
// package depends on has been violated.
func (fl *Fluid[T]) release(terminateGoal guard.Goal) bool {
	if fl.guard.Run(terminateGoal) {
		return true
	}
	timer := rclock.NewTimer()
	for timer.Before(returnAccessTimeout) {
		if fl.guard.Run(terminateGoal) {
			return true
		}
		rclock.Yield()
	}
	fl.log.Vital("could not return access within deadline, guard invariant broken")
	panic(ErrDeadlock)
}

// State exposes the wrapped guard's mode and active-reader count for
// diagnostics.
func (fl *Fluid[T]) State() (guard.Mode, uint32) { return fl.guard.State() }
