// Package process wraps a step function with the activity flag, per-
// process mutual exclusion flag, and result counters that let a staff of
// worker goroutines (see package staff) race to drive it forward without
// ever blocking.
package process

import (
	"fmt"
	"sync/atomic"

	"github.com/ahrav/go-fluid/rlog"
)

// Outcome is the result of one call to Step.
type Outcome int

const (
	Idle Outcome = iota // the process is not active
	Busy                // another goroutine is already running this process
	Done                // the step function ran and reported progress
	Fail                // the step function ran and reported no progress
)

func (o Outcome) String() string {
	switch o {
	case Idle:
		return "Idle"
	case Busy:
		return "Busy"
	case Done:
		return "Done"
	case Fail:
		return "Fail"
	default:
		return "Unknown"
	}
}

const outcomeCount = 4

// Statistics tallies how many times a process has returned each Outcome.
// All four counters are independent atomics; there is no attempt to make a
// single read of Statistics a consistent snapshot across counters, since
// the only use is a percentage breakdown for diagnostics.
type Statistics struct {
	n [outcomeCount]atomic.Int64
}

func (s *Statistics) record(o Outcome) { s.n[o].Add(1) }

// Record increments the counter for o. It is exported so other packages
// (staff, in particular) can accumulate the same four-way breakdown for
// their own, process-independent bookkeeping.
func (s *Statistics) Record(o Outcome) { s.record(o) }

// Snapshot copies the current counter values.
func (s *Statistics) Snapshot() [outcomeCount]int64 {
	var out [outcomeCount]int64
	for i := range out {
		out[i] = s.n[i].Load()
	}
	return out
}

// Expose renders the four counters as a percentage breakdown through log,
// matching the original's Statistics::expose layout: idle share of total,
// busy share of non-idle, done share of settled, fail share of settled.
func (s *Statistics) Expose(log *rlog.Log, header string) {
	m := s.Snapshot()
	log.Vital(header)
	total := m[Idle] + m[Busy] + m[Done] + m[Fail]
	log.Vital(fmt.Sprintf("  Idle      %6.2f %%  %10d", pct(m[Idle], total), m[Idle]))
	nonIdle := m[Busy] + m[Done] + m[Fail]
	log.Vital(fmt.Sprintf("    Busy    %6.2f %%  %10d", pct(m[Busy], nonIdle), m[Busy]))
	settled := m[Done] + m[Fail]
	log.Vital(fmt.Sprintf("      Done  %6.2f %%  %10d", pct(m[Done], settled), m[Done]))
	log.Vital(fmt.Sprintf("      Fail  %6.2f %%  %10d", pct(m[Fail], settled), m[Fail]))
}

func pct(n, total int64) float64 {
	if total == 0 {
		return 0
	}
	return 100.0 * float64(n) / float64(total)
}

// Process wraps a named step function with the activity flag, in-progress
// flag, and outcome counters described in the specification. A Process is
// created inactive and vacant.
type Process struct {
	name   string
	step   func(log *rlog.Log) bool
	vacant atomic.Bool
	active atomic.Bool
	stat   Statistics
}

// New creates a process wrapping step, initially inactive.
func New(name string, step func(log *rlog.Log) bool) *Process {
	p := &Process{name: name, step: step}
	p.vacant.Store(true)
	p.active.Store(false)
	return p
}

// Name returns the process's human-readable name.
func (p *Process) Name() string { return p.name }

// Start marks the process active, making it eligible for Step to invoke its
// step function.
func (p *Process) Start() { p.active.Store(true) }

// Stop marks the process inactive.
func (p *Process) Stop() { p.active.Store(false) }

// Live reports whether the process is currently active.
func (p *Process) Live() bool { return p.active.Load() }

// Step runs one iteration of the algorithm described in the specification:
// check active, claim vacant via CAS, run the step function, release
// vacant. The returned Outcome is also recorded in the process's counters.
func (p *Process) Step(log *rlog.Log) Outcome {
	if !p.active.Load() {
		p.stat.record(Idle)
		return Idle
	}
	if !p.vacant.CompareAndSwap(true, false) {
		p.stat.record(Busy)
		return Busy
	}

	var result Outcome
	if p.step(log) {
		result = Done
	} else {
		result = Fail
	}
	p.stat.record(result)

	if !p.vacant.CompareAndSwap(false, true) {
		log.Vital("invariant violation: vacant flag was not false on release")
		panic(ErrVacantInvariant)
	}
	return result
}

// Stats returns a snapshot of the process's outcome counters, indexed by
// Outcome (Idle, Busy, Done, Fail).
func (p *Process) Stats() [outcomeCount]int64 { return p.stat.Snapshot() }

// Info renders the process's counters through log.
func (p *Process) Info(log *rlog.Log) {
	p.stat.Expose(log, fmt.Sprintf("Process `%s` statistics:", p.name))
}
