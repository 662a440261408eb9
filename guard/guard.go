package guard

import "sync/atomic"

// DefaultReaderLimit is the active-reader bound (N_max) used when a guard is
// constructed with NewDefault. N_max bounds every
// transition's resulting reader count, but the transition table's Ri edges
// (see table.go) can only ever admit up to 2 concurrent readers regardless
// of how high N_max is set - there is no edge that increments past R.
const DefaultReaderLimit = 4

// transAttemptLimit bounds the inner CAS retry loop. Two attempts are
// enough: the first races against the value we just loaded, the second is
// made only when that CAS failed yet a reload still shows the loaded value.
// Any other change to the word ends the attempt with false (see trans).
const transAttemptLimit = 2

// Guard mediates access to a fluid's value. Its entire state - mode plus
// active-reader count - lives in a single atomic word. There are no locks
// anywhere in this type; every method either makes progress immediately or
// returns false.
type Guard struct {
	packed atomic.Uint32
	nMax   uint32
}

// pack combines a mode and reader count into the single word used as the
// source of truth. mode occupies the low 16 bits, n the next 16.
func pack(mode Mode, n uint32) uint32 {
	return (n << 16) | (uint32(mode) & 0xFFFF)
}

// unpack splits a packed word back into its mode and reader count.
func unpack(w uint32) (Mode, uint32) {
	return Mode(w & 0xFFFF), w >> 16
}

// New creates a guard in mode Idle with the given active-reader limit.
func New(readerLimit uint32) *Guard {
	g := &Guard{nMax: readerLimit}
	g.packed.Store(pack(ModeIdle, 0))
	return g
}

// NewDefault creates a guard using DefaultReaderLimit.
func NewDefault() *Guard { return New(DefaultReaderLimit) }

// trans attempts a single logical transition: CAS the packed word from
// expected to desired, retrying up to transAttemptLimit times as long as the
// observed word still equals expected (meaning the CAS merely lost a race
// against an identical load, not that the state actually moved).
func (g *Guard) trans(expected, desired uint32) bool {
	for attempt := 0; attempt < transAttemptLimit; attempt++ {
		if g.packed.CompareAndSwap(expected, desired) {
			return true
		}
		if g.packed.Load() != expected {
			return false
		}
	}
	return false
}

// Run attempts to advance the guard toward goal. It returns true once the
// goal has been reached, false if the current state admits no progress
// toward goal right now. Run never blocks, sleeps, or parks, and it is safe
// to call concurrently from any number of goroutines.
func (g *Guard) Run(goal Goal) bool {
	for {
		actual := g.packed.Load()
		mode, n := unpack(actual)
		edge := TransitionTable[goal][mode]
		if edge.Into == ModeUndefined {
			return false
		}
		next := n
		switch edge.Action {
		case ActionNone:
			// n unchanged
		case ActionIncr:
			next = n + 1
		case ActionDecr:
			next = n - 1
		case ActionTerm:
			next = 0
		default:
			panic("guard: unknown action in transition table")
		}
		if next > g.nMax {
			return false
		}
		desired := pack(edge.Into, next)
		if !g.trans(actual, desired) {
			return false
		}
		if edge.Finish {
			return true
		}
		// Goal not yet reached (e.g. Mi moving r -> f): loop and apply the
		// next edge from the new state.
	}
}

// State returns a lock-free snapshot of the guard's mode and active-reader
// count, for diagnostics only. Nothing should make correctness decisions
// based on a State() read racing with concurrent Run calls.
func (g *Guard) State() (Mode, uint32) {
	return unpack(g.packed.Load())
}

// ReaderLimit reports the active-reader bound this guard was constructed
// with.
func (g *Guard) ReaderLimit() uint32 { return g.nMax }
