// Package guard implements a non-blocking reader/writer access controller
// whose entire state is packed into one atomic word and advanced by a
// precomputed transition table. Every entry and exit is try-only: on
// contention the caller is told "not now", never parked.
//
// The guard never takes a lock, never sleeps and never parks a goroutine.
// Callers that lose a race simply get false back and decide for themselves
// what to do next (see the fluid and staff packages for how that decision
// becomes "try a different job").
package guard

// Mode is the coarse state of a guard. The zero value, ModeUndefined, never
// appears as a live guard state - it only shows up in the transition table
// to mark "no edge from here for this goal".
type Mode uint32

const (
	ModeUndefined  Mode = iota // O: no transition defined
	ModeIdle                   // I: no readers, no writer
	ModeWrite                  // W: writer active
	ModeRead                   // r: exactly one reader
	ModeReadMany               // R: more than one reader
	ModeFinishOne              // f: one reader remaining, writer pending
	ModeFinishMany             // F: several readers remaining, writer pending
)

const modeSize = 7

var modeLex = [modeSize]byte{'O', 'I', 'W', 'r', 'R', 'f', 'F'}

// String renders a mode using the single-letter notation from the transition
// table comments (I, W, r, R, f, F, or O for undefined).
func (m Mode) String() string {
	if uint32(m) >= modeSize {
		return "?"
	}
	return string(modeLex[m])
}

// Action is applied to the active-reader count when a transition fires.
type Action uint8

const (
	ActionNone Action = iota // don't change reader count
	ActionIncr               // increment reader count
	ActionDecr               // decrement reader count
	ActionTerm                // reset reader count to zero
)

var actionLex = [...]byte{'=', '+', '-', '0'}

func (a Action) String() string { return string(actionLex[a]) }

// Goal is one of the four operations that can drive a guard. A user's read
// or write scope is exactly one (xi, xt) pair: Ri paired with Rt, Mi paired
// with Mt.
type Goal uint8

const (
	GoalRi Goal = iota // begin read
	GoalRt             // end read
	GoalMi             // begin write
	GoalMt             // end write
)

const goalSize = 4

// goalLex follows the original's lex(Goal) table: Ri/Rt render as the
// read-goal pair 'R'/'r', Mi/Mt render as the write-goal pair 'W'/'w' - the
// same letters dotgraph uses to pick which goal a render highlights.
var goalLex = [goalSize]byte{'R', 'r', 'W', 'w'}

func (g Goal) String() string { return string(goalLex[g]) }

// Edge describes one cell of the transition table: where a (goal, mode)
// pair leads, what happens to the reader count, and whether arriving there
// satisfies the goal outright or requires the caller to run the outer loop
// again from the new mode.
type Edge struct {
	Into   Mode
	Action Action
	Finish bool
}

// undefinedEdge marks a (goal, mode) cell with no transition. Finish is true
// on it purely so a caller that forgets to check Into first doesn't read a
// false "must retry" signal - the guard core always checks Into first.
var undefinedEdge = Edge{Into: ModeUndefined, Action: ActionNone, Finish: true}

// transitionDef is one line of the source-of-truth table. The table follows
// the literal source table except for the I->r finish flag described below.
type transitionDef struct {
	goal   Goal
	from   Mode
	into   Mode
	action Action
	finish bool
}

// The I->r edge is marked final here, not non-final as the literal source
// table has it (see DESIGN.md's "Ri I->r finish flag" entry): with Check
// wired to Ri/Rt (see fluid.Check), a non-final I->r means a single Ri call
// falls straight through to r->R before returning, so a lone reader never
// rests in r - it rests in R with n=2, which violates the n==1-in-r
// invariant and leaves no second Ri able to join. Marking it final makes
// one Ri call advance the guard by exactly one reader, matching every other
// goal's one-call-one-step behaviour.
var transitionDefs = []transitionDef{
	{GoalRi, ModeIdle, ModeRead, ActionIncr, true},
	{GoalRi, ModeRead, ModeReadMany, ActionIncr, true},

	{GoalRt, ModeRead, ModeIdle, ActionTerm, true},
	{GoalRt, ModeReadMany, ModeRead, ActionDecr, true},
	{GoalRt, ModeFinishOne, ModeIdle, ActionTerm, true},
	{GoalRt, ModeFinishMany, ModeFinishOne, ActionDecr, true},

	{GoalMi, ModeIdle, ModeWrite, ActionNone, true},
	{GoalMi, ModeRead, ModeFinishOne, ActionNone, false},
	{GoalMi, ModeReadMany, ModeFinishMany, ActionNone, false},

	{GoalMt, ModeWrite, ModeIdle, ActionNone, true},
}

// Note on reader concurrency: the table above has no R->R edge, so a
// guard's reader count can only ever reach 2 via successive Ri calls
// (I->r, then r->R) no matter how large a guard's configured N_max is.
// N_max still bounds every transition's resulting n (see Guard.Run), but
// nothing in this table can drive n past 2 through Ri alone. Callers
// wanting more than 2 concurrently admitted readers get the same "n==2 is
// as far as this goes" ceiling the literal source table has; see
// DESIGN.md's "Ri reader ceiling" entry.

// Table is a 4x7 array of Edge records indexed by [goal][mode], built once
// from transitionDefs. It is exported so the dotgraph package can render it
// without reaching into guard internals.
type Table [goalSize][modeSize]Edge

// BuildTable constructs the transition table described in the
// specification. It is deterministic and side-effect free, so it is safe to
// call more than once (the dotgraph package and tests both do).
func BuildTable() Table {
	var t Table
	for g := Goal(0); g < goalSize; g++ {
		for m := Mode(0); m < modeSize; m++ {
			t[g][m] = undefinedEdge
		}
	}
	for _, d := range transitionDefs {
		if d.from == d.into {
			panic("guard: transition table entry is a self-loop, violates acyclic invariant")
		}
		t[d.goal][d.from] = Edge{Into: d.into, Action: d.action, Finish: d.finish}
	}
	return t
}

// TransitionTable is the package-level, shared instance of the transition
// table. It is immutable after init and safe for concurrent read access from
// any number of goroutines.
var TransitionTable = BuildTable()

// Goals lists the four goals in a stable order, useful for iterating the
// table (dotgraph, diagnostics).
var Goals = [goalSize]Goal{GoalRi, GoalRt, GoalMi, GoalMt}

// Modes lists the seven modes (including the undefined sentinel) in a
// stable order.
var Modes = [modeSize]Mode{ModeUndefined, ModeIdle, ModeWrite, ModeRead, ModeReadMany, ModeFinishOne, ModeFinishMany}
