package fluid

import "errors"

// ErrDeadlock is the panic value raised when Alter or Check cannot return
// access to the guard within returnAccessTimeout after the user callback
// has already completed. This can only happen if an invariant the guard
// depends on has been broken elsewhere - it is not a condition callers are
// expected to recover from.
var ErrDeadlock = errors.New("fluid: could not return access, guard invariant broken")
