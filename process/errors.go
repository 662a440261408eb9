package process

import "errors"

// ErrVacantInvariant is the panic value raised when Step cannot reclaim the
// vacant flag it just cleared. This can only happen if something outside
// the CAS-guarded section in Step flipped vacant back to true concurrently
// - a violation of the per-process mutual exclusion this package promises.
var ErrVacantInvariant = errors.New("process: vacant flag was not false on release, invariant broken")
