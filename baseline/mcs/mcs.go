// Package mcs implements the Mellor-Crummey Scott (MCS) lock, a scalable FIFO queue-based spin lock.
//
// Like baseline/alock and baseline/ticket, this package exists in this
// module purely as a blocking-lock comparison point for the guard
// package's non-blocking state machine - see baseline/compare_bench_test.go.
// Nothing in guard, fluid, process, staff, or dotgraph imports it.
//
// An MCS lock provides several advantages over traditional spin locks:
//   - FIFO ordering ensures fair lock acquisition
//   - Each thread spins on a local variable, reducing memory contention and cache invalidation
//   - Memory usage scales with the number of threads contending for the lock
//   - Predictable performance under high contention
//
// Example usage:
//
//	lock := mcs.NewLock()
//	node := &mcs.QNode{}
//
//	// Blocking acquisition
//	lock.Lock(node)
//	// ... critical section ...
//	lock.Unlock(node)
//
//	// Non-blocking try-lock
//	if lock.TryLock(node) {
//	    // ... critical section ...
//	    lock.Unlock(node)
//	}
//
// Each goroutine must maintain its own QNode instance. A single QNode should not be
// used concurrently by multiple goroutines.
package mcs

import (
	"runtime"
	"sync/atomic"
)

// QNode represents a queue node in the MCS lock.
type QNode struct {
	next    atomic.Pointer[QNode]
	waiting uint32
}

// Lock represents the MCS lock.
type Lock struct {
	tail         atomic.Pointer[QNode]
	acquisitions atomic.Uint64
}

// NewLock creates a new MCS lock.
func NewLock() *Lock { return new(Lock) }

// TryLock attempts to acquire the lock without blocking.
// Returns true if lock was acquired, false otherwise.
func (l *Lock) TryLock(node *QNode) bool {
	node.next.Store(nil)
	if l.tail.CompareAndSwap(nil, node) {
		l.acquisitions.Add(1)
		return true
	}
	return false
}

// Lock acquires the lock.
func (l *Lock) Lock(node *QNode) {
	node.next.Store(nil)
	pred := l.tail.Swap(node) // Atomically put ourselves at the tail

	if pred == nil { // No predecessor, lock acquired
		l.acquisitions.Add(1)
		return
	}

	// Someone else is holding the lock, wait for predecessor to signal us.
	atomic.StoreUint32(&node.waiting, 1)
	pred.next.Store(node) // Link to predecessor

	// Spin until predecessor signals us.
	for atomic.LoadUint32(&node.waiting) != 0 {
		// Similar to PAUSE in the C version, not sure if this is correct?
		// Maybe just use a for loop?
		runtime.Gosched()
	}
	l.acquisitions.Add(1)
}

// Unlock releases the lock.
func (l *Lock) Unlock(node *QNode) {
	// Check if there's a successor.
	if node.next.Load() == nil {
		// No one waiting? Try to set tail to nil.
		if l.tail.CompareAndSwap(node, nil) {
			return
		}

		// Someone in the process of enqueuing, wait for them.
		for {
			succ := node.next.Load()
			if succ != nil {
				atomic.StoreUint32(&succ.waiting, 0) // Signal successor
				return
			}
			runtime.Gosched()
		}
	}

	// Signal our successor.
	succ := node.next.Load()
	atomic.StoreUint32(&succ.waiting, 0)
}

// Acquisitions reports how many times this lock has been successfully
// acquired, via either Lock or TryLock, since it was created - the
// baseline's equivalent of the process package's outcome counters.
func (l *Lock) Acquisitions() uint64 { return l.acquisitions.Load() }
