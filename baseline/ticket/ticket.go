// Package ticket provides a fair mutual exclusion lock implementation using a ticket-based
// queuing system. The Lock type ensures FIFO ordering of lock acquisition by
// maintaining a queue of waiting goroutines using ticket numbers. This provides fairness
// by serving lock requests in the exact order they arrive, while implementing adaptive
// spinning strategies to balance CPU utilization with latency.
//
// This package plays the same role here as baseline/alock and baseline/mcs:
// a blocking, fair lock used only to benchmark against the guard package's
// non-blocking, unfair-by-design state machine.
package ticket

import (
	"sync/atomic"
	"time"
	"unsafe"
)

// Lock implements a fair mutual exclusion lock using a ticket-based queuing system.
// The lock maintains a queue of waiting goroutines using ticket numbers, ensuring FIFO
// ordering of lock acquisition. This provides fairness by serving lock requests in the
// exact order they arrive.
//
// The internal implementation uses two counters:
// - head: represents the currently served ticket number
// - tail: represents the next available ticket number
//
// The lock is free when head == tail+1, and locked otherwise.
// The struct is carefully laid out to ensure proper alignment on 32-bit platforms.
type Lock struct {
	head uint32 // Current ticket being served
	tail uint32 // Next ticket to be issued

	acquisitions atomic.Uint64
}

// NewLock creates a new ticket Lock.
func NewLock() *Lock { return &Lock{head: 1, tail: 0} }

// TryLock attempts to acquire the lock without blocking. It returns true if the lock
// was acquired successfully, and false if the lock is currently held by another goroutine.
// This method provides a way to avoid blocking when the lock is unavailable.
func (t *Lock) TryLock() bool {
	me := t.tail
	meNew := me + 1
	// Build both words with the same memory layout as the head/tail fields,
	// so the comparison holds whatever the platform's byte order.
	var expected, desired uint64
	e := (*[2]uint32)(unsafe.Pointer(&expected))
	e[0], e[1] = me+1, me // Expected: head should be tail+1 for lock to be free
	d := (*[2]uint32)(unsafe.Pointer(&desired))
	d[0], d[1] = me+1, meNew // New: keep head same, increment tail
	if atomic.CompareAndSwapUint64((*uint64)(unsafe.Pointer(t)), expected, desired) {
		t.acquisitions.Add(1)
		return true
	}
	return false
}

const (
	ticketBaseWait uint32 = 10
	ticketWaitNext        = 5
)

// Lock acquires the lock using a ticket-based queuing system. It implements an adaptive
// spinning strategy where goroutines wait proportionally to their distance from the head
// of the queue. When a goroutine is far back in the queue (>20 positions), it will sleep
// rather than spin to reduce CPU usage. This provides fair ordering of lock acquisition
// while attempting to balance CPU utilization with latency.
func (t *Lock) Lock() {
	myTicket := atomic.AddUint32(&t.tail, 1) // Get our ticket

	// Fast path for uncontended case
	cur := atomic.LoadUint32(&t.head)
	if cur == myTicket {
		t.acquisitions.Add(1)
		return // No spinning needed if we get the lock immediately
	}

	wait := ticketBaseWait
	distancePrev := uint32(1)

	// Spin until it's our turn.
	for {
		// Determine who's turn it is.
		cur := atomic.LoadUint32(&t.head)
		if cur == myTicket {
			break // Yay! It's our turn
		}
		distance := subAbs(cur, myTicket) // How many people are in front of us?

		if distance > 1 { // If there are people in front of us, wait
			if distance != distancePrev { // If the distance has changed, reset the wait time
				distancePrev = distance
				wait = ticketBaseWait
			}

			// Spin proportionally to the distance from the head.
			// Further back = more iterations of the empty spin loop.
			for range distance * wait {
				// Empty spin loop.
			}
		} else { // If we're next in line, wait a little bit
			for range ticketWaitNext {
				// Empty spin loop.
			}
		}

		if distance > 20 { // Sleep if we're far back in the queue
			time.Sleep(time.Millisecond)
		}
	}
	t.acquisitions.Add(1)
}

// Unlock releases the lock.
func (t *Lock) Unlock() { atomic.AddUint32(&t.head, 1) }

// Acquisitions reports how many times this lock has been successfully
// acquired, via either Lock or TryLock, since it was created - the
// baseline's equivalent of the process package's outcome counters.
func (t *Lock) Acquisitions() uint64 { return t.acquisitions.Load() }

func subAbs(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
