// Package staff implements the fixed-size worker pool that races a set of
// goroutines against a shared slice of logical processes, each worker
// repeatedly picking a random process and invoking one step.
package staff

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/ahrav/go-fluid/process"
	"github.com/ahrav/go-fluid/rlog"
)

// memberNames mirrors the original's single-letter worker labels, A..Z.
const memberNames = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// member is one worker goroutine plus its own counters. It is unexported:
// callers only ever interact with Staff.
type member struct {
	name       string
	processes  []*process.Process
	terminate  atomic.Bool
	terminated atomic.Bool
	stat       process.Statistics
	wg         *sync.WaitGroup
}

func (m *member) run() {
	defer m.wg.Done()

	n := len(m.processes)
	rnd := rand.New(rand.NewSource(rand.Int63()))

	log := rlog.New(m.name)
	log.Vitalf("Staff::member started, %d processes", n)

	m.terminated.Store(false)
	for !m.terminate.Load() {
		k := rnd.Intn(n)
		outcome := m.processes[k].Step(log)
		m.stat.Record(outcome)
	}

	m.stat.Expose(log, fmt.Sprintf("Thread `%s` statistics:", m.name))
	m.terminated.Store(true)
}

// Staff is a fixed collection of worker goroutines sharing one slice of
// logical processes. Staff is created non-starting; Start spawns the
// workers, Stop requests termination and waits for them to exit.
type Staff struct {
	members []*member
	wg      sync.WaitGroup
}

// New creates a staff of n workers sharing processes. n must be less than
// len(memberNames) so every worker can be given a distinct single-letter
// label.
func New(n int, processes []*process.Process) *Staff {
	if n <= 0 {
		panic("staff: worker count must be positive")
	}
	if n >= len(memberNames) {
		panic("staff: worker count must be less than 26 to keep single-letter labels")
	}
	if len(processes) == 0 {
		panic("staff: at least one process is required")
	}

	s := &Staff{}
	for i := 0; i < n; i++ {
		s.members = append(s.members, &member{
			name:      string(memberNames[i]),
			processes: processes,
			wg:        &s.wg,
		})
	}
	return s
}

// Start spawns one goroutine per worker.
func (s *Staff) Start() {
	for _, m := range s.members {
		s.wg.Add(1)
		go m.run()
	}
}

// Stop requests every worker to terminate and blocks until all have exited.
func (s *Staff) Stop() {
	for _, m := range s.members {
		m.terminate.Store(true)
	}
	s.wg.Wait()
}

// Size reports the number of workers in the staff.
func (s *Staff) Size() int { return len(s.members) }
