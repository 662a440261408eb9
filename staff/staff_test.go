package staff

import (
	"bytes"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-fluid/fluid"
	"github.com/ahrav/go-fluid/process"
	"github.com/ahrav/go-fluid/rlog"
)

func init() { rlog.SetOutput(&bytes.Buffer{}) }

func TestNewRejectsTooManyWorkers(t *testing.T) {
	p := process.New("A", func(*rlog.Log) bool { return true })
	assert.Panics(t, func() { New(26, []*process.Process{p}) })
}

func TestNewRejectsZeroWorkers(t *testing.T) {
	p := process.New("A", func(*rlog.Log) bool { return true })
	assert.Panics(t, func() { New(0, []*process.Process{p}) })
}

func TestStartStopSmoke(t *testing.T) {
	const fluidCapacity = 5
	const processCount = 10

	type payload struct{ n int }
	fluids := make([]*fluid.Fluid[payload], fluidCapacity)
	for i := range fluids {
		fluids[i] = fluid.NewWithReaderLimit[payload](4)
	}

	processes := make([]*process.Process, processCount)
	for i := range processes {
		i := i
		state := int32(0)
		processes[i] = process.New(string(rune('a'+i)), func(log *rlog.Log) bool {
			target := fluids[rand.Intn(fluidCapacity)]
			if atomic.LoadInt32(&state) == 0 {
				ok := target.Alter(func(p *payload) { p.n++ })
				if ok {
					atomic.StoreInt32(&state, 1)
				}
				return ok
			}
			ok := target.Check(func(p *payload) { _ = p.n })
			if ok {
				atomic.StoreInt32(&state, 0)
			}
			return ok
		})
		processes[i].Start()
	}

	s := New(2, processes)
	require.Equal(t, 2, s.Size())
	s.Start()

	time.Sleep(100 * time.Millisecond)

	s.Stop()

	var totalDone, totalFail int64
	for _, p := range processes {
		snap := p.Stats()
		totalDone += snap[process.Done]
		totalFail += snap[process.Fail]
	}
	assert.Greater(t, totalDone+totalFail, int64(0), "some work must have completed across the staff's lifetime")
}
