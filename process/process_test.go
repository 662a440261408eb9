package process

import (
	"bytes"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-fluid/rlog"
)

func newTestLog(t *testing.T) *rlog.Log {
	var buf bytes.Buffer
	rlog.SetOutput(&buf)
	return rlog.New(t.Name())
}

func TestInactiveProcessReturnsIdle(t *testing.T) {
	log := newTestLog(t)
	p := New("A", func(*rlog.Log) bool { return true })
	assert.Equal(t, Idle, p.Step(log))
}

func TestStepReturnsDoneOrFail(t *testing.T) {
	log := newTestLog(t)
	ok := true
	p := New("A", func(*rlog.Log) bool { return ok })
	p.Start()

	assert.Equal(t, Done, p.Step(log))
	ok = false
	assert.Equal(t, Fail, p.Step(log))
}

func TestMutualExclusionUnderConcurrentStep(t *testing.T) {
	log := newTestLog(t)

	var inside atomic.Int32
	var maxInside atomic.Int32

	p := New("A", func(*rlog.Log) bool {
		n := inside.Add(1)
		for {
			cur := maxInside.Load()
			if n <= cur || maxInside.CompareAndSwap(cur, n) {
				break
			}
		}
		inside.Add(-1)
		return true
	})
	p.Start()

	const goroutines = 32
	const iterations = 2000
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				p.Step(log)
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, maxInside.Load(), int32(1), "step function must never run concurrently with itself")
}

func TestBusyWhenAlreadyOccupied(t *testing.T) {
	log := newTestLog(t)
	release := make(chan struct{})
	entered := make(chan struct{})

	p := New("A", func(*rlog.Log) bool {
		close(entered)
		<-release
		return true
	})
	p.Start()

	go p.Step(log)
	<-entered

	assert.Equal(t, Busy, p.Step(log))
	close(release)
}

func TestStartStopTogglesLive(t *testing.T) {
	p := New("A", func(*rlog.Log) bool { return true })
	require.False(t, p.Live())
	p.Start()
	assert.True(t, p.Live())
	p.Stop()
	assert.False(t, p.Live())
}

func TestCountersAccumulate(t *testing.T) {
	log := newTestLog(t)
	p := New("A", func(*rlog.Log) bool { return true })

	p.Step(log) // Idle
	p.Start()
	p.Step(log) // Done
	p.Step(log) // Done

	snap := p.stat.Snapshot()
	assert.Equal(t, int64(1), snap[Idle])
	assert.Equal(t, int64(2), snap[Done])
	assert.Equal(t, int64(0), snap[Fail])
	assert.Equal(t, int64(0), snap[Busy])
}

func TestOutcomeStringer(t *testing.T) {
	assert.Equal(t, "Idle", Idle.String())
	assert.Equal(t, "Busy", Busy.String())
	assert.Equal(t, "Done", Done.String())
	assert.Equal(t, "Fail", Fail.String())
}
