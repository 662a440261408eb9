// Command fluiddemo is a runnable demonstration of the guard/fluid/process/
// staff toolkit, adapted from the original source's CoreAGI test
// application: a fixed pool of fluids holding large matrices, a set of
// logical processes that alternate between writing and reading them, and a
// staff of worker goroutines driving the whole thing for a configurable
// duration.
package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ahrav/go-fluid/dotgraph"
	"github.com/ahrav/go-fluid/fluid"
	"github.com/ahrav/go-fluid/process"
	"github.com/ahrav/go-fluid/rlog"
	"github.com/ahrav/go-fluid/staff"
)

// matrixSide mirrors the original demo's L=1024 constant.
const matrixSide = 1024

type matrix struct {
	R [matrixSide][matrixSide]float64
}

// runOptions are the demo's tunables, the Go-idiomatic replacement for the
// original's compile-time constexpr STAFF/CAPACITY constants.
type runOptions struct {
	staffSize    int
	fluidCount   int
	processCount int
	duration     time.Duration
	dotDir       string
}

func main() {
	opts := &runOptions{}

	root := &cobra.Command{
		Use:   "fluiddemo",
		Short: "Run the guard/fluid/process/staff concurrency demo",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	root.Flags().IntVar(&opts.staffSize, "staff", 2, "number of worker goroutines")
	root.Flags().IntVar(&opts.fluidCount, "fluids", 5, "number of shared matrices")
	root.Flags().IntVar(&opts.processCount, "processes", 10, "number of logical processes")
	root.Flags().DurationVar(&opts.duration, "duration", 250*time.Millisecond, "how long to let the staff run")
	root.Flags().StringVar(&opts.dotDir, "dot-dir", "", "if set, write transition-graph .dot files here before running")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(opts *runOptions) error {
	runID := uuid.New()
	log := rlog.New(fmt.Sprintf("main/%s", runID.String()[:8]))
	log.Vital("Started")

	if opts.dotDir != "" {
		if err := writeDotFiles(opts.dotDir); err != nil {
			return err
		}
		log.Vitalf("Transition graphs written to %s", opts.dotDir)
	}

	fluids := make([]*fluid.Fluid[matrix], opts.fluidCount)
	for i := range fluids {
		fluids[i] = fluid.New[matrix]()
	}

	readCounts := make([]*int64, opts.processCount)
	writeCounts := make([]*int64, opts.processCount)

	processes := make([]*process.Process, opts.processCount)
	for i := 0; i < opts.processCount; i++ {
		var r, w int64
		readCounts[i] = &r
		writeCounts[i] = &w
		processes[i] = process.New(fmt.Sprintf("P%d", i), makeStep(fluids, writeCounts[i], readCounts[i]))
	}

	s := staff.New(opts.staffSize, processes)
	s.Start()

	for _, p := range processes {
		p.Start()
		log.Vitalf("Logical process %s started", p.Name())
	}

	time.Sleep(opts.duration)

	for _, p := range processes {
		p.Stop()
		p.Info(log)
	}

	log.Vital("R/W statistics:")
	for i := range processes {
		log.Vitalf("%5d R  %5d W", *readCounts[i], *writeCounts[i])
	}

	s.Stop()
	return nil
}

// makeStep builds the two-state step function from the original demo:
// state 0 writes 500 random entries into a randomly chosen fluid's matrix,
// state 1 averages 50 random entries from a randomly chosen fluid. Each
// successful step randomly picks the next state with the original's
// 100:1 bias toward state 1 (read) over state 0 (write).
func makeStep(fluids []*fluid.Fluid[matrix], writeCount, readCount *int64) func(log *rlog.Log) bool {
	state := 0
	rnd := rand.New(rand.NewSource(rand.Int63()))

	next := func() int {
		if rnd.Intn(101) != 0 {
			return 1
		}
		return 0
	}

	return func(log *rlog.Log) bool {
		switch state {
		case 0:
			ok := fluids[rnd.Intn(len(fluids))].Alter(func(m *matrix) {
				for i := 0; i < 500; i++ {
					m.R[rnd.Intn(matrixSide)][rnd.Intn(matrixSide)] = rnd.Float64()
				}
			})
			if ok {
				*writeCount++
				state = next()
			}
			return ok
		case 1:
			var avg float64
			ok := fluids[rnd.Intn(len(fluids))].Check(func(m *matrix) {
				const samples = 50
				for i := 0; i < samples; i++ {
					avg += m.R[rnd.Intn(matrixSide)][rnd.Intn(matrixSide)]
				}
				avg /= float64(samples)
			})
			if ok {
				*readCount++
				state = next()
			}
			return ok
		default:
			panic("fluiddemo: logical process reached an impossible state")
		}
	}
}

func writeDotFiles(dir string) error {
	return dotgraph.WriteGoalDotFiles(func(target byte) (io.Writer, func() error, error) {
		path := fmt.Sprintf("%s/transition.%c.dot", dir, target)
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, err
		}
		return f, f.Close, nil
	})
}
