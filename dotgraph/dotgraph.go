// Package dotgraph renders the guard package's transition table as
// GraphViz `.dot` text, the text-emission half of the original's
// fluid.auxiliary.h. It has no runtime dependency on a live guard.Guard
// instance - only on the constant table.
package dotgraph

import (
	"fmt"
	"io"

	"github.com/ahrav/go-fluid/guard"
)

// nodeLayout fixes node positions so repeated renders produce a stable
// picture, matching the original's hand-placed NODES array.
type nodeLayout struct {
	mode guard.Mode
	col  int
	row  int
}

var layout = []nodeLayout{
	{guard.ModeFinishMany, 1, 1},
	{guard.ModeReadMany, 2, 1},
	{guard.ModeFinishOne, 1, 2},
	{guard.ModeRead, 2, 2},
	{guard.ModeIdle, 1, 3},
	{guard.ModeWrite, 2, 3},
}

type edgeAttributes struct {
	color     string
	style     string
	fontColor string
}

// attributesFor returns the edge styling for goal relative to the
// highlighted target: the target goal itself is bold green, its paired
// terminator is bold orange-red, everything else is muted gray.
func attributesFor(goal guard.Goal, target byte) edgeAttributes {
	name := goal.String()[0]
	switch {
	case name == target:
		return edgeAttributes{"limegreen", ", style=bold", "darkgreen"}
	case upper(name) == target:
		return edgeAttributes{"orangered", ", style=bold", "crimson"}
	default:
		return edgeAttributes{"gray80", "", "gray70"}
	}
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// WriteGoalDot writes a GraphViz digraph description highlighting the
// subgraph associated with target ('R' or 'W') to w.
func WriteGoalDot(w io.Writer, target byte) error {
	const (
		figSize       = 12.0
		titleFontSize = 20
		edgeFontSize  = 14
	)

	bw := &errWriter{w: w}
	bw.printf(" digraph Cached {\n\n")
	bw.printf("   graph [ label=\"Finite State Graph %c\n \", labelloc=t, fontsize=%d, labeldistance=2 ]\n",
		target, titleFontSize)
	bw.printf("   edge  [ color=gray40, labelfontcolor=gray20, labeldistance=0.5 ]\n")
	bw.printf("   size = \"%.1f,%.1f\";\n", figSize, figSize)

	for _, node := range layout {
		bw.printf("   %-3s [shape=circle pos=\"%d,%d!\", style=filled, fillcolor=yellow]\n",
			node.mode.String(), node.col, node.row)
	}

	for _, goal := range guard.Goals {
		attr := attributesFor(goal, target)
		for _, mode := range guard.Modes {
			edge := guard.TransitionTable[goal][mode]
			if edge.Into == guard.ModeUndefined {
				continue
			}
			label := goal.String()
			if edge.Action != guard.ActionNone {
				label += edge.Action.String()
			}
			if !edge.Finish {
				label += "*"
			}
			bw.printf("   %-3s -> %-3s [ color=%s%s, label=\"%s\", fontsize=%d, fontcolor=%s, labeldistance=0.5 ]\n",
				mode.String(), edge.Into.String(), attr.color, attr.style, label, edgeFontSize, attr.fontColor)
		}
	}

	bw.printf("\n }\n")
	return bw.err
}

// WriteGoalDotFiles writes both the 'R' and 'W' transition graphs using
// newFile(target) to obtain a writer for each, closing it with close if
// non-nil. It is the Go analogue of the original's makeDotFiles driving
// makeGoalDotFile for each of the two goals.
func WriteGoalDotFiles(newFile func(target byte) (io.Writer, func() error, error)) error {
	for _, target := range []byte{'R', 'W'} {
		w, close, err := newFile(target)
		if err != nil {
			return err
		}
		if err := WriteGoalDot(w, target); err != nil {
			return err
		}
		if close != nil {
			if err := close(); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteSummary renders the in-bound/out-bound edge count per mode, matching
// the original's exposeTransitionGraph console dump.
func WriteSummary(w io.Writer) error {
	var in, out [7]int

	bw := &errWriter{w: w}
	bw.printf("Transition table of the guard state machine:\n")
	for _, goal := range guard.Goals {
		for _, mode := range guard.Modes {
			edge := guard.TransitionTable[goal][mode]
			if edge.Into == guard.ModeUndefined {
				continue
			}
			bw.printf("  %s : %s -> %s [%s] %s\n",
				goal.String(), mode.String(), edge.Into.String(), edge.Action.String(),
				finishMarker(edge.Finish))
			out[mode]++
			in[edge.Into]++
		}
	}

	bw.printf("\nState statistics:\n")
	for _, mode := range guard.Modes {
		bw.printf("  %s : %d inbound, %d outbound\n", mode.String(), in[mode], out[mode])
	}
	return bw.err
}

func finishMarker(finish bool) string {
	if finish {
		return "T"
	}
	return "C"
}

// errWriter accumulates the first write error encountered so callers don't
// need to check every individual Fprintf.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
