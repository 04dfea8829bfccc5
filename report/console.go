// Package report renders memory manager activity as a plain text
// transcript, one block per tick with at least one event.
package report

import (
	"fmt"
	"io"

	"github.com/etauto-an/351PA3/mem"
	"github.com/etauto-an/351PA3/memmgr"
	"github.com/etauto-an/351PA3/sim"
	"github.com/etauto-an/351PA3/workload"
)

// A ConsoleReporter echoes arrivals, completions, and admissions as they
// happen, together with the admission queue and the memory map. It also
// writes the turnaround summary when the simulation ends.
type ConsoleReporter struct {
	w       io.Writer
	manager *memmgr.Comp

	headerTick sim.VTick
}

// NewConsoleReporter creates a reporter writing to w and hooks it onto the
// manager. Register it as a simulation end handler to get the summary
// line.
func NewConsoleReporter(w io.Writer, manager *memmgr.Comp) *ConsoleReporter {
	r := &ConsoleReporter{
		w:          w,
		manager:    manager,
		headerTick: -1,
	}
	manager.AcceptHook(r)

	return r
}

// Func writes one transcript block per manager hook invocation.
func (r *ConsoleReporter) Func(ctx sim.HookCtx) {
	detail, ok := ctx.Detail.(memmgr.TickDetail)
	if !ok {
		return
	}

	p := ctx.Item.(*workload.Process)

	switch ctx.Pos {
	case memmgr.HookPosProcessArrived:
		r.printTickHeader(detail.Tick)
		fmt.Fprintf(r.w, "       Process %d arrives\n", p.ID)
		r.printQueue(detail.QueueIDs)
	case memmgr.HookPosProcessCompleted:
		r.printTickHeader(detail.Tick)
		fmt.Fprintf(r.w, "       Process %d completes\n", p.ID)
		r.printMemoryMap(detail.Memory)
		fmt.Fprintf(r.w, "\n")
	case memmgr.HookPosProcessAdmitted:
		r.printTickHeader(detail.Tick)
		fmt.Fprintf(r.w, "       MM moves Process %d to memory\n", p.ID)
		r.printQueue(detail.QueueIDs)
		r.printMemoryMap(detail.Memory)
		fmt.Fprintf(r.w, "\n")
	}
}

// Handle writes the average turnaround line. It implements
// sim.SimulationEndHandler.
func (r *ConsoleReporter) Handle(_ sim.VTick) {
	avg, ok := r.manager.AverageTurnaround()
	if !ok {
		fmt.Fprint(r.w,
			"No processes completed. Average Turnaround Time: N/A\n")
		return
	}

	fmt.Fprintf(r.w, "Average Turnaround Time: %.2f\n", avg)
}

// printTickHeader writes the `t = N:` line once per tick, before the first
// event of that tick.
func (r *ConsoleReporter) printTickHeader(t sim.VTick) {
	if r.headerTick == t {
		return
	}

	r.headerTick = t
	fmt.Fprintf(r.w, "t = %d:\n", t)
}

func (r *ConsoleReporter) printQueue(ids []mem.PID) {
	fmt.Fprint(r.w, "       Input Queue:[")
	for i, id := range ids {
		if i > 0 {
			fmt.Fprint(r.w, " ")
		}
		fmt.Fprintf(r.w, "%d", id)
	}
	fmt.Fprint(r.w, "]\n")
}

func (r *ConsoleReporter) printMemoryMap(extents []mem.Extent) {
	fmt.Fprint(r.w, "       Memory Map:\n")
	for _, e := range extents {
		if e.IsFree() {
			fmt.Fprintf(r.w, "                  %d-%d: Free frame(s)\n",
				e.StartAddr, e.EndAddr)
			continue
		}

		fmt.Fprintf(r.w, "                  %d-%d: Process %d, Page %d\n",
			e.StartAddr, e.EndAddr, e.Owner, e.PageNum)
	}
}
