// Package workload loads and validates the process descriptors that drive a
// simulation run.
package workload

import (
	"sort"

	"github.com/etauto-an/351PA3/mem"
	"github.com/etauto-an/351PA3/sim"
)

// NotStarted is the StartTime of a process that has not been admitted yet.
const NotStarted sim.VTick = -1

// A Process describes one unit of work for the memory manager. All fields
// except StartTime are immutable after loading.
type Process struct {
	ID          mem.PID
	ArrivalTime sim.VTick
	Lifetime    sim.VTick

	// Segments are the memory pieces the process requests, in KB. Each
	// segment is allocated independently.
	Segments []int

	// StartTime is set exactly once, to the tick at which the process is
	// admitted into memory.
	StartTime sim.VTick
}

// Started tells if the process has been admitted into memory.
func (p *Process) Started() bool {
	return p.StartTime != NotStarted
}

// CompletionTime returns the tick at which the process finishes. It must not
// be called before the process is admitted.
func (p *Process) CompletionTime() sim.VTick {
	return p.StartTime + p.Lifetime
}

// SortByArrival orders processes by arrival time, breaking ties by ascending
// process ID. This is the order in which the manager enqueues them.
func SortByArrival(processes []*Process) {
	sort.SliceStable(processes, func(i, j int) bool {
		if processes[i].ArrivalTime != processes[j].ArrivalTime {
			return processes[i].ArrivalTime < processes[j].ArrivalTime
		}

		return processes[i].ID < processes[j].ID
	})
}
