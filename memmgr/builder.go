package memmgr

import (
	"github.com/etauto-an/351PA3/mem"
	"github.com/etauto-an/351PA3/sim"
	"github.com/etauto-an/351PA3/workload"
)

// A Builder can build memory manager components.
type Builder struct {
	engine    sim.Engine
	pageTable mem.PageTable
	processes []*workload.Process
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithEngine sets the engine the manager schedules its wake events on.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithPageTable sets the page table the manager allocates into.
func (b Builder) WithPageTable(pageTable mem.PageTable) Builder {
	b.pageTable = pageTable
	return b
}

// WithProcesses sets the workload to simulate.
func (b Builder) WithProcesses(processes []*workload.Process) Builder {
	b.processes = processes
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.engine == nil {
		panic("memory manager requires an engine")
	}

	if b.pageTable == nil {
		panic("memory manager requires a page table")
	}
}

// Build returns a newly created memory manager.
func (b Builder) Build(name string) *Comp {
	b.parametersMustBeValid()

	c := &Comp{
		ComponentBase: sim.NewComponentBase(name),
		engine:        b.engine,
		pageTable:     b.pageTable,
		processes:     append([]*workload.Process{}, b.processes...),
		wakeTicks:     make(map[sim.VTick]bool),
	}

	workload.SortByArrival(c.processes)

	c.queue = sim.NewBuffer(
		sim.BuildName(name, "Queue"), len(c.processes))

	return c
}
