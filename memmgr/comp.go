// Package memmgr implements the memory manager that admits processes into
// paged memory tick by tick.
//
// At each tick with activity, the manager runs three phases in a fixed
// order: newly arrived processes join the admission queue, resident
// processes whose lifetime has elapsed release their frames, and queued
// processes are admitted front to back until the head no longer fits.
// Frames freed by a completion are allocatable in the same tick.
package memmgr

import (
	"log"
	"reflect"

	"github.com/etauto-an/351PA3/mem"
	"github.com/etauto-an/351PA3/sim"
	"github.com/etauto-an/351PA3/tracing"
	"github.com/etauto-an/351PA3/workload"
)

// HookPosProcessArrived marks when a process joins the admission queue.
var HookPosProcessArrived = &sim.HookPos{Name: "ProcessArrived"}

// HookPosProcessCompleted marks when a resident process releases its frames.
var HookPosProcessCompleted = &sim.HookPos{Name: "ProcessCompleted"}

// HookPosProcessAdmitted marks when a queued process is moved into memory.
var HookPosProcessAdmitted = &sim.HookPos{Name: "ProcessAdmitted"}

// HookPosProcessUnschedulable marks a process whose total page need exceeds
// the whole memory. Such a process can never be admitted and blocks the
// queue from the moment it reaches the front.
var HookPosProcessUnschedulable = &sim.HookPos{Name: "ProcessUnschedulable"}

// TickDetail is attached to every process hook as HookCtx.Detail. It
// snapshots the manager state right after the mutation the hook reports.
type TickDetail struct {
	Tick     sim.VTick
	QueueIDs []mem.PID
	Memory   []mem.Extent
}

// Comp is the memory manager. It owns the admission queue and the page
// table; no other component mutates them.
type Comp struct {
	*sim.ComponentBase

	engine    sim.Engine
	pageTable mem.PageTable
	queue     sim.Buffer

	// processes are sorted by arrival time, ties broken by ascending id.
	// nextArrival indexes the first process that has not arrived yet.
	processes   []*workload.Process
	nextArrival int

	// resident holds admitted, not yet completed processes in admission
	// order.
	resident []*workload.Process

	wakeTicks map[sim.VTick]bool

	numCompleted    int
	totalTurnaround sim.VTick
}

// Start schedules one wake event per distinct arrival tick. It must be
// called once, before the engine runs.
func (c *Comp) Start() {
	for _, p := range c.processes {
		if c.pageTable.PagesNeeded(p.Segments) > c.pageTable.FrameCount() {
			c.reportUnschedulable(p)
		}

		c.scheduleWake(p.ArrivalTime)
	}
}

func (c *Comp) reportUnschedulable(p *workload.Process) {
	log.Printf("process %d needs %d pages but memory only has %d frames",
		p.ID, c.pageTable.PagesNeeded(p.Segments), c.pageTable.FrameCount())

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosProcessUnschedulable,
		Item:   p,
	})
}

// Handle runs the per-tick phases when a wake event fires.
func (c *Comp) Handle(e sim.Event) error {
	switch e.(type) {
	case sim.TickEvent:
		c.tick(e.Time())
	default:
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(e))
	}

	return nil
}

func (c *Comp) tick(now sim.VTick) {
	delete(c.wakeTicks, now)

	c.admitArrivals(now)
	c.completeResidents(now)
	c.admitFromQueue(now)
}

// admitArrivals moves every process arriving at this tick into the queue.
func (c *Comp) admitArrivals(now sim.VTick) {
	for c.nextArrival < len(c.processes) &&
		c.processes[c.nextArrival].ArrivalTime == now {
		p := c.processes[c.nextArrival]
		c.nextArrival++

		c.queue.Push(p)

		c.invokeProcessHook(HookPosProcessArrived, p, now)
		tracing.TraceProcessQueued(int(p.ID), c)
	}
}

// completeResidents releases the frames of every resident process whose
// lifetime elapses at this tick, before any admission is attempted.
func (c *Comp) completeResidents(now sim.VTick) {
	remaining := c.resident[:0]

	for _, p := range c.resident {
		if p.CompletionTime() != now {
			remaining = append(remaining, p)
			continue
		}

		c.pageTable.Deallocate(p.ID)
		c.numCompleted++
		c.totalTurnaround += now - p.ArrivalTime

		c.invokeProcessHook(HookPosProcessCompleted, p, now)
		tracing.TraceProcessCompleted(int(p.ID), c)
	}

	c.resident = remaining
}

// admitFromQueue admits queued processes front to back. The first process
// that does not fit stops the scan, even if a later one would fit.
func (c *Comp) admitFromQueue(now sim.VTick) {
	for c.queue.Size() > 0 {
		p := c.queue.Peek().(*workload.Process)

		if !c.pageTable.Allocate(p.ID, p.Segments) {
			tracing.AddTaskStep(
				tracing.QueueTaskID(int(p.ID)), c, "admission blocked")
			return
		}

		c.queue.Pop()
		p.StartTime = now
		c.resident = append(c.resident, p)
		c.scheduleWake(p.CompletionTime())

		c.invokeProcessHook(HookPosProcessAdmitted, p, now)
		tracing.TraceProcessAdmitted(int(p.ID), c)
	}
}

func (c *Comp) scheduleWake(t sim.VTick) {
	if c.wakeTicks[t] {
		return
	}

	c.wakeTicks[t] = true
	c.engine.Schedule(sim.MakeTickEvent(c, t))
}

func (c *Comp) invokeProcessHook(
	pos *sim.HookPos,
	p *workload.Process,
	now sim.VTick,
) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   p,
		Detail: TickDetail{
			Tick:     now,
			QueueIDs: c.QueueIDs(),
			Memory:   c.pageTable.OccupancyReport(),
		},
	})
}

// QueueIDs returns the ids of the queued processes, front first.
func (c *Comp) QueueIDs() []mem.PID {
	ids := make([]mem.PID, 0, c.queue.Size())
	for _, e := range c.queue.Elements() {
		ids = append(ids, e.(*workload.Process).ID)
	}

	return ids
}

// PageTable returns the page table the manager allocates into.
func (c *Comp) PageTable() mem.PageTable {
	return c.pageTable
}

// UsedFrames returns the number of page frames held by resident processes.
func (c *Comp) UsedFrames() int {
	return c.pageTable.FrameCount() - c.pageTable.FreeFrameCount()
}

// CompletedCount returns the number of processes that have completed.
func (c *Comp) CompletedCount() int {
	return c.numCompleted
}

// AverageTurnaround returns the mean of completion minus arrival over all
// completed processes. The second return value is false while no process
// has completed.
func (c *Comp) AverageTurnaround() (float64, bool) {
	if c.numCompleted == 0 {
		return 0, false
	}

	return float64(c.totalTurnaround) / float64(c.numCompleted), true
}
