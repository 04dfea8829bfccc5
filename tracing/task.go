package tracing

import "github.com/etauto-an/351PA3/sim"

// A TaskStep is a named milestone reached while a task is in flight.
type TaskStep struct {
	Time sim.VTick `json:"time"`
	What string    `json:"what"`
}

// A Task is a span of simulated time spent on one piece of work, such as a
// process waiting in the admission queue or residing in memory.
type Task struct {
	ID        string      `json:"id"`
	ParentID  string      `json:"parent_id"`
	Kind      string      `json:"kind"`
	What      string      `json:"what"`
	Location  string      `json:"location"`
	StartTime sim.VTick   `json:"start_time"`
	EndTime   sim.VTick   `json:"end_time"`
	Steps     []TaskStep  `json:"steps"`
	Detail    interface{} `json:"-"`
}

// TaskFilter is a function that can filter interesting tasks. If this function
// returns true, the task is considered useful.
type TaskFilter func(t Task) bool
