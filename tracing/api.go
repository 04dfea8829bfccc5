package tracing

import (
	"fmt"

	"github.com/etauto-an/351PA3/sim"
)

// NamedHookable represent something both have a name and can be hooked
type NamedHookable interface {
	sim.Named
	sim.Hookable
	InvokeHook(sim.HookCtx)
}

// A list of hook poses for the hooks to apply to
var (
	HookPosTaskStart = &sim.HookPos{Name: "HookPosTaskStart"}
	HookPosTaskStep  = &sim.HookPos{Name: "HookPosTaskStep"}
	HookPosTaskEnd   = &sim.HookPos{Name: "HookPosTaskEnd"}
)

// StartTask notifies the hooks that hook to the domain about the start of a
// task.
func StartTask(
	id string,
	parentID string,
	domain NamedHookable,
	kind string,
	what string,
	detail interface{},
) {
	StartTaskWithSpecificLocation(
		id,
		parentID,
		domain,
		kind,
		what,
		domain.Name(),
		detail,
	)
}

// StartTaskWithSpecificLocation notifies the hooks that hook to the domain
// about the start of a task, and is able to customize the `location` field
// of a task.
func StartTaskWithSpecificLocation(
	id string,
	parentID string,
	domain NamedHookable,
	kind string,
	what string,
	location string,
	detail interface{},
) {
	if domain.NumHooks() == 0 {
		return
	}

	allRequiredFieldsMustBeNotEmpty(id, domain, kind, what)
	domainMustHaveName(domain)

	task := Task{
		ID:       id,
		ParentID: parentID,
		Kind:     kind,
		What:     what,
		Location: location,
		Detail:   detail,
	}
	ctx := sim.HookCtx{
		Domain: domain,
		Item:   task,
		Pos:    HookPosTaskStart,
	}
	domain.InvokeHook(ctx)
}

func allRequiredFieldsMustBeNotEmpty(
	id string,
	domain NamedHookable,
	kind string,
	what string,
) {
	if id == "" {
		panic("id must not be empty")
	}

	if domain == nil {
		panic("domain must not be nil")
	}

	if kind == "" {
		panic("kind must not be empty")
	}

	if what == "" {
		panic("what must not be empty")
	}
}

func domainMustHaveName(domain NamedHookable) {
	if domain.Name() == "" {
		panic("domain must have a name")
	}
}

// AddTaskStep marks that a milestone has been reached when processing a task.
func AddTaskStep(
	id string,
	domain NamedHookable,
	what string,
) {
	if domain.NumHooks() == 0 {
		return
	}

	step := TaskStep{
		What: what,
	}
	task := Task{
		ID:    id,
		Steps: []TaskStep{step},
	}
	ctx := sim.HookCtx{
		Domain: domain,
		Item:   task,
		Pos:    HookPosTaskStep,
	}
	domain.InvokeHook(ctx)
}

// EndTask notifies the hooks about the end of a task.
func EndTask(
	id string,
	domain NamedHookable,
) {
	if domain.NumHooks() == 0 {
		return
	}

	task := Task{
		ID: id,
	}
	ctx := sim.HookCtx{
		Domain: domain,
		Item:   task,
		Pos:    HookPosTaskEnd,
	}
	domain.InvokeHook(ctx)
}

// QueueTaskID generates the standard ID for the task that spans a process's
// wait in the admission queue.
func QueueTaskID(pid int) string {
	return fmt.Sprintf("p%d.queue", pid)
}

// ResidencyTaskID generates the standard ID for the task that spans a
// process's stay in memory.
func ResidencyTaskID(pid int) string {
	return fmt.Sprintf("p%d.resident", pid)
}

// TraceProcessQueued starts the queue wait task of a process. It is to be
// called when the process joins the admission queue.
func TraceProcessQueued(pid int, domain NamedHookable) {
	StartTask(
		QueueTaskID(pid),
		"",
		domain,
		"queue_wait",
		"wait",
		nil,
	)
}

// TraceProcessAdmitted ends the queue wait task of a process and starts its
// residency task. It is to be called when the process moves into memory.
func TraceProcessAdmitted(pid int, domain NamedHookable) {
	EndTask(QueueTaskID(pid), domain)
	StartTask(
		ResidencyTaskID(pid),
		QueueTaskID(pid),
		domain,
		"residency",
		"resident",
		nil,
	)
}

// TraceProcessCompleted ends the residency task of a process. It is to be
// called when the process completes and releases its frames.
func TraceProcessCompleted(pid int, domain NamedHookable) {
	EndTask(ResidencyTaskID(pid), domain)
}
