package sim

import (
	"fmt"
	"log"
	"math"
	"reflect"
	"runtime"
	"sync"
)

// A ParallelEngine is an Engine that runs events scheduled at the same tick
// in parallel.
type ParallelEngine struct {
	HookableBase

	pauseLock              sync.Mutex
	nowLock                sync.RWMutex
	now                    VTick
	runningSecondaryEvents bool

	maxTick VTick

	waitGroup sync.WaitGroup

	queues             []EventQueue
	queueChan          chan EventQueue
	secondaryQueues    []EventQueue
	secondaryQueueChan chan EventQueue

	simulationEndHandlers []SimulationEndHandler
}

// NewParallelEngine creates a ParallelEngine.
func NewParallelEngine() *ParallelEngine {
	e := new(ParallelEngine)

	numQueues := runtime.GOMAXPROCS(0)

	e.queues = make([]EventQueue, 0, numQueues)
	e.queueChan = make(chan EventQueue, numQueues)
	e.secondaryQueues = make([]EventQueue, 0, numQueues)
	e.secondaryQueueChan = make(chan EventQueue, numQueues)
	for i := 0; i < numQueues; i++ {
		queue := NewEventQueue()
		e.queueChan <- queue
		e.queues = append(e.queues, queue)

		secondaryQueue := NewEventQueue()
		e.secondaryQueueChan <- secondaryQueue
		e.secondaryQueues = append(e.secondaryQueues, secondaryQueue)
	}

	return e
}

// SetTickBudget limits how far the engine may advance. Run returns an error
// wrapping ErrTickBudgetExceeded if an event beyond maxTick would fire. A
// non-positive budget removes the limit.
func (e *ParallelEngine) SetTickBudget(maxTick VTick) {
	e.maxTick = maxTick
}

func (e *ParallelEngine) readNow() VTick {
	var now VTick
	e.nowLock.RLock()
	now = e.now
	e.nowLock.RUnlock()
	return now
}

func (e *ParallelEngine) writeNow(t VTick) {
	e.nowLock.Lock()
	e.now = t
	e.nowLock.Unlock()
}

// Schedule registers an event to happen in the future.
func (e *ParallelEngine) Schedule(evt Event) {
	now := e.readNow()
	if evt.Time() < now {
		log.Panicf(
			"cannot schedule event in the past, evt %s @ %d, now %d",
			reflect.TypeOf(evt), evt.Time(), now)
	}

	if evt.IsSecondary() {
		queue := <-e.secondaryQueueChan
		queue.Push(evt)
		e.secondaryQueueChan <- queue
		return
	}

	queue := <-e.queueChan
	queue.Push(evt)
	e.queueChan <- queue
}

// Run processes all the events scheduled in the ParallelEngine.
func (e *ParallelEngine) Run() error {
	for {
		if !e.hasMoreEvents() {
			return nil
		}

		e.pauseLock.Lock()

		next := e.nextEventTime()
		if e.maxTick > 0 && next > e.maxTick {
			e.pauseLock.Unlock()
			return fmt.Errorf("%w: event at tick %d, budget %d",
				ErrTickBudgetExceeded, next, e.maxTick)
		}

		e.determineWhatToRun()
		e.runRound()

		e.pauseLock.Unlock()
	}
}

func (e *ParallelEngine) nextEventTime() VTick {
	primaryTime := e.earliestTimeInQueueGroup(e.queues)
	secondaryTime := e.earliestTimeInQueueGroup(e.secondaryQueues)

	if primaryTime < secondaryTime {
		return primaryTime
	}

	return secondaryTime
}

func (e *ParallelEngine) determineWhatToRun() {
	primaryTime := e.earliestTimeInQueueGroup(e.queues)
	secondaryTime := e.earliestTimeInQueueGroup(e.secondaryQueues)

	if primaryTime <= secondaryTime {
		e.runningSecondaryEvents = false
		e.writeNow(primaryTime)
		return
	}

	e.runningSecondaryEvents = true
	e.writeNow(secondaryTime)
}

func (e *ParallelEngine) earliestTimeInQueueGroup(
	queues []EventQueue,
) VTick {
	earliestTime := VTick(math.MaxInt64)
	for _, q := range queues {
		if q.Len() == 0 {
			continue
		}

		t := q.Peek().Time()
		if t < earliestTime {
			earliestTime = t
		}
	}
	return earliestTime
}

func (e *ParallelEngine) runRound() {
	queues := e.queues
	queueChan := e.queueChan

	if e.runningSecondaryEvents {
		queues = e.secondaryQueues
		queueChan = e.secondaryQueueChan
	}

	e.emptyQueueChan(queues, queueChan)
	e.runEventsUntilConflict(queues, queueChan)
	e.waitGroup.Wait()
}

func (e *ParallelEngine) emptyQueueChan(
	queues []EventQueue,
	queueChan chan EventQueue,
) {
	for range queues {
		<-queueChan
	}
}

func (e *ParallelEngine) hasMoreEvents() bool {
	return e.hasMorePrimaryEvents() || e.hasMoreSecondaryEvents()
}

func (e *ParallelEngine) hasMorePrimaryEvents() bool {
	for _, q := range e.queues {
		if q.Len() > 0 {
			return true
		}
	}
	return false
}

func (e *ParallelEngine) hasMoreSecondaryEvents() bool {
	for _, q := range e.secondaryQueues {
		if q.Len() > 0 {
			return true
		}
	}
	return false
}

func (e *ParallelEngine) runEventsUntilConflict(
	queues []EventQueue,
	queueChan chan EventQueue,
) {
	now := e.readNow()
	for _, queue := range queues {
		for queue.Len() > 0 {
			evt := queue.Peek()
			if evt.Time() == now {
				queue.Pop()
				e.runEventWithTempWorker(evt)
			} else if evt.Time() < now {
				log.Panicf(
					"cannot run event in the past, evt %s @ %d, now %d",
					reflect.TypeOf(evt), evt.Time(), now)
			} else {
				break
			}
		}
		queueChan <- queue
	}
}

func (e *ParallelEngine) runEventWithTempWorker(evt Event) {
	e.waitGroup.Add(1)
	go e.tempWorkerRun(evt)
}

func (e *ParallelEngine) tempWorkerRun(evt Event) {
	now := e.readNow()

	if evt.Time() < now {
		log.Panic("running event in the past")
	}

	hookCtx := HookCtx{
		Domain: e,
		Pos:    HookPosBeforeEvent,
		Item:   evt,
	}
	e.InvokeHook(hookCtx)

	handler := evt.Handler()
	_ = handler.Handle(evt)

	hookCtx.Pos = HookPosAfterEvent
	e.InvokeHook(hookCtx)

	e.waitGroup.Done()
}

// Pause prevents the engine from moving forward. Events scheduled at the
// same tick may still be triggered.
func (e *ParallelEngine) Pause() {
	e.pauseLock.Lock()
}

// Continue allows the engine to continue to make progress.
func (e *ParallelEngine) Continue() {
	e.pauseLock.Unlock()
}

// CurrentTime returns the current time at which the engine is at.
// Specifically, the run time of the current event.
func (e *ParallelEngine) CurrentTime() VTick {
	return e.readNow()
}

// RegisterSimulationEndHandler registers a handler to be called after the
// simulation ends.
func (e *ParallelEngine) RegisterSimulationEndHandler(
	handler SimulationEndHandler,
) {
	e.simulationEndHandlers = append(e.simulationEndHandlers, handler)
}

// Finished should be called after the simulation ends. This function
// calls all the registered SimulationEndHandler.
func (e *ParallelEngine) Finished() {
	now := e.readNow()
	for _, h := range e.simulationEndHandlers {
		h.Handle(now)
	}
}
