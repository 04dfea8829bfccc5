// Package simulation assembles the services a simulation run needs, such as
// the event engine, the data recorder, the visualization tracer, and the
// monitoring server.
package simulation

import (
	"github.com/etauto-an/351PA3/datarecording"
	"github.com/etauto-an/351PA3/memmgr"
	"github.com/etauto-an/351PA3/monitoring"
	"github.com/etauto-an/351PA3/sim"
	"github.com/etauto-an/351PA3/tracing"
)

// A Simulation provides the services required to define a simulation.
type Simulation struct {
	id     string
	engine sim.Engine

	dataRecorder datarecording.DataRecorder
	execRecorder *datarecording.ExecRecorder
	monitor      *monitoring.Monitor
	visTracer    *tracing.DBTracer

	components    []sim.Component
	compNameIndex map[string]int
}

// ID returns the unique identifier of this simulation run.
func (s *Simulation) ID() string {
	return s.id
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() sim.Engine {
	return s.engine
}

// GetDataRecorder returns the data recorder used in the simulation.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation. It is nil when the
// simulation is built without monitoring.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// GetVisTracer returns the tracer used in the simulation.
func (s *Simulation) GetVisTracer() *tracing.DBTracer {
	return s.visTracer
}

// RegisterComponent registers a component with the simulation.
func (s *Simulation) RegisterComponent(c sim.Component) {
	s.addComponent(c)

	if s.monitor != nil {
		s.monitor.RegisterComponent(c)
	}
}

// RegisterMemoryManager registers the memory manager with the simulation.
// The manager's process lifecycle is traced into the data recorder, and the
// monitor, if any, serves the manager's memory map and queue.
func (s *Simulation) RegisterMemoryManager(mgr *memmgr.Comp) {
	s.addComponent(mgr)

	tracing.CollectTrace(mgr, s.visTracer)

	if s.monitor != nil {
		s.monitor.RegisterMemoryManager(mgr)
	}
}

func (s *Simulation) addComponent(c sim.Component) {
	name := c.Name()
	if _, ok := s.compNameIndex[name]; ok {
		panic("component " + name + " already registered")
	}

	s.components = append(s.components, c)
	s.compNameIndex[name] = len(s.components) - 1
}

// GetComponentByName returns the component with the given name, or nil when
// no such component is registered.
func (s *Simulation) GetComponentByName(name string) sim.Component {
	index, ok := s.compNameIndex[name]
	if !ok {
		return nil
	}

	return s.components[index]
}

// Components returns all registered components.
func (s *Simulation) Components() []sim.Component {
	return s.components
}

// Terminate flushes the tracers and closes the data recorder.
func (s *Simulation) Terminate() {
	s.visTracer.Terminate()
	s.execRecorder.End()

	err := s.dataRecorder.Close()
	if err != nil {
		panic(err)
	}
}
