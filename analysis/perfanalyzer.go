package analysis

import (
	"reflect"
	"unsafe"

	"github.com/etauto-an/351PA3/sim"
)

// PerfAnalyzerEntry is a single entry in the performance database.
type PerfAnalyzerEntry struct {
	Start     sim.VTick
	End       sim.VTick
	Where     string
	What      string
	EntryType string
	Value     float64
	Unit      string
}

// PerfLogger is the interface that provide the service that can record
// performance data entries.
type PerfLogger interface {
	AddDataEntry(entry PerfAnalyzerEntry)
}

// A FrameUser is a hookable domain that can report how many page frames it
// currently holds.
type FrameUser interface {
	sim.Named
	sim.Hookable

	UsedFrames() int
}

// PerfAnalyzer can report performance metrics during simulation.
type PerfAnalyzer struct {
	usePeriod bool
	period    sim.VTick
	engine    sim.Engine
	backend   PerfAnalyzerBackend
}

// RegisterEngine registers the engine that is used in the simulation. The
// engine must be registered before any buffer or frame user.
func (p *PerfAnalyzer) RegisterEngine(e sim.Engine) {
	p.engine = e
}

// RegisterComponent register a component to be monitored.
func (p *PerfAnalyzer) RegisterComponent(c sim.Component) {
	p.registerComponentBuffers(c)

	if u, ok := c.(FrameUser); ok {
		p.RegisterFrameUser(u)
	}
}

func (p *PerfAnalyzer) registerComponentBuffers(c sim.Component) {
	v := reflect.ValueOf(c).Elem()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)

		fieldType := field.Type()
		bufferType := reflect.TypeOf((*sim.Buffer)(nil)).Elem()

		if fieldType == bufferType {
			fieldRef := reflect.NewAt(
				field.Type(),
				unsafe.Pointer(field.UnsafeAddr()),
			).Elem().Interface().(sim.Buffer)

			p.RegisterBuffer(fieldRef)
		}
	}
}

// RegisterBuffer registers a buffer to be monitored.
func (p *PerfAnalyzer) RegisterBuffer(buf sim.Buffer) {
	bufferAnalyzerBuilder := MakeBufferAnalyzerBuilder().
		WithTimeTeller(p.engine).
		WithPerfLogger(p).
		WithBuffer(buf)

	if p.usePeriod {
		bufferAnalyzerBuilder = bufferAnalyzerBuilder.WithPeriod(p.period)
	}

	bufferAnalyzer := bufferAnalyzerBuilder.Build()

	buf.AcceptHook(bufferAnalyzer)
}

// RegisterFrameUser registers a frame user so that its memory footprint is
// monitored.
func (p *PerfAnalyzer) RegisterFrameUser(u FrameUser) {
	memoryAnalyzerBuilder := MakeMemoryAnalyzerBuilder().
		WithTimeTeller(p.engine).
		WithPerfLogger(p).
		WithFrameUser(u)

	if p.usePeriod {
		memoryAnalyzerBuilder = memoryAnalyzerBuilder.WithPeriod(p.period)
	}

	memoryAnalyzer := memoryAnalyzerBuilder.Build()

	u.AcceptHook(memoryAnalyzer)
}

// AddDataEntry adds a data entry to the backend.
func (p *PerfAnalyzer) AddDataEntry(entry PerfAnalyzerEntry) {
	p.backend.AddDataEntry(entry)
}

// PerfAnalyzerBuilder is a builder that can build a PerfAnalyzer.
type PerfAnalyzerBuilder struct {
	usePeriod   bool
	period      sim.VTick
	backendType string
	dbFilename  string
}

// MakePerfAnalyzerBuilder creates a new PerfAnalyzerBuilder.
func MakePerfAnalyzerBuilder() PerfAnalyzerBuilder {
	return PerfAnalyzerBuilder{
		usePeriod:   false,
		period:      0,
		backendType: "csv",
		dbFilename:  "perf",
	}
}

// WithPeriod sets the period of the PerfAnalyzer.
func (b PerfAnalyzerBuilder) WithPeriod(
	period sim.VTick,
) PerfAnalyzerBuilder {
	b.usePeriod = true
	b.period = period
	return b
}

// WithSQLiteBackend sets the backend of the PerfAnalyzer to be a SQLite.
func (b PerfAnalyzerBuilder) WithSQLiteBackend() PerfAnalyzerBuilder {
	b.backendType = "sqlite"
	return b
}

// WithCSVBackend sets the backend of the PerfAnalyzer to be a CSV file.
func (b PerfAnalyzerBuilder) WithCSVBackend() PerfAnalyzerBuilder {
	b.backendType = "csv"
	return b
}

// WithDBFilename sets the filename of the database file, without extension.
func (b PerfAnalyzerBuilder) WithDBFilename(
	filename string,
) PerfAnalyzerBuilder {
	b.dbFilename = filename
	return b
}

// Build creates a PerfAnalyzer.
func (b PerfAnalyzerBuilder) Build() *PerfAnalyzer {
	var backend PerfAnalyzerBackend

	switch b.backendType {
	case "csv":
		backend = NewCSVPerfAnalyzerBackend(b.dbFilename)
	case "sqlite":
		backend = NewSQLitePerfAnalyzerBackend(b.dbFilename)
	default:
		panic("unknown backend type " + b.backendType)
	}

	return &PerfAnalyzer{
		usePeriod: b.usePeriod,
		period:    b.period,
		backend:   backend,
	}
}
