package tracing

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/etauto-an/351PA3/sim"
)

// CSVTracer is a task tracer that can store the tasks into a CSV file.
type CSVTracer struct {
	mu         sync.Mutex
	timeTeller sim.TimeTeller

	path string
	file *os.File

	tracingTasks map[string]Task
	tasks        []Task
	bufferSize   int
}

// NewCSVTracer creates a new CSVTracer. The Init function must be called
// before using the tracer.
func NewCSVTracer(timeTeller sim.TimeTeller, path string) *CSVTracer {
	return &CSVTracer{
		timeTeller:   timeTeller,
		path:         path,
		tracingTasks: make(map[string]Task),
		bufferSize:   1000,
	}
}

// Init creates the tracing csv file. It panics if the file already exists.
func (t *CSVTracer) Init() {
	if t.path == "" {
		t.path = "memsim_trace_" + xid.New().String()
	}

	filename := t.path + ".csv"
	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	file, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	t.file = file

	fmt.Fprintf(file, "ID, ParentID, Kind, What, Location, Start, End\n")

	atexit.Register(func() {
		t.Flush()
		err := t.file.Close()
		if err != nil {
			panic(err)
		}
	})
}

// StartTask records the task start time.
func (t *CSVTracer) StartTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	task.StartTime = t.timeTeller.CurrentTime()
	t.tracingTasks[task.ID] = task
}

// StepTask does nothing.
func (t *CSVTracer) StepTask(_ Task) {
	// Do nothing
}

// EndTask writes the task into the file buffer.
func (t *CSVTracer) EndTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	originalTask, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	originalTask.EndTime = t.timeTeller.CurrentTime()
	delete(t.tracingTasks, task.ID)

	t.tasks = append(t.tasks, originalTask)
	if len(t.tasks) >= t.bufferSize {
		t.flush()
	}
}

// Flush writes the buffered tasks to the CSV file.
func (t *CSVTracer) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.flush()
}

func (t *CSVTracer) flush() {
	for _, task := range t.tasks {
		fmt.Fprintf(t.file, "%s, %s, %s, %s, %s, %d, %d\n",
			task.ID,
			task.ParentID,
			task.Kind,
			task.What,
			task.Location,
			task.StartTime,
			task.EndTime,
		)
	}

	t.tasks = nil
}
