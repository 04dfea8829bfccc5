package datarecording

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

type execInfoEntry struct {
	Property string
	Value    string
}

// An ExecRecorder stores metadata about one program execution, such as the
// command line and the start and end times.
type ExecRecorder struct {
	tableName string
	recorder  DataRecorder
	entries   []execInfoEntry
}

// NewExecRecorder creates an ExecRecorder writing into the given backend.
func NewExecRecorder(recorder DataRecorder) *ExecRecorder {
	e := &ExecRecorder{
		tableName: "exec_info",
		recorder:  recorder,
		entries:   []execInfoEntry{},
	}

	e.recorder.CreateTable(e.tableName, execInfoEntry{})

	return e
}

// Start collects the execution metadata.
func (e *ExecRecorder) Start() {
	startTime := time.Now().Format("2006-01-02 15:04:05.000000000")
	e.entries = append(e.entries, execInfoEntry{"Start Time", startTime})

	cmd := strings.Join(os.Args, " ")
	e.entries = append(e.entries, execInfoEntry{"Command", cmd})

	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}

	e.entries = append(e.entries,
		execInfoEntry{"Executable Directory", filepath.Dir(ex)})
}

// End writes the collected metadata along with the end time.
func (e *ExecRecorder) End() {
	for _, entry := range e.entries {
		e.recorder.InsertData(e.tableName, entry)
	}

	endTime := time.Now().Format("2006-01-02 15:04:05.000000000")
	e.recorder.InsertData(e.tableName, execInfoEntry{"End Time", endTime})

	e.entries = nil

	e.recorder.Flush()
}
