package analysis

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/tebeka/atexit"

	"github.com/etauto-an/351PA3/datarecording"
)

// PerfAnalyzerBackend is the interface that provides the service that can
// record performance data entries.
type PerfAnalyzerBackend interface {
	AddDataEntry(entry PerfAnalyzerEntry)
	Flush()
}

// CSVBackend is a PerfAnalyzerBackend that writes data entries to a CSV
// file.
type CSVBackend struct {
	dbFile    *os.File
	csvWriter *csv.Writer
}

// NewCSVPerfAnalyzerBackend creates a new CSVBackend. The ".csv" extension
// is appended to the given filename.
func NewCSVPerfAnalyzerBackend(dbFilename string) *CSVBackend {
	if dbFilename == "" {
		panic("filename is not set")
	}

	p := &CSVBackend{}

	var err error
	p.dbFile, err = os.Create(dbFilename + ".csv")
	if err != nil {
		panic(err)
	}

	p.csvWriter = csv.NewWriter(p.dbFile)

	header := []string{
		"Start", "End", "Where", "What", "EntryType", "Value", "Unit",
	}
	err = p.csvWriter.Write(header)
	if err != nil {
		panic(err)
	}

	atexit.Register(func() {
		p.Flush()
	})

	return p
}

// AddDataEntry adds a data entry to the CSV file.
func (p *CSVBackend) AddDataEntry(entry PerfAnalyzerEntry) {
	err := p.csvWriter.Write([]string{
		strconv.FormatInt(int64(entry.Start), 10),
		strconv.FormatInt(int64(entry.End), 10),
		entry.Where,
		entry.What,
		entry.EntryType,
		fmt.Sprintf("%.10f", entry.Value),
		entry.Unit,
	})
	if err != nil {
		panic(err)
	}
}

// Flush flushes the CSV writer.
func (p *CSVBackend) Flush() {
	p.csvWriter.Flush()
}

// SQLiteBackend is a PerfAnalyzerBackend that writes data entries to a
// "perf" table in a SQLite database.
type SQLiteBackend struct {
	recorder datarecording.DataRecorder
}

// NewSQLitePerfAnalyzerBackend creates a new SQLiteBackend. The ".sqlite3"
// extension is appended to the given filename.
func NewSQLitePerfAnalyzerBackend(dbFilename string) *SQLiteBackend {
	p := &SQLiteBackend{
		recorder: datarecording.New(dbFilename),
	}

	p.recorder.CreateTable("perf", PerfAnalyzerEntry{})

	atexit.Register(func() {
		err := p.recorder.Close()
		if err != nil {
			panic(err)
		}
	})

	return p
}

// AddDataEntry adds a data entry to the database.
func (p *SQLiteBackend) AddDataEntry(entry PerfAnalyzerEntry) {
	p.recorder.InsertData("perf", entry)
}

// Flush writes the buffered entries to the database file.
func (p *SQLiteBackend) Flush() {
	p.recorder.Flush()
}
