package tracing

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	// Need to use MySQL connections.
	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/etauto-an/351PA3/sim"
)

// MySQLTracer is a task tracer that can store the tasks into a MySQL
// database. The connection parameters are read from the environment
// variables MEMSIM_TRACE_USERNAME, MEMSIM_TRACE_PASSWORD, MEMSIM_TRACE_IP,
// and MEMSIM_TRACE_PORT.
type MySQLTracer struct {
	dbConnection

	mu         sync.Mutex
	timeTeller sim.TimeTeller

	startTime, endTime sim.VTick

	tracingTasks     map[string]Task
	tasksToWriteToDB []Task
	batchSize        int
}

// NewMySQLTracer returns a new MySQLTracer.
// The Init function must be called before using the tracer.
func NewMySQLTracer(timeTeller sim.TimeTeller) *MySQLTracer {
	t := &MySQLTracer{
		timeTeller:   timeTeller,
		tracingTasks: make(map[string]Task),
		batchSize:    100000,
	}

	atexit.Register(func() { t.Flush() })

	return t
}

// Init establishes a connection to MySQL and creates a database.
func (t *MySQLTracer) Init() {
	t.dbConnection.init("")
	t.createDatabase()
}

// SetTimeRange sets the time range of the tracer. Tasks that end before the
// start of the range or start after the end of the range are discarded.
func (t *MySQLTracer) SetTimeRange(startTime, endTime sim.VTick) {
	t.startTime = startTime
	t.endTime = endTime
}

func (t *MySQLTracer) createDatabase() {
	dbName := "memsim_trace_" + xid.New().String()
	t.dbName = dbName
	log.Printf("Trace is Collected in Database: %s\n", dbName)

	t.mustExecute("CREATE DATABASE " + dbName)
	t.mustExecute("USE " + dbName)

	t.createTable()
}

func (t *MySQLTracer) createTable() {
	t.mustExecute(`
		create table trace
		(
			task_id    varchar(200) not null unique primary key,
			parent_id  varchar(200) null,
			kind       varchar(100) null,
			what       varchar(100) null,
			location   varchar(100) null,
			start_time bigint       null,
			end_time   bigint       null
		);
	`)

	t.mustExecute(`
        ALTER TABLE trace ENGINE=InnoDB;
	`)

	t.mustExecute(`
		create index trace_end_time_index
			on trace (end_time) USING BTREE;
	`)

	t.mustExecute(`
		create index trace_kind_index
			on trace (kind);
	`)

	t.mustExecute(`
		create index trace_start_time_index
			on trace (start_time) USING BTREE;
	`)

	t.mustExecute(`
		create index trace_location_index
			on trace (location);
	`)
}

// StartTask records the task start time.
func (t *MySQLTracer) StartTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	task.StartTime = t.timeTeller.CurrentTime()
	if t.endTime > 0 && task.StartTime > t.endTime {
		return
	}

	t.tracingTasks[task.ID] = task
}

// StepTask does nothing.
func (t *MySQLTracer) StepTask(_ Task) {
	// Do nothing
}

// EndTask marks the end of the task and buffers it for writing.
func (t *MySQLTracer) EndTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	task.EndTime = t.timeTeller.CurrentTime()

	if t.startTime > 0 && task.EndTime < t.startTime {
		delete(t.tracingTasks, task.ID)
		return
	}

	originalTask, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	originalTask.EndTime = task.EndTime
	delete(t.tracingTasks, task.ID)

	t.tasksToWriteToDB = append(t.tasksToWriteToDB, originalTask)
	if len(t.tasksToWriteToDB) > t.batchSize {
		t.flush()
	}
}

// Flush writes all the tasks in the buffer into the database.
func (t *MySQLTracer) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.flush()
}

func (t *MySQLTracer) flush() {
	if len(t.tasksToWriteToDB) == 0 {
		return
	}

	sqlStr := `INSERT INTO trace VALUES`
	vals := []interface{}{}

	for i := range t.tasksToWriteToDB {
		sqlStr += "(?, ?, ?, ?, ?, ?, ?),"
		vals = append(vals,
			t.tasksToWriteToDB[i].ID,
			t.tasksToWriteToDB[i].ParentID,
			t.tasksToWriteToDB[i].Kind,
			t.tasksToWriteToDB[i].What,
			t.tasksToWriteToDB[i].Location,
			int64(t.tasksToWriteToDB[i].StartTime),
			int64(t.tasksToWriteToDB[i].EndTime),
		)
	}

	sqlStr = strings.TrimSuffix(sqlStr, ",")

	stmt, err := t.Prepare(sqlStr)
	if err != nil {
		panic(err)
	}

	_, err = stmt.Exec(vals...)
	if err != nil {
		panic(err)
	}

	err = stmt.Close()
	if err != nil {
		panic(err)
	}

	t.tasksToWriteToDB = nil
}

type dbConnection struct {
	*sql.DB

	username  string
	password  string
	ipAddress string
	port      int
	dbName    string
}

func (c *dbConnection) init(dbName string) {
	c.dbName = dbName

	c.getCredentials()
	c.connect()
}

func (c *dbConnection) getCredentials() {
	c.username = os.Getenv("MEMSIM_TRACE_USERNAME")
	if c.username == "" {
		panic(`trace username is not set, ` +
			`use environment variable MEMSIM_TRACE_USERNAME to set it.`)
	}

	c.password = os.Getenv("MEMSIM_TRACE_PASSWORD")
	c.ipAddress = os.Getenv("MEMSIM_TRACE_IP")
	if c.ipAddress == "" {
		c.ipAddress = "127.0.0.1"
	}

	portString := os.Getenv("MEMSIM_TRACE_PORT")
	if portString == "" {
		portString = "3306"
	}
	port, err := strconv.Atoi(portString)
	if err != nil {
		panic(err)
	}
	c.port = port
}

func (c *dbConnection) connect() {
	connectStr := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		c.username, c.password, c.ipAddress, c.port, c.dbName)
	db, err := sql.Open("mysql", connectStr)
	if err != nil {
		panic(err)
	}

	c.DB = db
}

func (c *dbConnection) mustExecute(query string) sql.Result {
	res, err := c.Exec(query)
	if err != nil {
		panic(err)
	}

	return res
}
