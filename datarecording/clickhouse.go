package datarecording

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/fatih/structs"
	"github.com/tebeka/atexit"
)

// ClickHouseRecorder is a DataRecorder that stores records on a ClickHouse
// server, for runs whose records outgrow local SQLite files.
type ClickHouseRecorder struct {
	conn clickhouse.Conn

	mu         sync.Mutex
	tables     map[string]*table
	batchSize  int
	entryCount int
}

// NewClickHouseRecorder connects to a ClickHouse server and returns a
// recorder that stores records there. A batchSize of 0 selects the default.
func NewClickHouseRecorder(
	host string,
	port int,
	database string,
	username string,
	password string,
	batchSize int,
) *ClickHouseRecorder {
	if batchSize == 0 {
		batchSize = 100000
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", host, port)},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      time.Second * 30,
		MaxOpenConns:     5,
		MaxIdleConns:     5,
		ConnMaxLifetime:  time.Hour,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
		BlockBufferSize:  10,
	})
	if err != nil {
		panic(fmt.Errorf("failed to connect to ClickHouse: %w", err))
	}

	if err := conn.Ping(context.Background()); err != nil {
		panic(fmt.Errorf("failed to ping ClickHouse: %w", err))
	}

	r := &ClickHouseRecorder{
		conn:      conn,
		batchSize: batchSize,
		tables:    make(map[string]*table),
	}

	atexit.Register(func() { r.Flush() })

	return r
}

// CreateTable creates a ClickHouse table with one column per struct field.
func (r *ClickHouseRecorder) CreateTable(tableName string, sampleEntry any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := structs.Names(sampleEntry)
	entryType := reflect.TypeOf(sampleEntry)

	columns := make([]string, 0, len(names))
	for i, name := range names {
		kind := entryType.Field(i).Type.Kind()
		columns = append(columns, name+" "+r.columnType(kind))
	}

	ddl := "CREATE TABLE IF NOT EXISTS " + tableName +
		" (" + strings.Join(columns, ", ") + ")" +
		" ENGINE = MergeTree() ORDER BY tuple()"

	err := r.conn.Exec(context.Background(), ddl)
	if err != nil {
		panic(fmt.Errorf("failed to create table %s: %w", tableName, err))
	}

	r.tables[tableName] = &table{
		structType: entryType,
		entries:    []any{},
	}
}

func (r *ClickHouseRecorder) columnType(kind reflect.Kind) string {
	switch kind {
	case reflect.Bool:
		return "Bool"
	case reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64:
		return "Int64"
	case reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64:
		return "UInt64"
	case reflect.Float32, reflect.Float64:
		return "Float64"
	case reflect.String:
		return "String"
	default:
		panic(fmt.Sprintf("field type %s is not supported", kind))
	}
}

// InsertData buffers an entry for the given table.
func (r *ClickHouseRecorder) InsertData(tableName string, entry any) {
	r.mu.Lock()

	table, exists := r.tables[tableName]
	if !exists {
		r.mu.Unlock()
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	table.entries = append(table.entries, entry)
	r.entryCount++
	mustFlush := r.entryCount >= r.batchSize

	r.mu.Unlock()

	if mustFlush {
		r.Flush()
	}
}

// ListTables returns the names of all created tables.
func (r *ClickHouseRecorder) ListTables() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	tables := make([]string, 0, len(r.tables))
	for table := range r.tables {
		tables = append(tables, table)
	}

	return tables
}

// Flush sends all the buffered entries to the server in per-table batches.
func (r *ClickHouseRecorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entryCount == 0 {
		return
	}

	ctx := context.Background()

	for tableName, table := range r.tables {
		if len(table.entries) == 0 {
			continue
		}

		batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO "+tableName)
		if err != nil {
			panic(fmt.Errorf(
				"failed to prepare batch for %s: %w", tableName, err))
		}

		for _, entry := range table.entries {
			values := reflect.ValueOf(entry)

			row := make([]any, 0, values.NumField())
			for i := 0; i < values.NumField(); i++ {
				row = append(row, canonicalValue(values.Field(i)))
			}

			err = batch.Append(row...)
			if err != nil {
				panic(fmt.Errorf(
					"failed to append to batch for %s: %w", tableName, err))
			}
		}

		err = batch.Send()
		if err != nil {
			panic(fmt.Errorf(
				"failed to send batch for %s: %w", tableName, err))
		}

		table.entries = nil
	}

	r.entryCount = 0
}

// Close flushes the buffered entries and closes the connection.
func (r *ClickHouseRecorder) Close() error {
	r.Flush()
	return r.conn.Close()
}

// canonicalValue widens a struct field to the column type the recorder
// declared for its kind.
func canonicalValue(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool()
	case reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64:
		return v.Int()
	case reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.String:
		return v.String()
	default:
		panic(fmt.Sprintf("field type %s is not supported", v.Kind()))
	}
}
