package datarecording

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/fatih/structs"
	"github.com/tebeka/atexit"
)

// ClickHouseRecorder is a high-performance ClickHouse data recorder
// that avoids reflection and uses type-specific batch handlers
type ClickHouseRecorder struct {
	conn      clickhouse.Conn
	mu        sync.Mutex
	batchSize int

	// Table-specific batches (zero-allocation, type-safe)
	propertyBatch []propertyEntry
	commitBatch   []commitEntry

	// Track which tables exist
	tables map[string]tableType

	// Entry counter
	entryCount int

	runRecorder *runRecorder
	closed      bool
}

type tableType int

const (
	tableTypeProperty tableType = iota
	tableTypeCommit
)

// Internal struct types that match the external ones
type propertyEntry struct {
	Property string
	Value    string
}

type commitEntry struct {
	System string
	Time   float64
}

// NewClickHouseRecorder creates a new high-performance ClickHouse recorder
func NewClickHouseRecorder(
	host string,
	port int,
	database string,
	username string,
	password string,
	batchSize int,
) DataRecorder {
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

	recorder := &ClickHouseRecorder{
		conn:      conn,
		batchSize: batchSize,
		tables:    make(map[string]tableType),
	}

	atexit.Register(func() {
		recorder.Flush()
	})

	recorder.runRecorder = newRunRecorder(recorder)
	recorder.runRecorder.Start()

	return recorder
}

// CreateTable creates a table with a ClickHouse-optimized schema
func (r *ClickHouseRecorder) CreateTable(tableName string, sampleEntry any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	createSQL, tType := r.tableSchema(tableName, sampleEntry)

	err := r.conn.Exec(context.Background(), createSQL)
	if err != nil {
		panic(fmt.Errorf("failed to create table %s: %w", tableName, err))
	}

	r.tables[tableName] = tType
}

// tableSchema picks the schema from the shape of the sample entry. The
// fields are matched by name so that externally defined row structs work
// without registering their types here.
func (r *ClickHouseRecorder) tableSchema(
	tableName string,
	sample any,
) (string, tableType) {
	switch sample.(type) {
	case propertyEntry, runInfo:
		return propertyTableSQL(tableName), tableTypeProperty
	case commitEntry:
		return commitTableSQL(tableName), tableTypeCommit
	}

	names := structs.Names(sample)

	if namesMatch(names, "Property", "Value") {
		return propertyTableSQL(tableName), tableTypeProperty
	}

	if namesMatch(names, "System", "Time") {
		return commitTableSQL(tableName), tableTypeCommit
	}

	panic(fmt.Sprintf("unknown table type: %T", sample))
}

func propertyTableSQL(tableName string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			Property String,
			Value String
		) ENGINE = MergeTree()
		ORDER BY Property
	`, tableName)
}

func commitTableSQL(tableName string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			System String,
			Time Float64
		) ENGINE = MergeTree()
		ORDER BY (System, Time)
	`, tableName)
}

func namesMatch(names []string, want ...string) bool {
	if len(names) != len(want) {
		return false
	}

	for i, name := range names {
		if name != want[i] {
			return false
		}
	}

	return true
}

// InsertData inserts data using type-specific fast paths (no reflection!)
func (r *ClickHouseRecorder) InsertData(tableName string, entry any) {
	r.mu.Lock()

	tType, exists := r.tables[tableName]
	if !exists {
		r.mu.Unlock()
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	switch tType {
	case tableTypeProperty:
		r.propertyBatch = append(r.propertyBatch, r.convertToPropertyEntry(entry))

	case tableTypeCommit:
		r.commitBatch = append(r.commitBatch, r.convertToCommitEntry(entry))

	default:
		r.mu.Unlock()
		panic(fmt.Sprintf("unknown table type: %d", tType))
	}

	r.entryCount++

	if r.entryCount >= r.batchSize {
		r.mu.Unlock()
		r.Flush()
		return
	}

	r.mu.Unlock()
}

// Type conversion helpers that use type assertion before falling back to
// field extraction.
func (r *ClickHouseRecorder) convertToPropertyEntry(entry any) propertyEntry {
	switch e := entry.(type) {
	case propertyEntry:
		return e
	case runInfo:
		return propertyEntry{Property: e.Property, Value: e.Value}
	}

	return extractPropertyEntry(entry)
}

func (r *ClickHouseRecorder) convertToCommitEntry(entry any) commitEntry {
	if e, ok := entry.(commitEntry); ok {
		return e
	}

	return extractCommitEntry(entry)
}

// ListTables returns all table names
func (r *ClickHouseRecorder) ListTables() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	tables := make([]string, 0, len(r.tables))
	for name := range r.tables {
		tables = append(tables, name)
	}
	return tables
}

// Flush writes all batched data to ClickHouse using bulk inserts
func (r *ClickHouseRecorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entryCount == 0 {
		return
	}

	ctx := context.Background()

	for tableName, tType := range r.tables {
		switch tType {
		case tableTypeProperty:
			if len(r.propertyBatch) > 0 {
				r.flushProperties(ctx, tableName)
			}
		case tableTypeCommit:
			if len(r.commitBatch) > 0 {
				r.flushCommits(ctx, tableName)
			}
		}
	}

	r.entryCount = 0
}

func (r *ClickHouseRecorder) flushProperties(
	ctx context.Context,
	tableName string,
) {
	batch, err := r.conn.PrepareBatch(ctx,
		fmt.Sprintf("INSERT INTO %s", tableName))
	if err != nil {
		panic(fmt.Errorf("failed to prepare batch for %s: %w", tableName, err))
	}

	for _, entry := range r.propertyBatch {
		err = batch.Append(entry.Property, entry.Value)
		if err != nil {
			panic(fmt.Errorf("failed to append to batch: %w", err))
		}
	}

	err = batch.Send()
	if err != nil {
		panic(fmt.Errorf("failed to send batch: %w", err))
	}

	r.propertyBatch = r.propertyBatch[:0] // Reset slice, keep capacity
}

func (r *ClickHouseRecorder) flushCommits(
	ctx context.Context,
	tableName string,
) {
	batch, err := r.conn.PrepareBatch(ctx,
		fmt.Sprintf("INSERT INTO %s", tableName))
	if err != nil {
		panic(fmt.Errorf("failed to prepare batch for %s: %w", tableName, err))
	}

	for _, entry := range r.commitBatch {
		err = batch.Append(entry.System, entry.Time)
		if err != nil {
			panic(fmt.Errorf("failed to append to batch: %w", err))
		}
	}

	err = batch.Send()
	if err != nil {
		panic(fmt.Errorf("failed to send batch: %w", err))
	}

	r.commitBatch = r.commitBatch[:0]
}

// Close flushes remaining data and closes the connection
func (r *ClickHouseRecorder) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	if r.runRecorder != nil {
		r.runRecorder.End()
	}

	r.Flush()

	err := r.conn.Close()
	if err != nil {
		return fmt.Errorf("failed to close ClickHouse connection: %w", err)
	}

	return nil
}
