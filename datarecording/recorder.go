// Package datarecording stores per-timestep quantities produced by writers
// into a SQLite database.
package datarecording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// DataRecorder is a backend that can record and store data.
type DataRecorder interface {
	// CreateTable creates a new table whose columns are the fields of the
	// sample entry.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers an entry of the table's type for writing.
	InsertData(tableName string, entry any)

	// ListTables returns the names of all created tables.
	ListTables() []string

	// Flush writes all the buffered entries into the database.
	Flush()

	// Close flushes and closes the database.
	Close()
}

// New creates a DataRecorder backed by a SQLite file at path (the
// ".sqlite3" suffix is appended). An empty path picks a generated name.
// The recorder flushes its buffers at process exit.
func New(path string) DataRecorder {
	if path == "" {
		path = "stepsim_" + xid.New().String()
	}

	filename := path + ".sqlite3"

	if _, err := os.Stat(filename); err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	return NewWithDB(db)
}

// NewWithDB creates a DataRecorder on top of an existing database
// connection.
func NewWithDB(db *sql.DB) DataRecorder {
	w := &sqliteRecorder{
		db:        db,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}

	atexit.Register(func() { w.Flush() })

	return w
}

type table struct {
	structType reflect.Type
	entries    []any
}

type sqliteRecorder struct {
	db *sql.DB

	tables     map[string]*table
	batchSize  int
	entryCount int
}

func (r *sqliteRecorder) CreateTable(tableName string, sampleEntry any) {
	structType := reflect.TypeOf(sampleEntry)
	if structType.Kind() != reflect.Struct {
		panic(fmt.Sprintf("table %s sample entry must be a struct", tableName))
	}

	columns := columnNames(structType)

	createSQL := "CREATE TABLE " + tableName +
		" (\n\t" + strings.Join(columns, ", \n\t") + "\n);"
	r.mustExecute(createSQL)

	r.tables[tableName] = &table{structType: structType}
}

func (r *sqliteRecorder) InsertData(tableName string, entry any) {
	t, exists := r.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != t.structType {
		panic(fmt.Sprintf("entry type %T does not match table %s",
			entry, tableName))
	}

	t.entries = append(t.entries, entry)

	r.entryCount++
	if r.entryCount >= r.batchSize {
		r.Flush()
	}
}

func (r *sqliteRecorder) ListTables() []string {
	tables := make([]string, 0, len(r.tables))
	for name := range r.tables {
		tables = append(tables, name)
	}

	return tables
}

func (r *sqliteRecorder) Flush() {
	if r.entryCount == 0 {
		return
	}

	r.mustExecute("BEGIN TRANSACTION")
	defer r.mustExecute("COMMIT TRANSACTION")

	for tableName, t := range r.tables {
		if len(t.entries) == 0 {
			continue
		}

		stmt := r.prepareInsert(tableName, t.structType)

		for _, entry := range t.entries {
			v := reflect.ValueOf(entry)

			values := make([]any, 0, v.NumField())
			for i := 0; i < v.NumField(); i++ {
				values = append(values, v.Field(i).Interface())
			}

			if _, err := stmt.Exec(values...); err != nil {
				panic(err)
			}
		}

		t.entries = nil

		stmt.Close()
	}

	r.entryCount = 0
}

func (r *sqliteRecorder) Close() {
	r.Flush()

	if err := r.db.Close(); err != nil {
		panic(err)
	}
}

func (r *sqliteRecorder) mustExecute(query string) sql.Result {
	res, err := r.db.Exec(query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute: %s\n", query)
		panic(err)
	}

	return res
}

func (r *sqliteRecorder) prepareInsert(
	tableName string,
	structType reflect.Type,
) *sql.Stmt {
	placeholders := make([]string, structType.NumField())
	for i := range placeholders {
		placeholders[i] = "?"
	}

	insertSQL := "INSERT INTO " + tableName +
		" VALUES (" + strings.Join(placeholders, ", ") + ")"

	stmt, err := r.db.Prepare(insertSQL)
	if err != nil {
		panic(err)
	}

	return stmt
}

func columnNames(structType reflect.Type) []string {
	names := make([]string, 0, structType.NumField())
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		switch field.Type.Kind() {
		case reflect.Bool,
			reflect.Int, reflect.Int8, reflect.Int16,
			reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16,
			reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64,
			reflect.String:
			names = append(names, field.Name)
		default:
			panic(fmt.Sprintf("field %s has unsupported type %s",
				field.Name, field.Type))
		}
	}

	return names
}
