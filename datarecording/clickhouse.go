package datarecording

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/tebeka/atexit"
)

// ClickHouseOptions configures the connection of a ClickHouse-backed
// recorder.
type ClickHouseOptions struct {
	Addr     string
	Database string
	Username string
	Password string
}

type clickHouseRecorder struct {
	conn clickhouse.Conn

	tables     map[string]*table
	batchSize  int
	entryCount int
}

// NewClickHouse creates a DataRecorder that stores tables in a ClickHouse
// database instead of a local SQLite file. It shares the table model of the
// SQLite recorder, so writers can use either backend interchangeably.
func NewClickHouse(opts ClickHouseOptions) (DataRecorder, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{opts.Addr},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to clickhouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("pinging clickhouse: %w", err)
	}

	r := &clickHouseRecorder{
		conn:      conn,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}

	atexit.Register(func() { r.Flush() })

	return r, nil
}

func (r *clickHouseRecorder) CreateTable(tableName string, sampleEntry any) {
	structType := reflect.TypeOf(sampleEntry)
	if structType.Kind() != reflect.Struct {
		panic(fmt.Sprintf("table %s sample entry must be a struct", tableName))
	}

	columns := make([]string, 0, structType.NumField())
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		columns = append(columns,
			field.Name+" "+clickHouseColumnType(field))
	}

	createSQL := "CREATE TABLE IF NOT EXISTS " + tableName +
		" (\n\t" + strings.Join(columns, ", \n\t") + "\n)" +
		" ENGINE = MergeTree() ORDER BY tuple()"

	if err := r.conn.Exec(context.Background(), createSQL); err != nil {
		panic(err)
	}

	r.tables[tableName] = &table{structType: structType}
}

func (r *clickHouseRecorder) InsertData(tableName string, entry any) {
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

func (r *clickHouseRecorder) ListTables() []string {
	tables := make([]string, 0, len(r.tables))
	for name := range r.tables {
		tables = append(tables, name)
	}

	return tables
}

func (r *clickHouseRecorder) Flush() {
	if r.entryCount == 0 {
		return
	}

	ctx := context.Background()

	for tableName, t := range r.tables {
		if len(t.entries) == 0 {
			continue
		}

		batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO "+tableName)
		if err != nil {
			panic(err)
		}

		for _, entry := range t.entries {
			v := reflect.ValueOf(entry)

			values := make([]any, 0, v.NumField())
			for i := 0; i < v.NumField(); i++ {
				values = append(values, v.Field(i).Interface())
			}

			if err := batch.Append(values...); err != nil {
				panic(err)
			}
		}

		if err := batch.Send(); err != nil {
			panic(err)
		}

		t.entries = nil
	}

	r.entryCount = 0
}

func (r *clickHouseRecorder) Close() {
	r.Flush()

	if err := r.conn.Close(); err != nil {
		panic(err)
	}
}

func clickHouseColumnType(field reflect.StructField) string {
	switch field.Type.Kind() {
	case reflect.Bool:
		return "Bool"
	case reflect.Int, reflect.Int64:
		return "Int64"
	case reflect.Int8:
		return "Int8"
	case reflect.Int16:
		return "Int16"
	case reflect.Int32:
		return "Int32"
	case reflect.Uint, reflect.Uint64:
		return "UInt64"
	case reflect.Uint8:
		return "UInt8"
	case reflect.Uint16:
		return "UInt16"
	case reflect.Uint32:
		return "UInt32"
	case reflect.Float32:
		return "Float32"
	case reflect.Float64:
		return "Float64"
	case reflect.String:
		return "String"
	default:
		panic(fmt.Sprintf("field %s has unsupported type %s",
			field.Name, field.Type))
	}
}
