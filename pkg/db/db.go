package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JayJamieson/csv-dwh/pkg/models"
	_ "github.com/marcboeker/go-duckdb/v2"
)

var ErrTableNotFound = errors.New("table not found")

// DB wraps a single DuckDB database file.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens the DuckDB database at path, creating it if needed.
// An empty path opens an in-memory database.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open DuckDB database %s: %w", path, err)
	}

	return &DB{
		conn: conn,
		path: path,
	}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// Path is the database file the connection was opened on, empty for an
// in-memory database.
func (db *DB) Path() string {
	return db.path
}

// QuoteIdent quotes name as a SQL identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// CreateTableFromCSV creates tableName from the CSV at csvPath. Column names
// come from the header row and types are inferred by read_csv_auto.
func (db *DB) CreateTableFromCSV(ctx context.Context, tableName, csvPath string, replace bool) error {
	create := "CREATE TABLE"
	if replace {
		create = "CREATE OR REPLACE TABLE"
	}

	query := fmt.Sprintf("%s %s AS SELECT * FROM read_csv_auto(%s, header = true)",
		create, QuoteIdent(tableName), quoteLiteral(csvPath))

	if _, err := db.conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to import CSV into DuckDB: %w", err)
	}
	return nil
}

// ExecScript runs script as one batch. Multiple statements are allowed.
func (db *DB) ExecScript(ctx context.Context, script string) error {
	if strings.TrimSpace(script) == "" {
		return nil
	}
	if _, err := db.conn.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("failed to execute script: %w", err)
	}
	return nil
}

func (db *DB) CountRows(ctx context.Context, tableName string) (int64, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+QuoteIdent(tableName)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return count, nil
}

func (db *DB) ListTables(ctx context.Context) ([]models.TableInfo, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT table_name, column_count, estimated_size
		FROM duckdb_tables()
		WHERE schema_name = 'main'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []models.TableInfo
	for rows.Next() {
		var t models.TableInfo
		if err := rows.Scan(&t.Name, &t.ColumnCount, &t.EstimatedSize); err != nil {
			return nil, fmt.Errorf("failed to scan table info: %w", err)
		}
		tables = append(tables, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating table rows: %w", err)
	}
	return tables, nil
}

// TableExists reports whether tableName exists in the main schema.
func (db *DB) TableExists(ctx context.Context, tableName string) (bool, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM duckdb_tables() WHERE schema_name = 'main' AND table_name = ?",
		tableName).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to look up table: %w", err)
	}
	return n > 0, nil
}

func (db *DB) Columns(ctx context.Context, tableName string) ([]models.ColumnInfo, error) {
	if err := db.mustExist(ctx, tableName); err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteLiteral(tableName)))
	if err != nil {
		return nil, fmt.Errorf("failed to get table info: %w", err)
	}
	defer rows.Close()

	var columns []models.ColumnInfo
	for rows.Next() {
		var col models.ColumnInfo
		if err := rows.Scan(&col.CID, &col.Name, &col.Type, &col.NotNull, &col.DefaultVal, &col.PK); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}
		columns = append(columns, col)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column rows: %w", err)
	}
	return columns, nil
}

// Preview returns the first limit rows of tableName with values rendered as text.
func (db *DB) Preview(ctx context.Context, tableName string, limit int) ([]string, [][]string, error) {
	rows, err := db.conn.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", QuoteIdent(tableName), limit))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query data: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var out [][]string
	for rows.Next() {
		values, err := scanValues(rows, len(columns))
		if err != nil {
			return nil, nil, err
		}
		out = append(out, transformText(columns, values).([]string))
	}

	if err = rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return columns, out, nil
}

// QueryTable pages through a table for the browser. The returned rows are
// shaped per q.Shape ("objects" or "array").
func (db *DB) QueryTable(ctx context.Context, q models.TableQuery) ([]string, []any, float64, error) {
	startTime := time.Now()

	if err := db.mustExist(ctx, q.TableName); err != nil {
		return nil, nil, 0, err
	}

	transform, ok := transformFuncs[q.Shape]
	if !ok {
		transform = transformObject
	}

	query := "SELECT "
	if q.ShowRowID {
		query += "row_number() OVER () as rowid, "
	}
	query += "* FROM " + QuoteIdent(q.TableName)

	if q.SortColumn != "" {
		direction := ""
		if q.SortDesc {
			direction = " DESC"
		}
		query += fmt.Sprintf(" ORDER BY %s%s", QuoteIdent(q.SortColumn), direction)
	}

	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	if q.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", q.Offset)
	}

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to query data: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to get columns: %w", err)
	}

	out := []any{}
	for rows.Next() {
		values, err := scanValues(rows, len(columns))
		if err != nil {
			return nil, nil, 0, err
		}
		out = append(out, transform(columns, values))
	}

	if err = rows.Err(); err != nil {
		return nil, nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	queryTime := float64(time.Since(startTime).Microseconds()) / 1000.0

	return columns, out, queryTime, nil
}

func (db *DB) mustExist(ctx context.Context, tableName string) error {
	exists, err := db.TableExists(ctx, tableName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrTableNotFound, tableName)
	}
	return nil
}

func scanValues(rows *sql.Rows, n int) ([]any, error) {
	values := make([]any, n)

	scanArgs := make([]any, n)
	for i := range values {
		scanArgs[i] = &values[i]
	}

	if err := rows.Scan(scanArgs...); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}
	return values, nil
}
