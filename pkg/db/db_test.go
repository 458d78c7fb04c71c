package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/JayJamieson/csv-dwh/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cuentasCSV = "id_cuenta,nombre,pais,activa\n" +
	"1,Ana,CO,true\n" +
	"2,Luis,MX,false\n" +
	"3,Sofía,AR,true\n"

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCreateTableFromCSV(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	path := writeCSV(t, "cuentas.csv", cuentasCSV)

	require.NoError(t, database.CreateTableFromCSV(ctx, "cuentas", path, false))

	count, err := database.CountRows(ctx, "cuentas")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	columns, err := database.Columns(ctx, "cuentas")
	require.NoError(t, err)
	require.Len(t, columns, 4)
	assert.Equal(t, "id_cuenta", columns[0].Name)
	assert.Equal(t, "BIGINT", columns[0].Type)
	assert.Equal(t, "BOOLEAN", columns[3].Type)
}

func TestCreateTableFromCSV_BOMHeader(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	path := writeCSV(t, "bom.csv", "\uFEFF"+cuentasCSV)

	require.NoError(t, database.CreateTableFromCSV(ctx, "bom", path, false))

	columns, err := database.Columns(ctx, "bom")
	require.NoError(t, err)
	assert.Equal(t, "id_cuenta", columns[0].Name)
}

func TestCreateTableFromCSV_ExistingTable(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	path := writeCSV(t, "cuentas.csv", cuentasCSV)

	require.NoError(t, database.CreateTableFromCSV(ctx, "cuentas", path, false))
	assert.Error(t, database.CreateTableFromCSV(ctx, "cuentas", path, false))
	assert.NoError(t, database.CreateTableFromCSV(ctx, "cuentas", path, true))

	count, err := database.CountRows(ctx, "cuentas")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestCreateTableFromCSV_QuotedNames(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	path := writeCSV(t, "it's.csv", cuentasCSV)

	require.NoError(t, database.CreateTableFromCSV(ctx, "ventas 2024", path, false))

	exists, err := database.TableExists(ctx, "ventas 2024")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateTableFromCSV_MissingFile(t *testing.T) {
	database := setupTestDB(t)
	err := database.CreateTableFromCSV(context.Background(), "nada", filepath.Join(t.TempDir(), "nada.csv"), false)
	assert.Error(t, err)
}

func TestExecScript_MultipleStatements(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)

	script := `
		CREATE TABLE dim_pais (id INTEGER, nombre VARCHAR);
		INSERT INTO dim_pais VALUES (1, 'Colombia'), (2, 'México');
		CREATE TABLE fact_x AS SELECT id * 10 AS v FROM dim_pais;
	`
	require.NoError(t, database.ExecScript(ctx, script))

	count, err := database.CountRows(ctx, "fact_x")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestExecScript_Empty(t *testing.T) {
	database := setupTestDB(t)
	assert.NoError(t, database.ExecScript(context.Background(), "  \n"))
}

func TestExecScript_Error(t *testing.T) {
	database := setupTestDB(t)
	assert.Error(t, database.ExecScript(context.Background(), "SELECT * FROM no_such_table"))
}

func TestListTables(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	require.NoError(t, database.ExecScript(ctx, "CREATE TABLE b (x INTEGER); CREATE TABLE a (x INTEGER, y INTEGER);"))

	tables, err := database.ListTables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "a", tables[0].Name)
	assert.Equal(t, int64(2), tables[0].ColumnCount)
	assert.Equal(t, "b", tables[1].Name)
}

func TestPreview(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	require.NoError(t, database.ExecScript(ctx, `
		CREATE TABLE t (id INTEGER, nombre VARCHAR);
		INSERT INTO t VALUES (1, 'uno'), (2, NULL), (3, 'tres');
	`))

	columns, rows, err := database.Preview(ctx, "t", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "nombre"}, columns)
	assert.Equal(t, [][]string{{"1", "uno"}, {"2", "NULL"}}, rows)
}

func TestQueryTable(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	require.NoError(t, database.ExecScript(ctx, `
		CREATE TABLE t (id INTEGER, nombre VARCHAR);
		INSERT INTO t VALUES (1, 'uno'), (2, 'dos'), (3, 'tres');
	`))

	t.Run("objects sorted desc", func(t *testing.T) {
		columns, rows, _, err := database.QueryTable(ctx, models.TableQuery{
			TableName:  "t",
			SortColumn: "id",
			SortDesc:   true,
			Limit:      2,
			Shape:      "objects",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "nombre"}, columns)
		require.Len(t, rows, 2)
		assert.Equal(t, "tres", rows[0].(map[string]any)["nombre"])
	})

	t.Run("array with offset", func(t *testing.T) {
		_, rows, _, err := database.QueryTable(ctx, models.TableQuery{
			TableName:  "t",
			SortColumn: "id",
			Offset:     2,
			Shape:      "array",
		})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "tres", rows[0].([]any)[1])
	})

	t.Run("row id", func(t *testing.T) {
		columns, _, _, err := database.QueryTable(ctx, models.TableQuery{TableName: "t", ShowRowID: true})
		require.NoError(t, err)
		assert.Equal(t, "rowid", columns[0])
	})

	t.Run("unknown table", func(t *testing.T) {
		_, _, _, err := database.QueryTable(ctx, models.TableQuery{TableName: "t; DROP TABLE t"})
		assert.ErrorIs(t, err, ErrTableNotFound)
	})
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reto_sql.duckdb")

	database, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, database.ExecScript(context.Background(), "CREATE TABLE x (a INTEGER)"))
	require.NoError(t, database.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	exists, err := reopened.TableExists(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, path, reopened.Path())
}
