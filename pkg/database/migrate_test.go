package database

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"testing/fstest"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"002_add_index.up.sql":       {Data: []byte("CREATE INDEX idx ON orders (shopper_id)")},
		"001_create_orders.up.sql":   {Data: []byte("CREATE TABLE orders (id UUID)")},
		"001_create_orders.down.sql": {Data: []byte("DROP TABLE orders")},
		"README.md":                  {Data: []byte("notes")},
	}
}

func TestUpFiles_SortedAndFiltered(t *testing.T) {
	names, err := upFiles(testMigrations())

	require.NoError(t, err)
	assert.Equal(t, []string{"001_create_orders.up.sql", "002_add_index.up.sql"}, names)
}

func TestRunMigrations_AppliesPendingSkipsApplied(t *testing.T) {
	mock, err := NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT EXISTS").WithArgs("001_create_orders.up.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT EXISTS").WithArgs("002_add_index.up.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE INDEX idx").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("INSERT INTO schema_migrations").WithArgs("002_add_index.up.sql").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err = RunMigrations(context.Background(), mock, testMigrations(), discardLogger())

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_SQLErrorRollsBackWithoutRetry(t *testing.T) {
	mock, err := NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	fsys := fstest.MapFS{"001_create_orders.up.sql": {Data: []byte("CREAT TABLE orders")}}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT EXISTS").WithArgs("001_create_orders.up.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREAT TABLE orders").WillReturnError(errStr("syntax error at or near \"CREAT\""))
	mock.ExpectRollback()

	err = RunMigrations(context.Background(), mock, fsys, discardLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "execute migration 001_create_orders.up.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}
