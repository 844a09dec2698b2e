package sql

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/syssam/graphcache/dialect"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var slow []string
	drv := NewStatsDriver(OpenDB(dialect.Postgres, db),
		WithSlowThreshold(time.Hour),
		WithSlowQueryHook(func(_ context.Context, query string, _ []any, _ time.Duration) {
			slow = append(slow, query)
		}),
	)
	assert.Equal(t, time.Hour, drv.SlowThreshold())
	assert.Equal(t, dialect.Postgres, drv.Dialect())

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	rows := &Rows{}
	require.NoError(t, drv.Query(context.Background(), "SELECT id FROM books", nil, rows))
	require.NoError(t, rows.Close())

	mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, drv.Exec(context.Background(), "CREATE TABLE books (id int)", nil, nil))

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("boom"))
	require.Error(t, drv.Query(context.Background(), "SELECT id FROM books", nil, &Rows{}))

	s := drv.QueryStats().Stats()
	assert.Equal(t, int64(2), s.TotalQueries)
	assert.Equal(t, int64(1), s.TotalExecs)
	assert.Equal(t, int64(1), s.Errors)
	assert.Zero(t, s.SlowQueries)
	assert.Empty(t, slow)
	assert.Contains(t, s.String(), "queries=2 execs=1")

	drv.SetSlowThreshold(-1)
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	rows = &Rows{}
	require.NoError(t, drv.Query(context.Background(), "SELECT id FROM authors", nil, rows))
	require.NoError(t, rows.Close())
	assert.Equal(t, int64(1), drv.QueryStats().Stats().SlowQueries)
	assert.Equal(t, []string{"SELECT id FROM authors"}, slow)

	drv.QueryStats().Reset()
	assert.Equal(t, StatsSnapshot{}, drv.QueryStats().Stats())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsDriver_Operations(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := NewStatsDriver(OpenDB(dialect.SQLite, db))

	ctx := context.Background()
	assert.Empty(t, Operation(ctx))
	for _, op := range []string{"FetchByIDs", "FetchRelated", "FetchByIDs", ""} {
		mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}))
		rows := &Rows{}
		require.NoError(t, drv.Query(WithOperation(ctx, op), "SELECT id FROM books", nil, rows))
		require.NoError(t, rows.Close())
	}

	s := drv.QueryStats().Stats()
	assert.Equal(t, int64(4), s.TotalQueries)
	assert.Equal(t, map[string]int64{"FetchByIDs": 2, "FetchRelated": 1}, s.ByOperation, "untagged statements count only in the totals")
	assert.Contains(t, s.String(), " FetchByIDs=2 FetchRelated=1")

	drv.QueryStats().Reset()
	assert.Nil(t, drv.QueryStats().Stats().ByOperation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsSnapshot_AvgQueryDuration(t *testing.T) {
	assert.Zero(t, StatsSnapshot{}.AvgQueryDuration())
	s := StatsSnapshot{TotalQueries: 3, TotalExecs: 1, TotalDuration: 8 * time.Millisecond}
	assert.Equal(t, 2*time.Millisecond, s.AvgQueryDuration())
}

func TestWithSlowQueryLog(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	drv := NewStatsDriver(OpenDB(dialect.SQLite, db), WithSlowThreshold(-1), WithSlowQueryLog(logger))

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	rows := &Rows{}
	require.NoError(t, drv.Query(context.Background(), "SELECT id FROM books", nil, rows))
	require.NoError(t, rows.Close())
	assert.Contains(t, buf.String(), "slow query detected")
	assert.Contains(t, buf.String(), "SELECT id FROM books")
}

func TestDebugDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	drv := NewDebugDriver(OpenDB(dialect.MySQL, db), logger)

	mock.ExpectQuery("SELECT").WithArgs(1).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	rows := &Rows{}
	require.NoError(t, drv.Query(context.Background(), "SELECT id FROM books WHERE id = ?", []any{1}, rows))
	require.NoError(t, rows.Close())
	mock.ExpectExec("DELETE").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, drv.Exec(context.Background(), "DELETE FROM books", nil, nil))

	out := buf.String()
	assert.Contains(t, out, "msg=query")
	assert.Contains(t, out, "msg=exec")
	assert.Contains(t, out, "DELETE FROM books")
	require.NoError(t, mock.ExpectationsWereMet())
}
