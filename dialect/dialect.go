package dialect

import (
	"context"
	"database/sql"
)

// Dialect names. They double as database/sql driver names.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// ExecQuerier wraps the two database operations.
type ExecQuerier interface {
	// Exec executes a statement that returns no rows. v may be nil or a
	// *sql.Result to receive the result.
	Exec(ctx context.Context, query string, args []any, v any) error
	// Query executes a query and stores its rows in v, which must be a
	// pointer to the Rows type of the driver.
	Query(ctx context.Context, query string, args []any, v any) error
}

// Driver is the interface stores use to reach a database.
type Driver interface {
	ExecQuerier
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Result is an alias to sql.Result.
type Result = sql.Result
