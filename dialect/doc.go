// Package dialect defines the database abstraction used by the SQL store.
//
// # Supported Dialects
//
//   - Postgres: PostgreSQL ($1 placeholders, double-quoted identifiers)
//   - MySQL: MySQL/MariaDB (? placeholders, backquoted identifiers)
//   - SQLite: SQLite (? placeholders, double-quoted identifiers)
//
// Each dialect is identified by a constant that is also the name the
// database/sql driver registers:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// # Driver Interface
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args []any, v any) error
//	    Query(ctx context.Context, query string, args []any, v any) error
//	    Close() error
//	    Dialect() string
//	}
//
// The implementation lives in dialect/sql, together with the statement
// builder and the predicates accepted by filtered relationship access.
package dialect
