// Package dbx holds the small database/sql abstraction shared by the SQL
// repositories on both the server and the CLI client.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql the repositories use. *sql.DB, *sql.Tx
// and *sql.Conn all satisfy it, as does a sqlmock connection in tests.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
