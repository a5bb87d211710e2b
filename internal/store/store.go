// Package store holds the SQL for items, history and settings. Functions
// accept either a *db.DB or a *db.Tx so callers decide the transaction
// boundaries.
package store

import (
	"context"
	"database/sql"
	"time"
)

// Querier is the common surface of *db.DB and *db.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Q(query string) string
	Time(t time.Time) any
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
