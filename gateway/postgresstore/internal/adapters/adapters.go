package adapters

import (
	"context"
	"database/sql"
)

// Driver names reported by DBAdapter.Driver.
const (
	DriverPGX  = "pgx"
	DriverSQL  = "sql"
	DriverSQLX = "sqlx"
)

// DBAdapter runs fully interpolated SQL statements.
type DBAdapter interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Exec(ctx context.Context, query string) (DBResult, error)
	Driver() string
}

// DBRows iterates over query results. Err reports failures that ended the iteration early.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult reports what a statement changed.
type DBResult interface {
	RowsAffected() (int64, error)
}

// stdRows adapts *sql.Rows, shared by the sql and sqlx adapters.
type stdRows struct {
	rows *sql.Rows
}

func (r stdRows) Next() bool             { return r.rows.Next() }
func (r stdRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r stdRows) Err() error             { return r.rows.Err() }
func (r stdRows) Close() error           { return r.rows.Close() }

// stdResult adapts sql.Result.
type stdResult struct {
	result sql.Result
}

func (r stdResult) RowsAffected() (int64, error) { return r.result.RowsAffected() }
