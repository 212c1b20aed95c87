package adapters

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// SQLAdapter runs statements on a database/sql handle.
type SQLAdapter struct {
	db *sql.DB
}

func NewSQLAdapter(db *sql.DB) SQLAdapter {
	return SQLAdapter{db: db}
}

func (a SQLAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return stdRows{rows: rows}, nil
}

func (a SQLAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	result, err := a.db.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return stdResult{result: result}, nil
}

func (a SQLAdapter) Driver() string { return DriverSQL }

// SQLXAdapter runs statements on a sqlx handle.
type SQLXAdapter struct {
	db *sqlx.DB
}

func NewSQLXAdapter(db *sqlx.DB) SQLXAdapter {
	return SQLXAdapter{db: db}
}

func (a SQLXAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return stdRows{rows: rows}, nil
}

func (a SQLXAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	result, err := a.db.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return stdResult{result: result}, nil
}

func (a SQLXAdapter) Driver() string { return DriverSQLX }

var (
	_ DBAdapter = SQLAdapter{}
	_ DBAdapter = SQLXAdapter{}
)
