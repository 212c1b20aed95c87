package postgresstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrMigrationFailed is returned when the schema could not be brought up to date.
var ErrMigrationFailed = errors.New("circulation schema migration failed")

// Migrate applies all pending migrations and returns how many ran.
// goose needs a database/sql handle, so pgx users open a short-lived one for this.
func Migrate(ctx context.Context, db *sql.DB) (int, error) {
	if db == nil {
		return 0, ErrNilDatabaseConnection
	}

	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return 0, errors.Join(ErrMigrationFailed, err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return 0, errors.Join(ErrMigrationFailed, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return len(results), errors.Join(ErrMigrationFailed, err)
	}

	return len(results), nil
}
