package postgresstore

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

var (
	// ErrNilDatabaseConnection is returned when a constructor receives a nil handle.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrBuildingQueryFailed is returned when goqu cannot render a statement.
	ErrBuildingQueryFailed = errors.New("building query failed")

	// ErrQueryFailed is returned when the database rejects a statement.
	ErrQueryFailed = errors.New("database query failed")

	// ErrScanningRowFailed is returned when a result row does not match the expected shape.
	ErrScanningRowFailed = errors.New("scanning database row failed")

	// ErrInvalidRetryConfig is returned by WithRetry for non-positive attempts or a negative delay.
	ErrInvalidRetryConfig = errors.New("retry needs at least one attempt and a non-negative delay")
)

const (
	sqlStateUniqueViolation      = "23505"
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// sqlState extracts the SQLSTATE from pgx and lib/pq errors. It returns "" for anything else.
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}

	return ""
}

// isTransient reports errors that succeed when the statement is simply run again.
func isTransient(err error) bool {
	switch sqlState(err) {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected:
		return true
	default:
		return false
	}
}

func isUniqueViolation(err error) bool {
	return sqlState(err) == sqlStateUniqueViolation
}
