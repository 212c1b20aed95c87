package postgresstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/circulation-desk/apiclient"
	"github.com/AntonStoeckl/circulation-desk/desk/core"
	"github.com/AntonStoeckl/circulation-desk/gateway"
	"github.com/AntonStoeckl/circulation-desk/gateway/postgresstore/internal/adapters"
)

const (
	dialectPostgres = "postgres"

	tableBooks         = "books"
	tableBorrowRecords = "borrow_records"

	logMsgQueryExecuted    = "executed sql"
	logMsgQueryFailed      = "database statement failed"
	logMsgCloseRowsFailed  = "failed to close database rows"
	logMsgTransientFailure = "transient database failure, retrying"
	logAttrQuery           = "query"
	logAttrDriver          = "driver"
	logAttrOperation       = "operation"
	logAttrAttempt         = "attempt"
	logAttrDurationMS      = "duration_ms"
	logAttrError           = "error"
)

// Store is a PostgreSQL backed gateway.Circulation.
type Store struct {
	db               adapters.DBAdapter
	builder          goqu.DialectWrapper
	newID            func() core.ID
	retry            retryConfig
	logger           apiclient.Logger
	contextualLogger apiclient.ContextualLogger
}

// Option configures a Store.
type Option func(*Store) error

// WithLogger sets the basic logger. SQL statements are logged at debug level.
func WithLogger(logger apiclient.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger, preferred over the basic one.
func WithContextualLogger(logger apiclient.ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithIDGenerator replaces the uuid generator for new books and borrow records.
func WithIDGenerator(newID func() core.ID) Option {
	return func(s *Store) error {
		s.newID = newID
		return nil
	}
}

// WithRetry changes how often transient failures are retried and the base of the exponential backoff.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(s *Store) error {
		if maxAttempts < 1 || baseDelay < 0 {
			return ErrInvalidRetryConfig
		}

		s.retry.maxAttempts = maxAttempts
		s.retry.baseDelay = baseDelay

		return nil
	}
}

// FromPGXPool creates a Store on a pgx pool.
func FromPGXPool(pool *pgxpool.Pool, opts ...Option) (*Store, error) {
	if pool == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(pool), opts)
}

// FromSQLDB creates a Store on a database/sql handle opened with the lib/pq driver.
func FromSQLDB(db *sql.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), opts)
}

// FromSQLX creates a Store on a sqlx handle.
func FromSQLX(db *sqlx.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), opts)
}

func newStore(db adapters.DBAdapter, opts []Option) (*Store, error) {
	s := &Store{
		db:      db,
		builder: goqu.Dialect(dialectPostgres),
		newID:   func() core.ID { return core.ID(uuid.NewString()) },
		retry:   defaultRetryConfig(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Driver names the database library the store runs on.
func (s *Store) Driver() string {
	return s.db.Driver()
}

/*** statement execution ***/

type sqlBuilder interface {
	ToSQL() (string, []any, error)
}

func toSQL(stmt sqlBuilder) (string, error) {
	query, _, err := stmt.ToSQL()
	if err != nil {
		return "", errors.Join(ErrBuildingQueryFailed, err)
	}

	return query, nil
}

// query runs stmt and hands every row to scan. The rows are always closed.
func (s *Store) query(ctx context.Context, stmt sqlBuilder, scan func(rows adapters.DBRows) error) error {
	query, err := toSQL(stmt)
	if err != nil {
		return err
	}

	start := time.Now()
	rows, err := s.db.Query(ctx, query)
	s.logStatement(ctx, query, time.Since(start))

	if err != nil {
		s.logFailure(ctx, query, err)
		return errors.Join(ErrQueryFailed, err)
	}
	defer s.closeRows(ctx, rows)

	for rows.Next() {
		if err := scan(rows); err != nil {
			return errors.Join(ErrScanningRowFailed, err)
		}
	}

	if err := rows.Err(); err != nil {
		s.logFailure(ctx, query, err)
		return errors.Join(ErrQueryFailed, err)
	}

	return nil
}

// exec runs stmt and returns the number of affected rows.
func (s *Store) exec(ctx context.Context, stmt sqlBuilder) (int64, error) {
	query, err := toSQL(stmt)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	result, err := s.db.Exec(ctx, query)
	s.logStatement(ctx, query, time.Since(start))

	if err != nil {
		s.logFailure(ctx, query, err)
		return 0, errors.Join(ErrQueryFailed, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Join(ErrQueryFailed, err)
	}

	return affected, nil
}

func (s *Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if err := rows.Close(); err != nil {
		s.warn(ctx, logMsgCloseRowsFailed, logAttrError, err.Error())
	}
}

/*** logging ***/

func (s *Store) logStatement(ctx context.Context, query string, duration time.Duration) {
	args := []any{
		logAttrQuery, query,
		logAttrDriver, s.db.Driver(),
		logAttrDurationMS, float64(duration.Microseconds()) / 1000.0,
	}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgQueryExecuted, args...)
		return
	}

	if s.logger != nil {
		s.logger.Debug(logMsgQueryExecuted, args...)
	}
}

// logFailure logs at warn level: callers decide whether the failure is fatal.
func (s *Store) logFailure(ctx context.Context, query string, err error) {
	s.warn(ctx, logMsgQueryFailed, logAttrQuery, query, logAttrError, err.Error())
}

func (s *Store) warn(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, msg, args...)
		return
	}

	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

var _ gateway.Circulation = (*Store)(nil)
