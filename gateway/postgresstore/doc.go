// Package postgresstore implements gateway.Circulation on PostgreSQL.
//
// The store runs on a pgxpool.Pool, a sql.DB or a sqlx.DB. Every statement is built with goqu and
// fully interpolated, so the three drivers execute identical SQL. Borrow and return are single
// statements whose data-modifying CTEs move the borrow record and the book's available copies
// together: a borrow can only insert its record if it managed to take a copy, and a return
// only restocks when it closed an active record. A partial unique index keeps one active
// loan per user and book.
//
// The schema lives in embedded goose migrations, applied with Migrate.
package postgresstore
