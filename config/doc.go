// Package config loads the configuration of the circulation desk client and the reference gateway
// and builds the ambient infrastructure derived from it: the slog logger, the OpenTelemetry
// providers and the PostgreSQL connection handles (pgxpool, database/sql, sqlx).
//
// Values come from a YAML file named by CONFIG_PATH and from environment variables,
// with environment variables taking precedence and env-default tags filling the rest.
package config
