package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrInvalidBaseURL     = errors.New("api.base_url must be an absolute http(s) url")
	ErrInvalidPageSize    = errors.New("catalog.page_size must be between 1 and 100")
	ErrInvalidCacheSize   = errors.New("catalog.name_cache_size must be > 0")
	ErrInvalidLogLevel    = errors.New("log.level must be one of debug, info, warn, error")
	ErrInvalidLogFormat   = errors.New("log.format must be json or text")
	ErrWeakJWTSecret      = errors.New("auth.jwt_secret must be at least 32 characters")
	ErrUnknownStoreDriver = errors.New("store.driver must be one of memory, pgx, sql, sqlx")
	ErrMissingDSN         = errors.New("database.dsn is required for postgres store drivers")
	ErrInvalidPort        = errors.New("server.port must be between 1 and 65535")
)

const minJWTSecretLength = 32

// Validate checks business rules that struct tags cannot express.
func (c *ClientConfig) Validate() error {
	parsed, err := url.Parse(c.API.BaseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return ErrInvalidBaseURL
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be > 0 (got %s)", c.API.Timeout)
	}

	if c.Catalog.PageSize < 1 || c.Catalog.PageSize > 100 {
		return fmt.Errorf("%w (got %d)", ErrInvalidPageSize, c.Catalog.PageSize)
	}

	if c.Catalog.NameCacheSize <= 0 {
		return fmt.Errorf("%w (got %d)", ErrInvalidCacheSize, c.Catalog.NameCacheSize)
	}

	return c.Log.validate()
}

// Validate checks business rules that struct tags cannot express.
func (c *GatewayConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w (got %d)", ErrInvalidPort, c.Server.Port)
	}

	if len(c.Auth.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("%w (got %d)", ErrWeakJWTSecret, len(c.Auth.JWTSecret))
	}

	switch c.Store.Driver {
	case StoreDriverMemory:
	case StoreDriverPGX, StoreDriverSQL, StoreDriverSQLX:
		if c.Database.DSN == "" {
			return ErrMissingDSN
		}
	default:
		return fmt.Errorf("%w (got %q)", ErrUnknownStoreDriver, c.Store.Driver)
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns must be <= max_conns (got %d > %d)", c.Database.MinConns, c.Database.MaxConns)
	}

	return c.Log.validate()
}

func (l LogConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w (got %q)", ErrInvalidLogLevel, l.Level)
	}

	switch strings.ToLower(strings.TrimSpace(l.Format)) {
	case "json", "text":
	default:
		return fmt.Errorf("%w (got %q)", ErrInvalidLogFormat, l.Format)
	}

	return nil
}
