package config

import (
	"net"
	"strconv"
	"strings"
	"time"
)

// Store drivers supported by the gateway.
const (
	StoreDriverMemory = "memory"
	StoreDriverPGX    = "pgx"
	StoreDriverSQL    = "sql"
	StoreDriverSQLX   = "sqlx"
)

const (
	defaultClientServiceName  = "circulation-desk"
	defaultGatewayServiceName = "circulation-gateway"
)

// ClientConfig is the configuration of the terminal client.
type ClientConfig struct {
	API       APIConfig       `yaml:"api"`
	Session   SessionConfig   `yaml:"session"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// APIConfig holds the backend connection settings.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"LIBRARY_API_BASE_URL" env-required:"true"`
	Timeout time.Duration `yaml:"timeout"  env:"LIBRARY_API_TIMEOUT"  env-default:"15s"`
}

// SessionConfig holds where the session document is persisted.
// An empty Path keeps the session in memory only.
type SessionConfig struct {
	Path string `yaml:"path" env:"LIBRARY_SESSION_PATH"`
}

// CatalogConfig holds catalog list settings.
type CatalogConfig struct {
	PageSize      int `yaml:"page_size"       env:"CATALOG_PAGE_SIZE"       env-default:"20"`
	NameCacheSize int `yaml:"name_cache_size" env:"CATALOG_NAME_CACHE_SIZE" env-default:"256"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// TelemetryConfig holds OpenTelemetry exporter settings.
type TelemetryConfig struct {
	Enabled        bool          `yaml:"enabled"         env:"OTEL_ENABLED"         env-default:"false"`
	Endpoint       string        `yaml:"endpoint"        env:"OTEL_ENDPOINT"        env-default:"localhost:4317"`
	Insecure       bool          `yaml:"insecure"        env:"OTEL_INSECURE"        env-default:"true"`
	ServiceName    string        `yaml:"service_name"    env:"OTEL_SERVICE_NAME"`
	MetricInterval time.Duration `yaml:"metric_interval" env:"OTEL_METRIC_INTERVAL" env-default:"15s"`
}

// GatewayConfig is the configuration of the reference gateway.
type GatewayConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	CORS      CORSConfig      `yaml:"cors"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// StoreConfig selects the circulation store.
type StoreConfig struct {
	Driver       string `yaml:"driver"         env:"STORE_DRIVER"         env-default:"memory"`
	SeedDemoData bool   `yaml:"seed_demo_data" env:"STORE_SEED_DEMO_DATA" env-default:"true"`
}

// DatabaseConfig holds PostgreSQL connection settings, used by every driver except memory.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"2"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"5m"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"    env:"DATABASE_CONNECT_TIMEOUT"    env-default:"5s"`
}

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"AUTH_JWT_SECRET"       env-required:"true"`
	JWTIssuer      string        `yaml:"jwt_issuer"       env:"AUTH_JWT_ISSUER"       env-default:"circulation-gateway"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"1h"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type,X-Request-ID"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// Origins splits AllowedOrigins.
func (c CORSConfig) Origins() []string { return splitList(c.AllowedOrigins) }

// Methods splits AllowedMethods.
func (c CORSConfig) Methods() []string { return splitList(c.AllowedMethods) }

// Headers splits AllowedHeaders.
func (c CORSConfig) Headers() []string { return splitList(c.AllowedHeaders) }

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
