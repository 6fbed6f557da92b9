// Package config loads geodata settings from environment variables. Every
// field has a default, so an empty environment yields a working setup backed
// by a local SQLite file.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Source   SourceConfig
	Import   ImportConfig
	Admin    AdminConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings for the admin listing.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`

	// TrustedProxies lists CIDRs whose X-Real-IP / X-Forwarded-For headers
	// are believed. Empty means the connection address is always used.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// DatabaseConfig selects and tunes the storage backend.
type DatabaseConfig struct {
	// URL picks the backend by scheme: postgres:// or postgresql:// for
	// PostgreSQL, sqlite://path or file: for SQLite.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" default:"sqlite://geodata.db"`

	// Pool settings apply to PostgreSQL only.
	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"0"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// AutoMigrate applies the schema before an import (default: true)
	AutoMigrate bool `env:"DB_AUTO_MIGRATE" default:"true"`
}

// SourceConfig says where the five CSV resources come from.
type SourceConfig struct {
	BaseURL string `env:"GEO_CSV_BASE_URL" default:"https://raw.githubusercontent.com/dr5hn/countries-states-cities-database/master/csv/"`

	// Dir, when set, reads the resources from disk instead of BaseURL.
	Dir string `env:"GEO_CSV_DIR"`

	// Timeout is the HTTP client timeout per resource; 0 means none.
	Timeout time.Duration `env:"GEO_CSV_TIMEOUT" default:"0s"`
}

// ImportConfig holds import behaviour.
type ImportConfig struct {
	// ConflictPolicy is skip, update or error (default: skip)
	ConflictPolicy string `env:"IMPORT_CONFLICT_POLICY" default:"skip"`

	// BatchSize is rows per INSERT on SQLite (default: 500)
	BatchSize int `env:"IMPORT_BATCH_SIZE" default:"500"`

	// MetricsFile, when set, receives the run's metrics in the Prometheus
	// text format after update-geo-data finishes.
	MetricsFile string `env:"IMPORT_METRICS_FILE"`

	// Interval repeats the import started by serve --import; 0 runs it once.
	Interval time.Duration `env:"IMPORT_INTERVAL" default:"0s"`
}

// AdminConfig holds listing settings.
type AdminConfig struct {
	PageSize int `env:"ADMIN_PAGE_SIZE" default:"20"`

	// APIKeys, when set, are required in X-API-Key on /api routes.
	APIKeys []string `env:"ADMIN_API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Backend reports which store the URL selects: "postgres" or "sqlite".
func (c *DatabaseConfig) Backend() string {
	switch {
	case strings.HasPrefix(c.URL, "postgres://"), strings.HasPrefix(c.URL, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(c.URL, "sqlite://"), strings.HasPrefix(c.URL, "file:"):
		return "sqlite"
	}
	return ""
}

// String returns a representation safe for logging. Database credentials are
// masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Database: {Backend: %s, URL: [MASKED], MaxConns: %d, AutoMigrate: %v}, ",
		c.Database.Backend(), c.Database.MaxConns, c.Database.AutoMigrate)
	fmt.Fprintf(&b, "Source: {BaseURL: %q, Dir: %q, Timeout: %s}, ", c.Source.BaseURL, c.Source.Dir, c.Source.Timeout)
	fmt.Fprintf(&b, "Import: {ConflictPolicy: %q, BatchSize: %d, MetricsFile: %q, Interval: %s}, ",
		c.Import.ConflictPolicy, c.Import.BatchSize, c.Import.MetricsFile, c.Import.Interval)
	fmt.Fprintf(&b, "Admin: {PageSize: %d, APIKeys: %d configured}, ", c.Admin.PageSize, len(c.Admin.APIKeys))
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}
