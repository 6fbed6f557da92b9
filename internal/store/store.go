// Package store opens the storage backend named by the database URL.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/geoentities/internal/config"
	"github.com/JonMunkholm/geoentities/internal/core"
	"github.com/JonMunkholm/geoentities/internal/store/postgres"
	"github.com/JonMunkholm/geoentities/internal/store/sqlite"
)

// Backend is a migrated-on-demand store with a read side.
type Backend interface {
	core.Store
	core.Catalog
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Backend = (*postgres.Store)(nil)
	_ Backend = (*sqlite.Store)(nil)
)

// Open connects to the backend cfg.URL selects.
func Open(ctx context.Context, cfg config.DatabaseConfig, batchSize int) (Backend, error) {
	switch cfg.Backend() {
	case "postgres":
		s, err := postgres.Open(ctx, cfg.URL, postgres.PoolOptions{
			MaxConns:        cfg.MaxConns,
			MinConns:        cfg.MinConns,
			MaxConnLifetime: cfg.MaxConnLifetime,
			MaxConnIdleTime: cfg.MaxConnIdleTime,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := sqlite.Open(SQLiteDSN(cfg.URL), sqlite.Options{BatchSize: batchSize})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unsupported database URL scheme in %q", redact(cfg.URL))
}

// SQLiteDSN turns sqlite://path into the path the driver expects. file: URIs
// pass through unchanged.
func SQLiteDSN(url string) string {
	return strings.TrimPrefix(url, "sqlite://")
}

// redact drops everything after the scheme so credentials never reach logs.
func redact(url string) string {
	if i := strings.Index(url, "://"); i >= 0 {
		return url[:i+3] + "..."
	}
	if i := strings.IndexByte(url, ':'); i >= 0 {
		return url[:i+1] + "..."
	}
	return "..."
}
