// Package postgres stores the geo dataset in PostgreSQL through a pgx pool.
// Bulk loads go through COPY into a temporary staging table followed by a
// single INSERT ... SELECT, so the conflict policy is applied set-wise.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/geoentities/internal/core"
)

// PoolOptions tunes the connection pool. Zero values keep pgx defaults.
type PoolOptions struct {
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Store implements core.Store and core.Catalog on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ core.Store   = (*Store)(nil)
	_ core.Catalog = (*Store)(nil)
)

// Open parses url, applies opts, connects and pings.
func Open(ctx context.Context, url string, opts PoolOptions) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = int32(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = int32(opts.MinConns)
	}
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return New(pool), nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// InTx runs fn in a single database transaction.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, w core.Writer) error) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	if err = fn(ctx, &writer{tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Delete removes one row; ON DELETE CASCADE removes its dependants.
func (s *Store) Delete(ctx context.Context, e core.Entity, id int64) error {
	t, ok := tableFor(e)
	if !ok {
		return fmt.Errorf("delete: unknown entity %q", e)
	}
	tag, err := s.pool.Exec(ctx, "DELETE FROM "+t.name+" WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", e, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete %s %d: %w", e, id, core.ErrNotFound)
	}
	return nil
}

// Counts returns the number of rows per table.
func (s *Store) Counts(ctx context.Context) (core.Counts, error) {
	var c core.Counts
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM geo_regions),
			(SELECT count(*) FROM geo_subregions),
			(SELECT count(*) FROM geo_countries),
			(SELECT count(*) FROM geo_states),
			(SELECT count(*) FROM geo_cities)`,
	).Scan(&c.Regions, &c.SubRegions, &c.Countries, &c.States, &c.Cities)
	if err != nil {
		return core.Counts{}, fmt.Errorf("count rows: %w", err)
	}
	return c, nil
}

// SQLSTATE codes translated into core errors.
const (
	sqlStateForeignKeyViolation = "23503"
	sqlStateUniqueViolation     = "23505"
)

func translateError(e core.Entity, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateForeignKeyViolation:
			return &core.ReferentialError{Entity: e, Err: err}
		case sqlStateUniqueViolation:
			return &core.DuplicateError{Entity: e, Err: err}
		}
	}
	return fmt.Errorf("insert %s: %w", e, err)
}
