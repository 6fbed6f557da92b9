// Package sqlite is a gorm-backed store on the pure-Go SQLite driver. It
// needs no external database, which makes it the default for local use and
// for tests of the web layer.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/JonMunkholm/geoentities/internal/core"
)

// DefaultBatchSize keeps each INSERT well under SQLite's bound-variable limit
// for the widest table (countries, 15 columns).
const DefaultBatchSize = 500

// Options configures Open.
type Options struct {
	BatchSize int
	LogLevel  logger.LogLevel // gorm SQL logging; zero means silent
}

// Store implements core.Store and core.Catalog on SQLite.
type Store struct {
	db        *gorm.DB
	batchSize int
}

var (
	_ core.Store   = (*Store)(nil)
	_ core.Catalog = (*Store)(nil)
)

// Open connects to dsn (a file path or a "file:" URI) and enables foreign
// key enforcement. The pool is pinned to a single connection so the pragma
// and in-memory databases survive for the lifetime of the Store.
func Open(dsn string, opts Options) (*Store, error) {
	level := opts.LogLevel
	if level == 0 {
		level = logger.Silent
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", dsn, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	batch := opts.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	return &Store{db: db, batchSize: batch}, nil
}

// Migrate creates whichever of the five geo tables are missing, with their
// cascading foreign keys. Existing tables are left as they are.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	var missing []any
	for _, m := range allModels {
		if !db.Migrator().HasTable(m) {
			missing = append(missing, m)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	if err := db.AutoMigrate(missing...); err != nil {
		return fmt.Errorf("migrate sqlite schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// InTx runs fn in a gorm transaction.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, w core.Writer) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &writer{db: tx, batchSize: s.batchSize})
	})
}

// Delete removes one row; SQLite cascades to dependants.
func (s *Store) Delete(ctx context.Context, e core.Entity, id int64) error {
	model, ok := modelFor(e)
	if !ok {
		return fmt.Errorf("delete: unknown entity %q", e)
	}
	res := s.db.WithContext(ctx).Delete(model, id)
	if res.Error != nil {
		return fmt.Errorf("delete %s %d: %w", e, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete %s %d: %w", e, id, core.ErrNotFound)
	}
	return nil
}

// Counts returns the number of rows per table.
func (s *Store) Counts(ctx context.Context) (core.Counts, error) {
	var c core.Counts
	targets := []struct {
		model any
		dst   *int64
	}{
		{&regionModel{}, &c.Regions},
		{&subRegionModel{}, &c.SubRegions},
		{&countryModel{}, &c.Countries},
		{&stateModel{}, &c.States},
		{&cityModel{}, &c.Cities},
	}
	for _, t := range targets {
		if err := s.db.WithContext(ctx).Model(t.model).Count(t.dst).Error; err != nil {
			return core.Counts{}, fmt.Errorf("count rows: %w", err)
		}
	}
	return c, nil
}

// translateError maps SQLite constraint failures onto the core taxonomy.
func translateError(e core.Entity, err error) error {
	msg := err.Error()
	switch {
	case errors.Is(err, gorm.ErrForeignKeyViolated), strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return &core.ReferentialError{Entity: e, Err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(msg, "UNIQUE constraint failed"):
		return &core.DuplicateError{Entity: e, Err: err}
	}
	return fmt.Errorf("insert %s: %w", e, err)
}
