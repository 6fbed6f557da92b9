package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrationsTable records applied schema versions.
const MigrationsTable = "geo_schema_migrations"

// Migrate applies every pending migration. It is a no-op when the schema is
// current.
func (s *Store) Migrate(ctx context.Context) error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	// Migrations run on their own connection so closing the migrator never
	// touches the pool.
	db := stdlib.OpenDB(*s.pool.Config().ConnConfig)

	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("create migrator: %w", err)
	}
	defer migrator.Close()

	done := make(chan error, 1)
	go func() { done <- migrator.Up() }()

	select {
	case upErr := <-done:
		if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
			return fmt.Errorf("apply migrations: %w", upErr)
		}
		return nil
	case <-ctx.Done():
		migrator.GracefulStop <- true
		<-done
		return ctx.Err()
	}
}
