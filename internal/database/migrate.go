package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/valeriaulyamaeva/finance-ledger/internal/logger"
	"github.com/valeriaulyamaeva/finance-ledger/models"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{SchemaName: "public"})
	if err != nil {
		return nil, fmt.Errorf("create postgres migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("create migration instance: %w", err)
	}
	return m, nil
}

// Migrate brings the schema at dsn to the latest version and seeds the
// currency reference table. Running it on an up-to-date database is a no-op.
func Migrate(ctx context.Context, dsn string) error {
	log := logger.FromContext(ctx)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	m, err := newMigrator(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil {
		var dirtyErr migrate.ErrDirty
		switch {
		case errors.Is(err, migrate.ErrNoChange):
			log.Info().Msg("no new migrations")
		case errors.As(err, &dirtyErr):
			return fmt.Errorf("migration failed: dirty database version %d", dirtyErr.Version)
		default:
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer conn.Close(ctx)

	added, err := UpsertCurrencies(ctx, conn, models.DefaultCurrencies)
	if err != nil {
		return err
	}
	log.Info().Uint("version", version).Int64("currencies_added", added).Msg("schema migrated")
	return nil
}

// MigrateDown rolls back every migration.
func MigrateDown(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	m, err := newMigrator(db)
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration rollback failed: %w", err)
	}
	log := logger.FromContext(ctx)
	log.Info().Msg("schema rolled back")
	return nil
}
