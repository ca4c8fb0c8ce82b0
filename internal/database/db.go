package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valeriaulyamaeva/finance-ledger/internal/config"
	"github.com/valeriaulyamaeva/finance-ledger/internal/ledger"
)

const foreignKeyViolation = "23503"

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx, so every query function
// in this package runs either standalone or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func ConnectDB(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// dbError maps missing rows and dangling foreign keys to ledger.ErrNotFound.
func dbError(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", msg, ledger.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return fmt.Errorf("%s: %s: %w", msg, pgErr.ConstraintName, ledger.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func expectOne(tag pgconn.CommandTag, format string, args ...any) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ledger.ErrNotFound)
	}
	return nil
}
