package database

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/valeriaulyamaeva/finance-ledger/models"
)

func FindCurrencyByCode(ctx context.Context, db DBTX, code string) (*models.Currency, error) {
	query := `SELECT id, code, name FROM currencies WHERE code = $1`

	c := &models.Currency{}
	err := db.QueryRow(ctx, query, strings.ToUpper(code)).Scan(&c.ID, &c.Code, &c.Name)
	if err != nil {
		return nil, dbError(err, "find currency %q", code)
	}
	return c, nil
}

func GetAllCurrencies(ctx context.Context, db DBTX) ([]models.Currency, error) {
	rows, err := db.Query(ctx, `SELECT id, code, name FROM currencies ORDER BY code`)
	if err != nil {
		return nil, dbError(err, "list currencies")
	}
	currencies, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.Currency])
	if err != nil {
		return nil, dbError(err, "list currencies")
	}
	return currencies, nil
}

// UpsertCurrencies inserts currencies whose code is not registered yet and
// reports how many were added. Existing rows are never changed.
func UpsertCurrencies(ctx context.Context, db DBTX, currencies []models.Currency) (int64, error) {
	query := `
		INSERT INTO currencies (code, name) VALUES ($1, $2)
		ON CONFLICT (code) DO NOTHING`

	var added int64
	for _, c := range currencies {
		tag, err := db.Exec(ctx, query, strings.ToUpper(c.Code), c.Name)
		if err != nil {
			return added, dbError(err, "upsert currency %q", c.Code)
		}
		added += tag.RowsAffected()
	}
	return added, nil
}
