package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/valeriaulyamaeva/finance-ledger/models"
)

const transferColumns = `
	id, user_id, account_from_id, account_to_id, amount, converted_amount,
	date, description, created_at`

func scanTransfer(row pgx.Row) (*models.AccountTransfer, error) {
	t := &models.AccountTransfer{}
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.AccountFromID,
		&t.AccountToID,
		&t.Amount,
		&t.ConvertedAmount,
		&t.Date,
		&t.Description,
		&t.CreatedAt,
	)
	return t, err
}

func collectTransfers(rows pgx.Rows) ([]models.AccountTransfer, error) {
	defer rows.Close()
	var transfers []models.AccountTransfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, *t)
	}
	return transfers, rows.Err()
}

func CreateTransfer(ctx context.Context, db DBTX, t *models.AccountTransfer) error {
	query := `
		INSERT INTO account_transfers (user_id, account_from_id, account_to_id, amount, converted_amount, date, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := db.QueryRow(ctx, query,
		t.UserID,
		t.AccountFromID,
		t.AccountToID,
		t.Amount,
		t.ConvertedAmount,
		t.Date,
		t.Description).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return dbError(err, "create transfer")
	}
	return nil
}

func GetTransferByID(ctx context.Context, db DBTX, id int) (*models.AccountTransfer, error) {
	query := `SELECT` + transferColumns + ` FROM account_transfers WHERE id = $1`

	t, err := scanTransfer(db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dbError(err, "get transfer %d", id)
	}
	return t, nil
}

func LockTransfer(ctx context.Context, db DBTX, id int) (*models.AccountTransfer, error) {
	query := `SELECT` + transferColumns + ` FROM account_transfers WHERE id = $1 FOR UPDATE`

	t, err := scanTransfer(db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dbError(err, "lock transfer %d", id)
	}
	return t, nil
}

// GetTransfersByAccountID returns every transfer with the account on
// either side, locked.
func GetTransfersByAccountID(ctx context.Context, db DBTX, accountID int) ([]models.AccountTransfer, error) {
	query := `SELECT` + transferColumns + `
		FROM account_transfers
		WHERE account_from_id = $1 OR account_to_id = $1
		ORDER BY id
		FOR UPDATE`

	rows, err := db.Query(ctx, query, accountID)
	if err != nil {
		return nil, dbError(err, "list transfers of account %d", accountID)
	}
	transfers, err := collectTransfers(rows)
	if err != nil {
		return nil, dbError(err, "list transfers of account %d", accountID)
	}
	return transfers, nil
}

func GetTransfers(ctx context.Context, db DBTX, f models.TransferFilter) ([]models.AccountTransfer, error) {
	query := `SELECT` + transferColumns + `
		FROM account_transfers
		WHERE user_id = @user_id
			AND (@account_id::bigint = 0 OR account_from_id = @account_id OR account_to_id = @account_id)
		ORDER BY date DESC, id DESC
		LIMIT @limit OFFSET @offset`

	rows, err := db.Query(ctx, query, pgx.NamedArgs{
		"user_id":    f.UserID,
		"account_id": f.AccountID,
		"limit":      f.Limit,
		"offset":     f.Offset,
	})
	if err != nil {
		return nil, dbError(err, "list transfers")
	}
	transfers, err := collectTransfers(rows)
	if err != nil {
		return nil, dbError(err, "list transfers")
	}
	return transfers, nil
}

func UpdateTransfer(ctx context.Context, db DBTX, t *models.AccountTransfer) error {
	query := `
		UPDATE account_transfers
		SET account_from_id = $1, account_to_id = $2, amount = $3, converted_amount = $4, date = $5, description = $6
		WHERE id = $7`

	tag, err := db.Exec(ctx, query,
		t.AccountFromID,
		t.AccountToID,
		t.Amount,
		t.ConvertedAmount,
		t.Date,
		t.Description,
		t.ID)
	if err != nil {
		return dbError(err, "update transfer %d", t.ID)
	}
	return expectOne(tag, "update transfer %d", t.ID)
}

func DeleteTransfer(ctx context.Context, db DBTX, id int) error {
	tag, err := db.Exec(ctx, `DELETE FROM account_transfers WHERE id = $1`, id)
	if err != nil {
		return dbError(err, "delete transfer %d", id)
	}
	return expectOne(tag, "delete transfer %d", id)
}
