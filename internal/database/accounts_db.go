package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/finance-ledger/models"
)

const accountColumns = `
	a.id, a.user_id, a.title, a.currency_id, cur.code, a.balance,
	a.opening_balance, a.color, a.active, a.deleted_at, a.created_at`

const accountFrom = `
	FROM accounts a
	JOIN currencies cur ON cur.id = a.currency_id`

func scanAccount(row pgx.Row) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Title,
		&a.CurrencyID,
		&a.CurrencyCode,
		&a.Balance,
		&a.OpeningBalance,
		&a.Color,
		&a.Active,
		&a.DeletedAt,
		&a.CreatedAt,
	)
	return a, err
}

// ApplyBalanceDelta adds delta to the account balance in a single statement,
// so concurrent writers cannot lose each other's updates. The row stays
// locked until the surrounding transaction ends.
func ApplyBalanceDelta(ctx context.Context, db DBTX, accountID int, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $1
		WHERE id = $2
		RETURNING balance`

	var balance decimal.Decimal
	if err := db.QueryRow(ctx, query, delta, accountID).Scan(&balance); err != nil {
		return decimal.Zero, dbError(err, "apply balance delta to account %d", accountID)
	}
	return balance, nil
}

// LockAccounts locks the account rows in id order, which keeps concurrent
// multi-account operations from deadlocking.
func LockAccounts(ctx context.Context, db DBTX, ids ...int) error {
	ids = uniqueIDs(ids)
	query := `SELECT id FROM accounts WHERE id = ANY($1) ORDER BY id FOR UPDATE`

	rows, err := db.Query(ctx, query, ids)
	if err != nil {
		return dbError(err, "lock accounts %v", ids)
	}
	locked, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return dbError(err, "lock accounts %v", ids)
	}
	if len(locked) != len(ids) {
		return dbError(pgx.ErrNoRows, "lock accounts %v", ids)
	}
	return nil
}

func CreateAccount(ctx context.Context, db DBTX, a *models.Account) error {
	query := `
		INSERT INTO accounts (user_id, title, currency_id, balance, opening_balance, color, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := db.QueryRow(ctx, query,
		a.UserID,
		a.Title,
		a.CurrencyID,
		a.Balance,
		a.OpeningBalance,
		a.Color,
		a.Active).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return dbError(err, "create account")
	}
	return nil
}

// GetAccountByID also returns soft-deleted accounts.
func GetAccountByID(ctx context.Context, db DBTX, id int) (*models.Account, error) {
	query := `SELECT` + accountColumns + accountFrom + ` WHERE a.id = $1`

	a, err := scanAccount(db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dbError(err, "get account %d", id)
	}
	return a, nil
}

func GetAccountsByUserID(ctx context.Context, db DBTX, userID int) ([]models.Account, error) {
	query := `SELECT` + accountColumns + accountFrom + `
		WHERE a.user_id = $1 AND a.deleted_at IS NULL
		ORDER BY a.created_at DESC, a.id DESC`

	rows, err := db.Query(ctx, query, userID)
	if err != nil {
		return nil, dbError(err, "list accounts of user %d", userID)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, dbError(err, "scan account")
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "list accounts of user %d", userID)
	}
	return accounts, nil
}

// UpdateAccount writes descriptive fields and the active flag; the balance
// only changes through ApplyBalanceDelta.
func UpdateAccount(ctx context.Context, db DBTX, a *models.Account) error {
	query := `
		UPDATE accounts
		SET title = $1, color = $2, currency_id = $3, active = $4
		WHERE id = $5`

	tag, err := db.Exec(ctx, query, a.Title, a.Color, a.CurrencyID, a.Active, a.ID)
	if err != nil {
		return dbError(err, "update account %d", a.ID)
	}
	return expectOne(tag, "update account %d", a.ID)
}

func SoftDeleteAccount(ctx context.Context, db DBTX, id int) error {
	tag, err := db.Exec(ctx, `UPDATE accounts SET deleted_at = now() WHERE id = $1`, id)
	if err != nil {
		return dbError(err, "soft delete account %d", id)
	}
	return expectOne(tag, "soft delete account %d", id)
}

func DeleteAccount(ctx context.Context, db DBTX, id int) error {
	tag, err := db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return dbError(err, "delete account %d", id)
	}
	return expectOne(tag, "delete account %d", id)
}

// AuditBalances recomputes every balance from the opening balance and the
// account history. A zero userID covers all users.
func AuditBalances(ctx context.Context, db DBTX, userID int) ([]models.BalanceAudit, error) {
	query := `
		SELECT a.id, a.title, cur.code, a.balance,
			a.opening_balance
			+ COALESCE((
				SELECT SUM(CASE WHEN c.type = 'income' THEN t.amount ELSE -t.amount END)
				FROM transactions t
				JOIN categories c ON c.id = t.category_id
				WHERE t.account_id = a.id), 0)
			- COALESCE((
				SELECT SUM(tr.amount) FROM account_transfers tr
				WHERE tr.account_from_id = a.id), 0)
			+ COALESCE((
				SELECT SUM(tr.converted_amount) FROM account_transfers tr
				WHERE tr.account_to_id = a.id), 0)
		FROM accounts a
		JOIN currencies cur ON cur.id = a.currency_id
		WHERE $1::bigint = 0 OR a.user_id = $1
		ORDER BY a.id`

	rows, err := db.Query(ctx, query, userID)
	if err != nil {
		return nil, dbError(err, "audit balances")
	}
	defer rows.Close()

	var audits []models.BalanceAudit
	for rows.Next() {
		var a models.BalanceAudit
		if err := rows.Scan(&a.AccountID, &a.Title, &a.CurrencyCode, &a.Stored, &a.Expected); err != nil {
			return nil, dbError(err, "scan balance audit")
		}
		audits = append(audits, a)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "audit balances")
	}
	return audits, nil
}

func uniqueIDs(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
