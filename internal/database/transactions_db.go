package database

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/valeriaulyamaeva/finance-ledger/models"
)

const transactionColumns = `
	t.id, t.user_id, t.account_id, t.category_id, c.type, t.currency_id,
	cur.code, t.amount, t.date, t.description, t.created_at`

const transactionFrom = `
	FROM transactions t
	JOIN categories c ON c.id = t.category_id
	JOIN currencies cur ON cur.id = t.currency_id`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.AccountID,
		&t.CategoryID,
		&t.CategoryType,
		&t.CurrencyID,
		&t.CurrencyCode,
		&t.Amount,
		&t.Date,
		&t.Description,
		&t.CreatedAt,
	)
	return t, err
}

func CreateTransaction(ctx context.Context, db DBTX, transaction *models.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, account_id, category_id, currency_id, amount, date, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := db.QueryRow(ctx, query,
		transaction.UserID,
		transaction.AccountID,
		transaction.CategoryID,
		transaction.CurrencyID,
		transaction.Amount,
		transaction.Date,
		transaction.Description).Scan(&transaction.ID, &transaction.CreatedAt)
	if err != nil {
		return dbError(err, "create transaction")
	}
	return nil
}

func GetTransactionByID(ctx context.Context, db DBTX, transactionID int) (*models.Transaction, error) {
	query := `SELECT` + transactionColumns + transactionFrom + ` WHERE t.id = $1`

	t, err := scanTransaction(db.QueryRow(ctx, query, transactionID))
	if err != nil {
		return nil, dbError(err, "get transaction %d", transactionID)
	}
	return t, nil
}

// LockTransaction reads the transaction and holds its row lock until the
// surrounding transaction ends.
func LockTransaction(ctx context.Context, db DBTX, transactionID int) (*models.Transaction, error) {
	query := `SELECT` + transactionColumns + transactionFrom + ` WHERE t.id = $1 FOR UPDATE OF t`

	t, err := scanTransaction(db.QueryRow(ctx, query, transactionID))
	if err != nil {
		return nil, dbError(err, "lock transaction %d", transactionID)
	}
	return t, nil
}

func UpdateTransaction(ctx context.Context, db DBTX, transaction *models.Transaction) error {
	query := `
		UPDATE transactions
		SET account_id = $1, category_id = $2, currency_id = $3, amount = $4, date = $5, description = $6
		WHERE id = $7`

	tag, err := db.Exec(ctx, query,
		transaction.AccountID,
		transaction.CategoryID,
		transaction.CurrencyID,
		transaction.Amount,
		transaction.Date,
		transaction.Description,
		transaction.ID)
	if err != nil {
		return dbError(err, "update transaction %d", transaction.ID)
	}
	return expectOne(tag, "update transaction %d", transaction.ID)
}

func DeleteTransaction(ctx context.Context, db DBTX, transactionID int) error {
	tag, err := db.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, transactionID)
	if err != nil {
		return dbError(err, "delete transaction %d", transactionID)
	}
	return expectOne(tag, "delete transaction %d", transactionID)
}

func DeleteTransactionsByAccountID(ctx context.Context, db DBTX, accountID int) (int64, error) {
	tag, err := db.Exec(ctx, `DELETE FROM transactions WHERE account_id = $1`, accountID)
	if err != nil {
		return 0, dbError(err, "delete transactions of account %d", accountID)
	}
	return tag.RowsAffected(), nil
}

// LockTransactionsByCategoryID locks every transaction booked under the
// category, in id order.
func LockTransactionsByCategoryID(ctx context.Context, db DBTX, categoryID int) ([]models.Transaction, error) {
	query := `SELECT` + transactionColumns + transactionFrom + `
		WHERE t.category_id = $1
		ORDER BY t.id
		FOR UPDATE OF t`

	rows, err := db.Query(ctx, query, categoryID)
	if err != nil {
		return nil, dbError(err, "lock transactions of category %d", categoryID)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, dbError(err, "scan transaction")
		}
		transactions = append(transactions, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "lock transactions of category %d", categoryID)
	}
	return transactions, nil
}

// transactionWhere renders the filter as a WHERE clause with named arguments.
func transactionWhere(f models.TransactionFilter) (string, pgx.NamedArgs) {
	conds := []string{"t.user_id = @user_id"}
	args := pgx.NamedArgs{"user_id": f.UserID}

	if f.Type != "" {
		conds = append(conds, "c.type = @type")
		args["type"] = f.Type
	}
	if f.CategoryID != 0 {
		conds = append(conds, "t.category_id = @category_id")
		args["category_id"] = f.CategoryID
	}
	if f.AccountID != 0 {
		conds = append(conds, "t.account_id = @account_id")
		args["account_id"] = f.AccountID
	}
	if f.DateFrom != nil {
		conds = append(conds, "t.date >= @date_from")
		args["date_from"] = *f.DateFrom
	}
	if f.DateTo != nil {
		conds = append(conds, "t.date <= @date_to")
		args["date_to"] = *f.DateTo
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func GetTransactions(ctx context.Context, db DBTX, f models.TransactionFilter) ([]models.Transaction, error) {
	where, args := transactionWhere(f)
	query := `SELECT` + transactionColumns + transactionFrom + where + `
		ORDER BY t.date DESC, t.id DESC
		LIMIT @limit OFFSET @offset`
	args["limit"] = f.Limit
	args["offset"] = f.Offset

	rows, err := db.Query(ctx, query, args)
	if err != nil {
		return nil, dbError(err, "list transactions")
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, dbError(err, "scan transaction")
		}
		transactions = append(transactions, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "list transactions")
	}
	return transactions, nil
}

func GetIncomeExpenseSummary(ctx context.Context, db DBTX, f models.TransactionFilter) (models.Summary, error) {
	where, args := transactionWhere(f)
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN c.type = 'income' THEN t.amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN c.type = 'expense' THEN t.amount ELSE 0 END), 0)` +
		transactionFrom + where

	var sum models.Summary
	if err := db.QueryRow(ctx, query, args).Scan(&sum.Income, &sum.Expense); err != nil {
		return models.Summary{}, dbError(err, "summarize transactions")
	}
	return sum, nil
}
