package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/finance-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/finance-ledger/models"
)

// Store is the Postgres ledger.Store. Every atomic scope is one pgx
// transaction at the server's default isolation level; balance updates
// rely on row locks, not on the isolation level.
type Store struct {
	pool *pgxpool.Pool
}

var _ ledger.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) InTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&pgTx{tx: tx})
	})
}

func (s *Store) FindCurrencyByCode(ctx context.Context, code string) (*models.Currency, error) {
	return FindCurrencyByCode(ctx, s.pool, code)
}

func (s *Store) ListCurrencies(ctx context.Context) ([]models.Currency, error) {
	return GetAllCurrencies(ctx, s.pool)
}

func (s *Store) GetAccount(ctx context.Context, id int) (*models.Account, error) {
	return GetAccountByID(ctx, s.pool, id)
}

func (s *Store) ListAccounts(ctx context.Context, userID int) ([]models.Account, error) {
	return GetAccountsByUserID(ctx, s.pool, userID)
}

func (s *Store) GetCategory(ctx context.Context, id int) (*models.Category, error) {
	return GetCategoryByID(ctx, s.pool, id)
}

func (s *Store) ListCategories(ctx context.Context, userID int) ([]models.Category, error) {
	return GetCategoriesByUserID(ctx, s.pool, userID)
}

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	return CreateCategory(ctx, s.pool, c)
}

func (s *Store) GetTransaction(ctx context.Context, id int) (*models.Transaction, error) {
	return GetTransactionByID(ctx, s.pool, id)
}

func (s *Store) ListTransactions(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, error) {
	return GetTransactions(ctx, s.pool, f)
}

func (s *Store) SummarizeTransactions(ctx context.Context, f models.TransactionFilter) (models.Summary, error) {
	return GetIncomeExpenseSummary(ctx, s.pool, f)
}

func (s *Store) GetTransfer(ctx context.Context, id int) (*models.AccountTransfer, error) {
	return GetTransferByID(ctx, s.pool, id)
}

func (s *Store) ListTransfers(ctx context.Context, f models.TransferFilter) ([]models.AccountTransfer, error) {
	return GetTransfers(ctx, s.pool, f)
}

func (s *Store) AuditBalances(ctx context.Context, userID int) ([]models.BalanceAudit, error) {
	return AuditBalances(ctx, s.pool, userID)
}

type pgTx struct {
	tx pgx.Tx
}

var _ ledger.Tx = (*pgTx)(nil)

func (t *pgTx) ApplyBalanceDelta(ctx context.Context, accountID int, delta decimal.Decimal) (decimal.Decimal, error) {
	return ApplyBalanceDelta(ctx, t.tx, accountID, delta)
}

func (t *pgTx) LockAccounts(ctx context.Context, ids ...int) error {
	return LockAccounts(ctx, t.tx, ids...)
}

func (t *pgTx) GetAccount(ctx context.Context, id int) (*models.Account, error) {
	return GetAccountByID(ctx, t.tx, id)
}

func (t *pgTx) CreateAccount(ctx context.Context, a *models.Account) error {
	return CreateAccount(ctx, t.tx, a)
}

func (t *pgTx) UpdateAccount(ctx context.Context, a *models.Account) error {
	return UpdateAccount(ctx, t.tx, a)
}

func (t *pgTx) SoftDeleteAccount(ctx context.Context, id int) error {
	return SoftDeleteAccount(ctx, t.tx, id)
}

func (t *pgTx) DeleteAccount(ctx context.Context, id int) error {
	return DeleteAccount(ctx, t.tx, id)
}

func (t *pgTx) GetCategory(ctx context.Context, id int) (*models.Category, error) {
	return ShareCategory(ctx, t.tx, id)
}

func (t *pgTx) LockCategory(ctx context.Context, id int) (*models.Category, error) {
	return LockCategory(ctx, t.tx, id)
}

func (t *pgTx) UpdateCategory(ctx context.Context, c *models.Category) error {
	return UpdateCategory(ctx, t.tx, c)
}

func (t *pgTx) DeleteCategory(ctx context.Context, id int) error {
	return DeleteCategory(ctx, t.tx, id)
}

func (t *pgTx) LockTransaction(ctx context.Context, id int) (*models.Transaction, error) {
	return LockTransaction(ctx, t.tx, id)
}

func (t *pgTx) CreateTransaction(ctx context.Context, tr *models.Transaction) error {
	return CreateTransaction(ctx, t.tx, tr)
}

func (t *pgTx) UpdateTransaction(ctx context.Context, tr *models.Transaction) error {
	return UpdateTransaction(ctx, t.tx, tr)
}

func (t *pgTx) DeleteTransaction(ctx context.Context, id int) error {
	return DeleteTransaction(ctx, t.tx, id)
}

func (t *pgTx) DeleteTransactionsByAccount(ctx context.Context, accountID int) (int64, error) {
	return DeleteTransactionsByAccountID(ctx, t.tx, accountID)
}

func (t *pgTx) TransactionsByCategory(ctx context.Context, categoryID int) ([]models.Transaction, error) {
	return LockTransactionsByCategoryID(ctx, t.tx, categoryID)
}

func (t *pgTx) LockTransfer(ctx context.Context, id int) (*models.AccountTransfer, error) {
	return LockTransfer(ctx, t.tx, id)
}

func (t *pgTx) TransfersByAccount(ctx context.Context, accountID int) ([]models.AccountTransfer, error) {
	return GetTransfersByAccountID(ctx, t.tx, accountID)
}

func (t *pgTx) CreateTransfer(ctx context.Context, tr *models.AccountTransfer) error {
	return CreateTransfer(ctx, t.tx, tr)
}

func (t *pgTx) UpdateTransfer(ctx context.Context, tr *models.AccountTransfer) error {
	return UpdateTransfer(ctx, t.tx, tr)
}

func (t *pgTx) DeleteTransfer(ctx context.Context, id int) error {
	return DeleteTransfer(ctx, t.tx, id)
}
