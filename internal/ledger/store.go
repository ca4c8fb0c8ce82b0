// Package ledger keeps account balances consistent with the transactions
// and transfers booked against them.
//
// Every mutating operation runs inside a single atomic scope obtained from
// Store.InTx: the row change and all balance corrections commit together or
// not at all. Authorization and input validation happen before the services
// in this package are called.
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/finance-ledger/models"
)

// CurrencyLookup resolves ISO currency codes to reference rows.
type CurrencyLookup interface {
	FindCurrencyByCode(ctx context.Context, code string) (*models.Currency, error)
}

// Tx is the set of operations available inside an atomic scope.
// Lookups return errors wrapping ErrNotFound for unknown ids.
type Tx interface {
	// ApplyBalanceDelta atomically adds delta to the account balance and
	// returns the new balance. It does not commit on its own.
	ApplyBalanceDelta(ctx context.Context, accountID int, delta decimal.Decimal) (decimal.Decimal, error)
	// LockAccounts takes row locks on the given accounts in id order.
	LockAccounts(ctx context.Context, ids ...int) error

	GetAccount(ctx context.Context, id int) (*models.Account, error)
	CreateAccount(ctx context.Context, a *models.Account) error
	UpdateAccount(ctx context.Context, a *models.Account) error
	SoftDeleteAccount(ctx context.Context, id int) error
	DeleteAccount(ctx context.Context, id int) error

	// GetCategory holds a shared lock until the scope ends, so the type
	// read stays valid for the balance change computed from it.
	GetCategory(ctx context.Context, id int) (*models.Category, error)
	// LockCategory holds an exclusive lock until the scope ends.
	LockCategory(ctx context.Context, id int) (*models.Category, error)
	UpdateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id int) error

	LockTransaction(ctx context.Context, id int) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, t *models.Transaction) error
	UpdateTransaction(ctx context.Context, t *models.Transaction) error
	DeleteTransaction(ctx context.Context, id int) error
	DeleteTransactionsByAccount(ctx context.Context, accountID int) (int64, error)
	// TransactionsByCategory returns, locked, every transaction booked
	// under the category.
	TransactionsByCategory(ctx context.Context, categoryID int) ([]models.Transaction, error)

	LockTransfer(ctx context.Context, id int) (*models.AccountTransfer, error)
	TransfersByAccount(ctx context.Context, accountID int) ([]models.AccountTransfer, error)
	CreateTransfer(ctx context.Context, t *models.AccountTransfer) error
	UpdateTransfer(ctx context.Context, t *models.AccountTransfer) error
	DeleteTransfer(ctx context.Context, id int) error
}

// Reader serves queries that need no atomic scope.
type Reader interface {
	GetAccount(ctx context.Context, id int) (*models.Account, error)
	ListAccounts(ctx context.Context, userID int) ([]models.Account, error)

	GetCategory(ctx context.Context, id int) (*models.Category, error)
	ListCategories(ctx context.Context, userID int) ([]models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error

	ListCurrencies(ctx context.Context) ([]models.Currency, error)

	GetTransaction(ctx context.Context, id int) (*models.Transaction, error)
	ListTransactions(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, error)
	SummarizeTransactions(ctx context.Context, f models.TransactionFilter) (models.Summary, error)

	GetTransfer(ctx context.Context, id int) (*models.AccountTransfer, error)
	ListTransfers(ctx context.Context, f models.TransferFilter) ([]models.AccountTransfer, error)

	// AuditBalances recomputes account balances from history. A zero
	// userID audits every account.
	AuditBalances(ctx context.Context, userID int) ([]models.BalanceAudit, error)
}

type Store interface {
	Reader
	CurrencyLookup
	// InTx runs fn in one atomic scope. A non-nil error from fn rolls back
	// everything done through tx.
	InTx(ctx context.Context, fn func(tx Tx) error) error
}
