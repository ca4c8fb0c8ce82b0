package memstore

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/finance-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/finance-ledger/models"
)

type memTx struct {
	d     *data
	fault FaultFunc
}

var _ ledger.Tx = (*memTx)(nil)

func (tx *memTx) check(op string, id int) error {
	if tx.fault == nil {
		return nil
	}
	return tx.fault(op, id)
}

func (tx *memTx) ApplyBalanceDelta(_ context.Context, accountID int, delta decimal.Decimal) (decimal.Decimal, error) {
	if err := tx.check("apply_balance_delta", accountID); err != nil {
		return decimal.Zero, err
	}
	a, ok := tx.d.accounts[accountID]
	if !ok {
		return decimal.Zero, notFound("account", accountID)
	}
	a.Balance = a.Balance.Add(delta)
	tx.d.accounts[accountID] = a
	return a.Balance, nil
}

// LockAccounts only verifies existence; the store mutex already
// serializes scopes.
func (tx *memTx) LockAccounts(_ context.Context, ids ...int) error {
	for _, id := range ids {
		if _, ok := tx.d.accounts[id]; !ok {
			return notFound("account", id)
		}
	}
	return nil
}

func (tx *memTx) GetAccount(_ context.Context, id int) (*models.Account, error) {
	return getAccount(tx.d, id)
}

func (tx *memTx) CreateAccount(_ context.Context, a *models.Account) error {
	if err := tx.check("create_account", 0); err != nil {
		return err
	}
	if _, ok := tx.d.currencies[a.CurrencyID]; !ok {
		return notFound("currency", a.CurrencyID)
	}
	a.ID = tx.d.nextID()
	a.CreatedAt = time.Now()
	tx.d.accounts[a.ID] = *a
	return nil
}

// UpdateAccount writes the descriptive fields and the active flag. The
// balance is owned by ApplyBalanceDelta.
func (tx *memTx) UpdateAccount(_ context.Context, a *models.Account) error {
	if err := tx.check("update_account", a.ID); err != nil {
		return err
	}
	cur, ok := tx.d.accounts[a.ID]
	if !ok {
		return notFound("account", a.ID)
	}
	currency, ok := tx.d.currencies[a.CurrencyID]
	if !ok {
		return notFound("currency", a.CurrencyID)
	}
	cur.Title = a.Title
	cur.Color = a.Color
	cur.Active = a.Active
	cur.CurrencyID = currency.ID
	cur.CurrencyCode = currency.Code
	tx.d.accounts[a.ID] = cur
	return nil
}

func (tx *memTx) SoftDeleteAccount(_ context.Context, id int) error {
	if err := tx.check("soft_delete_account", id); err != nil {
		return err
	}
	a, ok := tx.d.accounts[id]
	if !ok {
		return notFound("account", id)
	}
	now := time.Now()
	a.DeletedAt = &now
	tx.d.accounts[id] = a
	return nil
}

func (tx *memTx) DeleteAccount(_ context.Context, id int) error {
	if err := tx.check("delete_account", id); err != nil {
		return err
	}
	if _, ok := tx.d.accounts[id]; !ok {
		return notFound("account", id)
	}
	delete(tx.d.accounts, id)
	return nil
}

func (tx *memTx) GetCategory(_ context.Context, id int) (*models.Category, error) {
	return getCategory(tx.d, id)
}

func (tx *memTx) LockCategory(_ context.Context, id int) (*models.Category, error) {
	return getCategory(tx.d, id)
}

func (tx *memTx) UpdateCategory(_ context.Context, c *models.Category) error {
	if err := tx.check("update_category", c.ID); err != nil {
		return err
	}
	cur, ok := tx.d.categories[c.ID]
	if !ok {
		return notFound("category", c.ID)
	}
	cur.Title = c.Title
	cur.Type = c.Type
	cur.Color = c.Color
	tx.d.categories[c.ID] = cur
	return nil
}

// DeleteCategory refuses while transactions reference the category, like
// the foreign key does in postgres.
func (tx *memTx) DeleteCategory(_ context.Context, id int) error {
	if err := tx.check("delete_category", id); err != nil {
		return err
	}
	if _, ok := tx.d.categories[id]; !ok {
		return notFound("category", id)
	}
	for _, t := range tx.d.transactions {
		if t.CategoryID == id {
			return ledger.ErrCategoryInUse
		}
	}
	delete(tx.d.categories, id)
	return nil
}

func (tx *memTx) LockTransaction(_ context.Context, id int) (*models.Transaction, error) {
	return getTransaction(tx.d, id)
}

func (tx *memTx) checkTransactionRefs(t *models.Transaction) error {
	if _, ok := tx.d.accounts[t.AccountID]; !ok {
		return notFound("account", t.AccountID)
	}
	if _, ok := tx.d.categories[t.CategoryID]; !ok {
		return notFound("category", t.CategoryID)
	}
	if _, ok := tx.d.currencies[t.CurrencyID]; !ok {
		return notFound("currency", t.CurrencyID)
	}
	return nil
}

func (tx *memTx) CreateTransaction(_ context.Context, t *models.Transaction) error {
	if err := tx.check("create_transaction", 0); err != nil {
		return err
	}
	if err := tx.checkTransactionRefs(t); err != nil {
		return err
	}
	t.ID = tx.d.nextID()
	t.CreatedAt = time.Now()
	tx.d.transactions[t.ID] = *t
	return nil
}

func (tx *memTx) UpdateTransaction(_ context.Context, t *models.Transaction) error {
	if err := tx.check("update_transaction", t.ID); err != nil {
		return err
	}
	if _, ok := tx.d.transactions[t.ID]; !ok {
		return notFound("transaction", t.ID)
	}
	if err := tx.checkTransactionRefs(t); err != nil {
		return err
	}
	tx.d.transactions[t.ID] = *t
	return nil
}

func (tx *memTx) DeleteTransaction(_ context.Context, id int) error {
	if err := tx.check("delete_transaction", id); err != nil {
		return err
	}
	if _, ok := tx.d.transactions[id]; !ok {
		return notFound("transaction", id)
	}
	delete(tx.d.transactions, id)
	return nil
}

func (tx *memTx) DeleteTransactionsByAccount(_ context.Context, accountID int) (int64, error) {
	if err := tx.check("delete_transactions_by_account", accountID); err != nil {
		return 0, err
	}
	var n int64
	for id, t := range tx.d.transactions {
		if t.AccountID == accountID {
			delete(tx.d.transactions, id)
			n++
		}
	}
	return n, nil
}

func (tx *memTx) TransactionsByCategory(_ context.Context, categoryID int) ([]models.Transaction, error) {
	var out []models.Transaction
	for id, t := range tx.d.transactions {
		if t.CategoryID == categoryID {
			tr, err := getTransaction(tx.d, id)
			if err != nil {
				return nil, err
			}
			out = append(out, *tr)
		}
	}
	return out, nil
}

func (tx *memTx) LockTransfer(_ context.Context, id int) (*models.AccountTransfer, error) {
	return getTransfer(tx.d, id)
}

func (tx *memTx) TransfersByAccount(_ context.Context, accountID int) ([]models.AccountTransfer, error) {
	var out []models.AccountTransfer
	for _, t := range tx.d.transfers {
		if t.AccountFromID == accountID || t.AccountToID == accountID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (tx *memTx) checkTransferRefs(t *models.AccountTransfer) error {
	if _, ok := tx.d.accounts[t.AccountFromID]; !ok {
		return notFound("account", t.AccountFromID)
	}
	if _, ok := tx.d.accounts[t.AccountToID]; !ok {
		return notFound("account", t.AccountToID)
	}
	return nil
}

func (tx *memTx) CreateTransfer(_ context.Context, t *models.AccountTransfer) error {
	if err := tx.check("create_transfer", 0); err != nil {
		return err
	}
	if err := tx.checkTransferRefs(t); err != nil {
		return err
	}
	t.ID = tx.d.nextID()
	t.CreatedAt = time.Now()
	tx.d.transfers[t.ID] = *t
	return nil
}

func (tx *memTx) UpdateTransfer(_ context.Context, t *models.AccountTransfer) error {
	if err := tx.check("update_transfer", t.ID); err != nil {
		return err
	}
	if _, ok := tx.d.transfers[t.ID]; !ok {
		return notFound("transfer", t.ID)
	}
	if err := tx.checkTransferRefs(t); err != nil {
		return err
	}
	tx.d.transfers[t.ID] = *t
	return nil
}

func (tx *memTx) DeleteTransfer(_ context.Context, id int) error {
	if err := tx.check("delete_transfer", id); err != nil {
		return err
	}
	if _, ok := tx.d.transfers[id]; !ok {
		return notFound("transfer", id)
	}
	delete(tx.d.transfers, id)
	return nil
}
