package ledger

import (
	"context"
	"fmt"

	"github.com/valeriaulyamaeva/finance-ledger/models"
)

type TransactionService struct {
	store      Store
	currencies CurrencyLookup
}

func NewTransactionService(store Store, currencies CurrencyLookup) *TransactionService {
	return &TransactionService{store: store, currencies: currencies}
}

// Create books a new transaction and applies its signed amount to the account.
func (s *TransactionService) Create(ctx context.Context, dto models.TransactionDTO) (*models.Transaction, error) {
	currency, err := s.currencies.FindCurrencyByCode(ctx, dto.Currency)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	tr := &models.Transaction{
		UserID:       dto.UserID,
		AccountID:    dto.AccountID,
		CategoryID:   dto.CategoryID,
		CurrencyID:   currency.ID,
		CurrencyCode: currency.Code,
		Amount:       dto.Amount,
		Date:         dto.Date,
		Description:  dto.Description,
	}

	err = s.store.InTx(ctx, func(tx Tx) error {
		category, err := tx.GetCategory(ctx, dto.CategoryID)
		if err != nil {
			return err
		}
		tr.CategoryType = category.Type

		if err := tx.CreateTransaction(ctx, tr); err != nil {
			return err
		}
		return applyDelta(ctx, tx, tr.AccountID, tr.Effect(category.Type))
	})
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return tr, nil
}

// Update rewrites every field of the transaction from dto and corrects the
// balances it touched. The previous effect is reversed with the sign of the
// previous category and the new one applied with the sign of the new category.
func (s *TransactionService) Update(ctx context.Context, existing *models.Transaction, dto models.TransactionDTO) (*models.Transaction, error) {
	currency, err := s.currencies.FindCurrencyByCode(ctx, dto.Currency)
	if err != nil {
		return nil, fmt.Errorf("update transaction %d: %w", existing.ID, err)
	}

	var updated models.Transaction
	err = s.store.InTx(ctx, func(tx Tx) error {
		old, err := tx.LockTransaction(ctx, existing.ID)
		if err != nil {
			return err
		}
		oldCategory, err := tx.GetCategory(ctx, old.CategoryID)
		if err != nil {
			return err
		}
		newCategory, err := tx.GetCategory(ctx, dto.CategoryID)
		if err != nil {
			return err
		}
		if err := tx.LockAccounts(ctx, old.AccountID, dto.AccountID); err != nil {
			return err
		}

		updated = *old
		updated.AccountID = dto.AccountID
		updated.CategoryID = newCategory.ID
		updated.CategoryType = newCategory.Type
		updated.CurrencyID = currency.ID
		updated.CurrencyCode = currency.Code
		updated.Amount = dto.Amount
		updated.Date = dto.Date
		updated.Description = dto.Description
		if err := tx.UpdateTransaction(ctx, &updated); err != nil {
			return err
		}

		oldEffect := old.Effect(oldCategory.Type)
		newEffect := updated.Effect(newCategory.Type)
		if old.AccountID == updated.AccountID {
			return applyDelta(ctx, tx, updated.AccountID, newEffect.Sub(oldEffect))
		}
		if err := applyDelta(ctx, tx, old.AccountID, oldEffect.Neg()); err != nil {
			return err
		}
		return applyDelta(ctx, tx, updated.AccountID, newEffect)
	})
	if err != nil {
		return nil, fmt.Errorf("update transaction %d: %w", existing.ID, err)
	}
	return &updated, nil
}

// Delete reverses the transaction's effect and removes it.
func (s *TransactionService) Delete(ctx context.Context, existing *models.Transaction) error {
	err := s.store.InTx(ctx, func(tx Tx) error {
		old, err := tx.LockTransaction(ctx, existing.ID)
		if err != nil {
			return err
		}
		category, err := tx.GetCategory(ctx, old.CategoryID)
		if err != nil {
			return err
		}
		if err := applyDelta(ctx, tx, old.AccountID, old.Effect(category.Type).Neg()); err != nil {
			return err
		}
		return tx.DeleteTransaction(ctx, old.ID)
	})
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", existing.ID, err)
	}
	return nil
}

func (s *TransactionService) Get(ctx context.Context, id int) (*models.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// List returns one page of transactions and whether another page follows.
func (s *TransactionService) List(ctx context.Context, f models.TransactionFilter, page, perPage int) ([]models.Transaction, bool, error) {
	page, perPage = normalizePage(page, perPage)
	f.Offset = (page - 1) * perPage
	f.Limit = perPage + 1
	items, err := s.store.ListTransactions(ctx, f)
	if err != nil {
		return nil, false, fmt.Errorf("list transactions: %w", err)
	}
	items, more := trimPage(items, perPage)
	return items, more, nil
}

// Summary totals income and expense transactions matching f.
// Limit and Offset are ignored.
func (s *TransactionService) Summary(ctx context.Context, f models.TransactionFilter) (models.Summary, error) {
	sum, err := s.store.SummarizeTransactions(ctx, f)
	if err != nil {
		return models.Summary{}, fmt.Errorf("summarize transactions: %w", err)
	}
	return sum, nil
}
