package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/finance-ledger/internal/logger"
	"github.com/valeriaulyamaeva/finance-ledger/models"
)

type CategoryService struct {
	store Store
}

func NewCategoryService(store Store) *CategoryService {
	return &CategoryService{store: store}
}

func (s *CategoryService) Create(ctx context.Context, category *models.Category) error {
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// Update rewrites title, type and color. When the type flips, every account
// holding transactions of the category is rebalanced in the same scope:
// each transaction's effect changes sign, so the account moves by twice the
// amount.
func (s *CategoryService) Update(ctx context.Context, category *models.Category, title string, typ models.CategoryType, color string) (*models.Category, error) {
	var updated models.Category
	err := s.store.InTx(ctx, func(tx Tx) error {
		old, err := tx.LockCategory(ctx, category.ID)
		if err != nil {
			return err
		}
		updated = *old
		updated.Title = title
		updated.Type = typ
		updated.Color = color

		if old.Type != typ {
			transactions, err := tx.TransactionsByCategory(ctx, old.ID)
			if err != nil {
				return err
			}
			deltas := map[int]decimal.Decimal{}
			ids := make([]int, 0, len(transactions))
			for _, t := range transactions {
				if _, ok := deltas[t.AccountID]; !ok {
					ids = append(ids, t.AccountID)
				}
				deltas[t.AccountID] = deltas[t.AccountID].Add(t.Effect(typ).Sub(t.Effect(old.Type)))
			}
			if err := tx.LockAccounts(ctx, ids...); err != nil {
				return err
			}
			for _, id := range ids {
				if err := applyDelta(ctx, tx, id, deltas[id]); err != nil {
					return err
				}
			}
			log := logger.FromContext(ctx)
			log.Debug().
				Int("category_id", old.ID).
				Str("type", string(typ)).
				Int("transactions", len(transactions)).
				Int("accounts", len(ids)).
				Msg("category type changed")
		}
		return tx.UpdateCategory(ctx, &updated)
	})
	if err != nil {
		return nil, fmt.Errorf("update category %d: %w", category.ID, err)
	}
	return &updated, nil
}

// Delete removes a category that no transaction references.
func (s *CategoryService) Delete(ctx context.Context, category *models.Category) error {
	err := s.store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.LockCategory(ctx, category.ID); err != nil {
			return err
		}
		transactions, err := tx.TransactionsByCategory(ctx, category.ID)
		if err != nil {
			return err
		}
		if len(transactions) > 0 {
			return fmt.Errorf("%w: %d transactions", ErrCategoryInUse, len(transactions))
		}
		return tx.DeleteCategory(ctx, category.ID)
	})
	if err != nil {
		return fmt.Errorf("delete category %d: %w", category.ID, err)
	}
	return nil
}

func (s *CategoryService) Get(ctx context.Context, id int) (*models.Category, error) {
	return s.store.GetCategory(ctx, id)
}

func (s *CategoryService) List(ctx context.Context, userID int) ([]models.Category, error) {
	return s.store.ListCategories(ctx, userID)
}
