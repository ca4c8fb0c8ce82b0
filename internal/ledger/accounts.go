package ledger

import (
	"context"
	"fmt"

	"github.com/valeriaulyamaeva/finance-ledger/internal/logger"
	"github.com/valeriaulyamaeva/finance-ledger/models"
)

type DeleteMode string

const (
	// DeleteModeCascade removes the account together with every transaction
	// and transfer referencing it.
	DeleteModeCascade DeleteMode = "delete_all"
	// DeleteModeAccountOnly soft-deletes the account and keeps its history.
	DeleteModeAccountOnly DeleteMode = "delete_account"
)

func (m DeleteMode) Valid() bool {
	return m == DeleteModeCascade || m == DeleteModeAccountOnly
}

type AccountService struct {
	store      Store
	currencies CurrencyLookup
}

func NewAccountService(store Store, currencies CurrencyLookup) *AccountService {
	return &AccountService{store: store, currencies: currencies}
}

// Create opens an active account whose opening balance is dto.Balance.
func (s *AccountService) Create(ctx context.Context, dto models.AccountDTO) (*models.Account, error) {
	currency, err := s.currencies.FindCurrencyByCode(ctx, dto.Currency)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	account := &models.Account{
		UserID:         dto.UserID,
		Title:          dto.Title,
		CurrencyID:     currency.ID,
		CurrencyCode:   currency.Code,
		Balance:        dto.Balance,
		OpeningBalance: dto.Balance,
		Color:          dto.Color,
		Active:         true,
	}
	err = s.store.InTx(ctx, func(tx Tx) error {
		return tx.CreateAccount(ctx, account)
	})
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return account, nil
}

// Update changes the descriptive fields of the account. The balance is
// never touched here.
func (s *AccountService) Update(ctx context.Context, account *models.Account, dto models.AccountDTO) (*models.Account, error) {
	currency, err := s.currencies.FindCurrencyByCode(ctx, dto.Currency)
	if err != nil {
		return nil, fmt.Errorf("update account %d: %w", account.ID, err)
	}

	var updated *models.Account
	err = s.store.InTx(ctx, func(tx Tx) error {
		if err := tx.LockAccounts(ctx, account.ID); err != nil {
			return err
		}
		a, err := tx.GetAccount(ctx, account.ID)
		if err != nil {
			return err
		}
		a.Title = dto.Title
		a.Color = dto.Color
		a.CurrencyID = currency.ID
		a.CurrencyCode = currency.Code
		updated = a
		return tx.UpdateAccount(ctx, a)
	})
	if err != nil {
		return nil, fmt.Errorf("update account %d: %w", account.ID, err)
	}
	return updated, nil
}

// Toggle flips the active flag.
func (s *AccountService) Toggle(ctx context.Context, account *models.Account) (*models.Account, error) {
	var updated *models.Account
	err := s.store.InTx(ctx, func(tx Tx) error {
		if err := tx.LockAccounts(ctx, account.ID); err != nil {
			return err
		}
		a, err := tx.GetAccount(ctx, account.ID)
		if err != nil {
			return err
		}
		a.Active = !a.Active
		updated = a
		return tx.UpdateAccount(ctx, a)
	})
	if err != nil {
		return nil, fmt.Errorf("toggle account %d: %w", account.ID, err)
	}
	return updated, nil
}

// Delete removes the account according to mode. In cascade mode every
// transfer touching the account is reversed on its counterpart account
// before removal, so the counterpart balance stays consistent.
func (s *AccountService) Delete(ctx context.Context, account *models.Account, mode DeleteMode) error {
	if !mode.Valid() {
		return fmt.Errorf("delete account %d: %w: %q", account.ID, ErrInvalidDeleteMode, mode)
	}

	err := s.store.InTx(ctx, func(tx Tx) error {
		if mode == DeleteModeAccountOnly {
			return tx.SoftDeleteAccount(ctx, account.ID)
		}

		transfers, err := tx.TransfersByAccount(ctx, account.ID)
		if err != nil {
			return err
		}
		ids := []int{account.ID}
		for _, t := range transfers {
			ids = append(ids, t.AccountFromID, t.AccountToID)
		}
		if err := tx.LockAccounts(ctx, ids...); err != nil {
			return err
		}

		for _, t := range transfers {
			if t.AccountFromID != account.ID {
				if err := applyDelta(ctx, tx, t.AccountFromID, t.Amount); err != nil {
					return err
				}
			}
			if t.AccountToID != account.ID {
				if err := applyDelta(ctx, tx, t.AccountToID, t.ConvertedAmount.Neg()); err != nil {
					return err
				}
			}
			if err := tx.DeleteTransfer(ctx, t.ID); err != nil {
				return err
			}
		}

		n, err := tx.DeleteTransactionsByAccount(ctx, account.ID)
		if err != nil {
			return err
		}
		log := logger.FromContext(ctx)
		log.Debug().
			Int("account_id", account.ID).
			Int("transfers", len(transfers)).
			Int64("transactions", n).
			Msg("account history removed")

		return tx.DeleteAccount(ctx, account.ID)
	})
	if err != nil {
		return fmt.Errorf("delete account %d: %w", account.ID, err)
	}
	return nil
}

func (s *AccountService) Get(ctx context.Context, id int) (*models.Account, error) {
	return s.store.GetAccount(ctx, id)
}

func (s *AccountService) List(ctx context.Context, userID int) ([]models.Account, error) {
	return s.store.ListAccounts(ctx, userID)
}
