package ledger

import (
	"context"
	"fmt"

	"github.com/valeriaulyamaeva/finance-ledger/models"
)

type TransferService struct {
	store Store
}

func NewTransferService(store Store) *TransferService {
	return &TransferService{store: store}
}

// Create books draft as a transfer from accountFrom to accountTo: the amount
// leaves accountFrom and the converted amount lands on accountTo. The
// converted amount is taken as given.
func (s *TransferService) Create(ctx context.Context, accountFrom, accountTo *models.Account, draft *models.AccountTransfer) (*models.AccountTransfer, error) {
	transfer := *draft
	transfer.AccountFromID = accountFrom.ID
	transfer.AccountToID = accountTo.ID

	err := s.store.InTx(ctx, func(tx Tx) error {
		if err := tx.LockAccounts(ctx, accountFrom.ID, accountTo.ID); err != nil {
			return err
		}
		if err := tx.CreateTransfer(ctx, &transfer); err != nil {
			return err
		}
		if err := applyDelta(ctx, tx, transfer.AccountFromID, transfer.Amount.Neg()); err != nil {
			return err
		}
		return applyDelta(ctx, tx, transfer.AccountToID, transfer.ConvertedAmount)
	})
	if err != nil {
		return nil, fmt.Errorf("create transfer %d -> %d: %w", accountFrom.ID, accountTo.ID, err)
	}
	return &transfer, nil
}

// Delete reverses both legs of the transfer and removes it.
func (s *TransferService) Delete(ctx context.Context, transfer *models.AccountTransfer) error {
	err := s.store.InTx(ctx, func(tx Tx) error {
		old, err := tx.LockTransfer(ctx, transfer.ID)
		if err != nil {
			return err
		}
		if err := tx.LockAccounts(ctx, old.AccountFromID, old.AccountToID); err != nil {
			return err
		}
		if err := applyDelta(ctx, tx, old.AccountFromID, old.Amount); err != nil {
			return err
		}
		if err := applyDelta(ctx, tx, old.AccountToID, old.ConvertedAmount.Neg()); err != nil {
			return err
		}
		return tx.DeleteTransfer(ctx, old.ID)
	})
	if err != nil {
		return fmt.Errorf("delete transfer %d: %w", transfer.ID, err)
	}
	return nil
}

// Update rewrites the transfer from dto. Each leg whose account is kept gets
// the net difference; a leg moved to another account is fully reversed on
// the old account and fully applied on the new one.
func (s *TransferService) Update(ctx context.Context, transfer *models.AccountTransfer, dto models.AccountTransferDTO) (*models.AccountTransfer, error) {
	var updated models.AccountTransfer
	err := s.store.InTx(ctx, func(tx Tx) error {
		old, err := tx.LockTransfer(ctx, transfer.ID)
		if err != nil {
			return err
		}
		err = tx.LockAccounts(ctx, old.AccountFromID, old.AccountToID, dto.AccountFromID, dto.AccountToID)
		if err != nil {
			return err
		}

		amountDifference := dto.Amount.Sub(old.Amount)
		convertedDifference := dto.ConvertedAmount.Sub(old.ConvertedAmount)

		updated = *old
		updated.AccountFromID = dto.AccountFromID
		updated.AccountToID = dto.AccountToID
		updated.Amount = dto.Amount
		updated.ConvertedAmount = dto.ConvertedAmount
		updated.Date = dto.Date
		updated.Description = dto.Description
		if err := tx.UpdateTransfer(ctx, &updated); err != nil {
			return err
		}

		if updated.AccountFromID == old.AccountFromID {
			if err := applyDelta(ctx, tx, old.AccountFromID, amountDifference.Neg()); err != nil {
				return err
			}
		} else {
			if err := applyDelta(ctx, tx, old.AccountFromID, old.Amount); err != nil {
				return err
			}
			if err := applyDelta(ctx, tx, updated.AccountFromID, updated.Amount.Neg()); err != nil {
				return err
			}
		}

		if updated.AccountToID == old.AccountToID {
			return applyDelta(ctx, tx, old.AccountToID, convertedDifference)
		}
		if err := applyDelta(ctx, tx, old.AccountToID, old.ConvertedAmount.Neg()); err != nil {
			return err
		}
		return applyDelta(ctx, tx, updated.AccountToID, updated.ConvertedAmount)
	})
	if err != nil {
		return nil, fmt.Errorf("update transfer %d: %w", transfer.ID, err)
	}
	return &updated, nil
}

func (s *TransferService) Get(ctx context.Context, id int) (*models.AccountTransfer, error) {
	return s.store.GetTransfer(ctx, id)
}

// List returns one page of transfers, newest first, and whether another
// page follows.
func (s *TransferService) List(ctx context.Context, f models.TransferFilter, page, perPage int) ([]models.AccountTransfer, bool, error) {
	page, perPage = normalizePage(page, perPage)
	f.Offset = (page - 1) * perPage
	f.Limit = perPage + 1
	items, err := s.store.ListTransfers(ctx, f)
	if err != nil {
		return nil, false, fmt.Errorf("list transfers: %w", err)
	}
	items, more := trimPage(items, perPage)
	return items, more, nil
}
