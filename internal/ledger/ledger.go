package ledger

import (
	"context"
	"fmt"

	"github.com/valeriaulyamaeva/finance-ledger/internal/logger"
	"github.com/valeriaulyamaeva/finance-ledger/models"
)

// Ledger bundles the lifecycle services over one Store.
type Ledger struct {
	Accounts     *AccountService
	Categories   *CategoryService
	Transactions *TransactionService
	Transfers    *TransferService

	store Store
}

func New(store Store) *Ledger {
	return &Ledger{
		Accounts:     NewAccountService(store, store),
		Categories:   NewCategoryService(store),
		Transactions: NewTransactionService(store, store),
		Transfers:    NewTransferService(store),
		store:        store,
	}
}

func (l *Ledger) Store() Store {
	return l.store
}

// Audit compares stored balances with balances recomputed from history.
// Drifted accounts are logged at warn level. It never rewrites a balance.
func (l *Ledger) Audit(ctx context.Context, userID int) ([]models.BalanceAudit, error) {
	audits, err := l.store.AuditBalances(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("audit balances: %w", err)
	}

	log := logger.FromContext(ctx)
	drifted := 0
	for _, a := range audits {
		if a.Consistent() {
			continue
		}
		drifted++
		log.Warn().
			Int("account_id", a.AccountID).
			Str("stored", a.Stored.String()).
			Str("expected", a.Expected.String()).
			Str("drift", a.Drift().String()).
			Msg("balance drift detected")
	}
	log.Info().Int("accounts", len(audits)).Int("drifted", drifted).Msg("balance audit finished")
	return audits, nil
}
