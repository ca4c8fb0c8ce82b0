package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/finance-ledger/internal/logger"
)

// applyDelta books delta on the account within tx. Zero deltas are skipped.
func applyDelta(ctx context.Context, tx Tx, accountID int, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	balance, err := tx.ApplyBalanceDelta(ctx, accountID, delta)
	if err != nil {
		return fmt.Errorf("apply %s to account %d: %w", delta, accountID, err)
	}
	log := logger.FromContext(ctx)
	log.Debug().
		Int("account_id", accountID).
		Str("delta", delta.String()).
		Str("balance", balance.String()).
		Msg("balance updated")
	return nil
}
