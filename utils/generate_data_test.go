package utils_test

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valeriaulyamaeva/finance-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/finance-ledger/internal/memstore"
	"github.com/valeriaulyamaeva/finance-ledger/models"
	"github.com/valeriaulyamaeva/finance-ledger/utils"
)

func TestGenerateDemoLedger(t *testing.T) {
	ctx := context.Background()
	l := ledger.New(memstore.New())

	err := utils.GenerateDemoLedger(ctx, gofakeit.New(42), l, 7, utils.DefaultDemoSize)
	require.NoError(t, err)

	accounts, err := l.Accounts.List(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, accounts, utils.DefaultDemoSize.Accounts)

	items, _, err := l.Transactions.List(ctx, models.TransactionFilter{UserID: 7}, 1, 100)
	require.NoError(t, err)
	assert.Len(t, items, utils.DefaultDemoSize.Transactions)

	transfers, _, err := l.Transfers.List(ctx, models.TransferFilter{UserID: 7}, 1, 100)
	require.NoError(t, err)
	assert.Len(t, transfers, utils.DefaultDemoSize.Transfers)
	for _, tr := range transfers {
		assert.NotEqual(t, tr.AccountFromID, tr.AccountToID)
		assert.True(t, tr.Amount.IsPositive())
		assert.True(t, tr.ConvertedAmount.IsPositive())
	}

	audits, err := l.Audit(ctx, 7)
	require.NoError(t, err)
	for _, a := range audits {
		assert.Truef(t, a.Consistent(), "account %d drifted by %s", a.AccountID, a.Drift())
	}
}

func TestGenerateTestTransfers_NeedsTwoAccounts(t *testing.T) {
	ctx := context.Background()
	l := ledger.New(memstore.New())
	faker := gofakeit.New(1)

	accounts, err := utils.GenerateTestAccounts(ctx, faker, l, 1, 1)
	require.NoError(t, err)
	require.NoError(t, utils.GenerateTestTransfers(ctx, faker, l, 1, accounts, 5))

	transfers, _, err := l.Transfers.List(ctx, models.TransferFilter{UserID: 1}, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, transfers)
}
