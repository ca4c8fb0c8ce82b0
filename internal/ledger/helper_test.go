package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/valeriaulyamaeva/finance-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/finance-ledger/internal/memstore"
	"github.com/valeriaulyamaeva/finance-ledger/models"
)

const owner = 1

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memstore.Store
	l     *ledger.Ledger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	return &fixture{t: t, ctx: context.Background(), store: store, l: ledger.New(store)}
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func (f *fixture) account(currency, balance string) *models.Account {
	f.t.Helper()
	a, err := f.l.Accounts.Create(f.ctx, models.AccountDTO{
		UserID:   owner,
		Title:    currency + " wallet",
		Currency: currency,
		Color:    "#336699",
		Balance:  d(balance),
	})
	require.NoError(f.t, err)
	return a
}

func (f *fixture) category(typ models.CategoryType) *models.Category {
	f.t.Helper()
	c := &models.Category{UserID: owner, Title: string(typ), Type: typ, Color: "#aabbcc"}
	require.NoError(f.t, f.store.CreateCategory(f.ctx, c))
	return c
}

func (f *fixture) balance(a *models.Account) decimal.Decimal {
	f.t.Helper()
	got, err := f.store.GetAccount(f.ctx, a.ID)
	require.NoError(f.t, err)
	return got.Balance
}

func (f *fixture) requireBalance(a *models.Account, want string) {
	f.t.Helper()
	got := f.balance(a)
	require.Truef(f.t, got.Equal(d(want)), "account %d balance = %s, want %s", a.ID, got, want)
}

// requireConsistent checks every stored balance against the history.
func (f *fixture) requireConsistent() {
	f.t.Helper()
	audits, err := f.l.Audit(f.ctx, 0)
	require.NoError(f.t, err)
	for _, a := range audits {
		require.Truef(f.t, a.Consistent(), "account %d stored %s expected %s", a.AccountID, a.Stored, a.Expected)
	}
}

func (f *fixture) transaction(a *models.Account, c *models.Category, amount string) *models.Transaction {
	f.t.Helper()
	tr, err := f.l.Transactions.Create(f.ctx, models.TransactionDTO{
		Date:       day("2024-01-15"),
		Amount:     d(amount),
		Currency:   a.CurrencyCode,
		CategoryID: c.ID,
		AccountID:  a.ID,
		UserID:     owner,
	})
	require.NoError(f.t, err)
	return tr
}

func (f *fixture) transfer(from, to *models.Account, amount, converted string) *models.AccountTransfer {
	f.t.Helper()
	tr, err := f.l.Transfers.Create(f.ctx, from, to, &models.AccountTransfer{
		UserID:          owner,
		Amount:          d(amount),
		ConvertedAmount: d(converted),
		Date:            day("2024-02-01"),
	})
	require.NoError(f.t, err)
	return tr
}
