//go:build integration

package database_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/valeriaulyamaeva/finance-ledger/internal/database"
	"github.com/valeriaulyamaeva/finance-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/finance-ledger/models"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("finance_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start postgres container: %v\n", err)
		os.Exit(1)
	}

	code := func() int {
		defer func() {
			if err := container.Terminate(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "terminate postgres container: %v\n", err)
			}
		}()
		dsn, err = container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			fmt.Fprintf(os.Stderr, "connection string: %v\n", err)
			return 1
		}
		if err := database.Migrate(ctx, dsn); err != nil {
			fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
			return 1
		}
		return m.Run()
	}()
	os.Exit(code)
}

type pgFixture struct {
	t      *testing.T
	ctx    context.Context
	pool   *pgxpool.Pool
	l      *ledger.Ledger
	userID int
}

func newPGFixture(t *testing.T) *pgFixture {
	t.Helper()
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	user := &models.User{Name: t.Name(), Email: fmt.Sprintf("%s-%d@example.com", t.Name(), time.Now().UnixNano())}
	require.NoError(t, database.CreateUser(ctx, pool, user))

	return &pgFixture{t: t, ctx: ctx, pool: pool, l: ledger.New(database.NewStore(pool)), userID: user.ID}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *pgFixture) account(currency, balance string) *models.Account {
	f.t.Helper()
	a, err := f.l.Accounts.Create(f.ctx, models.AccountDTO{
		UserID: f.userID, Title: currency, Currency: currency, Balance: dec(balance),
	})
	require.NoError(f.t, err)
	return a
}

func (f *pgFixture) category(typ models.CategoryType) *models.Category {
	f.t.Helper()
	c := &models.Category{UserID: f.userID, Title: string(typ), Type: typ}
	require.NoError(f.t, database.CreateCategory(f.ctx, f.pool, c))
	return c
}

func (f *pgFixture) requireBalance(a *models.Account, want string) {
	f.t.Helper()
	got, err := database.GetAccountByID(f.ctx, f.pool, a.ID)
	require.NoError(f.t, err)
	require.Truef(f.t, got.Balance.Equal(dec(want)), "account %d balance = %s, want %s", a.ID, got.Balance, want)
}

func (f *pgFixture) requireConsistent() {
	f.t.Helper()
	audits, err := f.l.Audit(f.ctx, f.userID)
	require.NoError(f.t, err)
	require.NotEmpty(f.t, audits)
	for _, a := range audits {
		require.Truef(f.t, a.Consistent(), "account %d stored %s expected %s", a.AccountID, a.Stored, a.Expected)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, database.Migrate(ctx, dsn))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	currencies, err := database.GetAllCurrencies(ctx, pool)
	require.NoError(t, err)
	assert.Len(t, currencies, len(models.DefaultCurrencies))

	usd, err := database.FindCurrencyByCode(ctx, pool, "usd")
	require.NoError(t, err)
	assert.Equal(t, "USD", usd.Code)
}

func TestStore_TransactionLifecycle(t *testing.T) {
	f := newPGFixture(t)
	a := f.account("USD", "100")
	b := f.account("USD", "0")
	income := f.category(models.CategoryIncome)
	expense := f.category(models.CategoryExpense)

	tr, err := f.l.Transactions.Create(f.ctx, models.TransactionDTO{
		Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Amount: dec("40.25"), Currency: "USD",
		CategoryID: expense.ID, AccountID: a.ID, UserID: f.userID, Description: "groceries",
	})
	require.NoError(t, err)
	f.requireBalance(a, "59.75")

	got, err := database.GetTransactionByID(f.ctx, f.pool, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryExpense, got.CategoryType)
	assert.Equal(t, "USD", got.CurrencyCode)
	assert.True(t, got.Amount.Equal(dec("40.25")))

	_, err = f.l.Transactions.Update(f.ctx, got, models.TransactionDTO{
		Date: got.Date, Amount: dec("10"), Currency: "USD",
		CategoryID: income.ID, AccountID: b.ID, UserID: f.userID,
	})
	require.NoError(t, err)
	f.requireBalance(a, "100")
	f.requireBalance(b, "10")

	require.NoError(t, f.l.Transactions.Delete(f.ctx, got))
	f.requireBalance(b, "0")
	f.requireConsistent()
}

func TestStore_UnknownCategoryRollsBack(t *testing.T) {
	f := newPGFixture(t)
	a := f.account("EUR", "10")

	_, err := f.l.Transactions.Create(f.ctx, models.TransactionDTO{
		Date: time.Now(), Amount: dec("5"), Currency: "EUR",
		CategoryID: 987654321, AccountID: a.ID, UserID: f.userID,
	})
	require.ErrorIs(t, err, ledger.ErrNotFound)
	f.requireBalance(a, "10")
}

func TestStore_TransferAndCascadeDelete(t *testing.T) {
	f := newPGFixture(t)
	a := f.account("USD", "1234")
	b := f.account("EUR", "0")
	c := f.account("EUR", "50")
	expense := f.category(models.CategoryExpense)

	t1, err := f.l.Transfers.Create(f.ctx, a, b, &models.AccountTransfer{
		UserID: f.userID, Amount: dec("1000"), ConvertedAmount: dec("1111"), Date: time.Now(),
	})
	require.NoError(t, err)
	_, err = f.l.Transfers.Create(f.ctx, b, c, &models.AccountTransfer{
		UserID: f.userID, Amount: dec("11"), ConvertedAmount: dec("11"), Date: time.Now(),
	})
	require.NoError(t, err)
	_, err = f.l.Transactions.Create(f.ctx, models.TransactionDTO{
		Date: time.Now(), Amount: dec("100"), Currency: "EUR",
		CategoryID: expense.ID, AccountID: b.ID, UserID: f.userID,
	})
	require.NoError(t, err)
	f.requireBalance(a, "234")
	f.requireBalance(b, "1000")
	f.requireBalance(c, "61")

	_, err = f.l.Transfers.Update(f.ctx, t1, models.AccountTransferDTO{
		AccountFromID: a.ID, AccountToID: b.ID, Amount: dec("900"), ConvertedAmount: dec("1000"), Date: t1.Date,
	})
	require.NoError(t, err)
	f.requireBalance(a, "334")
	f.requireBalance(b, "889")

	require.NoError(t, f.l.Accounts.Delete(f.ctx, b, ledger.DeleteModeCascade))
	f.requireBalance(a, "1234")
	f.requireBalance(c, "50")

	_, err = database.GetAccountByID(f.ctx, f.pool, b.ID)
	require.ErrorIs(t, err, ledger.ErrNotFound)
	f.requireConsistent()
}

func TestStore_ConcurrentTransfersKeepBalances(t *testing.T) {
	f := newPGFixture(t)
	a := f.account("USD", "1000")
	b := f.account("USD", "1000")

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.l.Transfers.Create(f.ctx, a, b, &models.AccountTransfer{
				UserID: f.userID, Amount: dec("1"), ConvertedAmount: dec("1"), Date: time.Now(),
			})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := f.l.Transfers.Create(f.ctx, b, a, &models.AccountTransfer{
				UserID: f.userID, Amount: dec("2"), ConvertedAmount: dec("2"), Date: time.Now(),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	f.requireBalance(a, "1020")
	f.requireBalance(b, "980")
	f.requireConsistent()
}

func TestStore_ListPagination(t *testing.T) {
	f := newPGFixture(t)
	a := f.account("USD", "0")
	income := f.category(models.CategoryIncome)
	for i := 1; i <= 5; i++ {
		_, err := f.l.Transactions.Create(f.ctx, models.TransactionDTO{
			Date: time.Date(2024, 1, i, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(int64(i)), Currency: "USD",
			CategoryID: income.ID, AccountID: a.ID, UserID: f.userID,
		})
		require.NoError(t, err)
	}

	page1, more, err := f.l.Transactions.List(f.ctx, models.TransactionFilter{UserID: f.userID}, 1, 2)
	require.NoError(t, err)
	assert.True(t, more)
	require.Len(t, page1, 2)
	assert.True(t, page1[0].Amount.Equal(dec("5")))

	page3, more, err := f.l.Transactions.List(f.ctx, models.TransactionFilter{UserID: f.userID}, 3, 2)
	require.NoError(t, err)
	assert.False(t, more)
	require.Len(t, page3, 1)

	sum, err := f.l.Transactions.Summary(f.ctx, models.TransactionFilter{UserID: f.userID})
	require.NoError(t, err)
	assert.True(t, sum.Income.Equal(dec("15")))
	assert.True(t, sum.Expense.IsZero())
}

func TestStore_LockAccountsUnknown(t *testing.T) {
	f := newPGFixture(t)
	a := f.account("USD", "0")
	store := database.NewStore(f.pool)

	err := store.InTx(f.ctx, func(tx ledger.Tx) error {
		return tx.LockAccounts(f.ctx, a.ID, 999999999)
	})
	require.True(t, errors.Is(err, ledger.ErrNotFound))
}

func TestStore_CategoryTypeChangeAndDelete(t *testing.T) {
	f := newPGFixture(t)
	a := f.account("USD", "100")
	b := f.account("USD", "0")
	cat := f.category(models.CategoryExpense)

	for _, acc := range []*models.Account{a, a, b} {
		_, err := f.l.Transactions.Create(f.ctx, models.TransactionDTO{
			Date: time.Now(), Amount: dec("15.50"), Currency: "USD",
			CategoryID: cat.ID, AccountID: acc.ID, UserID: f.userID,
		})
		require.NoError(t, err)
	}
	f.requireBalance(a, "69")
	f.requireBalance(b, "-15.5")

	updated, err := f.l.Categories.Update(f.ctx, cat, "salary", models.CategoryIncome, "#00ff00")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryIncome, updated.Type)
	f.requireBalance(a, "131")
	f.requireBalance(b, "15.5")
	f.requireConsistent()

	err = f.l.Categories.Delete(f.ctx, cat)
	require.ErrorIs(t, err, ledger.ErrCategoryInUse)

	err = database.DeleteCategory(f.ctx, f.pool, cat.ID)
	require.ErrorIs(t, err, ledger.ErrCategoryInUse)

	unused := f.category(models.CategoryIncome)
	require.NoError(t, f.l.Categories.Delete(f.ctx, unused))
	_, err = database.GetCategoryByID(f.ctx, f.pool, unused.ID)
	require.ErrorIs(t, err, ledger.ErrNotFound)
	f.requireConsistent()
}
