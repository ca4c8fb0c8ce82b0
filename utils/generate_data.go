package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/finance-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/finance-ledger/models"
)

// DemoSize sets how many rows of each kind GenerateDemoLedger books.
type DemoSize struct {
	Categories   int
	Accounts     int
	Transactions int
	Transfers    int
}

var DefaultDemoSize = DemoSize{Categories: 6, Accounts: 3, Transactions: 40, Transfers: 8}

var demoCurrencies = []string{"EUR", "USD", "GBP"}

func fakeAmount(faker *gofakeit.Faker, min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(faker.Price(min, max)).Round(2)
}

func fakeDate(faker *gofakeit.Faker) time.Time {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	return faker.DateRange(end.AddDate(0, -3, 0), end).Truncate(24 * time.Hour)
}

// GenerateTestCategories creates n categories for userID, alternating income
// and expense so both types are always present.
func GenerateTestCategories(ctx context.Context, faker *gofakeit.Faker, l *ledger.Ledger, userID, n int) ([]models.Category, error) {
	categories := make([]models.Category, 0, n)
	for i := 0; i < n; i++ {
		typ := models.CategoryExpense
		if i%2 == 0 {
			typ = models.CategoryIncome
		}
		category := &models.Category{
			UserID: userID,
			Title:  faker.BuzzWord(),
			Type:   typ,
			Color:  faker.HexColor(),
		}
		if err := l.Categories.Create(ctx, category); err != nil {
			return nil, fmt.Errorf("generate category: %w", err)
		}
		categories = append(categories, *category)
	}
	return categories, nil
}

func GenerateTestAccounts(ctx context.Context, faker *gofakeit.Faker, l *ledger.Ledger, userID, n int) ([]models.Account, error) {
	accounts := make([]models.Account, 0, n)
	for i := 0; i < n; i++ {
		account, err := l.Accounts.Create(ctx, models.AccountDTO{
			UserID:   userID,
			Title:    faker.Company(),
			Currency: demoCurrencies[i%len(demoCurrencies)],
			Color:    faker.HexColor(),
			Balance:  fakeAmount(faker, 100, 5000),
		})
		if err != nil {
			return nil, fmt.Errorf("generate account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	return accounts, nil
}

func GenerateTestTransactions(ctx context.Context, faker *gofakeit.Faker, l *ledger.Ledger, userID int, accounts []models.Account, categories []models.Category, n int) error {
	if len(accounts) == 0 || len(categories) == 0 {
		return nil
	}
	for i := 0; i < n; i++ {
		account := accounts[faker.IntRange(0, len(accounts)-1)]
		category := categories[faker.IntRange(0, len(categories)-1)]
		_, err := l.Transactions.Create(ctx, models.TransactionDTO{
			Date:        fakeDate(faker),
			Amount:      fakeAmount(faker, 1, 500),
			Currency:    account.CurrencyCode,
			CategoryID:  category.ID,
			AccountID:   account.ID,
			UserID:      userID,
			Description: faker.Sentence(4),
		})
		if err != nil {
			return fmt.Errorf("generate transaction: %w", err)
		}
	}
	return nil
}

// GenerateTestTransfers moves money between distinct accounts. Transfers
// across currencies get a converted amount within 20% of the amount.
func GenerateTestTransfers(ctx context.Context, faker *gofakeit.Faker, l *ledger.Ledger, userID int, accounts []models.Account, n int) error {
	if len(accounts) < 2 {
		return nil
	}
	for i := 0; i < n; i++ {
		fromIdx := faker.IntRange(0, len(accounts)-1)
		toIdx := (fromIdx + faker.IntRange(1, len(accounts)-1)) % len(accounts)
		from, to := accounts[fromIdx], accounts[toIdx]

		amount := fakeAmount(faker, 10, 300)
		converted := amount
		if !from.SameCurrency(&to) {
			rate := decimal.NewFromFloat(faker.Float64Range(0.8, 1.2))
			converted = amount.Mul(rate).Round(2)
		}
		_, err := l.Transfers.Create(ctx, &from, &to, &models.AccountTransfer{
			UserID:          userID,
			Amount:          amount,
			ConvertedAmount: converted,
			Date:            fakeDate(faker),
			Description:     faker.Sentence(3),
		})
		if err != nil {
			return fmt.Errorf("generate transfer: %w", err)
		}
	}
	return nil
}

// GenerateDemoLedger books a plausible history for userID through the
// ledger services, so balances stay consistent with it.
func GenerateDemoLedger(ctx context.Context, faker *gofakeit.Faker, l *ledger.Ledger, userID int, size DemoSize) error {
	categories, err := GenerateTestCategories(ctx, faker, l, userID, size.Categories)
	if err != nil {
		return err
	}
	accounts, err := GenerateTestAccounts(ctx, faker, l, userID, size.Accounts)
	if err != nil {
		return err
	}
	if err := GenerateTestTransactions(ctx, faker, l, userID, accounts, categories, size.Transactions); err != nil {
		return err
	}
	return GenerateTestTransfers(ctx, faker, l, userID, accounts, size.Transfers)
}
