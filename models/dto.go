package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionDTO carries already validated input for creating or updating
// a transaction. Currency is an ISO 4217 code.
type TransactionDTO struct {
	Date        time.Time
	Amount      decimal.Decimal
	Currency    string
	CategoryID  int
	AccountID   int
	UserID      int
	Description string
}

type AccountTransferDTO struct {
	AccountFromID   int
	AccountToID     int
	Amount          decimal.Decimal
	ConvertedAmount decimal.Decimal
	Date            time.Time
	Description     string
}

type AccountDTO struct {
	UserID   int
	Title    string
	Currency string
	Color    string
	Balance  decimal.Decimal
}

type TransactionFilter struct {
	UserID     int
	Type       CategoryType
	CategoryID int
	AccountID  int
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}

type TransferFilter struct {
	UserID    int
	AccountID int
	Limit     int
	Offset    int
}

// Summary holds income and expense totals over a date range.
type Summary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// BalanceAudit compares a stored balance with the one recomputed from history.
type BalanceAudit struct {
	AccountID    int             `json:"account_id"`
	Title        string          `json:"title"`
	CurrencyCode string          `json:"currency"`
	Stored       decimal.Decimal `json:"stored"`
	Expected     decimal.Decimal `json:"expected"`
}

func (a BalanceAudit) Drift() decimal.Decimal {
	return a.Stored.Sub(a.Expected)
}

func (a BalanceAudit) Consistent() bool {
	return a.Stored.Equal(a.Expected)
}
