package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID           int             `json:"id" db:"id"`
	UserID       int             `json:"user_id" db:"user_id"`
	AccountID    int             `json:"account_id" db:"account_id"`
	CategoryID   int             `json:"category_id" db:"category_id"`
	CategoryType CategoryType    `json:"type" db:"category_type"`
	CurrencyID   int             `json:"currency_id" db:"currency_id"`
	CurrencyCode string          `json:"currency" db:"currency_code"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	Date         time.Time       `json:"date" db:"date"`
	Description  string          `json:"description" db:"description"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// Effect is the signed amount the transaction contributes to its account
// when booked under a category of type t.
func (tr *Transaction) Effect(t CategoryType) decimal.Decimal {
	return tr.Amount.Mul(t.Multiplier())
}
