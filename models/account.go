package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID             int             `json:"id" db:"id"`
	UserID         int             `json:"user_id" db:"user_id"`
	Title          string          `json:"title" db:"title"`
	CurrencyID     int             `json:"currency_id" db:"currency_id"`
	CurrencyCode   string          `json:"currency" db:"currency_code"`
	Balance        decimal.Decimal `json:"balance" db:"balance"`
	OpeningBalance decimal.Decimal `json:"opening_balance" db:"opening_balance"`
	Color          string          `json:"color" db:"color"`
	Active         bool            `json:"active" db:"active"`
	DeletedAt      *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

func (a *Account) Deleted() bool {
	return a.DeletedAt != nil
}

// SameCurrency reports whether funds can move between a and b without conversion.
func (a *Account) SameCurrency(b *Account) bool {
	return a.CurrencyID == b.CurrencyID
}
