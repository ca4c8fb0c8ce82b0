package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CategoryType string

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

// Multiplier is the sign applied to a transaction amount of this type
// when it hits an account balance.
func (t CategoryType) Multiplier() decimal.Decimal {
	if t == CategoryIncome {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(-1)
}

func (t CategoryType) Valid() bool {
	return t == CategoryIncome || t == CategoryExpense
}

type Category struct {
	ID        int          `json:"id" db:"id"`
	UserID    int          `json:"user_id" db:"user_id"`
	Title     string       `json:"title" db:"title"`
	Type      CategoryType `json:"type" db:"type"`
	Color     string       `json:"color" db:"color"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}
