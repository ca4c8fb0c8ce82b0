package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountTransfer struct {
	ID              int             `json:"id" db:"id"`
	UserID          int             `json:"user_id" db:"user_id"`
	AccountFromID   int             `json:"account_from_id" db:"account_from_id"`
	AccountToID     int             `json:"account_to_id" db:"account_to_id"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	ConvertedAmount decimal.Decimal `json:"converted_amount" db:"converted_amount"`
	Date            time.Time       `json:"date" db:"date"`
	Description     string          `json:"description" db:"description"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}
