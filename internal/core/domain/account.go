package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a user's prepaid balance. The balance never goes below zero.
type Account struct {
	UserID    string          `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	UpdatedAt time.Time       `json:"updated_at"`
}
