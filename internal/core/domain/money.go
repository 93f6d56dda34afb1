package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// MaxCents bounds any single stored amount (one trillion in major units).
// Sums of a handful of bounded amounts stay far inside int64.
const MaxCents int64 = 100_000_000_000_000

// MaxAmount is MaxCents in major units.
var MaxAmount = decimal.New(MaxCents, -2)

var (
	// ErrAmountPrecision is returned for amounts with more than two decimal places.
	ErrAmountPrecision = errors.New("amount must have at most two decimal places")
	// ErrAmountRange is returned for amounts whose magnitude exceeds MaxAmount.
	ErrAmountRange = errors.New("amount is out of range")
)

// ToCents converts a money value to integer minor units (scale 2).
func ToCents(d decimal.Decimal) (int64, error) {
	shifted := d.Shift(2)
	if !shifted.IsInteger() {
		return 0, ErrAmountPrecision
	}
	if shifted.Abs().GreaterThan(decimal.NewFromInt(MaxCents)) {
		return 0, ErrAmountRange
	}
	return shifted.IntPart(), nil
}

// FromCents converts minor units back to a money value.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
