package domain

import "errors"

// Store-level outcomes that services translate into client errors.
var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrDuplicateReference = errors.New("duplicate reference code")
)
