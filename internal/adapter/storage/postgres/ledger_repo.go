package postgres

import (
	"context"
	"errors"
	"fmt"

	"storefront-payments/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// LedgerRepo implements ports.LedgerRepository.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// GetBalance reads a user's balance. Returns (nil, nil) if the user has none.
func (r *LedgerRepo) GetBalance(ctx context.Context, userID string) (*domain.Account, error) {
	query := `SELECT user_id, balance_cents, updated_at FROM balances WHERE user_id = $1`

	acc, err := scanAccount(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return acc, nil
}

// Debit subtracts cents in one conditional statement, so concurrent debits
// can never take the balance below zero.
func (r *LedgerRepo) Debit(ctx context.Context, tx pgx.Tx, userID string, cents int64) (*domain.Account, error) {
	query := `UPDATE balances SET balance_cents = balance_cents - $1, updated_at = NOW()
		WHERE user_id = $2 AND balance_cents >= $1
		RETURNING user_id, balance_cents, updated_at`

	acc, err := scanAccount(tx.QueryRow(ctx, query, cents, userID))
	if err != nil {
		return nil, fmt.Errorf("debit balance: %w", err)
	}
	if acc != nil {
		return acc, nil
	}

	// Guard rejected the update: tell a missing account from a short one.
	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM balances WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check balance exists: %w", err)
	}
	if !exists {
		return nil, nil
	}
	return nil, domain.ErrInsufficientFunds
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	acc := &domain.Account{}
	var cents int64
	if err := row.Scan(&acc.UserID, &cents, &acc.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	acc.Balance = domain.FromCents(cents)
	return acc, nil
}
