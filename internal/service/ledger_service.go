package service

import (
	"context"
	"errors"
	"fmt"

	"storefront-payments/internal/core/domain"
	"storefront-payments/internal/core/ports"
	"storefront-payments/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	repo       ports.LedgerRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(repo ports.LedgerRepository, transactor ports.DBTransactor, log zerolog.Logger) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		repo:       repo,
		transactor: transactor,
		log:        log,
	}
}

// GetBalance returns the user's balance or NotFound when the user has none.
func (s *LedgerServiceImpl) GetBalance(ctx context.Context, userID string) (*domain.Account, error) {
	acc, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return nil, apperror.ErrPersistence(err)
	}
	if acc == nil {
		return nil, apperror.ErrNotFound("balance")
	}
	return acc, nil
}

// Debit subtracts amount from the user's balance in its own transaction.
func (s *LedgerServiceImpl) Debit(ctx context.Context, userID string, amount decimal.Decimal) (*domain.Account, error) {
	cents, err := debitCents(amount)
	if err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	acc, err := debitInTx(ctx, s.repo, dbTx, userID, cents)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("user_id", userID).
		Str("amount", amount.String()).
		Str("balance", acc.Balance.String()).
		Msg("balance debited")

	return acc, nil
}

// debitCents validates a debit amount and converts it to minor units.
func debitCents(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, apperror.Validation("amount must be greater than zero")
	}
	cents, err := domain.ToCents(amount)
	if err != nil {
		return 0, apperror.Validation(err.Error())
	}
	return cents, nil
}

// debitInTx maps repository outcomes of a debit inside tx to app errors.
func debitInTx(ctx context.Context, repo ports.LedgerRepository, tx pgx.Tx, userID string, cents int64) (*domain.Account, error) {
	acc, err := repo.Debit(ctx, tx, userID, cents)
	if errors.Is(err, domain.ErrInsufficientFunds) {
		return nil, apperror.ErrInsufficientFunds()
	}
	if err != nil {
		return nil, apperror.ErrPersistence(err)
	}
	if acc == nil {
		return nil, apperror.ErrNotFound("balance")
	}
	return acc, nil
}
