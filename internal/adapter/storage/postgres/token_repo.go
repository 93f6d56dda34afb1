package postgres

import (
	"context"
	"errors"
	"fmt"

	"storefront-payments/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// TokenRepo implements ports.TokenRepository.
type TokenRepo struct {
	pool Pool
}

// NewTokenRepo creates a new TokenRepo.
func NewTokenRepo(pool Pool) *TokenRepo {
	return &TokenRepo{pool: pool}
}

// Create stores a token. The reference code is the primary key, so a second
// token for the same code fails with domain.ErrDuplicateReference.
func (r *TokenRepo) Create(ctx context.Context, t *domain.GatewayToken) error {
	query := `INSERT INTO gateway_tokens (reference_code, token, created_at) VALUES ($1, $2, $3)`

	if _, err := r.pool.Exec(ctx, query, t.ReferenceCode, t.Token, t.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateReference
		}
		return fmt.Errorf("insert gateway token: %w", err)
	}
	return nil
}

// GetByReference fetches the token for a reference code.
func (r *TokenRepo) GetByReference(ctx context.Context, referenceCode string) (*domain.GatewayToken, error) {
	query := `SELECT reference_code, token, created_at FROM gateway_tokens WHERE reference_code = $1`

	t := &domain.GatewayToken{}
	err := r.pool.QueryRow(ctx, query, referenceCode).Scan(&t.ReferenceCode, &t.Token, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get gateway token: %w", err)
	}
	return t, nil
}
