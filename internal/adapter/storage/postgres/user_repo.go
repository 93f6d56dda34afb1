package postgres

import (
	"context"
	"errors"
	"fmt"

	"storefront-payments/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// UserRepo implements ports.UserDirectory over the users table.
type UserRepo struct {
	pool Pool
}

func NewUserRepo(pool Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// GetProfile returns (nil, nil) for unknown users.
func (r *UserRepo) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	query := `SELECT id, email, name, last_name, address, postal_code, phone FROM users WHERE id = $1`

	u := &domain.UserProfile{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&u.ID, &u.Email, &u.Name, &u.LastName, &u.Address, &u.PostalCode, &u.Phone,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user profile: %w", err)
	}
	return u, nil
}
