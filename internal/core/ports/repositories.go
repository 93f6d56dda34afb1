package ports

import (
	"context"

	"storefront-payments/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// Repositories return (nil, nil) when the addressed row does not exist.

// LedgerRepository persists user balances in minor units.
type LedgerRepository interface {
	GetBalance(ctx context.Context, userID string) (*domain.Account, error)
	// Debit subtracts cents in a single conditional update inside tx.
	// Returns domain.ErrInsufficientFunds when the row exists but holds less.
	Debit(ctx context.Context, tx pgx.Tx, userID string, cents int64) (*domain.Account, error)
}

// BalanceOrderRepository stores balance-path orders keyed by a generated id.
type BalanceOrderRepository interface {
	// Create inserts the order inside tx and fills ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
	List(ctx context.Context, q domain.OrderQuery) ([]*domain.Order, int64, error)
	LatestForUser(ctx context.Context, userID string) (*domain.Order, error)
}

// GatewayOrderRepository stores gateway-path orders keyed by reference code.
type GatewayOrderRepository interface {
	// Create returns domain.ErrDuplicateReference when the code is taken.
	Create(ctx context.Context, order *domain.Order) error
	GetByReference(ctx context.Context, referenceCode string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, referenceCode string, status domain.OrderStatus) (*domain.Order, error)
	// ApplyNotification overwrites the gateway fields and, while the order is
	// still PENDING, sets status when one is given. One statement.
	ApplyNotification(ctx context.Context, n domain.Notification, status *domain.OrderStatus) (*domain.Order, error)
	RecordReturn(ctx context.Context, p domain.ReturnParams) (*domain.Order, error)
	List(ctx context.Context, q domain.OrderQuery) ([]*domain.Order, int64, error)
}

// TokenRepository persists one signed token per reference code.
type TokenRepository interface {
	// Create returns domain.ErrDuplicateReference when a token already exists.
	Create(ctx context.Context, token *domain.GatewayToken) error
	GetByReference(ctx context.Context, referenceCode string) (*domain.GatewayToken, error)
}

// UserDirectory resolves user ids to profiles for display.
type UserDirectory interface {
	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
}

// AuditRepository persists audit entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
