package ports

import (
	"context"
	"time"

	"storefront-payments/internal/core/domain"

	"github.com/shopspring/decimal"
)

// --- Infrastructure Ports ---

// IdempotencyCache is the Redis-layer store for replayable checkout results.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Acquire takes the in-flight lock for key. False means another request holds it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// SessionStore tracks recently seen sessions in a store shared by all instances.
type SessionStore interface {
	Touch(ctx context.Context, sessionID string, at time.Time) error
	// CountSince trims entries older than since and returns what is left.
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

// EventPublisher delivers order lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.OrderEvent) error
	Close() error
}

// GatewaySigner computes the MD5 signatures of the gateway's form protocol.
type GatewaySigner interface {
	FormSignature(referenceCode string, amount decimal.Decimal, currency string) string
	VerifyNotification(n domain.Notification) bool
}

// IdentityService verifies bearer tokens issued by the auth provider.
type IdentityService interface {
	Issue(identity domain.Identity, ttl time.Duration) (string, time.Time, error)
	Verify(tokenString string) (*domain.Identity, error)
}

// --- Service Ports (Business Logic) ---

// LedgerService reads and debits user balances.
type LedgerService interface {
	GetBalance(ctx context.Context, userID string) (*domain.Account, error)
	Debit(ctx context.Context, userID string, amount decimal.Decimal) (*domain.Account, error)
}

// OrderService addresses both order keyspaces through domain.OrderKey.
type OrderService interface {
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetOrder(ctx context.Context, key domain.OrderKey) (*domain.Order, error)
	UpdateStatus(ctx context.Context, key domain.OrderKey, status domain.OrderStatus) (*domain.Order, error)
	ListOrders(ctx context.Context, q domain.OrderQuery) (*domain.OrderPage, error)
	LatestOrder(ctx context.Context, userID string) (*domain.Order, error)
}

// CheckoutService runs both checkout paths.
type CheckoutService interface {
	CheckoutWithBalance(ctx context.Context, req BalanceCheckoutRequest) (*domain.CheckoutResult, error)
	CheckoutWithGateway(ctx context.Context, req GatewayCheckoutRequest) (*GatewayCheckoutResult, error)
}

// BalanceCheckoutRequest holds validated input for a balance purchase.
type BalanceCheckoutRequest struct {
	UserID         string
	Items          []domain.LineItem
	Subtotal       decimal.Decimal
	Tip            decimal.Decimal
	Shipping       decimal.Decimal
	Taxes          decimal.Decimal
	Total          decimal.Decimal
	IdempotencyKey string // optional
}

// GatewayCheckoutRequest holds validated input for a gateway purchase.
type GatewayCheckoutRequest struct {
	UserID        string
	ReferenceCode string // generated when empty
	Items         []domain.LineItem
	Subtotal      decimal.Decimal
	Tip           decimal.Decimal
	Shipping      decimal.Decimal
	Taxes         decimal.Decimal
	Total         decimal.Decimal
	Currency      string
	Description   string
	Buyer         domain.Buyer
}

// GatewayCheckoutResult is the pending order plus the form to post to the gateway.
type GatewayCheckoutResult struct {
	Order *domain.Order        `json:"order"`
	Form  *domain.RedirectForm `json:"form"`
}

// GatewayTokenService issues and verifies gateway tokens.
type GatewayTokenService interface {
	IssueToken(ctx context.Context, req domain.IssueTokenRequest) (*domain.RedirectForm, error)
	GetToken(ctx context.Context, referenceCode string) (*domain.TokenPayload, error)
}

// CallbackService reconciles gateway notifications and return pages.
type CallbackService interface {
	HandleNotification(ctx context.Context, n domain.Notification) (*domain.Order, error)
	RecordReturn(ctx context.Context, p domain.ReturnParams) (*domain.Order, error)
}

// ReconciliationService is the operator view over both keyspaces.
type ReconciliationService interface {
	ListPending(ctx context.Context, req ListPendingRequest) (*PendingPage, error)
	GetDetail(ctx context.Context, key domain.OrderKey) (*OrderDetail, error)
	SetStatus(ctx context.Context, key domain.OrderKey, status domain.OrderStatus) (*domain.Order, error)
}

// ListPendingRequest selects one operator page.
type ListPendingRequest struct {
	Page   int
	Type   domain.PurchaseType
	Status string // empty = PENDING, "all" = any status
}

// PendingPage is one operator page with pagination metadata.
type PendingPage struct {
	Items       []*domain.Order `json:"items"`
	Total       int64           `json:"total"`
	Pages       int             `json:"pages"`
	CurrentPage int             `json:"currentPage"`
	HasMore     bool            `json:"hasMore"`
}

// OrderDetail is an order enriched with the purchaser's contact info.
type OrderDetail struct {
	*domain.Order
	UserEmail string              `json:"user_email"`
	User      *domain.UserProfile `json:"user,omitempty"`
}

// SessionService counts active storefront sessions.
type SessionService interface {
	Ping(ctx context.Context, sessionID string) (int64, error)
	Active(ctx context.Context) (int64, error)
}

// AuditService defines async audit logging.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
