package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownPurchaseType = errors.New("type must be 'saldo' or 'payu'")
	ErrInvalidOrderKey     = errors.New("invalid order key")
	ErrUnknownStatus       = errors.New("unknown order status")
)

// PurchaseType tags which checkout path produced an order.
type PurchaseType string

const (
	PurchaseTypeBalance PurchaseType = "saldo"
	PurchaseTypeGateway PurchaseType = "payu"
)

// ParsePurchaseType validates a type discriminator received from a client.
func ParsePurchaseType(s string) (PurchaseType, error) {
	switch PurchaseType(strings.ToLower(strings.TrimSpace(s))) {
	case PurchaseTypeBalance:
		return PurchaseTypeBalance, nil
	case PurchaseTypeGateway:
		return PurchaseTypeGateway, nil
	default:
		return "", ErrUnknownPurchaseType
	}
}

// OrderKey identifies an order in one of the two order keyspaces.
// Implementations are BalanceKey and GatewayKey; callers switch on the
// concrete type.
type OrderKey interface {
	PurchaseType() PurchaseType
	String() string
	isOrderKey()
}

// BalanceKey addresses a balance-path order by its store-generated id.
type BalanceKey struct {
	ID int64
}

func (BalanceKey) PurchaseType() PurchaseType { return PurchaseTypeBalance }
func (k BalanceKey) String() string           { return strconv.FormatInt(k.ID, 10) }
func (BalanceKey) isOrderKey()                {}

// GatewayKey addresses a gateway-path order by its reference code.
type GatewayKey struct {
	ReferenceCode string
}

func (GatewayKey) PurchaseType() PurchaseType { return PurchaseTypeGateway }
func (k GatewayKey) String() string           { return k.ReferenceCode }
func (GatewayKey) isOrderKey()                {}

// ParseOrderKey builds a key from a type discriminator and the raw key text.
func ParseOrderKey(purchaseType, raw string) (OrderKey, error) {
	pt, err := ParsePurchaseType(purchaseType)
	if err != nil {
		return nil, err
	}
	raw = strings.TrimSpace(raw)
	switch pt {
	case PurchaseTypeBalance:
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: %q is not a positive order id", ErrInvalidOrderKey, raw)
		}
		return BalanceKey{ID: id}, nil
	case PurchaseTypeGateway:
		if raw == "" {
			return nil, fmt.Errorf("%w: reference code is required", ErrInvalidOrderKey)
		}
		return GatewayKey{ReferenceCode: raw}, nil
	}
	return nil, ErrUnknownPurchaseType
}

// OrderStatus is the lifecycle label of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusApproved  OrderStatus = "APPROVED"
	OrderStatusDeclined  OrderStatus = "DECLINED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
)

// storefront labels shown to operators
var statusAliases = map[string]OrderStatus{
	"pendiente":  OrderStatusPending,
	"completado": OrderStatusApproved,
	"aprobado":   OrderStatusApproved,
	"rechazado":  OrderStatusDeclined,
	"enviado":    OrderStatusShipped,
	"entregado":  OrderStatusDelivered,
}

// ParseStatus accepts the canonical labels and the storefront's display
// labels. Anything else is ErrUnknownStatus.
func ParseStatus(s string) (OrderStatus, error) {
	trimmed := strings.TrimSpace(s)
	switch st := OrderStatus(strings.ToUpper(trimmed)); st {
	case OrderStatusPending, OrderStatusApproved, OrderStatusDeclined,
		OrderStatusShipped, OrderStatusDelivered:
		return st, nil
	}
	if st, ok := statusAliases[strings.ToLower(trimmed)]; ok {
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// IsTerminal returns true for APPROVED and DECLINED.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusApproved || s == OrderStatusDeclined
}

// LineItem is one product line of an order.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// GatewayDetails holds the fields reported back by the payment gateway.
type GatewayDetails struct {
	TransactionState  string `json:"transaction_state,omitempty"`
	Message           string `json:"message,omitempty"`
	TransactionID     string `json:"transaction_id,omitempty"`
	AuthorizationCode string `json:"authorization_code,omitempty"`
	BuyerEmail        string `json:"buyer_email,omitempty"`
}

// Order is a purchase made through either checkout path.
type Order struct {
	ID            int64           `json:"id,omitempty"`
	ReferenceCode string          `json:"reference_code,omitempty"`
	Type          PurchaseType    `json:"type"`
	UserID        string          `json:"user_id,omitempty"`
	Items         []LineItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tip           decimal.Decimal `json:"tip"`
	Shipping      decimal.Decimal `json:"shipping"`
	Taxes         decimal.Decimal `json:"taxes"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency,omitempty"`
	Description   string          `json:"description,omitempty"`
	Status        OrderStatus     `json:"status"`
	Gateway       *GatewayDetails `json:"gateway,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Key returns the order's key in its own keyspace.
func (o *Order) Key() OrderKey {
	if o.Type == PurchaseTypeGateway {
		return GatewayKey{ReferenceCode: o.ReferenceCode}
	}
	return BalanceKey{ID: o.ID}
}

// ComponentsSum returns subtotal + tip + shipping + taxes.
func (o *Order) ComponentsSum() decimal.Decimal {
	return o.Subtotal.Add(o.Tip).Add(o.Shipping).Add(o.Taxes)
}

// TotalMatchesComponents reports whether total equals the sum of its parts.
// The check is informational; orders are stored either way.
func (o *Order) TotalMatchesComponents() bool {
	return o.Total.Equal(o.ComponentsSum())
}

// MaxPage bounds the page number of any listing so offsets stay small.
const MaxPage = 1_000_000

// OrderQuery selects a page of orders from one keyspace.
type OrderQuery struct {
	Type     PurchaseType
	UserID   string       // empty = all users
	Status   *OrderStatus // nil = any status
	Page     int
	PageSize int
}

// Offset returns the row offset for the requested page (pages are 1-based).
func (q OrderQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}

// OrderPage is one page of a listing plus the unpaged total.
type OrderPage struct {
	Items []*Order
	Total int64
}
