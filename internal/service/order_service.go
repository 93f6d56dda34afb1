package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-payments/internal/core/domain"
	"storefront-payments/internal/core/ports"
	"storefront-payments/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// OrderServiceImpl implements ports.OrderService over both order keyspaces.
type OrderServiceImpl struct {
	balanceOrders ports.BalanceOrderRepository
	gatewayOrders ports.GatewayOrderRepository
	transactor    ports.DBTransactor
	publisher     ports.EventPublisher
	log           zerolog.Logger
}

// NewOrderService creates a new OrderServiceImpl.
func NewOrderService(
	balanceOrders ports.BalanceOrderRepository,
	gatewayOrders ports.GatewayOrderRepository,
	transactor ports.DBTransactor,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) *OrderServiceImpl {
	return &OrderServiceImpl{
		balanceOrders: balanceOrders,
		gatewayOrders: gatewayOrders,
		transactor:    transactor,
		publisher:     publisher,
		log:           log,
	}
}

// CreateOrder stores a new order with status PENDING.
func (s *OrderServiceImpl) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}
	order.Status = domain.OrderStatusPending
	warnIfTotalMismatch(s.log, order)

	switch order.Type {
	case domain.PurchaseTypeBalance:
		dbTx, err := s.transactor.Begin(ctx)
		if err != nil {
			return nil, apperror.ErrPersistence(fmt.Errorf("begin tx: %w", err))
		}
		defer dbTx.Rollback(ctx) //nolint:errcheck

		if err := s.balanceOrders.Create(ctx, dbTx, order); err != nil {
			return nil, apperror.ErrPersistence(err)
		}
		if err := dbTx.Commit(ctx); err != nil {
			return nil, apperror.ErrPersistence(fmt.Errorf("commit tx: %w", err))
		}

	case domain.PurchaseTypeGateway:
		if order.ReferenceCode == "" {
			return nil, apperror.Validation("reference code is required for gateway orders")
		}
		err := s.gatewayOrders.Create(ctx, order)
		if errors.Is(err, domain.ErrDuplicateReference) {
			return nil, apperror.ErrDuplicateReference(order.ReferenceCode)
		}
		if err != nil {
			return nil, apperror.ErrPersistence(err)
		}

	default:
		return nil, apperror.Validation(domain.ErrUnknownPurchaseType.Error())
	}

	s.log.Info().
		Str("type", string(order.Type)).
		Str("order_key", order.Key().String()).
		Str("user_id", order.UserID).
		Str("total", order.Total.String()).
		Msg("order created")

	publish(ctx, s.publisher, s.log, domain.OrderEventCreated, order)
	return order, nil
}

// GetOrder returns the order addressed by key.
func (s *OrderServiceImpl) GetOrder(ctx context.Context, key domain.OrderKey) (*domain.Order, error) {
	var (
		order *domain.Order
		err   error
	)
	switch k := key.(type) {
	case domain.BalanceKey:
		order, err = s.balanceOrders.GetByID(ctx, k.ID)
	case domain.GatewayKey:
		order, err = s.gatewayOrders.GetByReference(ctx, k.ReferenceCode)
	default:
		return nil, apperror.Validation(domain.ErrInvalidOrderKey.Error())
	}
	if err != nil {
		return nil, apperror.ErrPersistence(err)
	}
	if order == nil {
		return nil, apperror.ErrNotFound("order")
	}
	return order, nil
}

// UpdateStatus sets the status of an existing order. Any known status may
// follow any other.
func (s *OrderServiceImpl) UpdateStatus(ctx context.Context, key domain.OrderKey, status domain.OrderStatus) (*domain.Order, error) {
	status, err := domain.ParseStatus(string(status))
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}

	var order *domain.Order
	switch k := key.(type) {
	case domain.BalanceKey:
		order, err = s.balanceOrders.UpdateStatus(ctx, k.ID, status)
	case domain.GatewayKey:
		order, err = s.gatewayOrders.UpdateStatus(ctx, k.ReferenceCode, status)
	default:
		return nil, apperror.Validation(domain.ErrInvalidOrderKey.Error())
	}
	if err != nil {
		return nil, apperror.ErrPersistence(err)
	}
	if order == nil {
		return nil, apperror.ErrNotFound("order")
	}

	s.log.Info().
		Str("type", string(order.Type)).
		Str("order_key", key.String()).
		Str("status", string(status)).
		Msg("order status updated")

	publish(ctx, s.publisher, s.log, domain.OrderEventStatusChanged, order)
	return order, nil
}

// ListOrders returns one most-recent-first page of orders of q.Type.
func (s *OrderServiceImpl) ListOrders(ctx context.Context, q domain.OrderQuery) (*domain.OrderPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > domain.MaxPage {
		return nil, apperror.Validation(fmt.Sprintf("page must not exceed %d", domain.MaxPage))
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}

	var (
		items []*domain.Order
		total int64
		err   error
	)
	switch q.Type {
	case domain.PurchaseTypeBalance:
		items, total, err = s.balanceOrders.List(ctx, q)
	case domain.PurchaseTypeGateway:
		items, total, err = s.gatewayOrders.List(ctx, q)
	default:
		return nil, apperror.Validation(domain.ErrUnknownPurchaseType.Error())
	}
	if err != nil {
		return nil, apperror.ErrPersistence(err)
	}
	if items == nil {
		items = []*domain.Order{}
	}
	return &domain.OrderPage{Items: items, Total: total}, nil
}

// LatestOrder returns the user's most recent balance order.
func (s *OrderServiceImpl) LatestOrder(ctx context.Context, userID string) (*domain.Order, error) {
	order, err := s.balanceOrders.LatestForUser(ctx, userID)
	if err != nil {
		return nil, apperror.ErrPersistence(err)
	}
	if order == nil {
		return nil, apperror.ErrNotFound("order")
	}
	return order, nil
}

// validateOrder checks the fields every new order needs.
func validateOrder(o *domain.Order) error {
	if _, err := domain.ParsePurchaseType(string(o.Type)); err != nil {
		return apperror.Validation(err.Error())
	}
	if o.Total.IsNegative() {
		return apperror.Validation("total must not be negative")
	}
	amounts := []struct {
		name  string
		value decimal.Decimal
	}{
		{"subtotal", o.Subtotal},
		{"tip", o.Tip},
		{"shipping", o.Shipping},
		{"taxes", o.Taxes},
		{"total", o.Total},
	}
	for _, a := range amounts {
		if _, err := domain.ToCents(a.value); err != nil {
			return apperror.Validation(fmt.Sprintf("%s: %s", a.name, err))
		}
	}
	for i, item := range o.Items {
		if item.ProductID == "" {
			return apperror.Validation(fmt.Sprintf("items[%d]: product_id is required", i))
		}
		if item.Quantity < 1 {
			return apperror.Validation(fmt.Sprintf("items[%d]: quantity must be at least 1", i))
		}
		if item.UnitPrice.IsNegative() {
			return apperror.Validation(fmt.Sprintf("items[%d]: unit_price must not be negative", i))
		}
		if _, err := domain.ToCents(item.UnitPrice); err != nil {
			return apperror.Validation(fmt.Sprintf("items[%d]: unit_price: %s", i, err))
		}
	}
	return nil
}

// warnIfTotalMismatch logs orders whose total differs from the sum of its parts.
// The order is still accepted.
func warnIfTotalMismatch(log zerolog.Logger, o *domain.Order) {
	if o.TotalMatchesComponents() {
		return
	}
	log.Warn().
		Str("user_id", o.UserID).
		Str("total", o.Total.String()).
		Str("components", o.ComponentsSum().String()).
		Msg("order total does not match subtotal + tip + shipping + taxes")
}

// publish emits an order event. Failures are logged and dropped.
func publish(ctx context.Context, p ports.EventPublisher, log zerolog.Logger, t domain.OrderEventType, o *domain.Order) {
	if err := p.Publish(ctx, domain.NewOrderEvent(t, o, time.Now())); err != nil {
		log.Warn().Err(err).
			Str("event", string(t)).
			Str("order_key", o.Key().String()).
			Msg("failed to publish order event")
	}
}
