package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-payments/internal/core/domain"
	"storefront-payments/internal/core/ports"
	"storefront-payments/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	idempotencyTTL  = 24 * time.Hour
	checkoutLockTTL = 30 * time.Second
)

// CheckoutServiceImpl implements ports.CheckoutService.
type CheckoutServiceImpl struct {
	ledger        ports.LedgerRepository
	balanceOrders ports.BalanceOrderRepository
	transactor    ports.DBTransactor
	orders        ports.OrderService
	tokens        ports.GatewayTokenService
	idempCache    ports.IdempotencyCache
	publisher     ports.EventPublisher
	log           zerolog.Logger
}

// NewCheckoutService creates a new CheckoutServiceImpl.
func NewCheckoutService(
	ledger ports.LedgerRepository,
	balanceOrders ports.BalanceOrderRepository,
	transactor ports.DBTransactor,
	orders ports.OrderService,
	tokens ports.GatewayTokenService,
	idempCache ports.IdempotencyCache,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) *CheckoutServiceImpl {
	return &CheckoutServiceImpl{
		ledger:        ledger,
		balanceOrders: balanceOrders,
		transactor:    transactor,
		orders:        orders,
		tokens:        tokens,
		idempCache:    idempCache,
		publisher:     publisher,
		log:           log,
	}
}

// CheckoutWithBalance debits the buyer and records the order in one
// transaction. Either both happen or neither does.
func (s *CheckoutServiceImpl) CheckoutWithBalance(ctx context.Context, req ports.BalanceCheckoutRequest) (*domain.CheckoutResult, error) {
	if req.UserID == "" {
		return nil, apperror.ErrUnauthorized()
	}
	if !req.Total.IsPositive() {
		return nil, apperror.Validation("total must be greater than zero")
	}

	order := &domain.Order{
		Type:     domain.PurchaseTypeBalance,
		UserID:   req.UserID,
		Items:    req.Items,
		Subtotal: req.Subtotal,
		Tip:      req.Tip,
		Shipping: req.Shipping,
		Taxes:    req.Taxes,
		Total:    req.Total,
		Status:   domain.OrderStatusPending,
	}
	if err := validateOrder(order); err != nil {
		return nil, err
	}

	if req.IdempotencyKey == "" {
		return s.checkoutWithBalance(ctx, order)
	}

	idempKey := domain.BuildIdempotencyKey(req.UserID, req.IdempotencyKey)

	// Layer 1: a finished checkout is replayed as-is
	if result, ok := s.cachedResult(ctx, idempKey); ok {
		return result, nil
	}

	// Layer 2: only one request per key may run
	locked, err := s.idempCache.Acquire(ctx, idempKey, checkoutLockTTL)
	if err != nil {
		s.log.Warn().Err(err).Str("key", idempKey).Msg("redis idempotency lock failed, proceeding unlocked")
	} else if !locked {
		return nil, apperror.ErrCheckoutInProgress()
	}
	if locked {
		defer func() {
			if err := s.idempCache.Release(context.WithoutCancel(ctx), idempKey); err != nil {
				s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to release idempotency lock")
			}
		}()
		// The previous holder may have finished between the lookup and the lock.
		if result, ok := s.cachedResult(ctx, idempKey); ok {
			return result, nil
		}
	}

	result, err := s.checkoutWithBalance(ctx, order)
	if err != nil {
		return nil, err
	}

	respJSON, err := json.Marshal(result)
	if err != nil {
		s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to marshal checkout result for cache")
		return result, nil
	}
	if err := s.idempCache.Set(ctx, idempKey, respJSON, idempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to cache idempotency in redis")
	}
	return result, nil
}

func (s *CheckoutServiceImpl) checkoutWithBalance(ctx context.Context, order *domain.Order) (*domain.CheckoutResult, error) {
	warnIfTotalMismatch(s.log, order)
	cents, err := debitCents(order.Total)
	if err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	acc, err := debitInTx(ctx, s.ledger, dbTx, order.UserID, cents)
	if err != nil {
		return nil, err
	}

	if err := s.balanceOrders.Create(ctx, dbTx, order); err != nil {
		return nil, apperror.ErrPersistence(err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Int64("order_id", order.ID).
		Str("user_id", order.UserID).
		Str("total", order.Total.String()).
		Str("balance", acc.Balance.String()).
		Msg("balance checkout completed")

	publish(ctx, s.publisher, s.log, domain.OrderEventCreated, order)
	return &domain.CheckoutResult{Order: order, Balance: acc}, nil
}

func (s *CheckoutServiceImpl) cachedResult(ctx context.Context, key string) (*domain.CheckoutResult, bool) {
	cached, err := s.idempCache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("redis idempotency check failed")
		return nil, false
	}
	if cached == nil {
		return nil, false
	}
	var result domain.CheckoutResult
	if err := json.Unmarshal(cached, &result); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("discarding unreadable cached checkout")
		return nil, false
	}
	return &result, true
}

// CheckoutWithGateway records a PENDING gateway order and returns the signed
// form the browser posts to the gateway. A token failure leaves the order
// PENDING for reconciliation.
func (s *CheckoutServiceImpl) CheckoutWithGateway(ctx context.Context, req ports.GatewayCheckoutRequest) (*ports.GatewayCheckoutResult, error) {
	ref := req.ReferenceCode
	if ref == "" {
		ref = newReferenceCode()
	}
	description := req.Description
	if description == "" {
		description = "Storefront order " + ref
	}

	tokenReq := domain.IssueTokenRequest{
		ReferenceCode: ref,
		Amount:        req.Total,
		Currency:      req.Currency,
		Description:   description,
		Buyer:         req.Buyer,
	}
	if err := validateIssueTokenRequest(tokenReq); err != nil {
		return nil, err
	}

	order, err := s.orders.CreateOrder(ctx, &domain.Order{
		Type:          domain.PurchaseTypeGateway,
		ReferenceCode: ref,
		UserID:        req.UserID,
		Items:         req.Items,
		Subtotal:      req.Subtotal,
		Tip:           req.Tip,
		Shipping:      req.Shipping,
		Taxes:         req.Taxes,
		Total:         req.Total,
		Currency:      req.Currency,
		Description:   description,
	})
	if err != nil {
		return nil, err
	}

	form, err := s.tokens.IssueToken(ctx, tokenReq)
	if err != nil {
		s.log.Warn().Err(err).Str("reference_code", ref).Msg("token issue failed, gateway order left pending")
		return nil, err
	}

	return &ports.GatewayCheckoutResult{Order: order, Form: form}, nil
}

func newReferenceCode() string {
	return "SFP-" + uuid.NewString()
}
