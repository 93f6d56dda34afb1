package service

import (
	"context"
	"strings"

	"storefront-payments/internal/core/domain"
	"storefront-payments/internal/core/ports"
	"storefront-payments/pkg/apperror"

	"github.com/rs/zerolog"
)

// CallbackServiceImpl implements ports.CallbackService.
type CallbackServiceImpl struct {
	repo      ports.GatewayOrderRepository
	signer    ports.GatewaySigner
	verify    bool
	publisher ports.EventPublisher
	log       zerolog.Logger
}

// NewCallbackService creates a new CallbackServiceImpl. With verify set,
// notifications without a valid sign are rejected before anything is written.
func NewCallbackService(
	repo ports.GatewayOrderRepository,
	signer ports.GatewaySigner,
	verify bool,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) *CallbackServiceImpl {
	return &CallbackServiceImpl{
		repo:      repo,
		signer:    signer,
		verify:    verify,
		publisher: publisher,
		log:       log,
	}
}

// HandleNotification applies a gateway confirmation to its order. Replays
// overwrite the same fields again.
func (s *CallbackServiceImpl) HandleNotification(ctx context.Context, n domain.Notification) (*domain.Order, error) {
	var missing []string
	if n.ReferenceCode == "" {
		missing = append(missing, "reference_sale")
	}
	if n.TransactionState == "" {
		missing = append(missing, "state_pol")
	}
	if n.ResponseMessage == "" {
		missing = append(missing, "response_message_pol")
	}
	if n.TransactionID == "" {
		missing = append(missing, "transaction_id")
	}
	if len(missing) > 0 {
		return nil, apperror.Validation("missing required fields: " + strings.Join(missing, ", "))
	}

	if s.verify && !s.signer.VerifyNotification(n) {
		s.log.Warn().
			Str("reference_code", n.ReferenceCode).
			Str("merchant_id", n.MerchantID).
			Msg("gateway notification rejected: bad signature")
		return nil, apperror.ErrInvalidSignature()
	}

	var status *domain.OrderStatus
	if st, ok := domain.StatusForTransactionState(n.TransactionState); ok {
		status = &st
	} else {
		s.log.Warn().
			Str("reference_code", n.ReferenceCode).
			Str("state_pol", n.TransactionState).
			Msg("unmapped transaction state, status left unchanged")
	}

	order, err := s.repo.ApplyNotification(ctx, n, status)
	if err != nil {
		return nil, apperror.ErrPersistence(err)
	}
	if order == nil {
		return nil, apperror.ErrNotFound("order")
	}

	s.log.Info().
		Str("reference_code", n.ReferenceCode).
		Str("state_pol", n.TransactionState).
		Str("transaction_id", n.TransactionID).
		Str("status", string(order.Status)).
		Msg("gateway notification applied")

	publish(ctx, s.publisher, s.log, domain.OrderEventGatewayNotification, order)
	return order, nil
}

// RecordReturn stores what the gateway's response page reported. Status is
// left to the confirmation.
func (s *CallbackServiceImpl) RecordReturn(ctx context.Context, p domain.ReturnParams) (*domain.Order, error) {
	if p.ReferenceCode == "" {
		return nil, apperror.Validation("referenceCode is required")
	}

	order, err := s.repo.RecordReturn(ctx, p)
	if err != nil {
		return nil, apperror.ErrPersistence(err)
	}
	if order == nil {
		return nil, apperror.ErrNotFound("order")
	}

	s.log.Info().
		Str("reference_code", p.ReferenceCode).
		Str("transaction_state", p.TransactionState).
		Msg("gateway return recorded")

	return order, nil
}
