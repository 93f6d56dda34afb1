package service

import (
	"context"
	"strings"

	"storefront-payments/internal/core/domain"
	"storefront-payments/internal/core/ports"
	"storefront-payments/pkg/apperror"

	"github.com/rs/zerolog"
)

const (
	reconciliationPageSize = 10
	statusFilterAll        = "all"
)

// ReconciliationServiceImpl implements ports.ReconciliationService.
type ReconciliationServiceImpl struct {
	orders ports.OrderService
	users  ports.UserDirectory
	log    zerolog.Logger
}

// NewReconciliationService creates a new ReconciliationServiceImpl.
func NewReconciliationService(orders ports.OrderService, users ports.UserDirectory, log zerolog.Logger) *ReconciliationServiceImpl {
	return &ReconciliationServiceImpl{orders: orders, users: users, log: log}
}

// ListPending returns one page of ten orders, newest first. Status defaults
// to PENDING; "all" drops the filter.
func (s *ReconciliationServiceImpl) ListPending(ctx context.Context, req ports.ListPendingRequest) (*ports.PendingPage, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}

	q := domain.OrderQuery{
		Type:     req.Type,
		Page:     page,
		PageSize: reconciliationPageSize,
	}
	switch raw := strings.TrimSpace(req.Status); {
	case raw == "":
		pending := domain.OrderStatusPending
		q.Status = &pending
	case strings.EqualFold(raw, statusFilterAll):
		// no filter
	default:
		st, err := domain.ParseStatus(raw)
		if err != nil {
			return nil, apperror.Validation(err.Error())
		}
		q.Status = &st
	}

	result, err := s.orders.ListOrders(ctx, q)
	if err != nil {
		return nil, err
	}

	pages := int((result.Total + reconciliationPageSize - 1) / reconciliationPageSize)
	return &ports.PendingPage{
		Items:       result.Items,
		Total:       result.Total,
		Pages:       pages,
		CurrentPage: page,
		HasMore:     page < pages,
	}, nil
}

// GetDetail returns the order with the purchaser's email. A missing user
// record falls back to the user id; gateway orders without a user fall back
// to the buyer email the gateway reported.
func (s *ReconciliationServiceImpl) GetDetail(ctx context.Context, key domain.OrderKey) (*ports.OrderDetail, error) {
	order, err := s.orders.GetOrder(ctx, key)
	if err != nil {
		return nil, err
	}

	detail := &ports.OrderDetail{Order: order}
	if order.UserID != "" {
		profile, err := s.users.GetProfile(ctx, order.UserID)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", order.UserID).Msg("user lookup failed, using id as email")
		}
		if profile != nil {
			detail.User = profile
			detail.UserEmail = profile.Email
		}
		if detail.UserEmail == "" {
			detail.UserEmail = order.UserID
		}
	} else if order.Gateway != nil {
		detail.UserEmail = order.Gateway.BuyerEmail
	}
	return detail, nil
}

// SetStatus delegates to the order store.
func (s *ReconciliationServiceImpl) SetStatus(ctx context.Context, key domain.OrderKey, status domain.OrderStatus) (*domain.Order, error) {
	return s.orders.UpdateStatus(ctx, key, status)
}
