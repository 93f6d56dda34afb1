package handler

import (
	"time"

	"storefront-payments/internal/adapter/http/dto"
	"storefront-payments/internal/core/domain"
	"storefront-payments/internal/core/ports"
	"storefront-payments/pkg/apperror"
	"storefront-payments/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	defaultListPageSize = 10
	maxListPageSize     = 100
)

// BalanceHandler serves the caller's balance and order history.
type BalanceHandler struct {
	ledger ports.LedgerService
	orders ports.OrderService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(ledger ports.LedgerService, orders ports.OrderService) *BalanceHandler {
	return &BalanceHandler{ledger: ledger, orders: orders}
}

// GetBalance handles GET /api/v1/balance.
func (h *BalanceHandler) GetBalance(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	account, err := h.ledger.GetBalance(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		UserID:    account.UserID,
		Balance:   account.Balance,
		UpdatedAt: account.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

// ListOrders handles GET /api/v1/orders?type=&status=&page=&page_size=.
func (h *BalanceHandler) ListOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	purchaseType, err := domain.ParsePurchaseType(c.DefaultQuery("type", string(domain.PurchaseTypeBalance)))
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	page, ok := queryPage(c)
	if !ok {
		return
	}
	pageSize, ok := queryInt(c, "page_size", defaultListPageSize)
	if !ok {
		return
	}
	if pageSize > maxListPageSize {
		pageSize = maxListPageSize
	}

	q := domain.OrderQuery{Type: purchaseType, UserID: userID, Page: page, PageSize: pageSize}
	if raw := c.Query("status"); raw != "" {
		st, err := domain.ParseStatus(raw)
		if err != nil {
			response.Error(c, apperror.Validation(err.Error()))
			return
		}
		q.Status = &st
	}

	result, err := h.orders.ListOrders(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.OrderListResponse{
		Items:    result.Items,
		Total:    result.Total,
		Page:     page,
		PageSize: pageSize,
	})
}

// LatestOrder handles GET /api/v1/orders/latest.
func (h *BalanceHandler) LatestOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	order, err := h.orders.LatestOrder(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.LatestOrderResponse{
		ID:        order.ID,
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt.UTC().Format(time.RFC3339),
	})
}
