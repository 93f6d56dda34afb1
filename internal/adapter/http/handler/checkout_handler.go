package handler

import (
	"strings"

	"storefront-payments/internal/adapter/http/dto"
	"storefront-payments/internal/core/ports"
	"storefront-payments/pkg/apperror"
	"storefront-payments/pkg/response"

	"github.com/gin-gonic/gin"
)

const maxIdempotencyKeyLen = 128

// CheckoutHandler handles both checkout paths.
type CheckoutHandler struct {
	checkout ports.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkout ports.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// CheckoutWithBalance handles POST /api/v1/checkout/balance.
func (h *CheckoutHandler) CheckoutWithBalance(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	idemKey := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
	if len(idemKey) > maxIdempotencyKeyLen {
		response.Error(c, apperror.Validation("Idempotency-Key is too long"))
		return
	}

	var req dto.BalanceCheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.checkout.CheckoutWithBalance(c.Request.Context(), ports.BalanceCheckoutRequest{
		UserID:         userID,
		Items:          dto.ToLineItems(req.Items),
		Subtotal:       req.Subtotal,
		Tip:            req.Tip,
		Shipping:       req.Shipping,
		Taxes:          req.Taxes,
		Total:          req.Total,
		IdempotencyKey: idemKey,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// CheckoutWithGateway handles POST /api/v1/checkout/gateway.
func (h *CheckoutHandler) CheckoutWithGateway(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.GatewayCheckoutRequest
	if !bindJSON(c, &req) {
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.checkout.CheckoutWithGateway(c.Request.Context(), ports.GatewayCheckoutRequest{
		UserID:        userID,
		ReferenceCode: req.ReferenceCode,
		Items:         dto.ToLineItems(req.Items),
		Subtotal:      req.Subtotal,
		Tip:           req.Tip,
		Shipping:      req.Shipping,
		Taxes:         req.Taxes,
		Total:         req.Total,
		Currency:      req.Currency,
		Description:   req.Description,
		Buyer:         req.BuyerRequest.ToDomain(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}
