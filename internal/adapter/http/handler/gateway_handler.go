package handler

import (
	"storefront-payments/internal/adapter/http/dto"
	"storefront-payments/internal/adapter/http/middleware"
	"storefront-payments/internal/core/ports"
	"storefront-payments/pkg/apperror"
	"storefront-payments/pkg/response"

	"github.com/gin-gonic/gin"
)

// GatewayHandler handles tokens, the browser return page and the gateway's
// server-to-server notifications.
type GatewayHandler struct {
	tokens    ports.GatewayTokenService
	callbacks ports.CallbackService
}

// NewGatewayHandler creates a new GatewayHandler.
func NewGatewayHandler(tokens ports.GatewayTokenService, callbacks ports.CallbackService) *GatewayHandler {
	return &GatewayHandler{tokens: tokens, callbacks: callbacks}
}

// IssueToken handles POST /api/v1/gateway/tokens.
func (h *GatewayHandler) IssueToken(c *gin.Context) {
	var req dto.IssueTokenRequest
	if !bindJSON(c, &req) {
		return
	}
	dto.SanitizeStruct(&req)

	form, err := h.tokens.IssueToken(c.Request.Context(), req.ToDomain())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, form)
}

// GetToken handles GET /api/v1/gateway/tokens/:referenceCode.
func (h *GatewayHandler) GetToken(c *gin.Context) {
	ref := c.Param("referenceCode")
	if ref == "" {
		response.Error(c, apperror.Validation("referenceCode is required"))
		return
	}

	payload, err := h.tokens.GetToken(c.Request.Context(), ref)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, payload)
}

// RecordReturn handles POST /api/v1/gateway/return.
func (h *GatewayHandler) RecordReturn(c *gin.Context) {
	var req dto.ReturnRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.callbacks.RecordReturn(c.Request.Context(), req.ToDomain())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, order)
}

// Notification handles POST /api/v1/gateway/notifications. The gateway
// posts application/x-www-form-urlencoded.
func (h *GatewayHandler) Notification(c *gin.Context) {
	var form dto.NotificationForm
	if err := c.ShouldBind(&form); err != nil {
		if middleware.IsBodyTooLarge(err) {
			response.Error(c, apperror.Validation("request body too large"))
			return
		}
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	order, err := h.callbacks.HandleNotification(c.Request.Context(), form.ToDomain())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, order)
}
