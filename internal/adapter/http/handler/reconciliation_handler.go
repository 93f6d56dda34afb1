package handler

import (
	"storefront-payments/internal/adapter/http/dto"
	"storefront-payments/internal/core/domain"
	"storefront-payments/internal/core/ports"
	"storefront-payments/pkg/apperror"
	"storefront-payments/pkg/response"

	"github.com/gin-gonic/gin"
)

// ReconciliationHandler is the operator view over both order keyspaces.
type ReconciliationHandler struct {
	recon ports.ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(recon ports.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{recon: recon}
}

// ListPending handles GET /api/v1/admin/orders?type=&status=&page=.
func (h *ReconciliationHandler) ListPending(c *gin.Context) {
	purchaseType, err := domain.ParsePurchaseType(c.Query("type"))
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	page, ok := queryPage(c)
	if !ok {
		return
	}

	result, err := h.recon.ListPending(c.Request.Context(), ports.ListPendingRequest{
		Page:   page,
		Type:   purchaseType,
		Status: c.Query("status"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, result)
}

// GetDetail handles GET /api/v1/admin/orders/:key?type=.
func (h *ReconciliationHandler) GetDetail(c *gin.Context) {
	key, err := domain.ParseOrderKey(c.Query("type"), c.Param("key"))
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	detail, err := h.recon.GetDetail(c.Request.Context(), key)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, detail)
}

// SetStatus handles PATCH /api/v1/admin/orders/:key/status. The order type
// comes from the body, or from the type query parameter.
func (h *ReconciliationHandler) SetStatus(c *gin.Context) {
	var req dto.SetStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	purchaseType := req.Type
	if purchaseType == "" {
		purchaseType = c.Query("type")
	}
	key, err := domain.ParseOrderKey(purchaseType, c.Param("key"))
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	order, err := h.recon.SetStatus(c.Request.Context(), key, domain.OrderStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, order)
}
