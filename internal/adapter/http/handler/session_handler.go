package handler

import (
	"storefront-payments/internal/adapter/http/dto"
	"storefront-payments/internal/core/ports"
	"storefront-payments/pkg/response"

	"github.com/gin-gonic/gin"
)

// SessionHandler counts active storefront sessions.
type SessionHandler struct {
	sessions ports.SessionService
}

func NewSessionHandler(sessions ports.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Ping handles POST /api/v1/sessions/ping.
func (h *SessionHandler) Ping(c *gin.Context) {
	var req dto.SessionPingRequest
	if !bindJSON(c, &req) {
		return
	}

	active, err := h.sessions.Ping(c.Request.Context(), req.SessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.SessionCountResponse{Active: active})
}

// Active handles GET /api/v1/sessions/active.
func (h *SessionHandler) Active(c *gin.Context) {
	active, err := h.sessions.Active(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.SessionCountResponse{Active: active})
}
