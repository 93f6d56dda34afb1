package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"storefront-payments/internal/core/domain"
	"storefront-payments/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that logs successful write operations.
// Routes are matched on their registered pattern, not the raw path.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			return
		}

		action, resourceType := mapPathToAction(c.FullPath(), c.Request.Method)
		if action == "" {
			return
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"request_id": c.GetString(CtxRequestID),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			UserID:       c.GetString(CtxUserID),
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   c.Param("key"),
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}

func mapPathToAction(route, method string) (domain.AuditAction, string) {
	switch {
	case route == "/api/v1/checkout/balance" && method == http.MethodPost:
		return domain.AuditActionCheckout, "balance_order"
	case route == "/api/v1/checkout/gateway" && method == http.MethodPost:
		return domain.AuditActionCheckout, "gateway_order"
	case route == "/api/v1/gateway/tokens" && method == http.MethodPost:
		return domain.AuditActionIssueToken, "gateway_token"
	case route == "/api/v1/gateway/return" && method == http.MethodPost:
		return domain.AuditActionGatewayReturn, "gateway_order"
	case route == "/api/v1/gateway/notifications" && method == http.MethodPost:
		return domain.AuditActionNotification, "gateway_order"
	case route == "/api/v1/admin/orders/:key/status" && method == http.MethodPatch:
		return domain.AuditActionSetStatus, "order"
	}
	return "", ""
}
