package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionCheckout      AuditAction = "CHECKOUT"
	AuditActionIssueToken    AuditAction = "ISSUE_TOKEN"
	AuditActionGatewayReturn AuditAction = "GATEWAY_RETURN"
	AuditActionNotification  AuditAction = "GATEWAY_NOTIFICATION"
	AuditActionSetStatus     AuditAction = "SET_ORDER_STATUS"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	UserID       string      `json:"user_id,omitempty"` // empty for gateway callbacks
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
