package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GatewayToken is the persisted signed token for one reference code.
type GatewayToken struct {
	ReferenceCode string    `json:"reference_code"`
	Token         string    `json:"token"`
	CreatedAt     time.Time `json:"created_at"`
}

// TokenPayload is what a gateway token binds.
type TokenPayload struct {
	ReferenceCode string          `json:"referenceCode"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	ExpiresAt     time.Time       `json:"expiresAt"`
}

// Buyer carries the optional buyer and shipping fields forwarded to the gateway.
type Buyer struct {
	Email           string `json:"buyerEmail,omitempty"`
	FullName        string `json:"buyerFullName,omitempty"`
	Telephone       string `json:"telephone,omitempty"`
	ShippingAddress string `json:"shippingAddress,omitempty"`
	ShippingCity    string `json:"shippingCity,omitempty"`
	ShippingCountry string `json:"shippingCountry,omitempty"`
	ShippingState   string `json:"shippingState,omitempty"`
	PostalCode      string `json:"postalCode,omitempty"`
}

// IssueTokenRequest is the input for issuing a gateway token.
type IssueTokenRequest struct {
	ReferenceCode   string
	Amount          decimal.Decimal
	Currency        string
	Description     string
	Buyer           Buyer
	ResponseURL     string // overrides the configured one when set
	ConfirmationURL string
}

// RedirectForm is every field the browser posts to the gateway checkout page.
type RedirectForm struct {
	GatewayURL      string          `json:"gatewayUrl"`
	MerchantID      string          `json:"merchantId"`
	AccountID       string          `json:"accountId"`
	ReferenceCode   string          `json:"referenceCode"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Signature       string          `json:"signature"`
	Description     string          `json:"description"`
	Test            int             `json:"test"`
	ResponseURL     string          `json:"responseUrl,omitempty"`
	ConfirmationURL string          `json:"confirmationUrl,omitempty"`
	Buyer
	Token string `json:"token"`
}

// PayU transaction states reported in state_pol.
const (
	TransactionStateApproved = "4"
	TransactionStateExpired  = "5"
	TransactionStateDeclined = "6"
	TransactionStatePending  = "7"
)

// StatusForTransactionState maps a gateway state to an order status.
// Unknown states leave the status alone.
func StatusForTransactionState(state string) (OrderStatus, bool) {
	switch state {
	case TransactionStateApproved:
		return OrderStatusApproved, true
	case TransactionStateDeclined, TransactionStateExpired:
		return OrderStatusDeclined, true
	case TransactionStatePending:
		return OrderStatusPending, true
	default:
		return "", false
	}
}

// Notification is an asynchronous confirmation posted by the gateway.
type Notification struct {
	ReferenceCode    string
	TransactionState string
	ResponseMessage  string
	TransactionID    string

	// Signature fields, only checked when verification is enabled.
	MerchantID string
	Value      string
	Currency   string
	Sign       string
}

// ReturnParams are the query fields the gateway appends to the response page.
type ReturnParams struct {
	ReferenceCode     string
	TransactionState  string
	AuthorizationCode string
	BuyerEmail        string
	Message           string
	TransactionID     string
}
