package dto

import (
	"storefront-payments/internal/core/domain"

	"github.com/shopspring/decimal"
)

// LineItemRequest is one product line of a checkout body.
type LineItemRequest struct {
	ProductID string          `json:"product_id" binding:"required,max=100"`
	Title     string          `json:"title" binding:"max=200"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"money"`
	Quantity  int             `json:"quantity" binding:"required,gte=1"`
}

// BalanceCheckoutRequest is the request body for a balance purchase.
// The optional idempotency key travels in the Idempotency-Key header.
type BalanceCheckoutRequest struct {
	Items    []LineItemRequest `json:"items" binding:"required,min=1,dive"`
	Subtotal decimal.Decimal   `json:"subtotal" binding:"money"`
	Tip      decimal.Decimal   `json:"tip" binding:"money"`
	Shipping decimal.Decimal   `json:"shipping" binding:"money"`
	Taxes    decimal.Decimal   `json:"taxes" binding:"money"`
	Total    decimal.Decimal   `json:"total" binding:"money"`
}

// BuyerRequest carries the optional buyer and shipping fields.
type BuyerRequest struct {
	BuyerEmail      string `json:"buyerEmail" binding:"omitempty,email,max=255"`
	BuyerFullName   string `json:"buyerFullName" binding:"max=150"`
	Telephone       string `json:"telephone" binding:"max=30"`
	ShippingAddress string `json:"shippingAddress" binding:"max=255"`
	ShippingCity    string `json:"shippingCity" binding:"max=100"`
	ShippingCountry string `json:"shippingCountry" binding:"max=2"`
	ShippingState   string `json:"shippingState" binding:"max=100"`
	PostalCode      string `json:"postalCode" binding:"max=20"`
}

// ToDomain converts the buyer fields.
func (b BuyerRequest) ToDomain() domain.Buyer {
	return domain.Buyer{
		Email:           b.BuyerEmail,
		FullName:        b.BuyerFullName,
		Telephone:       b.Telephone,
		ShippingAddress: b.ShippingAddress,
		ShippingCity:    b.ShippingCity,
		ShippingCountry: b.ShippingCountry,
		ShippingState:   b.ShippingState,
		PostalCode:      b.PostalCode,
	}
}

// GatewayCheckoutRequest is the request body for a gateway purchase.
type GatewayCheckoutRequest struct {
	ReferenceCode string            `json:"referenceCode" binding:"omitempty,max=64,safe_ref"`
	Items         []LineItemRequest `json:"items" binding:"required,min=1,dive"`
	Subtotal      decimal.Decimal   `json:"subtotal" binding:"money"`
	Tip           decimal.Decimal   `json:"tip" binding:"money"`
	Shipping      decimal.Decimal   `json:"shipping" binding:"money"`
	Taxes         decimal.Decimal   `json:"taxes" binding:"money"`
	Total         decimal.Decimal   `json:"total" binding:"money"`
	Currency      string            `json:"currency" binding:"required,currency_code"`
	Description   string            `json:"description" binding:"max=255"`
	BuyerRequest
}

// IssueTokenRequest is the request body for POST /gateway/tokens.
type IssueTokenRequest struct {
	ReferenceCode   string          `json:"referenceCode" binding:"required,max=64,safe_ref"`
	Amount          decimal.Decimal `json:"amount" binding:"money"`
	Currency        string          `json:"currency" binding:"required,currency_code"`
	Description     string          `json:"description" binding:"required,max=255"`
	ResponseURL     string          `json:"responseUrl" binding:"omitempty,safe_url" sanitize:"-"`
	ConfirmationURL string          `json:"confirmationUrl" binding:"omitempty,safe_url" sanitize:"-"`
	BuyerRequest
}

// ToDomain converts the body into the service request.
func (r IssueTokenRequest) ToDomain() domain.IssueTokenRequest {
	return domain.IssueTokenRequest{
		ReferenceCode:   r.ReferenceCode,
		Amount:          r.Amount,
		Currency:        r.Currency,
		Description:     r.Description,
		Buyer:           r.BuyerRequest.ToDomain(),
		ResponseURL:     r.ResponseURL,
		ConfirmationURL: r.ConfirmationURL,
	}
}

// ReturnRequest carries the fields the gateway appended to the response page.
type ReturnRequest struct {
	ReferenceCode     string `json:"referenceCode" binding:"required,max=64,safe_ref"`
	TransactionState  string `json:"transactionState" binding:"max=10"`
	AuthorizationCode string `json:"authorizationCode" binding:"max=64"`
	BuyerEmail        string `json:"buyerEmail" binding:"max=255"`
	Message           string `json:"message" binding:"max=255"`
	TransactionID     string `json:"transactionId" binding:"max=64"`
}

// ToDomain converts the body into return params.
func (r ReturnRequest) ToDomain() domain.ReturnParams {
	return domain.ReturnParams{
		ReferenceCode:     r.ReferenceCode,
		TransactionState:  r.TransactionState,
		AuthorizationCode: r.AuthorizationCode,
		BuyerEmail:        r.BuyerEmail,
		Message:           r.Message,
		TransactionID:     r.TransactionID,
	}
}

// NotificationForm is the form-encoded confirmation posted by the gateway.
// Presence of the required fields is checked by the callback service so the
// missing names can be reported together.
type NotificationForm struct {
	ReferenceSale      string `form:"reference_sale"`
	StatePol           string `form:"state_pol"`
	ResponseMessagePol string `form:"response_message_pol"`
	TransactionID      string `form:"transaction_id"`
	MerchantID         string `form:"merchant_id"`
	Value              string `form:"value"`
	Currency           string `form:"currency"`
	Sign               string `form:"sign"`
}

// ToDomain converts the form into a notification.
func (f NotificationForm) ToDomain() domain.Notification {
	return domain.Notification{
		ReferenceCode:    f.ReferenceSale,
		TransactionState: f.StatePol,
		ResponseMessage:  f.ResponseMessagePol,
		TransactionID:    f.TransactionID,
		MerchantID:       f.MerchantID,
		Value:            f.Value,
		Currency:         f.Currency,
		Sign:             f.Sign,
	}
}

// SetStatusRequest is the body of PATCH /admin/orders/:key/status.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required,max=32"`
	Type   string `json:"type" binding:"omitempty,oneof=saldo payu SALDO PAYU"`
}

// SessionPingRequest is the body of POST /sessions/ping.
type SessionPingRequest struct {
	SessionID string `json:"session_id" binding:"required,max=128,safe_ref"`
}

// ToLineItems converts request lines to domain lines.
func ToLineItems(in []LineItemRequest) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(in))
	for _, it := range in {
		out = append(out, domain.LineItem{
			ProductID: it.ProductID,
			Title:     it.Title,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}
	return out
}

// BalanceResponse is the response body for GET /balance.
type BalanceResponse struct {
	UserID    string          `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	UpdatedAt string          `json:"updated_at"`
}

// LatestOrderResponse is the response body for GET /orders/latest.
type LatestOrderResponse struct {
	ID        int64  `json:"id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// OrderListResponse is one page of the caller's orders.
type OrderListResponse struct {
	Items    []*domain.Order `json:"items"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// SessionCountResponse reports the active session count.
type SessionCountResponse struct {
	Active int64 `json:"active"`
}
