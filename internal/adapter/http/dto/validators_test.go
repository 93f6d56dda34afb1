package dto

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := IssueTokenRequest{
		ReferenceCode: "  REF-1  ",
		Currency:      " COP ",
		Description:   " Storefront order ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "REF-1", req.ReferenceCode)
	assert.Equal(t, "COP", req.Currency)
	assert.Equal(t, "Storefront order", req.Description)
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	req := GatewayCheckoutRequest{
		Description: "gift <script>alert('x')</script>",
	}
	SanitizeStruct(&req)

	assert.Contains(t, req.Description, "&lt;script&gt;")
	assert.NotContains(t, req.Description, "<script>")
}

func TestSanitizeStruct_DescendsIntoEmbeddedBuyer(t *testing.T) {
	req := IssueTokenRequest{
		BuyerRequest: BuyerRequest{
			BuyerFullName:   "  Ana <b>Ruiz</b> ",
			ShippingAddress: " Calle 10 ",
		},
	}
	SanitizeStruct(&req)

	assert.Equal(t, "Ana &lt;b&gt;Ruiz&lt;/b&gt;", req.BuyerFullName)
	assert.Equal(t, "Calle 10", req.ShippingAddress)
}

func TestSanitizeStruct_LeavesAmountsAlone(t *testing.T) {
	req := IssueTokenRequest{Amount: decimal.RequireFromString("150.25")}
	SanitizeStruct(&req)
	assert.Equal(t, "150.25", req.Amount.String())
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	s := "hello"
	SanitizeStruct(s) // should not panic
}

// --- Custom Validator tests ---

func TestSafeRef(t *testing.T) {
	valid := []string{"ref-001", "REF_002", "a.b.c", "SFP-9f1c2d"}
	for _, tc := range valid {
		assert.True(t, safeRefRe.MatchString(tc), "expected valid: %s", tc)
	}

	invalid := []string{
		"ref 001",  // space
		"ref<001>", // angle brackets
		"REF~1",    // signature separator
		"",
		"ref\n001",
	}
	for _, tc := range invalid {
		assert.False(t, safeRefRe.MatchString(tc), "expected invalid: %q", tc)
	}
}

func TestCurrencyCode(t *testing.T) {
	assert.True(t, currencyCodeRe.MatchString("COP"))
	assert.True(t, currencyCodeRe.MatchString("USD"))
	assert.False(t, currencyCodeRe.MatchString("cop"))
	assert.False(t, currencyCodeRe.MatchString("US"))
	assert.False(t, currencyCodeRe.MatchString("USDT"))
}

func TestIssueTokenRequest_Binding(t *testing.T) {
	valid := IssueTokenRequest{
		ReferenceCode: "REF1",
		Amount:        decimal.NewFromInt(1000),
		Currency:      "COP",
		Description:   "Order REF1",
		ResponseURL:   "https://shop.example.com/payu/return",
	}
	require.NoError(t, binding.Validator.ValidateStruct(&valid))

	tests := []struct {
		name   string
		mutate func(r *IssueTokenRequest)
	}{
		{"missing reference", func(r *IssueTokenRequest) { r.ReferenceCode = "" }},
		{"unsafe reference", func(r *IssueTokenRequest) { r.ReferenceCode = "REF 1" }},
		{"lower-case currency", func(r *IssueTokenRequest) { r.Currency = "cop" }},
		{"missing description", func(r *IssueTokenRequest) { r.Description = "" }},
		{"non-http response url", func(r *IssueTokenRequest) { r.ResponseURL = "javascript:alert(1)" }},
		{"bad buyer email", func(r *IssueTokenRequest) { r.BuyerEmail = "not-an-email" }},
		{"negative amount", func(r *IssueTokenRequest) { r.Amount = decimal.NewFromInt(-5) }},
		{"sub-cent amount", func(r *IssueTokenRequest) { r.Amount = decimal.RequireFromString("10.005") }},
		{"amount past the maximum", func(r *IssueTokenRequest) { r.Amount = decimal.RequireFromString("184467440737095515.16") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			assert.Error(t, binding.Validator.ValidateStruct(&req))
		})
	}
}

func TestBalanceCheckoutRequest_Binding(t *testing.T) {
	req := BalanceCheckoutRequest{
		Items: []LineItemRequest{{ProductID: "p1", UnitPrice: decimal.NewFromInt(60), Quantity: 1}},
		Total: decimal.NewFromInt(60),
	}
	require.NoError(t, binding.Validator.ValidateStruct(&req))

	req.Total = decimal.RequireFromString("60.10")
	require.NoError(t, binding.Validator.ValidateStruct(&req))

	req.Total = decimal.NewFromInt(-1)
	assert.Error(t, binding.Validator.ValidateStruct(&req))

	req.Total = decimal.RequireFromString("184467440737095515.16")
	assert.Error(t, binding.Validator.ValidateStruct(&req))
	req.Total = decimal.NewFromInt(60)

	req.Items[0].Quantity = 0
	assert.Error(t, binding.Validator.ValidateStruct(&req))

	req.Items = nil
	assert.Error(t, binding.Validator.ValidateStruct(&req))
}

func TestToLineItems(t *testing.T) {
	items := ToLineItems([]LineItemRequest{
		{ProductID: "p1", Title: "Mug", UnitPrice: decimal.RequireFromString("12.50"), Quantity: 2},
	})
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("12.5")))
}

func TestNotificationForm_ToDomain(t *testing.T) {
	n := NotificationForm{
		ReferenceSale:      "REF1",
		StatePol:           "4",
		ResponseMessagePol: "APPROVED",
		TransactionID:      "tx-1",
		MerchantID:         "508029",
		Value:              "150.00",
		Currency:           "USD",
		Sign:               "abc",
	}.ToDomain()

	assert.Equal(t, "REF1", n.ReferenceCode)
	assert.Equal(t, "4", n.TransactionState)
	assert.Equal(t, "APPROVED", n.ResponseMessage)
	assert.Equal(t, "508029", n.MerchantID)
	assert.Equal(t, "abc", n.Sign)
}

func TestSanitizeStruct_SkipsURLs(t *testing.T) {
	req := IssueTokenRequest{
		ResponseURL:     "https://shop.example.com/return?a=1&b=2",
		ConfirmationURL: "https://shop.example.com/confirm?x=1&y=2",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "https://shop.example.com/return?a=1&b=2", req.ResponseURL)
	assert.Equal(t, "https://shop.example.com/confirm?x=1&y=2", req.ConfirmationURL)
}
