package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-payments/config"
	"storefront-payments/internal/core/domain"
	"storefront-payments/internal/core/ports/mocks"
	"storefront-payments/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var testPayUConfig = config.PayUConfig{
	APIKey:          testAPIKey,
	MerchantID:      testMerchantID,
	AccountID:       "512321",
	CheckoutURL:     "https://sandbox.checkout.payulatam.com/ppp-web-gateway-payu/",
	ResponseURL:     "https://shop.example.com/payu/response",
	ConfirmationURL: "https://shop.example.com/api/v1/gateway/notifications",
	Test:            true,
}

type tokenTestDeps struct {
	svc   *GatewayTokenServiceImpl
	repo  *mocks.MockTokenRepository
	clock time.Time
}

func setupTokenService(t *testing.T, secret string) *tokenTestDeps {
	ctrl := gomock.NewController(t)
	d := &tokenTestDeps{
		repo:  mocks.NewMockTokenRepository(ctrl),
		clock: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	d.svc = NewGatewayTokenService(
		d.repo,
		NewPayUSigner(testPayUConfig.APIKey, testPayUConfig.MerchantID),
		secret,
		time.Hour,
		testPayUConfig,
		newTestLogger(),
	)
	d.svc.now = func() time.Time { return d.clock }
	return d
}

// storeInto makes the repo mock keep the created row and serve it back.
func (d *tokenTestDeps) storeInto(row **domain.GatewayToken) {
	d.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, tok *domain.GatewayToken) error {
			*row = tok
			return nil
		},
	)
	d.repo.EXPECT().GetByReference(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, ref string) (*domain.GatewayToken, error) {
			if *row == nil || (*row).ReferenceCode != ref {
				return nil, nil
			}
			return *row, nil
		},
	).AnyTimes()
}

func TestGatewayTokenService_RoundTrip(t *testing.T) {
	d := setupTokenService(t, "token-secret")
	ctx := context.Background()
	var row *domain.GatewayToken
	d.storeInto(&row)

	form, err := d.svc.IssueToken(ctx, domain.IssueTokenRequest{
		ReferenceCode: "REF1",
		Amount:        dec("1000"),
		Currency:      "COP",
		Description:   "desc",
	})
	require.NoError(t, err)
	assert.Equal(t, row.Token, form.Token)

	payload, err := d.svc.GetToken(ctx, "REF1")
	require.NoError(t, err)
	assert.Equal(t, "REF1", payload.ReferenceCode)
	assert.True(t, payload.Amount.Equal(dec("1000")))
	assert.Equal(t, "COP", payload.Currency)
	assert.Equal(t, d.clock.Add(time.Hour), payload.ExpiresAt.UTC())
}

func TestGatewayTokenService_IssueToken_RedirectForm(t *testing.T) {
	d := setupTokenService(t, "token-secret")
	var row *domain.GatewayToken
	d.storeInto(&row)

	form, err := d.svc.IssueToken(context.Background(), domain.IssueTokenRequest{
		ReferenceCode: "REF1",
		Amount:        dec("1000"),
		Currency:      "COP",
		Description:   "desc",
		Buyer:         domain.Buyer{Email: "buyer@example.com", ShippingCity: "Bogota"},
		ResponseURL:   "https://shop.example.com/custom-return",
	})
	require.NoError(t, err)

	assert.Equal(t, testPayUConfig.CheckoutURL, form.GatewayURL)
	assert.Equal(t, "508029", form.MerchantID)
	assert.Equal(t, "512321", form.AccountID)
	assert.Equal(t, "7911297a3c304d3217ef0cfce3f97f18", form.Signature)
	assert.Equal(t, 1, form.Test)
	assert.Equal(t, "https://shop.example.com/custom-return", form.ResponseURL)
	assert.Equal(t, testPayUConfig.ConfirmationURL, form.ConfirmationURL)
	assert.Equal(t, "buyer@example.com", form.Email)
	assert.Equal(t, "Bogota", form.ShippingCity)
	assert.NotEqual(t, form.Signature, form.Token)
}

func TestGatewayTokenService_IssueToken_Validation(t *testing.T) {
	base := domain.IssueTokenRequest{ReferenceCode: "REF1", Amount: dec("1000"), Currency: "COP", Description: "desc"}

	tests := []struct {
		name   string
		mutate func(r *domain.IssueTokenRequest)
	}{
		{"zero amount", func(r *domain.IssueTokenRequest) { r.Amount = dec("0") }},
		{"negative amount", func(r *domain.IssueTokenRequest) { r.Amount = dec("-10") }},
		{"two-letter currency", func(r *domain.IssueTokenRequest) { r.Currency = "CO" }},
		{"four-letter currency", func(r *domain.IssueTokenRequest) { r.Currency = "COPX" }},
		{"numeric currency", func(r *domain.IssueTokenRequest) { r.Currency = "123" }},
		{"missing reference", func(r *domain.IssueTokenRequest) { r.ReferenceCode = "" }},
		{"missing description", func(r *domain.IssueTokenRequest) { r.Description = "" }},
		{"sub-cent amount", func(r *domain.IssueTokenRequest) { r.Amount = dec("1.001") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupTokenService(t, "token-secret")
			req := base
			tt.mutate(&req)

			_, err := d.svc.IssueToken(context.Background(), req)
			requireAppError(t, err, apperror.CodeInvalidInput)
		})
	}
}

func TestGatewayTokenService_IssueToken_Duplicate(t *testing.T) {
	d := setupTokenService(t, "token-secret")
	d.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domain.ErrDuplicateReference)

	_, err := d.svc.IssueToken(context.Background(), domain.IssueTokenRequest{
		ReferenceCode: "REF1", Amount: dec("1"), Currency: "COP", Description: "desc",
	})
	requireAppError(t, err, apperror.CodeDuplicateReference)
}

func TestGatewayTokenService_IssueToken_StoreFailure(t *testing.T) {
	d := setupTokenService(t, "token-secret")
	d.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("timeout"))

	_, err := d.svc.IssueToken(context.Background(), domain.IssueTokenRequest{
		ReferenceCode: "REF1", Amount: dec("1"), Currency: "COP", Description: "desc",
	})
	requireAppError(t, err, apperror.CodeInternal)
}

func TestGatewayTokenService_GetToken_Expiry(t *testing.T) {
	d := setupTokenService(t, "token-secret")
	ctx := context.Background()
	var row *domain.GatewayToken
	d.storeInto(&row)

	issuedAt := d.clock
	_, err := d.svc.IssueToken(ctx, domain.IssueTokenRequest{
		ReferenceCode: "REF1", Amount: dec("1000"), Currency: "COP", Description: "desc",
	})
	require.NoError(t, err)

	d.clock = issuedAt.Add(59 * time.Minute)
	_, err = d.svc.GetToken(ctx, "REF1")
	require.NoError(t, err)

	d.clock = issuedAt.Add(time.Hour + time.Second)
	_, err = d.svc.GetToken(ctx, "REF1")
	requireAppError(t, err, apperror.CodeTokenExpired)
}

func TestGatewayTokenService_GetToken_ForeignSignature(t *testing.T) {
	issuer := setupTokenService(t, "someone-elses-secret")
	var row *domain.GatewayToken
	issuer.storeInto(&row)
	_, err := issuer.svc.IssueToken(context.Background(), domain.IssueTokenRequest{
		ReferenceCode: "REF1", Amount: dec("1000"), Currency: "COP", Description: "desc",
	})
	require.NoError(t, err)

	d := setupTokenService(t, "token-secret")
	d.repo.EXPECT().GetByReference(gomock.Any(), "REF1").Return(row, nil)

	_, err = d.svc.GetToken(context.Background(), "REF1")
	requireAppError(t, err, apperror.CodeInvalidSignature)
}

func TestGatewayTokenService_GetToken_BoundToReference(t *testing.T) {
	d := setupTokenService(t, "token-secret")
	var row *domain.GatewayToken
	d.storeInto(&row)
	_, err := d.svc.IssueToken(context.Background(), domain.IssueTokenRequest{
		ReferenceCode: "REF1", Amount: dec("1000"), Currency: "COP", Description: "desc",
	})
	require.NoError(t, err)

	// a row whose token was minted for another reference
	other := setupTokenService(t, "token-secret")
	other.repo.EXPECT().GetByReference(gomock.Any(), "REF2").Return(&domain.GatewayToken{
		ReferenceCode: "REF2",
		Token:         row.Token,
	}, nil)

	_, err = other.svc.GetToken(context.Background(), "REF2")
	requireAppError(t, err, apperror.CodeInvalidSignature)
}

func TestGatewayTokenService_GetToken_NotFound(t *testing.T) {
	d := setupTokenService(t, "token-secret")
	d.repo.EXPECT().GetByReference(gomock.Any(), "NOPE").Return(nil, nil)

	_, err := d.svc.GetToken(context.Background(), "NOPE")
	requireAppError(t, err, apperror.CodeNotFound)
}
