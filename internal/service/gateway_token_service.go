package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-payments/config"
	"storefront-payments/internal/core/domain"
	"storefront-payments/internal/core/ports"
	"storefront-payments/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// gatewayClaims binds a token to the fields the gateway must not see altered.
type gatewayClaims struct {
	ReferenceCode string `json:"ref"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	jwt.RegisteredClaims
}

// GatewayTokenServiceImpl implements ports.GatewayTokenService using HS256 JWT.
type GatewayTokenServiceImpl struct {
	repo   ports.TokenRepository
	signer ports.GatewaySigner
	secret []byte
	expiry time.Duration
	payu   config.PayUConfig
	now    func() time.Time
	log    zerolog.Logger
}

// NewGatewayTokenService creates a new GatewayTokenServiceImpl.
func NewGatewayTokenService(
	repo ports.TokenRepository,
	signer ports.GatewaySigner,
	secret string,
	expiry time.Duration,
	payu config.PayUConfig,
	log zerolog.Logger,
) *GatewayTokenServiceImpl {
	return &GatewayTokenServiceImpl{
		repo:   repo,
		signer: signer,
		secret: []byte(secret),
		expiry: expiry,
		payu:   payu,
		now:    time.Now,
		log:    log,
	}
}

// IssueToken signs and stores the token for a reference code and returns the
// complete redirect form for the gateway.
func (s *GatewayTokenServiceImpl) IssueToken(ctx context.Context, req domain.IssueTokenRequest) (*domain.RedirectForm, error) {
	if err := validateIssueTokenRequest(req); err != nil {
		return nil, err
	}

	now := s.now()
	claims := gatewayClaims{
		ReferenceCode: req.ReferenceCode,
		Amount:        req.Amount.String(),
		Currency:      req.Currency,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   req.ReferenceCode,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("signing gateway token: %w", err))
	}

	err = s.repo.Create(ctx, &domain.GatewayToken{
		ReferenceCode: req.ReferenceCode,
		Token:         signed,
		CreatedAt:     now.UTC(),
	})
	if errors.Is(err, domain.ErrDuplicateReference) {
		return nil, apperror.ErrDuplicateReference(req.ReferenceCode)
	}
	if err != nil {
		return nil, apperror.ErrPersistence(err)
	}

	form := &domain.RedirectForm{
		GatewayURL:      s.payu.CheckoutURL,
		MerchantID:      s.payu.MerchantID,
		AccountID:       s.payu.AccountID,
		ReferenceCode:   req.ReferenceCode,
		Amount:          req.Amount,
		Currency:        req.Currency,
		Signature:       s.signer.FormSignature(req.ReferenceCode, req.Amount, req.Currency),
		Description:     req.Description,
		ResponseURL:     firstNonEmpty(req.ResponseURL, s.payu.ResponseURL),
		ConfirmationURL: firstNonEmpty(req.ConfirmationURL, s.payu.ConfirmationURL),
		Buyer:           req.Buyer,
		Token:           signed,
	}
	if s.payu.Test {
		form.Test = 1
	}

	s.log.Info().
		Str("reference_code", req.ReferenceCode).
		Str("amount", req.Amount.String()).
		Str("currency", req.Currency).
		Msg("gateway token issued")

	return form, nil
}

// GetToken loads and verifies the token for referenceCode.
func (s *GatewayTokenServiceImpl) GetToken(ctx context.Context, referenceCode string) (*domain.TokenPayload, error) {
	if referenceCode == "" {
		return nil, apperror.Validation("referenceCode is required")
	}

	row, err := s.repo.GetByReference(ctx, referenceCode)
	if err != nil {
		return nil, apperror.ErrPersistence(err)
	}
	if row == nil {
		return nil, apperror.ErrNotFound("gateway token")
	}

	claims := &gatewayClaims{}
	_, err = jwt.ParseWithClaims(row.Token, claims,
		func(token *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, apperror.ErrTokenExpired()
	}
	if err != nil {
		s.log.Warn().Err(err).Str("reference_code", referenceCode).Msg("stored gateway token failed verification")
		return nil, apperror.ErrInvalidSignature()
	}
	if claims.ReferenceCode != referenceCode {
		return nil, apperror.ErrInvalidSignature()
	}

	amount, err := decimal.NewFromString(claims.Amount)
	if err != nil {
		return nil, apperror.ErrInvalidSignature()
	}

	return &domain.TokenPayload{
		ReferenceCode: claims.ReferenceCode,
		Amount:        amount,
		Currency:      claims.Currency,
		ExpiresAt:     claims.ExpiresAt.Time,
	}, nil
}

func validateIssueTokenRequest(req domain.IssueTokenRequest) error {
	switch {
	case req.ReferenceCode == "":
		return apperror.Validation("referenceCode is required")
	case req.Description == "":
		return apperror.Validation("description is required")
	case !req.Amount.IsPositive():
		return apperror.Validation("amount must be greater than zero")
	case !isCurrencyCode(req.Currency):
		return apperror.Validation("currency must be a 3-letter code")
	}
	if _, err := domain.ToCents(req.Amount); err != nil {
		return apperror.Validation(err.Error())
	}
	return nil
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
