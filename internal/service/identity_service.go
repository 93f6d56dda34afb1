package service

import (
	"errors"
	"fmt"
	"time"

	"storefront-payments/internal/core/domain"

	"github.com/golang-jwt/jwt/v5"
)

// identityClaims is the bearer token contract of the auth provider.
type identityClaims struct {
	Email string `json:"email"`
	Admin bool   `json:"admin"`
	jwt.RegisteredClaims
}

// JWTIdentityService implements ports.IdentityService using HS256 JWT.
type JWTIdentityService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewJWTIdentityService creates a new JWT identity service.
func NewJWTIdentityService(secret string, issuer string) *JWTIdentityService {
	return &JWTIdentityService{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

// Issue signs a token for identity. The storefront itself only verifies;
// Issue serves tooling and tests.
func (s *JWTIdentityService) Issue(identity domain.Identity, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)

	claims := identityClaims{
		Email: identity.Email,
		Admin: identity.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// Verify parses and validates a bearer token, returning the identity.
func (s *JWTIdentityService) Verify(tokenString string) (*domain.Identity, error) {
	claims := &identityClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("missing subject claim")
	}

	return &domain.Identity{
		UserID:  claims.Subject,
		Email:   claims.Email,
		IsAdmin: claims.Admin,
	}, nil
}
