// Package auth holds the credential primitives of the server: signed bearer
// tokens, password hashing and verification code generation.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/verikeep/internal/common"
)

// Claims carries the account identity in the standard subject claim plus the
// verification flag and role at issue time.
type Claims struct {
	jwt.RegisteredClaims
	Verified bool   `json:"verified"`
	Role     string `json:"role,omitempty"`
}

// AccountID returns the subject claim.
func (c *Claims) AccountID() string {
	return c.Subject
}

// TokenManager mints and validates HS256 tokens with a single shared secret.
type TokenManager struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

type TokenOption func(*TokenManager)

// WithTokenClock overrides the time source used for iat/exp and validation.
func WithTokenClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) { m.now = now }
}

func NewTokenManager(secret []byte, validity time.Duration, opts ...TokenOption) *TokenManager {
	m := &TokenManager{secret: secret, validity: validity, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Issue signs a token for accountID valid for the configured lifetime.
func (m *TokenManager) Issue(accountID string, verified bool, role string) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.validity)),
			ID:        uuid.NewString(),
		},
		Verified: verified,
		Role:     role,
	})

	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// Validate checks signature, algorithm and expiry. Expired tokens yield
// common.ErrTokenExpired; every other failure yields common.ErrInvalidToken.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
