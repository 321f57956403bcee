package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// TokenTTL is the fixed lifetime of an issued token.
const TokenTTL = time.Hour

var (
	ErrSigningKeyMissing     = errors.New("token signing key is not configured")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
)

// Claims is the identity payload carried inside a token.
type Claims struct {
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	Username string      `json:"username"`
	jwt.RegisteredClaims
}

// Actor converts the claims into the caller identity used by the services.
func (c *Claims) Actor() domain.Actor {
	return domain.Actor{
		ID:       c.Subject,
		Email:    c.Email,
		Role:     c.Role,
		Username: c.Username,
	}
}

// TokenCodec issues and decodes HS256-signed identity tokens.
type TokenCodec struct {
	key []byte
	now func() time.Time
}

// NewTokenCodec returns a codec signing with secret. An empty secret is
// accepted here and rejected by Issue, so a misconfigured process still boots
// and reports the problem on first use.
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{key: []byte(secret), now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	c.now = now
	return c
}

// Issue signs a token for u that expires TokenTTL from now.
func (c *TokenCodec) Issue(u *domain.User) (string, error) {
	if len(c.key) == 0 {
		return "", ErrSigningKeyMissing
	}

	issuedAt := c.now().UTC().Truncate(time.Second)
	claims := Claims{
		Email:    u.Email,
		Role:     u.Role,
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(TokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry of token and returns its claims.
// Errors wrap one of ErrTokenMalformed, ErrTokenSignatureInvalid or
// ErrTokenExpired.
func (c *TokenCodec) Decode(token string) (*Claims, error) {
	if len(c.key) == 0 {
		return nil, ErrSigningKeyMissing
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, fmt.Errorf("%w: %v", ErrTokenSignatureInvalid, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		}
	}

	if claims.Subject == "" || claims.Email == "" || !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: incomplete identity claims", ErrTokenMalformed)
	}
	return claims, nil
}
