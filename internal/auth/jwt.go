// Package auth issues and checks the bearer tokens that gate the HTTP API.
// There are no user accounts: an operator is a free-form name recorded in
// the token, and the scope decides whether it may change inventory.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token scopes.
const (
	ScopeRead  = "read"
	ScopeWrite = "write"
)

// ErrInvalidScope is returned when asked to issue a token for an unknown scope.
var ErrInvalidScope = errors.New("scope must be read or write")

// Claims represents the JWT claims.
type Claims struct {
	Operator string `json:"operator"`
	Scope    string `json:"scope"`
	jwt.RegisteredClaims
}

// Allows reports whether the token grants scope. Write implies read.
func (c *Claims) Allows(scope string) bool {
	switch scope {
	case ScopeRead:
		return c.Scope == ScopeRead || c.Scope == ScopeWrite
	case ScopeWrite:
		return c.Scope == ScopeWrite
	}
	return false
}

// TokenExpiry is the default token lifetime.
const TokenExpiry = 7 * 24 * time.Hour

// GenerateToken creates a signed token for operator with a unique JTI.
// A ttl of zero uses TokenExpiry.
func GenerateToken(secret, operator, scope string, ttl time.Duration) (string, error) {
	if scope != ScopeRead && scope != ScopeWrite {
		return "", ErrInvalidScope
	}
	if ttl <= 0 {
		ttl = TokenExpiry
	}

	now := time.Now()
	claims := Claims{
		Operator: operator,
		Scope:    scope,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   operator,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func ValidateToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("token has no id")
	}
	return claims, nil
}
