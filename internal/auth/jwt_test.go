package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateToken(secret, "gudang", ScopeWrite, 0)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "gudang", claims.Operator)
	assert.Equal(t, ScopeWrite, claims.Scope)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(TokenExpiry), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokensHaveDistinctIDs(t *testing.T) {
	a, err := GenerateToken("s", "op", ScopeRead, time.Hour)
	require.NoError(t, err)
	b, err := GenerateToken("s", "op", ScopeRead, time.Hour)
	require.NoError(t, err)

	ca, err := ValidateToken("s", a)
	require.NoError(t, err)
	cb, err := ValidateToken("s", b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestValidateTokenRejects(t *testing.T) {
	token, err := GenerateToken("secret1", "op", ScopeRead, time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken("secret2", token)
	assert.Error(t, err, "wrong secret")

	_, err = ValidateToken("secret", "not-a-token")
	assert.Error(t, err, "garbage")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Operator: "op",
		Scope:    ScopeRead,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "old",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("secret1"))
	require.NoError(t, err)
	_, err = ValidateToken("secret1", signed)
	assert.Error(t, err, "expired")
}

func TestGenerateTokenRejectsUnknownScope(t *testing.T) {
	_, err := GenerateToken("s", "op", "admin", time.Hour)
	assert.ErrorIs(t, err, ErrInvalidScope)
}

func TestAllows(t *testing.T) {
	read := &Claims{Scope: ScopeRead}
	write := &Claims{Scope: ScopeWrite}

	assert.True(t, read.Allows(ScopeRead))
	assert.False(t, read.Allows(ScopeWrite))
	assert.True(t, write.Allows(ScopeRead))
	assert.True(t, write.Allows(ScopeWrite))
	assert.False(t, write.Allows("admin"))
}
