package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintParseRoundTrip(t *testing.T) {
	expires := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	signed, err := Mint(42, "lawyer", true, true, &expires, TypeAccess, "secret", 15*time.Minute)
	require.NoError(t, err)

	claims, err := Parse(signed, "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.Sub)
	assert.Equal(t, "lawyer", claims.Role)
	assert.True(t, claims.IsProfileComplete)
	assert.True(t, claims.HasSubscriptionAccess)
	require.NotNil(t, claims.SubscriptionExpiresAt)
	assert.True(t, expires.Equal(*claims.SubscriptionExpiresAt))
	assert.Equal(t, TypeAccess, claims.TokenType)
	assert.NotEmpty(t, claims.ID)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	signed, err := Mint(1, "consumer", false, false, nil, TypeRefresh, "secret", time.Minute)
	require.NoError(t, err)

	_, err = Parse(signed, "other")
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	signed, err := Mint(1, "consumer", false, false, nil, TypeAccess, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = Parse(signed, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestMintedTokensAreUnique(t *testing.T) {
	a, err := Mint(1, "consumer", false, false, nil, TypeRefresh, "secret", time.Hour)
	require.NoError(t, err)
	b, err := Mint(1, "consumer", false, false, nil, TypeRefresh, "secret", time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
