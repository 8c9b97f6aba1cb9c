package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundtrip(t *testing.T) {
	signed, err := NewToken("test-secret", "64f1c0ffee0000000000aaaa", []string{"user", "admin"}, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, signed.Token)
	assert.WithinDuration(t, time.Now().Add(time.Minute), signed.Exp, 5*time.Second)

	claims, err := ParseToken("test-secret", signed.Token)
	require.NoError(t, err)
	assert.Equal(t, "64f1c0ffee0000000000aaaa", claims.Subject)
	assert.Equal(t, []string{"user", "admin"}, claims.Roles)
}

func TestParseTokenExpired(t *testing.T) {
	signed, err := NewToken("test-secret", "64f1c0ffee0000000000aaaa", []string{"user"}, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("test-secret", signed.Token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseTokenWrongSecret(t *testing.T) {
	signed, err := NewToken("secret-a", "64f1c0ffee0000000000aaaa", []string{"user"}, time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("secret-b", signed.Token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestParseTokenMalformed(t *testing.T) {
	_, err := ParseToken("test-secret", "not.a.token")
	assert.ErrorIs(t, err, jwt.ErrTokenMalformed)
}
