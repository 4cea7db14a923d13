package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSigner_SignAndVerify(t *testing.T) {
	signer := NewTokenSigner("test-secret", "chronoshop", 30*time.Minute)

	token, err := signer.Sign("user-1", "demo", false)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "demo", claims.Username)
	assert.False(t, claims.IsAdmin)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), claims.Exp, 5*time.Second)
}

func TestTokenSigner_AdminClaim(t *testing.T) {
	signer := NewTokenSigner("test-secret", "chronoshop", time.Minute)

	token, err := signer.Sign("admin-1", "admin", true)
	require.NoError(t, err)

	claims, err := signer.Verify(token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
}

func TestTokenSigner_Expired(t *testing.T) {
	signer := NewTokenSigner("test-secret", "chronoshop", -time.Minute)

	token, err := signer.Sign("user-1", "demo", false)
	require.NoError(t, err)

	_, err = signer.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenSigner_WrongSecret(t *testing.T) {
	signer := NewTokenSigner("test-secret", "chronoshop", time.Minute)
	other := NewTokenSigner("other-secret", "chronoshop", time.Minute)

	token, err := signer.Sign("user-1", "demo", false)
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenSigner_RejectsNoneAlgorithm(t *testing.T) {
	signer := NewTokenSigner("test-secret", "chronoshop", time.Minute)

	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	})
	unsigned, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = signer.Verify(unsigned)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenSigner_Garbage(t *testing.T) {
	signer := NewTokenSigner("test-secret", "chronoshop", time.Minute)

	_, err := signer.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
