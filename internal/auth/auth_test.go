package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery-staple")
	require.NoError(t, err)

	ok, err := VerifyPassword("correct-horse-battery-staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong-password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHashesAreSalted(t *testing.T) {
	h1, err := HashPassword("same-password")
	require.NoError(t, err)
	h2, err := HashPassword("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2, "two hashes of the same password must differ (random salt)")
}

func TestTokenIssueVerify(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Minute)

	token, err := issuer.Issue("client-123")
	require.NoError(t, err)

	uid, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "client-123", uid)
}

func TestTokenExpiry(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Second) // already expired

	token, err := issuer.Issue("client-123")
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.Error(t, err)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("secret-a", time.Minute)
	other := NewTokenIssuer("secret-b", time.Minute)

	token, err := issuer.Issue("client-123")
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}
