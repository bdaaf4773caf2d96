package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *JWTManager {
	return NewJWTManager("test-secret", time.Hour)
}

func TestStartupTokenRoundTrip(t *testing.T) {
	manager := newTestManager()

	token, err := manager.GenerateStartupToken(12, "founder@example.com", true)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.VerifyToken(token)
	require.NoError(t, err)

	assert.Equal(t, uint(12), claims.UserID)
	assert.Equal(t, "founder@example.com", claims.Email)
	assert.True(t, claims.IsPlatformAdmin)
	assert.True(t, claims.IsStartupIdentity())
	assert.Zero(t, claims.TenantID)
	assert.Empty(t, claims.Role)
	assert.Equal(t, "MSP", claims.Issuer)
}

func TestTenantTokenRoundTrip(t *testing.T) {
	manager := newTestManager()

	token, err := manager.GenerateTenantToken(12, 3, 99, "admin@acme.com", "admin")
	require.NoError(t, err)

	claims, err := manager.VerifyToken(token)
	require.NoError(t, err)

	assert.Equal(t, uint(12), claims.UserID)
	assert.Equal(t, uint(3), claims.TenantID)
	assert.Equal(t, uint(99), claims.ProfileID)
	assert.Equal(t, "admin", claims.Role)
	assert.False(t, claims.IsStartupIdentity())
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	token, err := newTestManager().GenerateStartupToken(1, "a@b.com", false)
	require.NoError(t, err)

	other := NewJWTManager("another-secret", time.Hour)
	_, err = other.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyTokenExpired(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute)

	token, err := manager.GenerateStartupToken(1, "a@b.com", false)
	require.NoError(t, err)

	_, err = manager.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyTokenGarbage(t *testing.T) {
	_, err := newTestManager().VerifyToken("not-a-token")
	assert.Error(t, err)
}

func TestRefreshTokenKeepsIdentity(t *testing.T) {
	manager := newTestManager()

	token, err := manager.GenerateTenantToken(12, 3, 99, "admin@acme.com", "admin")
	require.NoError(t, err)

	refreshed, err := manager.RefreshToken(token)
	require.NoError(t, err)

	claims, err := manager.VerifyToken(refreshed)
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.TenantID)
	assert.Equal(t, uint(99), claims.ProfileID)
	assert.Equal(t, "admin", claims.Role)
}
