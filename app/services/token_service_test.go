package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "test-secret-key-for-jwt-signing-32-chars"

// createTestTokenService creates a token service for testing
func createTestTokenService() (TokenService, error) {
	return NewTokenService(
		15*time.Minute,
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		testSecretKey,
	)
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name            string
		accessTokenTTL  time.Duration
		refreshTokenTTL time.Duration
		issuer          string
		audience        string
		secretKey       string
		expectError     bool
	}{
		{
			name:            "valid configuration",
			accessTokenTTL:  15 * time.Minute,
			refreshTokenTTL: 7 * 24 * time.Hour,
			issuer:          "test-issuer",
			audience:        "test-audience",
			secretKey:       testSecretKey,
			expectError:     false,
		},
		{
			name:            "missing secret key",
			accessTokenTTL:  15 * time.Minute,
			refreshTokenTTL: 7 * 24 * time.Hour,
			issuer:          "test-issuer",
			audience:        "test-audience",
			secretKey:       "",
			expectError:     true,
		},
		{
			name:            "zero TTLs fall back to defaults",
			accessTokenTTL:  0,
			refreshTokenTTL: 0,
			issuer:          "test-issuer",
			audience:        "test-audience",
			secretKey:       testSecretKey,
			expectError:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewTokenService(tt.accessTokenTTL, tt.refreshTokenTTL, tt.issuer, tt.audience, tt.secretKey)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, service)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, service)
			}
		})
	}
}

func TestGenerateAndValidateTokens(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	accessToken, refreshToken, err := service.GenerateTokens(42)
	require.NoError(t, err)
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)
	assert.NotEqual(t, accessToken, refreshToken)

	t.Run("access token claims", func(t *testing.T) {
		claims, err := service.ValidateToken(accessToken)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.CustomerID)
		assert.Equal(t, "access", claims.TokenType)
		assert.NotEmpty(t, claims.TokenID)
		assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
	})

	t.Run("refresh token claims", func(t *testing.T) {
		claims, err := service.ValidateToken(refreshToken)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.CustomerID)
		assert.Equal(t, "refresh", claims.TokenType)
		assert.NotEmpty(t, claims.TokenID)
	})

	t.Run("token ids are unique per issue", func(t *testing.T) {
		secondAccess, _, err := service.GenerateTokens(42)
		require.NoError(t, err)

		first, err := service.ValidateToken(accessToken)
		require.NoError(t, err)
		second, err := service.ValidateToken(secondAccess)
		require.NoError(t, err)
		assert.NotEqual(t, first.TokenID, second.TokenID)
	})
}

func TestValidateTokenFailures(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	t.Run("garbage token", func(t *testing.T) {
		claims, err := service.ValidateToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrTokenInvalid)
		assert.Nil(t, claims)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other, err := NewTokenService(15*time.Minute, time.Hour, "test-issuer", "test-audience", "a-completely-different-secret-key-here")
		require.NoError(t, err)

		foreignToken, _, err := other.GenerateTokens(7)
		require.NoError(t, err)

		claims, err := service.ValidateToken(foreignToken)
		assert.ErrorIs(t, err, ErrTokenInvalid)
		assert.Nil(t, claims)
	})

	t.Run("expired token", func(t *testing.T) {
		shortLived, err := NewTokenService(-2*time.Minute, time.Hour, "test-issuer", "test-audience", testSecretKey)
		require.NoError(t, err)
		// negative TTL falls back to the default, so build a service whose
		// access TTL genuinely lies in the past
		impl := shortLived.(*TokenServiceImpl)
		impl.accessTokenTTL = -2 * time.Minute

		expiredToken, _, err := shortLived.GenerateTokens(7)
		require.NoError(t, err)

		claims, err := shortLived.ValidateToken(expiredToken)
		assert.ErrorIs(t, err, ErrTokenExpired)
		assert.Nil(t, claims)
	})
}
