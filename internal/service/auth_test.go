package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/INIRU/Tinklepaw-sub002/internal/service"
)

func adminHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestNewAdminAuthService_Validation(t *testing.T) {
	t.Run("empty secret rejected", func(t *testing.T) {
		_, err := service.NewAdminAuthService(adminHash(t, "pw"), "", 24)
		assert.Error(t, err)
	})

	t.Run("non-bcrypt hash rejected", func(t *testing.T) {
		_, err := service.NewAdminAuthService("plaintext-password", "secret", 24)
		assert.Error(t, err)
	})
}

func TestAdminAuthService_Login_Success(t *testing.T) {
	// Arrange
	secret := "test-secret"
	authService, err := service.NewAdminAuthService(adminHash(t, "correct horse"), secret, 1)
	require.NoError(t, err)

	// Act
	token, err := authService.Login(context.Background(), "correct horse")

	// Assert
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// The token must be HS256-signed with the configured secret and carry the
	// admin role the panel middleware requires.
	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "admin", claims["role"])
	assert.NotNil(t, claims["exp"])
}

func TestAdminAuthService_Login_WrongPassword(t *testing.T) {
	authService, err := service.NewAdminAuthService(adminHash(t, "correct horse"), "secret", 1)
	require.NoError(t, err)

	token, err := authService.Login(context.Background(), "battery staple")

	require.Error(t, err)
	assert.Empty(t, token)
	assert.True(t, errors.Is(err, service.ErrAuthenticationFailed))
}
