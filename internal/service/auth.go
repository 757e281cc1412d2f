package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuthService authenticates panel administrators. There is a single
// admin credential (a bcrypt hash from configuration); a successful login
// yields a short-lived JWT the panel endpoints require.
type AdminAuthService struct {
	passwordHash []byte
	jwtSecret    []byte
	tokenExpiry  time.Duration
}

// NewAdminAuthService creates the auth service. The hash must be a valid
// bcrypt digest and the secret must be non-empty.
func NewAdminAuthService(passwordHash, jwtSecret string, expiryHours int) (*AdminAuthService, error) {
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT secret cannot be empty")
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("invalid admin password hash: %w", err)
	}
	if expiryHours <= 0 {
		expiryHours = 24
	}
	return &AdminAuthService{
		passwordHash: []byte(passwordHash),
		jwtSecret:    []byte(jwtSecret),
		tokenExpiry:  time.Duration(expiryHours) * time.Hour,
	}, nil
}

// Login verifies the admin password and issues a signed token.
func (s *AdminAuthService) Login(ctx context.Context, password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			logrus.Warn("AdminAuth: Login attempt with wrong password")
			return "", ErrAuthenticationFailed
		}
		logrus.WithError(err).Error("AdminAuth: Password comparison failed")
		return "", ErrInternalServer
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenExpiry).Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		logrus.WithError(err).Error("AdminAuth: Failed to sign token")
		return "", ErrInternalServer
	}
	logrus.Info("AdminAuth: Admin logged in")
	return signed, nil
}
