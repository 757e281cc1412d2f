package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/INIRU/Tinklepaw-sub002/internal/service"
)

// AuthHandler exposes the panel login endpoint.
type AuthHandler struct {
	authService *service.AdminAuthService
}

// NewAuthHandler creates the handler.
func NewAuthHandler(authService *service.AdminAuthService) *AuthHandler {
	if authService == nil {
		panic("AdminAuthService cannot be nil for AuthHandler")
	}
	return &AuthHandler{authService: authService}
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued panel token.
type LoginResponse struct {
	Token string `json:"token"`
}

// Login verifies the admin password and returns a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: password is required")
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) {
			ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		logrus.WithError(err).Error("Handler.Login: Login failed")
		ErrorResponse(c, http.StatusInternalServerError, "Login failed")
		return
	}

	SuccessResponse(c, http.StatusOK, LoginResponse{Token: token})
}
