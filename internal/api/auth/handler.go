// Package auth provides REST API handlers for registration, login and
// logout.
package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hackboard/hackboard/internal/api/httpx"
	"github.com/hackboard/hackboard/internal/api/middleware"
	"github.com/hackboard/hackboard/internal/apperr"
	"github.com/hackboard/hackboard/internal/models"
	"github.com/hackboard/hackboard/pkg/logger"
)

// AuthService interface for account operations.
type AuthService interface {
	Register(ctx context.Context, name, email, password, role string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Logout(ctx context.Context, token string) error
}

// Handler handles auth API requests.
type Handler struct {
	service AuthService
	log     *logger.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(service AuthService, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// Register creates an account.
// POST /api/v1/auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, apperr.Wrap(apperr.InvalidFormat, "invalid registration payload", err))
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and returns a bearer token.
// POST /api/v1/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, apperr.Wrap(apperr.InvalidFormat, "invalid login payload", err))
		return
	}

	token, user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout revokes the caller's token.
// POST /api/v1/auth/logout.
func (h *Handler) Logout(c *gin.Context) {
	token := middleware.CurrentToken(c)
	if token == "" {
		httpx.Error(c, apperr.New(apperr.Unauthorized, "missing bearer token"))
		return
	}

	if err := h.service.Logout(c.Request.Context(), token); err != nil {
		httpx.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"revoked": true})
}
