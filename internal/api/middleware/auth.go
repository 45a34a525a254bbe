// Package middleware provides gin middleware for bearer-token authentication
// and role enforcement.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hackboard/hackboard/internal/api/httpx"
	"github.com/hackboard/hackboard/internal/apperr"
	"github.com/hackboard/hackboard/internal/models"
	"github.com/hackboard/hackboard/pkg/logger"
)

// Context keys set by RequireAuth.
const (
	ContextUserKey  = "auth.user"
	ContextTokenKey = "auth.token"
)

// Authenticator resolves a bearer token into a user.
type Authenticator interface {
	Validate(ctx context.Context, token string) (*models.User, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// authenticated user in the gin context.
func RequireAuth(auth Authenticator, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			httpx.ErrorMessage(c, http.StatusUnauthorized, apperr.Unauthorized, "missing bearer token")
			c.Abort()
			return
		}

		user, err := auth.Validate(c.Request.Context(), token)
		if err != nil {
			if !apperr.IsKind(err, apperr.Unauthorized) {
				log.Error().Err(err).Msg("Token validation failed")
			}
			httpx.Error(c, apperr.New(apperr.Unauthorized, "invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextTokenKey, token)
		c.Next()
	}
}

// RequireOrganizer rejects authenticated callers that may not manage
// hackathons. Must run after RequireAuth.
func RequireOrganizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.CanOrganize() {
			httpx.ErrorMessage(c, http.StatusForbidden, apperr.Forbidden, "organizer or admin role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects authenticated callers without the admin role. Must
// run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			httpx.ErrorMessage(c, http.StatusForbidden, apperr.Forbidden, "admin role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by RequireAuth, or nil.
func CurrentUser(c *gin.Context) *models.User {
	val, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := val.(*models.User)
	return user
}

// CurrentToken returns the raw bearer token set by RequireAuth.
func CurrentToken(c *gin.Context) string {
	val, ok := c.Get(ContextTokenKey)
	if !ok {
		return ""
	}
	token, _ := val.(string)
	return token
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
