// Package httpx maps domain errors onto standardized HTTP error responses.
package httpx

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hackboard/hackboard/internal/apperr"
)

// statusFor maps error kinds to HTTP status codes.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.InvalidFileType, apperr.InvalidFormat, apperr.TemplateNotConfigured:
		return http.StatusBadRequest
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error sends a standardized error response for a domain error. Internal
// errors are masked with a generic message.
func Error(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)

	detail := "internal server error"
	if kind != apperr.Internal {
		detail = err.Error()
	}

	c.JSON(status, gin.H{
		"error":     string(kind),
		"message":   detail,
		"timestamp": time.Now().UTC(),
	})
}

// ErrorMessage sends a standardized error response with an explicit status.
func ErrorMessage(c *gin.Context, status int, kind apperr.Kind, message string) {
	c.JSON(status, gin.H{
		"error":     string(kind),
		"message":   message,
		"timestamp": time.Now().UTC(),
	})
}
