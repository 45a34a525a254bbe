// Package files serves stored blobs (template backgrounds and rendered
// certificates) over HTTP.
package files

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hackboard/hackboard/internal/api/httpx"
	"github.com/hackboard/hackboard/internal/storage"
	"github.com/hackboard/hackboard/pkg/logger"
)

// Handler reads blobs through the BlobStore interface.
type Handler struct {
	blobs storage.BlobStore
	log   *logger.Logger
}

// NewHandler creates a new files handler.
func NewHandler(blobs storage.BlobStore, log *logger.Logger) *Handler {
	return &Handler{blobs: blobs, log: log}
}

// Serve returns the blob at the wildcard key.
// GET /api/v1/files/*key.
func (h *Handler) Serve(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")

	data, err := h.blobs.Get(c.Request.Context(), key)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	contentType := "application/octet-stream"
	switch {
	case strings.HasSuffix(key, ".png"):
		contentType = "image/png"
	case strings.HasSuffix(key, ".jpg"), strings.HasSuffix(key, ".jpeg"):
		contentType = "image/jpeg"
	}

	c.Data(http.StatusOK, contentType, data)
}
