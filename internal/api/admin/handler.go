// Package admin provides REST API handlers for platform analytics.
package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hackboard/hackboard/internal/api/httpx"
	"github.com/hackboard/hackboard/internal/service/stats"
	"github.com/hackboard/hackboard/pkg/logger"
)

// StatsService interface for analytics.
type StatsService interface {
	Overview(ctx context.Context) (*stats.Overview, error)
}

// Handler handles admin API requests.
type Handler struct {
	stats StatsService
	log   *logger.Logger
}

// NewHandler creates a new admin handler.
func NewHandler(stats StatsService, log *logger.Logger) *Handler {
	return &Handler{stats: stats, log: log}
}

// Overview returns platform-wide counts.
// GET /api/v1/admin/stats.
func (h *Handler) Overview(c *gin.Context) {
	overview, err := h.stats.Overview(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute stats overview")
		httpx.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":        overview,
		"generated_at": time.Now().UTC(),
	})
}
