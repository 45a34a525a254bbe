// Package hackathons provides REST API handlers for hackathon records.
package hackathons

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hackboard/hackboard/internal/api/httpx"
	"github.com/hackboard/hackboard/internal/api/middleware"
	"github.com/hackboard/hackboard/internal/apperr"
	"github.com/hackboard/hackboard/internal/models"
	"github.com/hackboard/hackboard/pkg/logger"
)

// HackathonRepository interface for hackathon persistence.
type HackathonRepository interface {
	Create(hackathon *models.Hackathon) error
	GetByID(id uint) (*models.Hackathon, error)
	List() ([]models.Hackathon, error)
}

// Handler handles hackathon API requests.
type Handler struct {
	repo HackathonRepository
	log  *logger.Logger
}

// NewHandler creates a new hackathons handler.
func NewHandler(repo HackathonRepository, log *logger.Logger) *Handler {
	return &Handler{repo: repo, log: log}
}

type createRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at" binding:"required"`
	EndsAt      time.Time `json:"ends_at"`
}

// Create registers a new hackathon owned by the caller.
// POST /api/v1/hackathons.
func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, apperr.Wrap(apperr.InvalidFormat, "invalid hackathon payload", err))
		return
	}

	user := middleware.CurrentUser(c)
	if user == nil {
		httpx.Error(c, apperr.New(apperr.Unauthorized, "authentication required"))
		return
	}

	hackathon := &models.Hackathon{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		OrganizerID: user.ID,
	}
	if err := h.repo.Create(hackathon); err != nil {
		h.log.Error().Err(err).Msg("Failed to create hackathon")
		httpx.Error(c, err)
		return
	}

	h.log.Info().Uint("hackathon_id", hackathon.ID).Uint("organizer_id", user.ID).Msg("Created hackathon")
	c.JSON(http.StatusCreated, gin.H{"hackathon": hackathon})
}

// Get returns one hackathon.
// GET /api/v1/hackathons/:id.
func (h *Handler) Get(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		httpx.Error(c, apperr.Newf(apperr.InvalidFormat, "invalid hackathon ID: %s", idStr))
		return
	}

	hackathon, err := h.repo.GetByID(uint(id))
	if err != nil {
		httpx.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"hackathon": hackathon})
}

// List returns all hackathons, newest first.
// GET /api/v1/hackathons.
func (h *Handler) List(c *gin.Context) {
	hackathons, err := h.repo.List()
	if err != nil {
		httpx.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hackathons": hackathons,
		"total":      len(hackathons),
	})
}
