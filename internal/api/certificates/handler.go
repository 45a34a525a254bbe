// Package certificates provides REST API handlers for the certificate
// workflow: template management, bulk generation, retrieval, verification
// and per-event listing.
package certificates

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hackboard/hackboard/internal/api/httpx"
	"github.com/hackboard/hackboard/internal/api/middleware"
	"github.com/hackboard/hackboard/internal/apperr"
	"github.com/hackboard/hackboard/internal/models"
	certsvc "github.com/hackboard/hackboard/internal/service/certificates"
	"github.com/hackboard/hackboard/pkg/logger"
)

// CertificateService interface for certificate operations.
type CertificateService interface {
	UploadTemplate(ctx context.Context, hackathonID uint, data []byte, contentType string) (*models.CertificateTemplate, error)
	SetPositions(ctx context.Context, hackathonID uint, positions map[string]models.FieldPosition) error
	GetTemplate(ctx context.Context, hackathonID uint) (*models.CertificateTemplate, error)
	BulkGenerate(ctx context.Context, hackathonID uint, input io.Reader) (*certsvc.BulkResult, error)
	Retrieve(ctx context.Context, hackathonID uint, name, email string) (*models.Certificate, error)
	Verify(ctx context.Context, certificateID string) (*certsvc.Verification, error)
	ListForEvent(ctx context.Context, hackathonID uint) ([]models.Certificate, error)
}

// HackathonGetter interface for ownership checks.
type HackathonGetter interface {
	GetByID(id uint) (*models.Hackathon, error)
}

// Handler handles certificate API requests.
type Handler struct {
	service      CertificateService
	hackathons   HackathonGetter
	filesBaseURL string
	log          *logger.Logger
}

// NewHandler creates a new certificates handler.
func NewHandler(service CertificateService, hackathons HackathonGetter, filesBaseURL string, log *logger.Logger) *Handler {
	return &Handler{
		service:      service,
		hackathons:   hackathons,
		filesBaseURL: strings.TrimRight(filesBaseURL, "/"),
		log:          log,
	}
}

// UploadTemplate stores the certificate background for a hackathon.
// POST /api/v1/hackathons/:id/certificate-template (multipart field "file").
func (h *Handler) UploadTemplate(c *gin.Context) {
	hackathonID, ok := h.requireOwnedHackathon(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		httpx.Error(c, apperr.New(apperr.InvalidFormat, `multipart field "file" is required`))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpx.Error(c, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httpx.Error(c, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	template, err := h.service.UploadTemplate(c.Request.Context(), hackathonID, data, contentType)
	if err != nil {
		h.log.Error().Err(err).Uint("hackathon_id", hackathonID).Msg("Template upload failed")
		httpx.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"template":       h.templateView(template),
		"uploaded_bytes": len(data),
	})
}

// SetPositions replaces the field-position configuration wholesale.
// PUT /api/v1/hackathons/:id/certificate-template/positions.
func (h *Handler) SetPositions(c *gin.Context) {
	hackathonID, ok := h.requireOwnedHackathon(c)
	if !ok {
		return
	}

	var positions map[string]models.FieldPosition
	if err := c.ShouldBindJSON(&positions); err != nil {
		httpx.Error(c, apperr.Wrap(apperr.InvalidFormat, "invalid positions document", err))
		return
	}

	if err := h.service.SetPositions(c.Request.Context(), hackathonID, positions); err != nil {
		httpx.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hackathon_id": hackathonID,
		"fields":       len(positions),
	})
}

// GetTemplate returns the template configuration for a hackathon. Public;
// a hackathon without a template yields a null template, not an error.
// GET /api/v1/hackathons/:id/certificate-template.
func (h *Handler) GetTemplate(c *gin.Context) {
	hackathonID, err := h.parseHackathonID(c)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	template, err := h.service.GetTemplate(c.Request.Context(), hackathonID)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hackathon_id": hackathonID,
		"template":     h.templateView(template),
	})
}

// BulkGenerate renders certificates from an uploaded CSV.
// POST /api/v1/hackathons/:id/certificates/bulk-generate.
func (h *Handler) BulkGenerate(c *gin.Context) {
	hackathonID, ok := h.requireOwnedHackathon(c)
	if !ok {
		return
	}

	var input io.Reader
	if fileHeader, err := c.FormFile("file"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			httpx.Error(c, fmt.Errorf("failed to open upload: %w", err))
			return
		}
		defer file.Close()
		input = file
	} else {
		// Raw CSV body is accepted as well.
		input = c.Request.Body
	}

	result, err := h.service.BulkGenerate(c.Request.Context(), hackathonID, input)
	if err != nil {
		h.log.Error().Err(err).Uint("hackathon_id", hackathonID).Msg("Bulk generation rejected")
		httpx.Error(c, err)
		return
	}

	h.log.Info().
		Uint("hackathon_id", hackathonID).
		Int("generated", result.Generated).
		Int("duplicates", result.Duplicates).
		Int("row_errors", len(result.Errors)).
		Msg("Bulk generation finished")

	c.JSON(http.StatusOK, result)
}

// ListForEvent returns all certificates issued for a hackathon, email
// included. Organizer/admin only.
// GET /api/v1/hackathons/:id/certificates.
func (h *Handler) ListForEvent(c *gin.Context) {
	hackathonID, ok := h.requireOwnedHackathon(c)
	if !ok {
		return
	}

	certs, err := h.service.ListForEvent(c.Request.Context(), hackathonID)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	views := make([]gin.H, 0, len(certs))
	for i := range certs {
		views = append(views, h.certificateView(&certs[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"hackathon_id": hackathonID,
		"certificates": views,
		"total":        len(views),
	})
}

// Retrieve is the public self-service lookup by (name, email, hackathon_id).
// GET /api/v1/certificates/retrieve?name=&email=&hackathon_id=.
func (h *Handler) Retrieve(c *gin.Context) {
	name := c.Query("name")
	email := c.Query("email")
	hackathonIDStr := c.Query("hackathon_id")

	hackathonID, err := strconv.ParseUint(hackathonIDStr, 10, 32)
	if err != nil {
		httpx.Error(c, apperr.Newf(apperr.InvalidFormat, "invalid hackathon_id: %s", hackathonIDStr))
		return
	}

	cert, err := h.service.Retrieve(c.Request.Context(), uint(hackathonID), name, email)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"certificate": h.certificateView(cert)})
}

// Verify is the public authenticity check by certificate ID. The response
// never includes the recipient's email.
// GET /api/v1/certificates/verify/:certificate_id.
func (h *Handler) Verify(c *gin.Context) {
	certificateID := c.Param("certificate_id")

	verification, err := h.service.Verify(c.Request.Context(), certificateID)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":        true,
		"verification": verification,
		"verified_at":  time.Now().UTC(),
	})
}

// requireOwnedHackathon parses the hackathon ID and enforces that the caller
// owns the hackathon or is an admin. Responds and returns false on failure.
func (h *Handler) requireOwnedHackathon(c *gin.Context) (uint, bool) {
	hackathonID, err := h.parseHackathonID(c)
	if err != nil {
		httpx.Error(c, err)
		return 0, false
	}

	user := middleware.CurrentUser(c)
	if user == nil {
		httpx.Error(c, apperr.New(apperr.Unauthorized, "authentication required"))
		return 0, false
	}

	hackathon, err := h.hackathons.GetByID(hackathonID)
	if err != nil {
		httpx.Error(c, err)
		return 0, false
	}
	if !hackathon.OwnedBy(user) {
		httpx.Error(c, apperr.New(apperr.Forbidden, "caller does not own this hackathon"))
		return 0, false
	}
	return hackathonID, true
}

func (h *Handler) parseHackathonID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, apperr.Newf(apperr.InvalidFormat, "invalid hackathon ID: %s", idStr)
	}
	return uint(id), nil
}

// templateView renders a template row for API responses, or nil.
func (h *Handler) templateView(t *models.CertificateTemplate) gin.H {
	if t == nil {
		return nil
	}
	view := gin.H{
		"hackathon_id": t.HackathonID,
		"content_type": t.ContentType,
		"positions":    t.Positions,
		"updated_at":   t.UpdatedAt,
	}
	if t.BackgroundKey != "" {
		view["background_url"] = h.fileURL(t.BackgroundKey)
	}
	return view
}

// certificateView renders an issued certificate for API responses.
func (h *Handler) certificateView(cert *models.Certificate) gin.H {
	return gin.H{
		"certificate_id":  cert.CertificateID,
		"hackathon_id":    cert.HackathonID,
		"recipient_name":  cert.RecipientName,
		"recipient_email": cert.RecipientEmail,
		"role":            cert.Role,
		"image_url":       h.fileURL(cert.ImageKey),
		"created_at":      cert.CreatedAt,
	}
}

func (h *Handler) fileURL(key string) string {
	return h.filesBaseURL + "/" + key
}
