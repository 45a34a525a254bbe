// Package certificates implements the certificate workflow: template
// storage, CSV-driven bulk generation, and registry lookups for retrieval
// and public verification.
package certificates

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hackboard/hackboard/internal/models"
	"github.com/hackboard/hackboard/internal/render"
	"github.com/hackboard/hackboard/internal/repository"
	"github.com/hackboard/hackboard/internal/storage"
	"github.com/hackboard/hackboard/pkg/logger"
)

// TemplateRepository interface for template persistence.
type TemplateRepository interface {
	Get(hackathonID uint) (*models.CertificateTemplate, error)
	UpsertBackground(hackathonID uint, backgroundKey, contentType string) (*models.CertificateTemplate, error)
	SetPositions(hackathonID uint, positions json.RawMessage) error
}

// CertificateRepository interface for registry persistence.
type CertificateRepository interface {
	Create(cert *models.Certificate) error
	Exists(hackathonID uint, name, email string) (bool, error)
	Find(hackathonID uint, name, email string) (*models.Certificate, error)
	GetByCertificateID(certificateID string) (*models.Certificate, error)
	ListByHackathon(hackathonID uint) ([]models.Certificate, error)
}

// HackathonRepository interface for event lookups used in rendering.
type HackathonRepository interface {
	GetByID(id uint) (*models.Hackathon, error)
}

// Renderer interface for certificate image composition.
type Renderer interface {
	Render(req render.Request) ([]byte, error)
}

// Notifier interface for batch-completion notifications.
type Notifier interface {
	SendBulkSummary(ctx context.Context, hackathonTitle string, generated, duplicates, rowErrors int) error
}

// Service implements the certificate workflow.
type Service struct {
	templateRepo  TemplateRepository
	certRepo      CertificateRepository
	hackathonRepo HackathonRepository
	blobs         storage.BlobStore
	renderer      Renderer
	notifier      Notifier
	publicBaseURL string
	log           *logger.Logger
}

// NewService creates a new certificate service.
func NewService(
	templateRepo *repository.TemplateRepository,
	certRepo *repository.CertificateRepository,
	hackathonRepo *repository.HackathonRepository,
	blobs storage.BlobStore,
	renderer *render.Renderer,
	notifier Notifier,
	publicBaseURL string,
	log *logger.Logger,
) *Service {
	return &Service{
		templateRepo:  templateRepo,
		certRepo:      certRepo,
		hackathonRepo: hackathonRepo,
		blobs:         blobs,
		renderer:      renderer,
		notifier:      notifier,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		log:           log,
	}
}

// NewServiceWithInterfaces creates a new certificate service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	templateRepo TemplateRepository,
	certRepo CertificateRepository,
	hackathonRepo HackathonRepository,
	blobs storage.BlobStore,
	renderer Renderer,
	notifier Notifier,
	publicBaseURL string,
	log *logger.Logger,
) *Service {
	return &Service{
		templateRepo:  templateRepo,
		certRepo:      certRepo,
		hackathonRepo: hackathonRepo,
		blobs:         blobs,
		renderer:      renderer,
		notifier:      notifier,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		log:           log,
	}
}

// VerificationURL builds the public verification link embedded in QR codes.
func (s *Service) VerificationURL(certificateID string) string {
	return fmt.Sprintf("%s/certificates/verify/%s", s.publicBaseURL, certificateID)
}

var base32Lower = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// newCertificateID generates an opaque, non-guessable certificate identifier.
func newCertificateID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return "crt_" + base32Lower.EncodeToString(buf)
}
