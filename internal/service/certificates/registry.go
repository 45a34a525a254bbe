package certificates

import (
	"context"
	"time"

	"github.com/hackboard/hackboard/internal/apperr"
	"github.com/hackboard/hackboard/internal/metrics"
	"github.com/hackboard/hackboard/internal/models"
)

// Retrieve looks up a certificate by (name, email, hackathon). Name matching
// is case-insensitive. No authentication is required; this is the data
// subject's self-service lookup.
func (s *Service) Retrieve(ctx context.Context, hackathonID uint, name, email string) (*models.Certificate, error) {
	if name == "" || email == "" {
		return nil, apperr.New(apperr.InvalidFormat, "name and email are required")
	}
	cert, err := s.certRepo.Find(hackathonID, name, email)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			metrics.RetrieveLookupsTotal.WithLabelValues("not_found").Inc()
		}
		return nil, err
	}
	metrics.RetrieveLookupsTotal.WithLabelValues("found").Inc()
	return cert, nil
}

// Verification is the public projection of an issued certificate. It
// deliberately omits the recipient's email.
type Verification struct {
	CertificateID string    `json:"certificate_id"`
	EventName     string    `json:"event_name"`
	RecipientName string    `json:"recipient_name"`
	Role          string    `json:"role"`
	IssueDate     time.Time `json:"issue_date"`
}

// Verify resolves a certificate ID into its public projection. Unknown and
// malformed IDs both yield NotFound.
func (s *Service) Verify(ctx context.Context, certificateID string) (*Verification, error) {
	cert, err := s.certRepo.GetByCertificateID(certificateID)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			metrics.VerifyLookupsTotal.WithLabelValues("not_found").Inc()
		}
		return nil, err
	}
	metrics.VerifyLookupsTotal.WithLabelValues("found").Inc()
	return &Verification{
		CertificateID: cert.CertificateID,
		EventName:     cert.Hackathon.Title,
		RecipientName: cert.RecipientName,
		Role:          cert.Role,
		IssueDate:     cert.CreatedAt,
	}, nil
}

// ListForEvent returns the full records, email included, for one hackathon.
// Callers must enforce organizer/admin authorization.
func (s *Service) ListForEvent(ctx context.Context, hackathonID uint) ([]models.Certificate, error) {
	if _, err := s.hackathonRepo.GetByID(hackathonID); err != nil {
		return nil, err
	}
	return s.certRepo.ListByHackathon(hackathonID)
}
