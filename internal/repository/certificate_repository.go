package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hackboard/hackboard/internal/apperr"
	"github.com/hackboard/hackboard/internal/models"
)

// ErrDuplicateCertificate is returned when an insert collides with the
// composite unique index on (hackathon, normalized name, email).
var ErrDuplicateCertificate = errors.New("certificate already issued for this recipient")

// CertificateRepository handles issued-certificate database operations.
type CertificateRepository struct {
	db *DB
}

// NewCertificateRepository creates a new certificate repository.
func NewCertificateRepository(db *DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

// Create inserts a new certificate record. A unique-index collision is
// reported as ErrDuplicateCertificate so the generator can count it as a
// duplicate skip rather than a row error.
func (r *CertificateRepository) Create(cert *models.Certificate) error {
	if err := r.db.Create(cert).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateCertificate
		}
		return fmt.Errorf("failed to create certificate: %w", err)
	}
	return nil
}

// Exists reports whether a certificate has already been issued to the
// recipient for the hackathon. Name matching is case-insensitive.
func (r *CertificateRepository) Exists(hackathonID uint, name, email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Certificate{}).
		Where("hackathon_id = ? AND recipient_name_normalized = ? AND recipient_email = ?",
			hackathonID, models.NormalizeName(name), models.NormalizeEmail(email)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check certificate existence: %w", err)
	}
	return count > 0, nil
}

// Find retrieves a certificate by (name, email, hackathon). Name matching is
// case-insensitive; email matching is exact after normalization.
func (r *CertificateRepository) Find(hackathonID uint, name, email string) (*models.Certificate, error) {
	var cert models.Certificate
	err := r.db.Where("hackathon_id = ? AND recipient_name_normalized = ? AND recipient_email = ?",
		hackathonID, models.NormalizeName(name), models.NormalizeEmail(email)).
		First(&cert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "no certificate found for the given name, email and hackathon")
		}
		return nil, fmt.Errorf("failed to find certificate: %w", err)
	}
	return &cert, nil
}

// GetByCertificateID retrieves a certificate by its public identifier.
func (r *CertificateRepository) GetByCertificateID(certificateID string) (*models.Certificate, error) {
	var cert models.Certificate
	err := r.db.Where("certificate_id = ?", certificateID).
		Preload("Hackathon").
		First(&cert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "certificate %s not found", certificateID)
		}
		return nil, fmt.Errorf("failed to get certificate %s: %w", certificateID, err)
	}
	return &cert, nil
}

// ListByHackathon retrieves all certificates issued for a hackathon.
func (r *CertificateRepository) ListByHackathon(hackathonID uint) ([]models.Certificate, error) {
	var certs []models.Certificate
	err := r.db.Where("hackathon_id = ?", hackathonID).
		Order("created_at ASC").
		Find(&certs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates for hackathon %d: %w", hackathonID, err)
	}
	return certs, nil
}

// ImageKeyExists reports whether any certificate references the given
// rendered-image key. Used by the sweeper to detect orphaned blobs.
func (r *CertificateRepository) ImageKeyExists(key string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Certificate{}).Where("image_key = ?", key).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check image key: %w", err)
	}
	return count > 0, nil
}

// CountByHackathon returns the number of certificates issued per hackathon.
func (r *CertificateRepository) CountByHackathon() (map[uint]int64, error) {
	type row struct {
		HackathonID uint
		N           int64
	}
	var rows []row
	err := r.db.Model(&models.Certificate{}).
		Select("hackathon_id, COUNT(*) as n").
		Group("hackathon_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count certificates: %w", err)
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.HackathonID] = r.N
	}
	return counts, nil
}

// Count returns the total number of issued certificates.
func (r *CertificateRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Certificate{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count certificates: %w", err)
	}
	return count, nil
}
