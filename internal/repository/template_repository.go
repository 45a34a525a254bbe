package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hackboard/hackboard/internal/models"
)

// TemplateRepository handles certificate template database operations.
type TemplateRepository struct {
	db *DB
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(db *DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// Get retrieves the template for a hackathon. A missing template is a valid
// state and is returned as (nil, nil), not as an error.
func (r *TemplateRepository) Get(hackathonID uint) (*models.CertificateTemplate, error) {
	var template models.CertificateTemplate
	err := r.db.Where("hackathon_id = ?", hackathonID).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get template for hackathon %d: %w", hackathonID, err)
	}
	return &template, nil
}

// UpsertBackground stores the background for a hackathon, creating the
// template row if it does not exist. Re-upload supersedes the old background.
func (r *TemplateRepository) UpsertBackground(hackathonID uint, backgroundKey, contentType string) (*models.CertificateTemplate, error) {
	existing, err := r.Get(hackathonID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		template := &models.CertificateTemplate{
			HackathonID:   hackathonID,
			BackgroundKey: backgroundKey,
			ContentType:   contentType,
		}
		if err := r.db.Create(template).Error; err != nil {
			return nil, fmt.Errorf("failed to create template: %w", err)
		}
		return template, nil
	}

	existing.BackgroundKey = backgroundKey
	existing.ContentType = contentType
	existing.UpdatedAt = time.Now()
	if err := r.db.Save(existing).Error; err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return existing, nil
}

// SetPositions replaces the position configuration wholesale.
func (r *TemplateRepository) SetPositions(hackathonID uint, positions json.RawMessage) error {
	result := r.db.Model(&models.CertificateTemplate{}).
		Where("hackathon_id = ?", hackathonID).
		Updates(map[string]interface{}{
			"positions":  positions,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to set positions for hackathon %d: %w", hackathonID, result.Error)
	}
	if result.RowsAffected == 0 {
		// No background uploaded yet; keep positions on a row of their own so
		// upload order does not matter.
		template := &models.CertificateTemplate{
			HackathonID: hackathonID,
			Positions:   positions,
		}
		if err := r.db.Create(template).Error; err != nil {
			return fmt.Errorf("failed to create template with positions: %w", err)
		}
	}
	return nil
}
