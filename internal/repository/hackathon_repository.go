package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hackboard/hackboard/internal/apperr"
	"github.com/hackboard/hackboard/internal/models"
)

// HackathonRepository handles hackathon-related database operations.
type HackathonRepository struct {
	db *DB
}

// NewHackathonRepository creates a new hackathon repository.
func NewHackathonRepository(db *DB) *HackathonRepository {
	return &HackathonRepository{db: db}
}

// Create creates a new hackathon.
func (r *HackathonRepository) Create(hackathon *models.Hackathon) error {
	if err := r.db.Create(hackathon).Error; err != nil {
		return fmt.Errorf("failed to create hackathon: %w", err)
	}
	return nil
}

// GetByID retrieves a hackathon by ID.
func (r *HackathonRepository) GetByID(id uint) (*models.Hackathon, error) {
	var hackathon models.Hackathon
	if err := r.db.First(&hackathon, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "hackathon %d not found", id)
		}
		return nil, fmt.Errorf("failed to get hackathon by id %d: %w", id, err)
	}
	return &hackathon, nil
}

// List retrieves all hackathons, newest first.
func (r *HackathonRepository) List() ([]models.Hackathon, error) {
	var hackathons []models.Hackathon
	if err := r.db.Order("starts_at DESC").Find(&hackathons).Error; err != nil {
		return nil, fmt.Errorf("failed to list hackathons: %w", err)
	}
	return hackathons, nil
}

// Count returns the total number of hackathons.
func (r *HackathonRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Hackathon{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count hackathons: %w", err)
	}
	return count, nil
}
