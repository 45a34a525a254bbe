package certificates

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/hackboard/hackboard/internal/apperr"
	"github.com/hackboard/hackboard/internal/models"
	"github.com/hackboard/hackboard/internal/storage"
)

var allowedTemplateTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

// UploadTemplate stores a background image for the hackathon, superseding any
// previous one. Only image content types are accepted.
func (s *Service) UploadTemplate(ctx context.Context, hackathonID uint, data []byte, contentType string) (*models.CertificateTemplate, error) {
	ext, ok := allowedTemplateTypes[contentType]
	if !ok {
		return nil, apperr.Newf(apperr.InvalidFileType, "content type %q is not an accepted image type", contentType)
	}
	if len(data) == 0 {
		return nil, apperr.New(apperr.InvalidFileType, "uploaded file is empty")
	}

	if _, err := s.hackathonRepo.GetByID(hackathonID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%d-%s%s", storage.TemplateArea, hackathonID, uuid.NewString(), ext)
	if err := s.blobs.Put(ctx, key, data); err != nil {
		return nil, fmt.Errorf("failed to store template background: %w", err)
	}

	template, err := s.templateRepo.UpsertBackground(hackathonID, key, contentType)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("hackathon_id", hackathonID).
		Str("key", key).
		Int("bytes", len(data)).
		Msg("Stored certificate template background")

	return template, nil
}

// SetPositions validates and replaces the field-position configuration
// wholesale. Enabled text fields must carry a font size; an enabled qr field
// must carry a pixel size.
func (s *Service) SetPositions(ctx context.Context, hackathonID uint, positions map[string]models.FieldPosition) error {
	if _, err := s.hackathonRepo.GetByID(hackathonID); err != nil {
		return err
	}

	known := map[string]bool{
		models.FieldName:  true,
		models.FieldRole:  true,
		models.FieldEvent: true,
		models.FieldDate:  true,
		models.FieldQR:    true,
	}
	for field, pos := range positions {
		if !known[field] {
			return apperr.Newf(apperr.InvalidFormat, "unknown field %q", field)
		}
		if !pos.Enabled {
			continue
		}
		if pos.X < 0 || pos.Y < 0 {
			return apperr.Newf(apperr.InvalidFormat, "field %q has negative coordinates", field)
		}
		if field == models.FieldQR {
			if pos.Size <= 0 {
				return apperr.Newf(apperr.InvalidFormat, "qr field requires a positive size")
			}
		} else if pos.FontSize <= 0 {
			return apperr.Newf(apperr.InvalidFormat, "field %q requires a positive font_size", field)
		}
	}

	raw, err := json.Marshal(positions)
	if err != nil {
		return fmt.Errorf("failed to marshal positions: %w", err)
	}
	if err := s.templateRepo.SetPositions(hackathonID, raw); err != nil {
		return err
	}

	s.log.Info().
		Uint("hackathon_id", hackathonID).
		Int("fields", len(positions)).
		Msg("Replaced certificate field positions")

	return nil
}

// GetTemplate returns the template for a hackathon, or nil when none has
// been configured. A missing template is a valid state, not an error.
func (s *Service) GetTemplate(ctx context.Context, hackathonID uint) (*models.CertificateTemplate, error) {
	if _, err := s.hackathonRepo.GetByID(hackathonID); err != nil {
		return nil, err
	}
	return s.templateRepo.Get(hackathonID)
}
