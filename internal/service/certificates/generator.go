package certificates

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hackboard/hackboard/internal/apperr"
	"github.com/hackboard/hackboard/internal/metrics"
	"github.com/hackboard/hackboard/internal/models"
	"github.com/hackboard/hackboard/internal/render"
	"github.com/hackboard/hackboard/internal/repository"
	"github.com/hackboard/hackboard/internal/storage"
)

// csvHeader is the exact, case-sensitive header the bulk input must carry.
var csvHeader = []string{"Name", "Email", "Role"}

// RowError describes one rejected row in a bulk batch.
type RowError struct {
	Row    int    `json:"row"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}

// BulkResult summarizes a bulk generation batch. Row errors do not abort the
// batch; they are accumulated and returned alongside the success count.
type BulkResult struct {
	Generated  int        `json:"certificates_generated"`
	Duplicates int        `json:"duplicates_skipped"`
	Errors     []RowError `json:"errors"`
}

// BulkGenerate renders and registers one certificate per CSV row. The whole
// batch is rejected before any row is processed when the template is not
// configured or the header does not match exactly.
func (s *Service) BulkGenerate(ctx context.Context, hackathonID uint, input io.Reader) (*BulkResult, error) {
	hackathon, err := s.hackathonRepo.GetByID(hackathonID)
	if err != nil {
		return nil, err
	}

	template, err := s.templateRepo.Get(hackathonID)
	if err != nil {
		return nil, err
	}
	if template == nil || template.BackgroundKey == "" || len(template.Positions) == 0 {
		metrics.BulkBatchesTotal.WithLabelValues("rejected").Inc()
		return nil, apperr.Newf(apperr.TemplateNotConfigured,
			"hackathon %d has no certificate template configured", hackathonID)
	}

	positions, err := template.PositionMap()
	if err != nil {
		return nil, fmt.Errorf("failed to decode template positions: %w", err)
	}

	background, err := s.blobs.Get(ctx, template.BackgroundKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load template background: %w", err)
	}

	reader := csv.NewReader(input)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		metrics.BulkBatchesTotal.WithLabelValues("rejected").Inc()
		return nil, apperr.Wrap(apperr.InvalidFormat, "failed to read CSV header", err)
	}
	if !headerMatches(header) {
		metrics.BulkBatchesTotal.WithLabelValues("rejected").Inc()
		return nil, apperr.Newf(apperr.InvalidFormat,
			"CSV header must be exactly %q, got %q", strings.Join(csvHeader, ","), strings.Join(header, ","))
	}

	result := &BulkResult{Errors: []RowError{}}
	eventDate := hackathon.StartsAt.Format("January 2, 2006")
	hackathonLabel := strconv.FormatUint(uint64(hackathonID), 10)

	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: row, Reason: err.Error()})
			continue
		}

		name := strings.TrimSpace(record[0])
		email := models.NormalizeEmail(record[1])
		role := strings.TrimSpace(record[2])

		if reason := validateRow(name, email, role); reason != "" {
			result.Errors = append(result.Errors, RowError{Row: row, Name: name, Reason: reason})
			continue
		}

		exists, err := s.certRepo.Exists(hackathonID, name, email)
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: row, Name: name, Reason: err.Error()})
			continue
		}
		if exists {
			result.Duplicates++
			continue
		}

		certificateID := newCertificateID()

		start := time.Now()
		rendered, err := s.renderer.Render(render.Request{
			Background: background,
			Positions:  positions,
			Fields: map[string]string{
				models.FieldName:  name,
				models.FieldRole:  role,
				models.FieldEvent: hackathon.Title,
				models.FieldDate:  eventDate,
			},
			QRContent: s.VerificationURL(certificateID),
		})
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: row, Name: name, Reason: fmt.Sprintf("render failed: %v", err)})
			continue
		}
		metrics.RenderDurationSeconds.Observe(time.Since(start).Seconds())

		imageKey := fmt.Sprintf("%s/%d/%s.png", storage.CertificateArea, hackathonID, uuid.NewString())
		if err := s.blobs.Put(ctx, imageKey, rendered); err != nil {
			result.Errors = append(result.Errors, RowError{Row: row, Name: name, Reason: fmt.Sprintf("store failed: %v", err)})
			continue
		}

		cert := &models.Certificate{
			CertificateID:           certificateID,
			HackathonID:             hackathonID,
			RecipientName:           name,
			RecipientNameNormalized: models.NormalizeName(name),
			RecipientEmail:          email,
			Role:                    role,
			ImageKey:                imageKey,
		}
		if err := s.certRepo.Create(cert); err != nil {
			// A lost race with a concurrent identical row lands here via the
			// unique index; count it as a duplicate, not an error.
			if errors.Is(err, repository.ErrDuplicateCertificate) {
				result.Duplicates++
				_ = s.blobs.Delete(ctx, imageKey)
				continue
			}
			result.Errors = append(result.Errors, RowError{Row: row, Name: name, Reason: err.Error()})
			continue
		}

		result.Generated++
		metrics.CertificatesGeneratedTotal.WithLabelValues(hackathonLabel).Inc()
	}

	metrics.BulkBatchesTotal.WithLabelValues("ok").Inc()
	metrics.BulkRowErrorsTotal.Add(float64(len(result.Errors)))

	s.log.Info().
		Uint("hackathon_id", hackathonID).
		Int("generated", result.Generated).
		Int("duplicates", result.Duplicates).
		Int("row_errors", len(result.Errors)).
		Msg("Bulk certificate generation finished")

	if s.notifier != nil {
		if err := s.notifier.SendBulkSummary(ctx, hackathon.Title, result.Generated, result.Duplicates, len(result.Errors)); err != nil {
			s.log.Warn().Err(err).Msg("Failed to send bulk generation notification")
		}
	}

	return result, nil
}

func headerMatches(header []string) bool {
	if len(header) != len(csvHeader) {
		return false
	}
	for i, want := range csvHeader {
		if strings.TrimSpace(header[i]) != want {
			return false
		}
	}
	return true
}

func validateRow(name, email, role string) string {
	if name == "" {
		return "name is required"
	}
	if email == "" {
		return "email is required"
	}
	if !strings.Contains(email, "@") {
		return fmt.Sprintf("email %q is not valid", email)
	}
	if role == "" {
		return "role is required"
	}
	return ""
}
