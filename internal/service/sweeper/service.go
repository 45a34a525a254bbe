// Package sweeper reconciles the blob store against the certificate
// registry. A crash mid-batch can leave a rendered image with no registry
// row; the sweeper deletes such orphans once they are older than the grace
// period, and refreshes the issued-certificates gauge.
package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hackboard/hackboard/internal/config"
	"github.com/hackboard/hackboard/internal/metrics"
	"github.com/hackboard/hackboard/internal/repository"
	"github.com/hackboard/hackboard/internal/storage"
	"github.com/hackboard/hackboard/pkg/logger"
)

// CertificateRepository interface for registry lookups.
type CertificateRepository interface {
	ImageKeyExists(key string) (bool, error)
	Count() (int64, error)
}

// Service runs the reconciliation on a cron schedule.
type Service struct {
	cfg      *config.SweeperConfig
	certRepo CertificateRepository
	blobs    storage.BlobStore
	log      *logger.Logger
	cron     *cron.Cron
}

// NewService creates a new sweeper service.
func NewService(cfg *config.SweeperConfig, certRepo *repository.CertificateRepository, blobs storage.BlobStore, log *logger.Logger) *Service {
	return &Service{cfg: cfg, certRepo: certRepo, blobs: blobs, log: log}
}

// NewServiceWithInterfaces creates a new sweeper service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(cfg *config.SweeperConfig, certRepo CertificateRepository, blobs storage.BlobStore, log *logger.Logger) *Service {
	return &Service{cfg: cfg, certRepo: certRepo, blobs: blobs, log: log}
}

// Start registers the cron job and starts the scheduler.
func (s *Service) Start() error {
	if !s.cfg.Enabled {
		s.log.Info().Msg("Sweeper is disabled in configuration")
		return nil
	}

	location, err := s.cfg.GetLocation()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.cfg.Timezone, err)
	}

	schedule := s.cfg.Schedule
	if schedule == "" {
		schedule = "0 3 * * *" // daily at 03:00
	}

	s.cron = cron.New(cron.WithLocation(location))
	_, err = s.cron.AddFunc(schedule, func() {
		if _, err := s.Sweep(context.Background()); err != nil {
			s.log.Error().Err(err).Msg("Sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to register sweep job: %w", err)
	}

	s.cron.Start()
	s.log.Info().Str("schedule", schedule).Msg("Sweeper started")
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Service) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Sweep deletes rendered images with no matching registry row older than the
// grace period. Returns the number of blobs removed.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	blobs, err := s.blobs.List(ctx, storage.CertificateArea)
	if err != nil {
		return 0, fmt.Errorf("failed to list certificate blobs: %w", err)
	}

	cutoff := time.Now().Add(-s.cfg.GracePeriodDuration())
	removed := 0
	for _, blob := range blobs {
		if blob.ModTime.After(cutoff) {
			continue // still inside the grace period; its row may not be committed yet
		}
		exists, err := s.certRepo.ImageKeyExists(blob.Key)
		if err != nil {
			return removed, err
		}
		if exists {
			continue
		}
		if err := s.blobs.Delete(ctx, blob.Key); err != nil {
			s.log.Warn().Err(err).Str("key", blob.Key).Msg("Failed to delete orphaned blob")
			continue
		}
		removed++
		metrics.OrphanedBlobsSweptTotal.Inc()
		s.log.Info().Str("key", blob.Key).Msg("Deleted orphaned certificate image")
	}

	if count, err := s.certRepo.Count(); err == nil {
		metrics.CertificatesIssued.Set(float64(count))
	}

	return removed, nil
}
