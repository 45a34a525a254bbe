// Package stats aggregates simple platform counts for the admin dashboard.
package stats

import (
	"context"

	"github.com/hackboard/hackboard/internal/repository"
	"github.com/hackboard/hackboard/pkg/logger"
)

// UserCounter interface for user counts.
type UserCounter interface {
	Count() (int64, error)
}

// HackathonCounter interface for hackathon counts.
type HackathonCounter interface {
	Count() (int64, error)
}

// CertificateCounter interface for certificate counts.
type CertificateCounter interface {
	Count() (int64, error)
	CountByHackathon() (map[uint]int64, error)
}

// Overview is the admin analytics summary.
type Overview struct {
	Users                   int64          `json:"users"`
	Hackathons              int64          `json:"hackathons"`
	Certificates            int64          `json:"certificates"`
	CertificatesByHackathon map[uint]int64 `json:"certificates_by_hackathon"`
}

// Service computes admin analytics.
type Service struct {
	users      UserCounter
	hackathons HackathonCounter
	certs      CertificateCounter
	log        *logger.Logger
}

// NewService creates a new stats service.
func NewService(
	users *repository.UserRepository,
	hackathons *repository.HackathonRepository,
	certs *repository.CertificateRepository,
	log *logger.Logger,
) *Service {
	return &Service{users: users, hackathons: hackathons, certs: certs, log: log}
}

// NewServiceWithInterfaces creates a new stats service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(users UserCounter, hackathons HackathonCounter, certs CertificateCounter, log *logger.Logger) *Service {
	return &Service{users: users, hackathons: hackathons, certs: certs, log: log}
}

// Overview returns platform-wide counts.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	users, err := s.users.Count()
	if err != nil {
		return nil, err
	}
	hackathons, err := s.hackathons.Count()
	if err != nil {
		return nil, err
	}
	certs, err := s.certs.Count()
	if err != nil {
		return nil, err
	}
	perHackathon, err := s.certs.CountByHackathon()
	if err != nil {
		return nil, err
	}
	return &Overview{
		Users:                   users,
		Hackathons:              hackathons,
		Certificates:            certs,
		CertificatesByHackathon: perHackathon,
	}, nil
}
