// Package auth implements registration, login, logout and bearer-token
// validation. Tokens are HS256 JWTs; logout revokes a token by blacklisting
// its ID in Redis for the remainder of its lifetime.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hackboard/hackboard/internal/apperr"
	"github.com/hackboard/hackboard/internal/cache"
	"github.com/hackboard/hackboard/internal/config"
	"github.com/hackboard/hackboard/internal/models"
	"github.com/hackboard/hackboard/internal/repository"
	"github.com/hackboard/hackboard/pkg/logger"
)

// UserRepository interface for user persistence.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
}

// Claims are the JWT claims carried by issued tokens.
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Service issues and validates bearer tokens.
type Service struct {
	userRepo UserRepository
	cache    cache.Cache
	secret   []byte
	tokenTTL time.Duration
	cost     int
	log      *logger.Logger
}

// NewService creates a new auth service.
func NewService(userRepo *repository.UserRepository, c cache.Cache, cfg *config.AuthConfig, log *logger.Logger) *Service {
	return newService(userRepo, c, cfg, log)
}

// NewServiceWithInterfaces creates a new auth service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(userRepo UserRepository, c cache.Cache, cfg *config.AuthConfig, log *logger.Logger) *Service {
	return newService(userRepo, c, cfg, log)
}

func newService(userRepo UserRepository, c cache.Cache, cfg *config.AuthConfig, log *logger.Logger) *Service {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo: userRepo,
		cache:    c,
		secret:   []byte(cfg.TokenSecret),
		tokenTTL: cfg.TokenTTLDuration(),
		cost:     cost,
		log:      log,
	}
}

// Register creates a new account with a hashed password.
func (s *Service) Register(ctx context.Context, name, email, password, role string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = models.NormalizeEmail(email)
	if name == "" || email == "" {
		return nil, apperr.New(apperr.InvalidFormat, "name and email are required")
	}
	if len(password) < 8 {
		return nil, apperr.New(apperr.InvalidFormat, "password must be at least 8 characters")
	}
	switch role {
	case "", models.RoleParticipant:
		role = models.RoleParticipant
	case models.RoleOrganizer, models.RoleJudge:
	default:
		return nil, apperr.Newf(apperr.InvalidFormat, "role %q cannot be self-assigned", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	s.log.Info().Uint("user_id", user.ID).Str("role", role).Msg("Registered user")
	return user, nil
}

// Login verifies credentials and issues a signed bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(models.NormalizeEmail(email))
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return "", nil, apperr.New(apperr.Unauthorized, "invalid credentials")
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperr.New(apperr.Unauthorized, "invalid credentials")
	}

	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.log.Info().Uint("user_id", user.ID).Msg("Issued bearer token")
	return token, user, nil
}

// Validate parses a bearer token and resolves the authenticated user.
// Revoked and expired tokens are rejected as Unauthorized.
func (s *Service) Validate(ctx context.Context, tokenString string) (*models.User, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.New(apperr.Unauthorized, "invalid or expired token")
	}

	revoked, err := s.cache.Exists(ctx, blacklistKey(claims.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, apperr.New(apperr.Unauthorized, "token has been revoked")
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return nil, apperr.New(apperr.Unauthorized, "token subject no longer exists")
		}
		return nil, err
	}
	return user, nil
}

// Logout revokes the token for the remainder of its lifetime.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return apperr.New(apperr.Unauthorized, "invalid or expired token")
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.cache.Set(ctx, blacklistKey(claims.ID), "revoked", ttl); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	s.log.Info().Uint("user_id", claims.UserID).Msg("Revoked bearer token")
	return nil
}

func blacklistKey(tokenID string) string {
	return "auth:blacklist:" + tokenID
}
