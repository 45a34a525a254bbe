package auth

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hackboard/hackboard/internal/apperr"
	"github.com/hackboard/hackboard/internal/cache"
	"github.com/hackboard/hackboard/internal/config"
	"github.com/hackboard/hackboard/internal/models"
	"github.com/hackboard/hackboard/internal/repository"
	"github.com/hackboard/hackboard/pkg/logger"
	"github.com/hackboard/hackboard/test/mocks"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	if err := gdb.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("Failed to auto-migrate users: %v", err)
	}
	db := &repository.DB{DB: gdb}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	log := logger.New("error", "json", "stdout")

	cfg := &config.AuthConfig{
		TokenSecret: "test-secret",
		TokenTTL:    3600,
		BcryptCost:  4, // keep hashing fast in tests
	}
	return NewService(repository.NewUserRepository(db), cache.NewRedisCacheFromClient(client, log), cfg, log)
}

func TestRegisterAndLogin(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	user, err := service.Register(ctx, "Jane Doe", "Jane@Example.COM", "s3cret-pass", models.RoleOrganizer)
	assert.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, models.RoleOrganizer, user.Role)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	token, logged, err := service.Login(ctx, "jane@example.com", "s3cret-pass")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, logged.ID)

	validated, err := service.Validate(ctx, token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, validated.ID)
}

func TestRegister_Validation(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "", "a@b.com", "s3cret-pass", "")
	assert.True(t, apperr.IsKind(err, apperr.InvalidFormat), "missing name")

	_, err = service.Register(ctx, "Short", "a@b.com", "short", "")
	assert.True(t, apperr.IsKind(err, apperr.InvalidFormat), "short password")

	_, err = service.Register(ctx, "Sneaky", "a@b.com", "s3cret-pass", models.RoleAdmin)
	assert.True(t, apperr.IsKind(err, apperr.InvalidFormat), "admin cannot be self-assigned")

	// Default role is participant.
	user, err := service.Register(ctx, "Plain", "plain@b.com", "s3cret-pass", "")
	assert.NoError(t, err)
	assert.Equal(t, models.RoleParticipant, user.Role)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "First", "dup@b.com", "s3cret-pass", "")
	assert.NoError(t, err)

	_, err = service.Register(ctx, "Second", "DUP@B.COM", "s3cret-pass", "")
	assert.Error(t, err, "email uniqueness is case-insensitive via normalization")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "Jane Doe", "jane@b.com", "s3cret-pass", "")
	assert.NoError(t, err)

	// Unknown email and wrong password are indistinguishable to the caller.
	_, _, err = service.Login(ctx, "nobody@b.com", "s3cret-pass")
	assert.True(t, apperr.IsKind(err, apperr.Unauthorized))
	assert.Contains(t, err.Error(), "invalid credentials")

	_, _, err = service.Login(ctx, "jane@b.com", "wrong-pass")
	assert.True(t, apperr.IsKind(err, apperr.Unauthorized))
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestLogout_RevokesToken(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "Jane Doe", "jane@b.com", "s3cret-pass", "")
	assert.NoError(t, err)
	token, _, err := service.Login(ctx, "jane@b.com", "s3cret-pass")
	assert.NoError(t, err)

	_, err = service.Validate(ctx, token)
	assert.NoError(t, err)

	assert.NoError(t, service.Logout(ctx, token))

	_, err = service.Validate(ctx, token)
	assert.True(t, apperr.IsKind(err, apperr.Unauthorized))
	assert.Contains(t, err.Error(), "revoked")
}

func TestValidate_RejectsGarbageAndForgedTokens(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	_, err := service.Validate(ctx, "not-a-jwt")
	assert.True(t, apperr.IsKind(err, apperr.Unauthorized))

	// Token signed with a different secret.
	otherCfg := &config.AuthConfig{TokenSecret: "other-secret", TokenTTL: 3600, BcryptCost: 4}
	forged := setupForgedToken(t, otherCfg)
	_, err = service.Validate(ctx, forged)
	assert.True(t, apperr.IsKind(err, apperr.Unauthorized))
}

func setupForgedToken(t *testing.T, cfg *config.AuthConfig) string {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	if err := gdb.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("Failed to auto-migrate users: %v", err)
	}
	log := logger.New("error", "json", "stdout")
	service := NewServiceWithInterfaces(repository.NewUserRepository(&repository.DB{DB: gdb}), mocks.NewMockCache(), cfg, log)

	ctx := context.Background()
	if _, err := service.Register(ctx, "Other", "other@b.com", "s3cret-pass", ""); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}
	token, _, err := service.Login(ctx, "other@b.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Failed to login: %v", err)
	}
	return token
}
