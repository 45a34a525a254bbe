package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hackboard/hackboard/internal/apperr"
	"github.com/hackboard/hackboard/internal/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")

	err = db.AutoMigrate(
		&models.User{},
		&models.Hackathon{},
		&models.CertificateTemplate{},
		&models.Certificate{},
	)
	if err != nil {
		t.Fatalf("Failed to auto-migrate tables: %v", err)
	}

	return &DB{db}
}

// createTestHackathon creates a hackathon with an organizer account.
func createTestHackathon(t *testing.T, db *DB, title string) *models.Hackathon {
	t.Helper()

	organizer := &models.User{
		Name:         "Organizer",
		Email:        fmt.Sprintf("organizer-%d@example.com", time.Now().UnixNano()),
		PasswordHash: "x",
		Role:         models.RoleOrganizer,
	}
	if err := db.Create(organizer).Error; err != nil {
		t.Fatalf("Failed to create organizer: %v", err)
	}

	hackathon := &models.Hackathon{
		Title:       title,
		StartsAt:    time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC),
		EndsAt:      time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC),
		OrganizerID: organizer.ID,
	}
	if err := db.Create(hackathon).Error; err != nil {
		t.Fatalf("Failed to create hackathon: %v", err)
	}
	return hackathon
}

// newTestCertificate builds an unsaved certificate record.
func newTestCertificate(hackathonID uint, certID, name, email, role string) *models.Certificate {
	return &models.Certificate{
		CertificateID:           certID,
		HackathonID:             hackathonID,
		RecipientName:           name,
		RecipientNameNormalized: models.NormalizeName(name),
		RecipientEmail:          models.NormalizeEmail(email),
		Role:                    role,
		ImageKey:                "certificates/" + certID + ".png",
	}
}

func TestCertificateRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCertificateRepository(db)
	hackathon := createTestHackathon(t, db, "Spring Hack")

	cert := newTestCertificate(hackathon.ID, "crt_alpha", "John Doe", "john.doe@example.com", "participant")
	assert.NoError(t, repo.Create(cert))

	found, err := repo.Find(hackathon.ID, "John Doe", "john.doe@example.com")
	assert.NoError(t, err)
	assert.Equal(t, "crt_alpha", found.CertificateID)
	assert.Equal(t, "John Doe", found.RecipientName)
}

func TestCertificateRepository_FindIsCaseInsensitiveOnName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCertificateRepository(db)
	hackathon := createTestHackathon(t, db, "Spring Hack")

	cert := newTestCertificate(hackathon.ID, "crt_alpha", "John Doe", "john.doe@example.com", "participant")
	assert.NoError(t, repo.Create(cert))

	upper, err := repo.Find(hackathon.ID, "JOHN DOE", "john.doe@example.com")
	assert.NoError(t, err)
	mixed, err := repo.Find(hackathon.ID, "John Doe", "john.doe@example.com")
	assert.NoError(t, err)
	assert.Equal(t, upper.ID, mixed.ID)
}

func TestCertificateRepository_DuplicateInsertRejected(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCertificateRepository(db)
	hackathon := createTestHackathon(t, db, "Spring Hack")

	first := newTestCertificate(hackathon.ID, "crt_one", "Jane Roe", "jane@example.com", "winner")
	assert.NoError(t, repo.Create(first))

	// Same recipient, different casing and certificate ID: the composite
	// unique index must reject it.
	second := newTestCertificate(hackathon.ID, "crt_two", "JANE ROE", "jane@example.com", "winner")
	err := repo.Create(second)
	assert.ErrorIs(t, err, ErrDuplicateCertificate)
}

func TestCertificateRepository_SameRecipientDifferentHackathon(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCertificateRepository(db)
	first := createTestHackathon(t, db, "Spring Hack")
	second := createTestHackathon(t, db, "Fall Hack")

	assert.NoError(t, repo.Create(newTestCertificate(first.ID, "crt_one", "Jane Roe", "jane@example.com", "winner")))
	assert.NoError(t, repo.Create(newTestCertificate(second.ID, "crt_two", "Jane Roe", "jane@example.com", "participant")))
}

func TestCertificateRepository_Exists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCertificateRepository(db)
	hackathon := createTestHackathon(t, db, "Spring Hack")

	assert.NoError(t, repo.Create(newTestCertificate(hackathon.ID, "crt_one", "Jane Roe", "jane@example.com", "winner")))

	exists, err := repo.Exists(hackathon.ID, "  jane roe ", "JANE@example.com")
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(hackathon.ID, "Jane Roe", "other@example.com")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestCertificateRepository_FindNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCertificateRepository(db)
	hackathon := createTestHackathon(t, db, "Spring Hack")

	_, err := repo.Find(hackathon.ID, "Nobody", "nobody@example.com")
	assert.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestCertificateRepository_GetByCertificateID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCertificateRepository(db)
	hackathon := createTestHackathon(t, db, "Spring Hack")

	assert.NoError(t, repo.Create(newTestCertificate(hackathon.ID, "crt_one", "Jane Roe", "jane@example.com", "judge")))

	cert, err := repo.GetByCertificateID("crt_one")
	assert.NoError(t, err)
	assert.Equal(t, "Jane Roe", cert.RecipientName)
	assert.Equal(t, "Spring Hack", cert.Hackathon.Title)

	_, err = repo.GetByCertificateID("crt_unknown")
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestCertificateRepository_ListByHackathon(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCertificateRepository(db)
	first := createTestHackathon(t, db, "Spring Hack")
	second := createTestHackathon(t, db, "Fall Hack")

	assert.NoError(t, repo.Create(newTestCertificate(first.ID, "crt_a", "A", "a@example.com", "participant")))
	assert.NoError(t, repo.Create(newTestCertificate(first.ID, "crt_b", "B", "b@example.com", "winner")))
	assert.NoError(t, repo.Create(newTestCertificate(second.ID, "crt_c", "C", "c@example.com", "participant")))

	certs, err := repo.ListByHackathon(first.ID)
	assert.NoError(t, err)
	assert.Len(t, certs, 2)
}

func TestCertificateRepository_Counts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCertificateRepository(db)
	first := createTestHackathon(t, db, "Spring Hack")
	second := createTestHackathon(t, db, "Fall Hack")

	assert.NoError(t, repo.Create(newTestCertificate(first.ID, "crt_a", "A", "a@example.com", "participant")))
	assert.NoError(t, repo.Create(newTestCertificate(first.ID, "crt_b", "B", "b@example.com", "winner")))
	assert.NoError(t, repo.Create(newTestCertificate(second.ID, "crt_c", "C", "c@example.com", "participant")))

	total, err := repo.Count()
	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)

	perHackathon, err := repo.CountByHackathon()
	assert.NoError(t, err)
	assert.Equal(t, int64(2), perHackathon[first.ID])
	assert.Equal(t, int64(1), perHackathon[second.ID])
}

func TestCertificateRepository_ImageKeyExists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCertificateRepository(db)
	hackathon := createTestHackathon(t, db, "Spring Hack")

	cert := newTestCertificate(hackathon.ID, "crt_a", "A", "a@example.com", "participant")
	assert.NoError(t, repo.Create(cert))

	exists, err := repo.ImageKeyExists(cert.ImageKey)
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ImageKeyExists("certificates/orphan.png")
	assert.NoError(t, err)
	assert.False(t, exists)
}
