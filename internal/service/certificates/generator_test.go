package certificates

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hackboard/hackboard/internal/apperr"
	"github.com/hackboard/hackboard/internal/models"
	"github.com/hackboard/hackboard/internal/render"
	"github.com/hackboard/hackboard/internal/repository"
	"github.com/hackboard/hackboard/internal/storage"
	"github.com/hackboard/hackboard/pkg/logger"
)

// testEnv wires the service against in-memory sqlite and a temp-dir blob store.
type testEnv struct {
	service   *Service
	db        *repository.DB
	blobs     *storage.LocalStore
	hackathon *models.Hackathon
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	db := &repository.DB{DB: gdb}
	if err := db.AutoMigrate(); err != nil {
		t.Fatalf("Failed to auto-migrate: %v", err)
	}

	blobs, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create blob store: %v", err)
	}

	renderer, err := render.NewRenderer("")
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}

	organizer := &models.User{Name: "Org", Email: "org@example.com", PasswordHash: "x", Role: models.RoleOrganizer}
	if err := db.Create(organizer).Error; err != nil {
		t.Fatalf("Failed to create organizer: %v", err)
	}
	hackathon := &models.Hackathon{
		Title:       "Spring Hack 2025",
		StartsAt:    time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC),
		OrganizerID: organizer.ID,
	}
	if err := db.Create(hackathon).Error; err != nil {
		t.Fatalf("Failed to create hackathon: %v", err)
	}

	service := NewService(
		repository.NewTemplateRepository(db),
		repository.NewCertificateRepository(db),
		repository.NewHackathonRepository(db),
		blobs,
		renderer,
		nil,
		"https://certs.example.com",
		logger.New("error", "json", "stdout"),
	)

	return &testEnv{service: service, db: db, blobs: blobs, hackathon: hackathon}
}

// whitePNG returns an all-white PNG of the given size.
func whitePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode background: %v", err)
	}
	return buf.Bytes()
}

// configureTemplate uploads a white background and sets the default positions.
func configureTemplate(t *testing.T, env *testEnv) {
	t.Helper()

	ctx := context.Background()
	_, err := env.service.UploadTemplate(ctx, env.hackathon.ID, whitePNG(t, 800, 600), "image/png")
	if err != nil {
		t.Fatalf("Failed to upload template: %v", err)
	}
	err = env.service.SetPositions(ctx, env.hackathon.ID, map[string]models.FieldPosition{
		models.FieldName: {X: 400, Y: 300, FontSize: 36, Color: "#1a1a1a", Enabled: true},
		models.FieldDate: {X: 400, Y: 500, FontSize: 20, Enabled: true},
		models.FieldQR:   {X: 700, Y: 520, Size: 100, Enabled: true},
	})
	if err != nil {
		t.Fatalf("Failed to set positions: %v", err)
	}
}

const twoRowCSV = "Name,Email,Role\nTest User 1,user1@test.com,participant\nTest User 2,user2@test.com,winner\n"

func TestBulkGenerate_NewRows(t *testing.T) {
	env := setupTestEnv(t)
	configureTemplate(t, env)
	ctx := context.Background()

	result, err := env.service.BulkGenerate(ctx, env.hackathon.ID, strings.NewReader(twoRowCSV))
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Generated)
	assert.Equal(t, 0, result.Duplicates)
	assert.Empty(t, result.Errors)

	// One registry row and one rendered image per CSV row.
	certs, err := env.service.ListForEvent(ctx, env.hackathon.ID)
	assert.NoError(t, err)
	assert.Len(t, certs, 2)

	blobs, err := env.blobs.List(ctx, storage.CertificateArea)
	assert.NoError(t, err)
	assert.Len(t, blobs, 2)

	for _, cert := range certs {
		data, err := env.blobs.Get(ctx, cert.ImageKey)
		assert.NoError(t, err)
		decoded, err := png.Decode(bytes.NewReader(data))
		assert.NoError(t, err)
		assert.Equal(t, 800, decoded.Bounds().Dx())
		assert.Equal(t, 600, decoded.Bounds().Dy())
	}
}

func TestBulkGenerate_RerunIsIdempotent(t *testing.T) {
	env := setupTestEnv(t)
	configureTemplate(t, env)
	ctx := context.Background()

	first, err := env.service.BulkGenerate(ctx, env.hackathon.ID, strings.NewReader(twoRowCSV))
	assert.NoError(t, err)
	assert.Equal(t, 2, first.Generated)

	second, err := env.service.BulkGenerate(ctx, env.hackathon.ID, strings.NewReader(twoRowCSV))
	assert.NoError(t, err)
	assert.Equal(t, 0, second.Generated)
	assert.Equal(t, 2, second.Duplicates)
	assert.Empty(t, second.Errors)

	certs, err := env.service.ListForEvent(ctx, env.hackathon.ID)
	assert.NoError(t, err)
	assert.Len(t, certs, 2)
}

func TestBulkGenerate_DuplicateDetectionIgnoresNameCase(t *testing.T) {
	env := setupTestEnv(t)
	configureTemplate(t, env)
	ctx := context.Background()

	_, err := env.service.BulkGenerate(ctx, env.hackathon.ID,
		strings.NewReader("Name,Email,Role\nJohn Doe,john@test.com,participant\n"))
	assert.NoError(t, err)

	result, err := env.service.BulkGenerate(ctx, env.hackathon.ID,
		strings.NewReader("Name,Email,Role\nJOHN DOE,john@test.com,participant\n"))
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Generated)
	assert.Equal(t, 1, result.Duplicates)
}

func TestBulkGenerate_InvalidHeaderRejectsBatch(t *testing.T) {
	env := setupTestEnv(t)
	configureTemplate(t, env)
	ctx := context.Background()

	for _, csv := range []string{
		"Invalid,Headers\na,b\n",
		"name,email,role\na,b@c.com,participant\n", // header match is case-sensitive
		"Name,Email\na,b@c.com\n",
	} {
		_, err := env.service.BulkGenerate(ctx, env.hackathon.ID, strings.NewReader(csv))
		assert.Error(t, err, "csv %q", csv)
		assert.True(t, apperr.IsKind(err, apperr.InvalidFormat), "csv %q", csv)
	}

	certs, err := env.service.ListForEvent(ctx, env.hackathon.ID)
	assert.NoError(t, err)
	assert.Empty(t, certs, "rejected batches must not create records")
}

func TestBulkGenerate_WithoutTemplate(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.service.BulkGenerate(ctx, env.hackathon.ID, strings.NewReader(twoRowCSV))
	assert.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.TemplateNotConfigured))
}

func TestBulkGenerate_WithoutPositions(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.service.UploadTemplate(ctx, env.hackathon.ID, whitePNG(t, 800, 600), "image/png")
	assert.NoError(t, err)

	// Background alone is not a configured template.
	_, err = env.service.BulkGenerate(ctx, env.hackathon.ID, strings.NewReader(twoRowCSV))
	assert.True(t, apperr.IsKind(err, apperr.TemplateNotConfigured))
}

func TestBulkGenerate_RowErrorsDoNotAbortBatch(t *testing.T) {
	env := setupTestEnv(t)
	configureTemplate(t, env)
	ctx := context.Background()

	csv := "Name,Email,Role\n" +
		",missing-name@test.com,participant\n" +
		"No Email Person,,participant\n" +
		"Bad Email,not-an-email,participant\n" +
		"Good Person,good@test.com,winner\n"

	result, err := env.service.BulkGenerate(ctx, env.hackathon.ID, strings.NewReader(csv))
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Generated)
	assert.Len(t, result.Errors, 3)

	// Row numbers are 1-based and include the header row.
	rows := []int{result.Errors[0].Row, result.Errors[1].Row, result.Errors[2].Row}
	assert.Equal(t, []int{2, 3, 4}, rows)

	cert, err := env.service.Retrieve(ctx, env.hackathon.ID, "Good Person", "good@test.com")
	assert.NoError(t, err)
	assert.Equal(t, "winner", cert.Role)
}

func TestBulkGenerate_UnknownHackathon(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.service.BulkGenerate(context.Background(), 9999, strings.NewReader(twoRowCSV))
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestUploadTemplate_RejectsNonImage(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.service.UploadTemplate(context.Background(), env.hackathon.ID, []byte("plain text"), "text/plain")
	assert.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.InvalidFileType))
}

func TestUploadTemplate_RoundTripsBytes(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	data := whitePNG(t, 800, 600)
	template, err := env.service.UploadTemplate(ctx, env.hackathon.ID, data, "image/png")
	assert.NoError(t, err)

	stored, err := env.blobs.Get(ctx, template.BackgroundKey)
	assert.NoError(t, err)
	assert.Equal(t, data, stored, "stored template must be byte-identical")
}

func TestSetPositions_Validation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	err := env.service.SetPositions(ctx, env.hackathon.ID, map[string]models.FieldPosition{
		"signature": {X: 1, Y: 1, FontSize: 10, Enabled: true},
	})
	assert.True(t, apperr.IsKind(err, apperr.InvalidFormat), "unknown field")

	err = env.service.SetPositions(ctx, env.hackathon.ID, map[string]models.FieldPosition{
		models.FieldName: {X: 10, Y: 10, Enabled: true},
	})
	assert.True(t, apperr.IsKind(err, apperr.InvalidFormat), "enabled text field without font size")

	err = env.service.SetPositions(ctx, env.hackathon.ID, map[string]models.FieldPosition{
		models.FieldQR: {X: 10, Y: 10, Enabled: true},
	})
	assert.True(t, apperr.IsKind(err, apperr.InvalidFormat), "enabled qr field without size")

	// Disabled fields need no style attributes.
	err = env.service.SetPositions(ctx, env.hackathon.ID, map[string]models.FieldPosition{
		models.FieldName: {Enabled: false},
	})
	assert.NoError(t, err)
}

func TestGetTemplate_UnsetIsNotAnError(t *testing.T) {
	env := setupTestEnv(t)

	template, err := env.service.GetTemplate(context.Background(), env.hackathon.ID)
	assert.NoError(t, err)
	assert.Nil(t, template)
}
