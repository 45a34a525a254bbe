package repository

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplateRepository_GetUnset(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTemplateRepository(db)
	hackathon := createTestHackathon(t, db, "Spring Hack")

	template, err := repo.Get(hackathon.ID)
	assert.NoError(t, err)
	assert.Nil(t, template, "missing template must be a valid empty state")
}

func TestTemplateRepository_UpsertBackground(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTemplateRepository(db)
	hackathon := createTestHackathon(t, db, "Spring Hack")

	created, err := repo.UpsertBackground(hackathon.ID, "certificate_templates/1-a.png", "image/png")
	assert.NoError(t, err)
	assert.Equal(t, "certificate_templates/1-a.png", created.BackgroundKey)

	// Re-upload supersedes the previous background on the same row.
	updated, err := repo.UpsertBackground(hackathon.ID, "certificate_templates/1-b.png", "image/png")
	assert.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "certificate_templates/1-b.png", updated.BackgroundKey)
}

func TestTemplateRepository_SetPositions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTemplateRepository(db)
	hackathon := createTestHackathon(t, db, "Spring Hack")

	_, err := repo.UpsertBackground(hackathon.ID, "certificate_templates/1-a.png", "image/png")
	assert.NoError(t, err)

	positions := json.RawMessage(`{"name":{"x":400,"y":300,"font_size":36,"enabled":true}}`)
	assert.NoError(t, repo.SetPositions(hackathon.ID, positions))

	template, err := repo.Get(hackathon.ID)
	assert.NoError(t, err)
	assert.JSONEq(t, string(positions), string(template.Positions))
	assert.Equal(t, "certificate_templates/1-a.png", template.BackgroundKey)
}

func TestTemplateRepository_SetPositionsBeforeUpload(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTemplateRepository(db)
	hackathon := createTestHackathon(t, db, "Spring Hack")

	positions := json.RawMessage(`{"date":{"x":400,"y":500,"font_size":20,"enabled":true}}`)
	assert.NoError(t, repo.SetPositions(hackathon.ID, positions))

	template, err := repo.Get(hackathon.ID)
	assert.NoError(t, err)
	assert.NotNil(t, template)
	assert.Empty(t, template.BackgroundKey)
	assert.JSONEq(t, string(positions), string(template.Positions))
}
