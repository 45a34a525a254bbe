package models

import (
	"encoding/json"
	"strings"
	"time"
)

// CertificateTemplate holds the background image and field-position
// configuration for one hackathon. There is at most one row per hackathon;
// re-upload supersedes the previous background.
type CertificateTemplate struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	HackathonID   uint            `gorm:"uniqueIndex;not null" json:"hackathon_id"`
	Hackathon     Hackathon       `gorm:"foreignKey:HackathonID" json:"hackathon,omitempty"`
	BackgroundKey string          `gorm:"not null;size:512" json:"background_key"`
	ContentType   string          `gorm:"size:100" json:"content_type"`
	Positions     json.RawMessage `gorm:"type:jsonb" json:"positions"` // field name -> FieldPosition
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName specifies the table name for CertificateTemplate model.
func (CertificateTemplate) TableName() string {
	return "certificate_templates"
}

// FieldPosition describes where and how one field is rendered onto the
// template background. Text fields use FontSize and Color; the qr field
// uses Size.
type FieldPosition struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	FontSize int    `json:"font_size,omitempty"`
	Color    string `json:"color,omitempty"`
	Size     int    `json:"size,omitempty"`
	Enabled  bool   `json:"enabled"`
}

// Renderable field names.
const (
	FieldName  = "name"
	FieldRole  = "role"
	FieldEvent = "event"
	FieldDate  = "date"
	FieldQR    = "qr"
)

// TextFields lists the text fields a template may position.
var TextFields = []string{FieldName, FieldRole, FieldEvent, FieldDate}

// PositionMap decodes the stored positions document.
func (t *CertificateTemplate) PositionMap() (map[string]FieldPosition, error) {
	positions := make(map[string]FieldPosition)
	if len(t.Positions) == 0 {
		return positions, nil
	}
	if err := json.Unmarshal(t.Positions, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

// Certificate represents one issued certificate. Records are created once
// during bulk generation and never mutated.
type Certificate struct {
	ID                      uint      `gorm:"primaryKey" json:"id"`
	CertificateID           string    `gorm:"uniqueIndex;not null;size:64" json:"certificate_id"`
	HackathonID             uint      `gorm:"not null;index;uniqueIndex:idx_certificates_recipient" json:"hackathon_id"`
	Hackathon               Hackathon `gorm:"foreignKey:HackathonID" json:"hackathon,omitempty"`
	RecipientName           string    `gorm:"not null;size:255" json:"recipient_name"`
	RecipientNameNormalized string    `gorm:"not null;size:255;uniqueIndex:idx_certificates_recipient" json:"-"`
	RecipientEmail          string    `gorm:"not null;size:255;uniqueIndex:idx_certificates_recipient" json:"recipient_email"`
	Role                    string    `gorm:"not null;size:50" json:"role"`
	ImageKey                string    `gorm:"not null;size:512" json:"image_key"`
	CreatedAt               time.Time `json:"created_at"`
}

// TableName specifies the table name for Certificate model.
func (Certificate) TableName() string {
	return "certificates"
}

// Certificate role constants.
const (
	CertRoleParticipant = "participant"
	CertRoleWinner      = "winner"
	CertRoleJudge       = "judge"
	CertRoleOrganizer   = "organizer"
)

// NormalizeName lowercases and trims a recipient name for matching.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeEmail trims and lowercases a recipient email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
