package models

import (
	"time"
)

// Hackathon represents an event to which templates and certificates belong.
type Hackathon struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null;size:255" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Location    string    `gorm:"size:255" json:"location"`
	StartsAt    time.Time `gorm:"not null" json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	OrganizerID uint      `gorm:"not null;index" json:"organizer_id"`
	Organizer   User      `gorm:"foreignKey:OrganizerID" json:"organizer,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for Hackathon model.
func (Hackathon) TableName() string {
	return "hackathons"
}

// OwnedBy reports whether the given user owns this hackathon or is an admin.
func (h *Hackathon) OwnedBy(u *User) bool {
	return u.IsAdmin() || h.OrganizerID == u.ID
}
