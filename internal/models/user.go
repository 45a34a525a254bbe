// Package models defines domain models for the hackathon management system.
package models

import (
	"time"
)

// User represents an account in the system.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null;size:255" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash string    `gorm:"not null;size:255" json:"-"`
	Role         string    `gorm:"size:50;default:'participant'" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}

// User role constants.
const (
	RoleParticipant = "participant"
	RoleOrganizer   = "organizer"
	RoleJudge       = "judge"
	RoleAdmin       = "admin"
)

// CanOrganize reports whether the user may create and manage hackathons.
func (u *User) CanOrganize() bool {
	return u.Role == RoleOrganizer || u.Role == RoleAdmin
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
