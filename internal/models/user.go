package models

import (
	"strings"
	"time"
)

// Role is the closed set of actors known to the platform.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

// ParseRole normalises a raw role value and reports whether it is known.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleStudent:
		return RoleStudent, true
	case RoleFaculty:
		return RoleFaculty, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// IsReviewer reports whether the role may review activities.
func (r Role) IsReviewer() bool {
	return r == RoleFaculty || r == RoleAdmin
}

// User is a directory entry. Registration happens outside this service.
type User struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Email      string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role       Role      `gorm:"size:16;not null;index" json:"role"`
	Department string    `gorm:"size:255" json:"department"`
	RollNumber string    `gorm:"size:64" json:"roll_number"`
	Credits    int       `gorm:"not null;default:0" json:"credits"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
