package models

import (
	"gorm.io/gorm"
)

// User roles. The admin role is assigned out-of-band (directly in the
// database by an operator); there is no API that elevates a user.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account. Accounts are only created after the
// email address has been verified with a one-time code.
type User struct {
	gorm.Model
	Email        string `gorm:"not null;uniqueIndex" json:"email"`
	Username     string `gorm:"not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
	AvatarURL    string `json:"avatar_url"`
	Role         string `gorm:"not null;default:user" json:"role"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
