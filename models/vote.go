package models

import (
	"gorm.io/gorm"
)

// Vote is an immutable record of one user's option choice for one poll.
// The composite unique index is the storage-level guarantee that a user
// votes at most once per poll, regardless of how many concurrent requests
// pass the application-level existence check.
type Vote struct {
	gorm.Model
	UserID uint   `gorm:"not null;uniqueIndex:idx_votes_user_poll" json:"user_id"`
	PollID uint   `gorm:"not null;uniqueIndex:idx_votes_user_poll;index" json:"poll_id"`
	Option string `gorm:"not null" json:"option"`
}
