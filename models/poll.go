package models

import (
	"gorm.io/gorm"
)

// PollStatus is the lifecycle state of a poll. A poll starts out active and
// is moved by an admin to exactly one of the terminal states.
type PollStatus string

const (
	PollStatusActive   PollStatus = "active"
	PollStatusApproved PollStatus = "approved"
	PollStatusRejected PollStatus = "rejected"
)

// Terminal reports whether the status allows no further transitions.
func (s PollStatus) Terminal() bool {
	return s == PollStatusApproved || s == PollStatusRejected
}

// Valid reports whether s is one of the known lifecycle states.
func (s PollStatus) Valid() bool {
	return s == PollStatusActive || s == PollStatusApproved || s == PollStatusRejected
}

// Poll represents a voting poll
type Poll struct {
	gorm.Model
	Title            string       `gorm:"not null;uniqueIndex" json:"title"`
	BriefDescription string       `gorm:"type:text" json:"brief_description"`
	FullDescription  string       `gorm:"type:text" json:"full_description"`
	ImageURL         string       `json:"image_url"`
	Status           PollStatus   `gorm:"not null;default:active;index" json:"status"`
	CreatedBy        uint         `gorm:"not null;index" json:"created_by"`
	Options          []PollOption `gorm:"foreignKey:PollID" json:"options"`
}

// PollOption is a single selectable label within a poll. Position preserves
// the order the creator declared the options in.
type PollOption struct {
	gorm.Model
	PollID   uint   `gorm:"not null;index" json:"poll_id"`
	Position int    `gorm:"not null" json:"position"`
	Label    string `gorm:"not null" json:"label"`
}

// HasOption reports whether label is one of the poll's declared options.
func (p *Poll) HasOption(label string) bool {
	for _, opt := range p.Options {
		if opt.Label == label {
			return true
		}
	}
	return false
}

// OptionLabels returns the poll's option labels in declared order.
func (p *Poll) OptionLabels() []string {
	labels := make([]string, len(p.Options))
	for i, opt := range p.Options {
		labels[i] = opt.Label
	}
	return labels
}
