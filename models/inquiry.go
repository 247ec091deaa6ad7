package models

import (
	"gorm.io/gorm"
)

// InquiryStatus is the lifecycle state of a support inquiry.
// pending -> in progress -> solved, or pending -> solved directly when an
// admin closes without replying. solved is terminal: later messages are
// still appended to the thread but never reopen the inquiry.
type InquiryStatus string

const (
	InquiryStatusPending    InquiryStatus = "pending"
	InquiryStatusInProgress InquiryStatus = "in progress"
	InquiryStatusSolved     InquiryStatus = "solved"
)

// Inquiry issue categories, matching the choices offered by the mobile client.
const (
	CategoryTechnicalIssue = "technical_issue"
	CategoryPollsIssue     = "polls_issue"
	CategoryAccountIssue   = "account_issue"
	CategoryOtherIssue     = "other_issue"
)

// Inquiry is a user-filed support ticket with an associated message thread.
type Inquiry struct {
	gorm.Model
	UserID       uint          `gorm:"not null;index" json:"user_id"`
	ReporterName string        `gorm:"not null" json:"reporter_name"`
	Category     string        `gorm:"not null" json:"category"`
	Description  string        `gorm:"type:text;not null" json:"description"`
	ImageURL     string        `json:"image_url"`
	Status       InquiryStatus `gorm:"not null;default:pending;index" json:"status"`
	AdminID      *uint         `json:"admin_id,omitempty"`
}

// InquiryMessage is one entry in an inquiry's thread, ordered by creation
// time. Messages are append-only.
type InquiryMessage struct {
	gorm.Model
	InquiryID uint   `gorm:"not null;index" json:"inquiry_id"`
	SenderID  uint   `gorm:"not null" json:"sender_id"`
	Content   string `gorm:"type:text;not null" json:"content"`
}
