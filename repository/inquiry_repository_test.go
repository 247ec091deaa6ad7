package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"evote-backend/models"
)

func TestAddMessageWithStatus(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewInquiryRepository(db)
	ctx := context.Background()

	user := models.User{Email: "reporter@example.com", Username: "Reporter", PasswordHash: "x", Role: models.RoleUser}
	assert.NoError(t, db.Create(&user).Error)

	admin := models.User{Email: "admin@example.com", Username: "Admin", PasswordHash: "x", Role: models.RoleAdmin}
	assert.NoError(t, db.Create(&admin).Error)

	inquiry := models.Inquiry{
		UserID:       user.ID,
		ReporterName: user.Username,
		Category:     models.CategoryTechnicalIssue,
		Description:  "App crashes",
		Status:       models.InquiryStatusPending,
	}
	assert.NoError(t, repo.CreateInquiry(ctx, &inquiry))

	reply := models.InquiryMessage{InquiryID: inquiry.ID, SenderID: admin.ID, Content: "Looking into it"}
	inquiry.Status = models.InquiryStatusInProgress
	inquiry.AdminID = &admin.ID
	assert.NoError(t, repo.AddMessageWithStatus(ctx, &reply, &inquiry))

	stored, err := repo.GetInquiryByID(ctx, inquiry.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.InquiryStatusInProgress, stored.Status)
	assert.NotNil(t, stored.AdminID)
	assert.Equal(t, admin.ID, *stored.AdminID)

	messages, err := repo.ListMessages(ctx, inquiry.ID)
	assert.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestAddMessageWithStatus_RollsBackTogether(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewInquiryRepository(db)
	ctx := context.Background()

	user := models.User{Email: "reporter2@example.com", Username: "Reporter", PasswordHash: "x", Role: models.RoleUser}
	assert.NoError(t, db.Create(&user).Error)

	inquiry := models.Inquiry{
		UserID:       user.ID,
		ReporterName: user.Username,
		Category:     models.CategoryAccountIssue,
		Description:  "Cannot log in",
		Status:       models.InquiryStatusPending,
	}
	assert.NoError(t, repo.CreateInquiry(ctx, &inquiry))

	existing := models.InquiryMessage{InquiryID: inquiry.ID, SenderID: user.ID, Content: "Any update?"}
	assert.NoError(t, repo.AddMessage(ctx, &existing))

	// Force the message insert to fail with a primary key collision and
	// verify the status change is rolled back with it
	conflicting := models.InquiryMessage{InquiryID: inquiry.ID, SenderID: user.ID, Content: "dup"}
	conflicting.ID = existing.ID

	inquiry.Status = models.InquiryStatusInProgress
	err := repo.AddMessageWithStatus(ctx, &conflicting, &inquiry)
	assert.Error(t, err)

	stored, err := repo.GetInquiryByID(ctx, inquiry.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.InquiryStatusPending, stored.Status)
	assert.Nil(t, stored.AdminID)

	messages, err := repo.ListMessages(ctx, inquiry.ID)
	assert.NoError(t, err)
	assert.Len(t, messages, 1)
}
