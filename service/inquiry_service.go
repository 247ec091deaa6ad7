package service

import (
	"context"

	"evote-backend/models"
	"evote-backend/repository"
)

// InquiryService 客服工单的业务逻辑
type InquiryService struct {
	inquiries *repository.InquiryRepository
	users     *repository.UserRepository
}

// NewInquiryService 创建工单服务
func NewInquiryService(inquiries *repository.InquiryRepository, users *repository.UserRepository) *InquiryService {
	return &InquiryService{inquiries: inquiries, users: users}
}

// InquiryInput 创建工单的输入
type InquiryInput struct {
	Category    string `json:"category" binding:"required"`
	Description string `json:"description" binding:"required"`
	ImageURL    string `json:"image_url"`
}

// CreateInquiry 用户提交工单，初始状态为pending
func (s *InquiryService) CreateInquiry(ctx context.Context, userID uint, input *InquiryInput) (*models.Inquiry, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	inquiry := &models.Inquiry{
		UserID:       userID,
		ReporterName: user.Username,
		Category:     input.Category,
		Description:  input.Description,
		ImageURL:     input.ImageURL,
		Status:       models.InquiryStatusPending,
	}

	if err := s.inquiries.CreateInquiry(ctx, inquiry); err != nil {
		return nil, err
	}
	return inquiry, nil
}

// ListInquiries 普通用户只看到自己的工单，管理员看到全部
func (s *InquiryService) ListInquiries(ctx context.Context, userID uint, isAdmin bool) ([]models.Inquiry, error) {
	if isAdmin {
		return s.inquiries.ListAll(ctx)
	}
	return s.inquiries.ListByUser(ctx, userID)
}

// GetInquiry 获取工单及其消息线程。
// 普通用户只能访问自己的工单
func (s *InquiryService) GetInquiry(ctx context.Context, id, userID uint, isAdmin bool) (*models.Inquiry, []models.InquiryMessage, error) {
	inquiry, err := s.inquiries.GetInquiryByID(ctx, id)
	if err != nil {
		return nil, nil, ErrInquiryNotFound
	}

	if !isAdmin && inquiry.UserID != userID {
		return nil, nil, ErrInquiryNotFound
	}

	messages, err := s.inquiries.ListMessages(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return inquiry, messages, nil
}

// PostMessage 向工单追加一条消息。
// 管理员首次回复pending工单时，工单进入in progress并记录受理人；
// solved是终态，之后的消息仍然追加但不会重新打开工单
func (s *InquiryService) PostMessage(ctx context.Context, inquiryID, senderID uint, isAdmin bool, content string) (*models.InquiryMessage, error) {
	inquiry, err := s.inquiries.GetInquiryByID(ctx, inquiryID)
	if err != nil {
		return nil, ErrInquiryNotFound
	}

	if !isAdmin && inquiry.UserID != senderID {
		return nil, ErrInquiryNotFound
	}

	msg := &models.InquiryMessage{
		InquiryID: inquiryID,
		SenderID:  senderID,
		Content:   content,
	}

	// 管理员首次回复时，消息和状态变更在一个事务里落库
	if isAdmin && inquiry.Status == models.InquiryStatusPending {
		inquiry.Status = models.InquiryStatusInProgress
		inquiry.AdminID = &senderID
		if err := s.inquiries.AddMessageWithStatus(ctx, msg, inquiry); err != nil {
			return nil, err
		}
		return msg, nil
	}

	if err := s.inquiries.AddMessage(ctx, msg); err != nil {
		return nil, err
	}

	return msg, nil
}

// CloseInquiry 管理员关闭工单，无论当前处于什么状态
func (s *InquiryService) CloseInquiry(ctx context.Context, inquiryID, adminID uint) (*models.Inquiry, error) {
	inquiry, err := s.inquiries.GetInquiryByID(ctx, inquiryID)
	if err != nil {
		return nil, ErrInquiryNotFound
	}

	inquiry.Status = models.InquiryStatusSolved
	if inquiry.AdminID == nil {
		inquiry.AdminID = &adminID
	}
	if err := s.inquiries.SaveInquiry(ctx, inquiry); err != nil {
		return nil, err
	}
	return inquiry, nil
}
