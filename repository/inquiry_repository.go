package repository

import (
	"context"

	"gorm.io/gorm"

	"evote-backend/models"
)

// InquiryRepository 客服工单的数据访问层
type InquiryRepository struct {
	db *gorm.DB
}

// NewInquiryRepository 创建工单仓库
func NewInquiryRepository(db *gorm.DB) *InquiryRepository {
	return &InquiryRepository{db: db}
}

// CreateInquiry 创建工单
func (r *InquiryRepository) CreateInquiry(ctx context.Context, inquiry *models.Inquiry) error {
	return r.db.WithContext(ctx).Create(inquiry).Error
}

// GetInquiryByID 获取工单
func (r *InquiryRepository) GetInquiryByID(ctx context.Context, id uint) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	if err := r.db.WithContext(ctx).First(&inquiry, id).Error; err != nil {
		return nil, err
	}
	return &inquiry, nil
}

// ListByUser 列出某个用户的工单，最新的在前
func (r *InquiryRepository) ListByUser(ctx context.Context, userID uint) ([]models.Inquiry, error) {
	var inquiries []models.Inquiry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&inquiries).Error
	return inquiries, err
}

// ListAll 列出全部工单（管理员视图），最新的在前
func (r *InquiryRepository) ListAll(ctx context.Context) ([]models.Inquiry, error) {
	var inquiries []models.Inquiry
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Find(&inquiries).Error
	return inquiries, err
}

// SaveInquiry 保存工单的状态变更
func (r *InquiryRepository) SaveInquiry(ctx context.Context, inquiry *models.Inquiry) error {
	return r.db.WithContext(ctx).Save(inquiry).Error
}

// AddMessage 向工单追加一条消息
func (r *InquiryRepository) AddMessage(ctx context.Context, msg *models.InquiryMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// AddMessageWithStatus 在一个事务里追加消息并保存工单的状态变更，
// 消息和状态要么同时落库要么都不落库
func (r *InquiryRepository) AddMessageWithStatus(ctx context.Context, msg *models.InquiryMessage, inquiry *models.Inquiry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Save(inquiry).Error
	})
}

// ListMessages 按时间顺序列出工单的消息
func (r *InquiryRepository) ListMessages(ctx context.Context, inquiryID uint) ([]models.InquiryMessage, error) {
	var messages []models.InquiryMessage
	err := r.db.WithContext(ctx).
		Where("inquiry_id = ?", inquiryID).
		Order("created_at asc, id asc").
		Find(&messages).Error
	return messages, err
}
