package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"evote-backend/models"
)

// PollRepository 投票活动的数据访问层
type PollRepository struct {
	db *gorm.DB
}

// NewPollRepository 创建投票数据仓库
func NewPollRepository(db *gorm.DB) *PollRepository {
	return &PollRepository{db: db}
}

// CreatePoll 在一个事务里创建投票及其选项
func (r *PollRepository) CreatePoll(ctx context.Context, poll *models.Poll) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(poll).Error
	})
}

// GetPollByID 获取投票详情，选项按声明顺序排列
func (r *PollRepository) GetPollByID(ctx context.Context, id uint) (*models.Poll, error) {
	var poll models.Poll
	err := r.db.WithContext(ctx).
		Preload("Options", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position asc")
		}).
		First(&poll, id).Error
	if err != nil {
		return nil, err
	}
	return &poll, nil
}

// ListPolls 按创建时间列出投票，status为空时返回全部
func (r *PollRepository) ListPolls(ctx context.Context, status models.PollStatus) ([]models.Poll, error) {
	query := r.db.WithContext(ctx).
		Preload("Options", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position asc")
		}).
		Order("created_at asc, id asc")

	if status != "" {
		query = query.Where("status = ?", status)
	}

	var polls []models.Poll
	if err := query.Find(&polls).Error; err != nil {
		return nil, err
	}
	return polls, nil
}

// UpdateStatus 更新投票状态
func (r *PollRepository) UpdateStatus(ctx context.Context, id uint, status models.PollStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Poll{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// TitleExists 检查标题是否已被占用
func (r *PollRepository) TitleExists(ctx context.Context, title string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Poll{}).
		Where("title = ?", title).
		Count(&count).Error
	return count > 0, err
}

// AllPollIDs 返回所有投票ID，用于布隆过滤器预热
func (r *PollRepository) AllPollIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Poll{}).
		Pluck("id", &ids).Error
	return ids, err
}

// IsNotFound 判断是否为记录不存在错误
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
