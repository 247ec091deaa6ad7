package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"evote-backend/models"
)

// VoteRepository 投票记录的数据访问层
type VoteRepository struct {
	db *gorm.DB
}

// NewVoteRepository 创建投票记录仓库
func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// CreateVote 插入投票记录。(user_id, poll_id)上的唯一索引保证
// 并发请求最多只有一条能插入成功，重复插入返回ErrDuplicateVote
func (r *VoteRepository) CreateVote(ctx context.Context, vote *models.Vote) error {
	err := r.db.WithContext(ctx).Create(vote).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateVote
	}
	return err
}

// HasUserVoted 检查用户是否已对该投票投过票
func (r *VoteRepository) HasUserVoted(ctx context.Context, userID, pollID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("user_id = ? AND poll_id = ?", userID, pollID).
		Count(&count).Error
	return count > 0, err
}

// ListUserVotes 返回用户的全部投票记录
func (r *VoteRepository) ListUserVotes(ctx context.Context, userID uint) ([]models.Vote, error) {
	var votes []models.Vote
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&votes).Error
	return votes, err
}

// ErrDuplicateVote 用户已对该投票投过票
var ErrDuplicateVote = errors.New("duplicate vote")
