package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"evote-backend/cache"
	"evote-backend/models"
	"evote-backend/repository"
)

// PollService 投票活动的生命周期管理
type PollService struct {
	polls *repository.PollRepository
	bloom *cache.BloomFilter
}

// NewPollService 创建投票管理服务
func NewPollService(polls *repository.PollRepository, bloom *cache.BloomFilter) *PollService {
	return &PollService{polls: polls, bloom: bloom}
}

// PollInput 创建投票的输入
type PollInput struct {
	Title            string   `json:"title" binding:"required"`
	BriefDescription string   `json:"brief_description"`
	FullDescription  string   `json:"full_description"`
	ImageURL         string   `json:"image_url"`
	Options          []string `json:"options" binding:"required,min=2"`
}

// CreatePoll 创建新投票，初始状态为active
func (s *PollService) CreatePoll(ctx context.Context, creatorID uint, input *PollInput) (*models.Poll, error) {
	poll := &models.Poll{
		Title:            input.Title,
		BriefDescription: input.BriefDescription,
		FullDescription:  input.FullDescription,
		ImageURL:         input.ImageURL,
		Status:           models.PollStatusActive,
		CreatedBy:        creatorID,
	}

	for i, label := range input.Options {
		poll.Options = append(poll.Options, models.PollOption{
			Position: i,
			Label:    label,
		})
	}

	if err := s.polls.CreatePoll(ctx, poll); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTitleTaken
		}
		return nil, err
	}

	// 新投票进入布隆过滤器，结果缓存失效
	if s.bloom != nil {
		if err := s.bloom.Add(ctx, fmt.Sprintf("%d", poll.ID)); err != nil {
			log.Printf("更新布隆过滤器失败: %v", err)
		}
	}
	cache.InvalidateKeys(cache.ResultsCacheKey)

	return poll, nil
}

// GetPoll 获取投票详情
func (s *PollService) GetPoll(ctx context.Context, id uint) (*models.Poll, error) {
	poll, err := s.polls.GetPollByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrPollNotFound
		}
		return nil, err
	}
	return poll, nil
}

// ListPolls 列出投票，status为空时返回全部
func (s *PollService) ListPolls(ctx context.Context, status models.PollStatus) ([]models.Poll, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.polls.ListPolls(ctx, status)
}

// UpdateStatus 管理员将投票标记为approved或rejected。
// 重复提交相同的目标状态是幂等的空操作；
// 已终结的投票不允许改成其他状态
func (s *PollService) UpdateStatus(ctx context.Context, id uint, target models.PollStatus) (*models.Poll, error) {
	if !target.Valid() || target == models.PollStatusActive {
		return nil, ErrInvalidStatus
	}

	poll, err := s.polls.GetPollByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrPollNotFound
		}
		return nil, err
	}

	// 幂等：目标状态和当前状态一致时不做任何修改
	if poll.Status == target {
		return poll, nil
	}

	if poll.Status.Terminal() {
		return nil, ErrStatusConflict
	}

	if err := s.polls.UpdateStatus(ctx, id, target); err != nil {
		return nil, err
	}

	poll.Status = target
	cache.InvalidateKeys(cache.ResultsCacheKey)
	return poll, nil
}

// PrewarmBloom 把已有投票ID全部写入布隆过滤器，启动时调用
func (s *PollService) PrewarmBloom(ctx context.Context) {
	if s.bloom == nil {
		return
	}

	ids, err := s.polls.AllPollIDs(ctx)
	if err != nil {
		log.Printf("预热布隆过滤器失败: %v", err)
		return
	}

	for _, id := range ids {
		if err := s.bloom.Add(ctx, fmt.Sprintf("%d", id)); err != nil {
			log.Printf("布隆过滤器写入失败: %v", err)
			return
		}
	}
	log.Printf("布隆过滤器预热完成，共 %d 个投票", len(ids))
}
