package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"evote-backend/cache"
	"evote-backend/database"
	"evote-backend/models"
	"evote-backend/repository"
	"evote-backend/websocket"
)

// VoteService 处理投票的写入和实时推送
type VoteService struct {
	polls *repository.PollRepository
	votes *repository.VoteRepository
	bloom *cache.BloomFilter
	locks *cache.DistributedLockService
	hub   *websocket.Hub
}

// NewVoteService 创建投票服务
func NewVoteService(polls *repository.PollRepository, votes *repository.VoteRepository,
	bloom *cache.BloomFilter, locks *cache.DistributedLockService, hub *websocket.Hub) *VoteService {
	return &VoteService{
		polls: polls,
		votes: votes,
		bloom: bloom,
		locks: locks,
		hub:   hub,
	}
}

// CastVote 为用户记录一张选票。
// 同一用户对同一投票最多计一票，最终由(user_id, poll_id)唯一索引保证，
// 应用层检查和分布式锁只是快速路径
func (s *VoteService) CastVote(ctx context.Context, userID, pollID uint, option string) error {
	// 布隆过滤器拦截明显不存在的投票ID
	if s.bloom != nil {
		exists, err := s.bloom.Contains(ctx, fmt.Sprintf("%d", pollID))
		if err == nil && !exists {
			return ErrPollNotFound
		}
	}

	poll, err := s.polls.GetPollByID(ctx, pollID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrPollNotFound
		}
		return err
	}

	// 只有active状态的投票可以投票
	if poll.Status != models.PollStatusActive {
		return ErrPollClosed
	}

	// 选项必须是该投票声明过的
	if !poll.HasOption(option) {
		return ErrOptionNotFound
	}

	// 尝试获取分布式锁，收敛同一用户的并发请求。
	// 拿不到锁也继续走，正确性不依赖锁
	if s.locks != nil {
		lockName := fmt.Sprintf("vote:%d:%d", userID, pollID)
		mutex, acquired, lockErr := s.locks.AcquireLock(lockName, 3*time.Second)
		if lockErr == nil && acquired {
			defer func() {
				_, _ = s.locks.ReleaseLock(mutex)
			}()
		}
	}

	// 快速路径检查，避免大多数重复请求打到唯一索引
	hasVoted, err := s.votes.HasUserVoted(ctx, userID, pollID)
	if err != nil {
		return err
	}
	if hasVoted {
		return ErrAlreadyVoted
	}

	vote := &models.Vote{
		UserID: userID,
		PollID: pollID,
		Option: option,
	}
	if err := s.votes.CreateVote(ctx, vote); err != nil {
		if errors.Is(err, repository.ErrDuplicateVote) {
			return ErrAlreadyVoted
		}
		return err
	}

	// 结果缓存失效
	cache.InvalidateKeys(cache.ResultsCacheKey)

	// 实时推送最新计票结果
	go s.broadcastTally(pollID)

	return nil
}

// broadcastTally 推送某个投票的最新计票
func (s *VoteService) broadcastTally(pollID uint) {
	if s.hub == nil {
		return
	}

	tally, err := database.GetPollTally(database.DB, pollID)
	if err != nil {
		log.Printf("获取计票结果失败: %v", err)
		return
	}

	s.hub.BroadcastToPoll(pollID, &models.ResultUpdate{
		Type:    "RESULT_UPDATE",
		PollID:  pollID,
		Payload: tally,
	})
}

// MyVotedPolls 返回用户投过票的记录
func (s *VoteService) MyVotedPolls(ctx context.Context, userID uint) ([]models.Vote, error) {
	return s.votes.ListUserVotes(ctx, userID)
}
