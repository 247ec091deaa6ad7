package database

import (
	"fmt"

	"evote-backend/models"

	"gorm.io/gorm"
)

// OptionCount 单个选项的票数
type OptionCount struct {
	Option string `json:"option"`
	Count  int64  `json:"count"`
}

// PollResult 一个投票的聚合结果，含投票元数据
type PollResult struct {
	PollID     uint              `json:"poll_id"`
	Title      string            `json:"title"`
	Status     models.PollStatus `json:"status"`
	TotalVotes int64             `json:"total_votes"`
	// YesVotes/NoVotes 为二元投票保留的便捷字段，
	// Options 才是通用的按选项计票结果
	YesVotes int64         `json:"yes_votes"`
	NoVotes  int64         `json:"no_votes"`
	Options  []OptionCount `json:"options"`
}

// AggregatePollResults 在数据库端按 (poll_id, option) 分组计票，
// 再关联投票元数据。输出按投票创建时间排序，保证结果稳定可测。
func AggregatePollResults(db *gorm.DB) ([]PollResult, error) {
	var rows []struct {
		PollID uint
		Option string
		Count  int64
	}

	err := db.Model(&models.Vote{}).
		Select("poll_id, `option`, COUNT(*) as count").
		Group("poll_id").Group("`option`").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("统计投票失败: %v", err)
	}

	if len(rows) == 0 {
		return []PollResult{}, nil
	}

	// 收集出现过的投票ID
	counts := make(map[uint][]OptionCount)
	for _, r := range rows {
		counts[r.PollID] = append(counts[r.PollID], OptionCount{Option: r.Option, Count: r.Count})
	}

	pollIDs := make([]uint, 0, len(counts))
	for id := range counts {
		pollIDs = append(pollIDs, id)
	}

	// 关联投票元数据，按创建时间排序
	var polls []models.Poll
	if err := db.Where("id IN ?", pollIDs).Order("created_at asc, id asc").Find(&polls).Error; err != nil {
		return nil, fmt.Errorf("获取投票元数据失败: %v", err)
	}

	results := make([]PollResult, 0, len(polls))
	for _, poll := range polls {
		res := PollResult{
			PollID:  poll.ID,
			Title:   poll.Title,
			Status:  poll.Status,
			Options: counts[poll.ID],
		}
		for _, oc := range res.Options {
			res.TotalVotes += oc.Count
			switch oc.Option {
			case "Yes":
				res.YesVotes = oc.Count
			case "No":
				res.NoVotes = oc.Count
			}
		}
		results = append(results, res)
	}

	return results, nil
}

// GetPollTally 获取单个投票的按选项计票，票数为零的选项也会出现在结果中
func GetPollTally(db *gorm.DB, pollID uint) ([]OptionCount, error) {
	var poll models.Poll
	if err := db.Preload("Options", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position asc")
	}).First(&poll, pollID).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		Option string
		Count  int64
	}
	err := db.Model(&models.Vote{}).
		Select("`option`, COUNT(*) as count").
		Where("poll_id = ?", pollID).
		Group("`option`").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("统计投票失败: %v", err)
	}

	byOption := make(map[string]int64, len(rows))
	for _, r := range rows {
		byOption[r.Option] = r.Count
	}

	tally := make([]OptionCount, len(poll.Options))
	for i, opt := range poll.Options {
		tally[i] = OptionCount{Option: opt.Label, Count: byOption[opt.Label]}
	}
	return tally, nil
}
