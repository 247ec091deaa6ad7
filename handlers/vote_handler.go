package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"evote-backend/middleware"
	"evote-backend/service"
)

// VoteInput 投票输入
type VoteInput struct {
	Option string `json:"option" binding:"required"`
}

// SubmitVote 为当前用户记录一张选票。
// 重复投票返回409，投票关闭返回409，选项无效返回400
func SubmitVote(c *gin.Context) {
	pollID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var input VoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.CurrentUserID(c)

	err := voteService.CastVote(c.Request.Context(), userID, pollID, input.Option)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPollNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Poll not found"})
		case errors.Is(err, service.ErrPollClosed):
			c.JSON(http.StatusConflict, gin.H{"error": "Poll is no longer accepting votes"})
		case errors.Is(err, service.ErrOptionNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Option is not part of this poll"})
		case errors.Is(err, service.ErrAlreadyVoted):
			c.JSON(http.StatusConflict, gin.H{"error": "You have already voted on this poll"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record vote"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Vote recorded"})
}

// GetMyVotes 返回当前用户的投票记录
func GetMyVotes(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	votes, err := voteService.MyVotedPolls(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve votes"})
		return
	}

	c.JSON(http.StatusOK, votes)
}
