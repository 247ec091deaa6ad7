package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"evote-backend/database"
	"evote-backend/middleware"
	"evote-backend/models"
	"evote-backend/service"
)

// CreatePoll 管理员创建新投票
func CreatePoll(c *gin.Context) {
	var input service.PollInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creatorID := middleware.CurrentUserID(c)

	poll, err := pollService.CreatePoll(c.Request.Context(), creatorID, &input)
	if err != nil {
		if errors.Is(err, service.ErrTitleTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "A poll with this title already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create poll"})
		return
	}

	c.JSON(http.StatusCreated, poll)
}

// GetPolls 列出投票，可按status过滤
func GetPolls(c *gin.Context) {
	status := models.PollStatus(c.Query("status"))

	polls, err := pollService.ListPolls(c.Request.Context(), status)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve polls"})
		return
	}

	c.JSON(http.StatusOK, polls)
}

// GetPoll 获取单个投票及其当前计票
func GetPoll(c *gin.Context) {
	pollID, ok := parseIDParam(c)
	if !ok {
		return
	}

	poll, err := pollService.GetPoll(c.Request.Context(), pollID)
	if err != nil {
		if errors.Is(err, service.ErrPollNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Poll not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve poll"})
		return
	}

	tally, err := database.GetPollTally(database.DB, pollID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to tally votes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"poll":  poll,
		"tally": tally,
	})
}

// UpdateStatusInput 状态变更输入
type UpdateStatusInput struct {
	Status models.PollStatus `json:"status" binding:"required"`
}

// UpdatePollStatus 管理员将投票标记为approved或rejected。
// 重复提交相同状态返回200且不做修改，
// 尝试改写已终结投票的状态返回409
func UpdatePollStatus(c *gin.Context) {
	pollID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var input UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	poll, err := pollService.UpdateStatus(c.Request.Context(), pollID, input.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPollNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Poll not found"})
		case errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be approved or rejected"})
		case errors.Is(err, service.ErrStatusConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Poll status is already final"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update poll status"})
		}
		return
	}

	c.JSON(http.StatusOK, poll)
}

// parseIDParam 解析URL中的:id参数
func parseIDParam(c *gin.Context) (uint, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid poll ID format"})
		return 0, false
	}
	return uint(id), true
}
