package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"evote-backend/cache"
	"evote-backend/mq"
)

// 全局邮件队列引用，管理端点使用
var emailQueue *mq.EmailMQ

// InitAdminHandler 注入邮件队列
func InitAdminHandler(queue *mq.EmailMQ) {
	emailQueue = queue
}

// GetEmailQueueStats 返回邮件队列各队列的长度（管理员）
func GetEmailQueueStats(c *gin.Context) {
	if emailQueue == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Email queue not running"})
		return
	}
	c.JSON(http.StatusOK, emailQueue.GetQueueStats())
}

// RetryDeadLetters 把死信队列中的邮件移回主队列（管理员）
func RetryDeadLetters(c *gin.Context) {
	if emailQueue == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Email queue not running"})
		return
	}

	if err := emailQueue.RetryDeadLetters(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retry dead letters"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Dead letters requeued"})
}

// ClearResultsCache 清除聚合结果缓存（管理员）
func ClearResultsCache(c *gin.Context) {
	cache.InvalidateKeys(cache.ResultsCacheKey)
	c.JSON(http.StatusOK, gin.H{"message": "Results cache cleared"})
}
