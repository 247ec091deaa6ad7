package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"evote-backend/cache"
	"evote-backend/database"
)

// 结果缓存时间
const resultsCacheTTL = 30 * time.Second

// GetResults 返回所有投票的聚合结果，按投票创建时间排序。
// 聚合计票在数据库端完成，热路径走Redis缓存
func GetResults(c *gin.Context) {
	data, err := cache.GetWithCache(cache.ResultsCacheKey, resultsCacheTTL, func() (string, error) {
		results, err := database.AggregatePollResults(database.DB)
		if err != nil {
			return "", err
		}
		encoded, err := json.Marshal(results)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	})

	if err != nil {
		// 空结果被缓存为占位值，对外仍然是空数组
		if err == cache.ErrKeyNotFound {
			c.JSON(http.StatusOK, []database.PollResult{})
			return
		}
		log.Printf("获取聚合结果失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate results"})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(data))
}

// GetPollResults 返回单个投票的计票结果，含零票选项
func GetPollResults(c *gin.Context) {
	pollID, ok := parseIDParam(c)
	if !ok {
		return
	}

	tally, err := database.GetPollTally(database.DB, pollID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Poll not found"})
		return
	}

	c.JSON(http.StatusOK, tally)
}
