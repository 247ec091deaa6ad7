package handlers

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"evote-backend/cache"
	"evote-backend/middleware"
)

// 全局限流器。Redis可用时走令牌桶Lua脚本，
// 否则退化为进程内的x/time/rate限流器
var (
	userLimiter      *cache.UserRateLimiter
	translateLimiter *cache.SlidingWindowRateLimiter
	localLimiter     *rate.Limiter
	rateLimitEnabled bool
	limitStatistics  = make(map[string]int64)
	limitStatsLock   = &sync.RWMutex{}
	rateLimitConfig  = RateLimiterConfig{
		GlobalRate:    100,
		GlobalBurst:   200,
		UserRate:      10,
		UserBurst:     20,
		TranslateRate: 30,
	}
)

// RateLimiterConfig 限流器配置结构
type RateLimiterConfig struct {
	Enabled     bool `json:"enabled"`
	GlobalRate  int  `json:"globalRate"`
	GlobalBurst int  `json:"globalBurst"`
	UserRate    int  `json:"userRate"`
	UserBurst   int  `json:"userBurst"`
	// TranslateRate 翻译接口每分钟允许的请求数
	TranslateRate int `json:"translateRate"`
}

// InitRateLimiters 初始化限流器
func InitRateLimiters() {
	if os.Getenv("ENABLE_RATE_LIMIT") == "true" {
		rateLimitEnabled = true
	}

	if rateStr := os.Getenv("GLOBAL_RATE_LIMIT"); rateStr != "" {
		if r, err := strconv.Atoi(rateStr); err == nil && r > 0 {
			rateLimitConfig.GlobalRate = r
			rateLimitConfig.GlobalBurst = r * 2
		}
	}

	if rateStr := os.Getenv("USER_RATE_LIMIT"); rateStr != "" {
		if r, err := strconv.Atoi(rateStr); err == nil && r > 0 {
			rateLimitConfig.UserRate = r
			rateLimitConfig.UserBurst = r * 2
		}
	}

	if rateStr := os.Getenv("TRANSLATE_RATE_LIMIT"); rateStr != "" {
		if r, err := strconv.Atoi(rateStr); err == nil && r > 0 {
			rateLimitConfig.TranslateRate = r
		}
	}

	rateLimitConfig.Enabled = rateLimitEnabled

	if !rateLimitEnabled {
		return
	}

	client, err := cache.GetClient()
	if err != nil {
		// Redis不可用，退化为单进程限流
		localLimiter = rate.NewLimiter(rate.Limit(rateLimitConfig.GlobalRate), rateLimitConfig.GlobalBurst)
		log.Printf("限流器使用进程内实现：全局速率=%d/秒", rateLimitConfig.GlobalRate)
		return
	}

	userLimiter = cache.NewUserRateLimiter(
		client,
		"vote_api",
		rateLimitConfig.GlobalRate,
		rateLimitConfig.GlobalBurst,
		rateLimitConfig.UserRate,
		rateLimitConfig.UserBurst,
	)
	translateLimiter = cache.NewSlidingWindowRateLimiter(
		client,
		"translate_api",
		time.Minute,
		rateLimitConfig.TranslateRate,
	)
	log.Printf("限流器已初始化：全局速率=%d/秒，用户速率=%d/秒，翻译速率=%d/分钟",
		rateLimitConfig.GlobalRate, rateLimitConfig.UserRate, rateLimitConfig.TranslateRate)
}

// RateLimitMiddleware 限流中间件，挂在投票写入路由上
func RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rateLimitEnabled {
			c.Next()
			return
		}

		limitStatsLock.Lock()
		limitStatistics["total"]++
		limitStatsLock.Unlock()

		allowed := true
		var err error

		if userLimiter != nil {
			userID := strconv.FormatUint(uint64(middleware.CurrentUserID(c)), 10)
			allowed, err = userLimiter.AllowUser(c, userID)
			if err != nil {
				// 限流器本身出错时放行，不因Redis故障拒绝业务
				log.Printf("限流检查失败: %v", err)
				allowed = true
			}
		} else if localLimiter != nil {
			allowed = localLimiter.Allow()
		}

		if !allowed {
			limitStatsLock.Lock()
			limitStatistics["rejected"]++
			limitStatsLock.Unlock()

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests, please try again later",
			})
			c.Abort()
			return
		}

		limitStatsLock.Lock()
		limitStatistics["allowed"]++
		limitStatsLock.Unlock()

		c.Next()
	}
}

// TranslateRateLimitMiddleware 翻译接口的滑动窗口限流，
// 外部翻译服务的调用量由它兜底
func TranslateRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rateLimitEnabled || translateLimiter == nil {
			c.Next()
			return
		}

		allowed, err := translateLimiter.Allow(c)
		if err != nil {
			// 限流器出错时放行，不因Redis故障拒绝业务
			log.Printf("翻译限流检查失败: %v", err)
			allowed = true
		}

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests, please try again later",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetRateLimiterStats 获取限流器状态（管理员）
func GetRateLimiterStats(c *gin.Context) {
	limitStatsLock.RLock()
	stats := gin.H{
		"totalRequests":    limitStatistics["total"],
		"allowedRequests":  limitStatistics["allowed"],
		"rejectedRequests": limitStatistics["rejected"],
		"config":           rateLimitConfig,
	}
	limitStatsLock.RUnlock()

	c.JSON(http.StatusOK, stats)
}
