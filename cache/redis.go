package cache

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// 全局Redis客户端
var (
	redisClient *redis.Client
	redisCtx    = context.Background()
	initOnce    sync.Once
	initialized bool

	// 空值缓存过期时间（用于缓存穿透）
	nullExpiration = 5 * time.Minute
	// 缓存时间抖动系数
	jitterFactor = 0.2
	// 锁超时时间
	lockTimeout = 5 * time.Second
)

// ResultsCacheKey 聚合结果的缓存键，投票成功后由投票服务删除
const ResultsCacheKey = "results:all"

// InitRedis 初始化Redis连接
func InitRedis() error {
	var initErr error

	initOnce.Do(func() {
		// 检查是否强制使用模拟模式
		if os.Getenv("REDIS_MOCK") == "true" {
			log.Println("强制使用Redis模拟模式")
			mockMode = true
			initialized = true
			return
		}

		// 从环境变量获取Redis连接信息
		redisAddr := os.Getenv("REDIS_ADDR")
		redisPassword := os.Getenv("REDIS_PASSWORD")
		redisDb := 0

		// 尝试从环境变量解析Redis数据库编号
		if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
			if db, err := strconv.Atoi(dbStr); err == nil {
				redisDb = db
			}
		}

		if redisAddr == "" {
			redisAddr = "localhost:6379"
		}

		log.Printf("初始化Redis连接, 地址: %s", redisAddr)

		// 创建Redis客户端
		options := &redis.Options{
			Addr:        redisAddr,
			Password:    redisPassword,
			DB:          redisDb,
			DialTimeout: 3 * time.Second,
			ReadTimeout: 3 * time.Second,
			PoolSize:    10,
		}

		client := redis.NewClient(options)

		// 测试连接
		if _, err := client.Ping(redisCtx).Result(); err != nil {
			log.Printf("Redis连接失败: %v，将使用模拟模式", err)
			mockMode = true
			initialized = true
			return
		}

		redisClient = client
		initialized = true
		mockMode = false
		log.Println("Redis连接初始化成功")
	})

	return initErr
}

// GetClient 获取Redis客户端实例
func GetClient() (*redis.Client, error) {
	if !initialized {
		return nil, fmt.Errorf("Redis客户端未初始化")
	}
	if mockMode {
		return nil, ErrRedisNotAvailable
	}
	return redisClient, nil
}

// Available 报告是否有可用的真实Redis连接
func Available() bool {
	return initialized && !mockMode && redisClient != nil
}

// AcquireLock 获取简单的SetNX锁（分布式锁服务见distlock.go，
// 这里的实现供缓存重建内部使用）
func AcquireLock(lockKey string, expiration time.Duration) (bool, error) {
	if !initialized {
		return false, fmt.Errorf("Redis客户端未初始化")
	}

	key := "evote:lock:" + lockKey

	if mockMode {
		mockMutex.Lock()
		defer mockMutex.Unlock()

		if locked, exists := mockLocks[key]; exists && locked {
			return false, nil // 锁已被占用
		}

		mockLocks[key] = true
		return true, nil
	}

	success, err := redisClient.SetNX(redisCtx, key, "1", expiration).Result()
	if err != nil {
		return false, fmt.Errorf("获取锁失败: %v", err)
	}

	return success, nil
}

// ReleaseLock 释放锁
func ReleaseLock(lockKey string) error {
	if !initialized {
		return fmt.Errorf("Redis客户端未初始化")
	}

	key := "evote:lock:" + lockKey

	if mockMode {
		mockMutex.Lock()
		defer mockMutex.Unlock()

		delete(mockLocks, key)
		return nil
	}

	_, err := redisClient.Del(redisCtx, key).Result()
	if err != nil {
		return fmt.Errorf("释放锁失败: %v", err)
	}

	return nil
}

// GetWithCache 带缓存的获取数据，处理缓存穿透和缓存击穿。
// queryFunc是在缓存未命中时调用的函数，用于从数据库查询数据，
// 返回值会以字符串形式缓存。
func GetWithCache(key string, expiration time.Duration, queryFunc func() (string, error)) (string, error) {
	if !initialized {
		return "", fmt.Errorf("Redis未初始化")
	}

	// 先查缓存
	if data, ok := cacheGet(key); ok {
		if data == "nil" {
			return "", ErrKeyNotFound
		}
		return data, nil
	}

	// 尝试获取锁来防止缓存击穿
	lockKey := "rebuild:" + key
	acquired, err := AcquireLock(lockKey, lockTimeout)
	if err != nil {
		log.Printf("获取缓存锁失败: %v", err)
		// 即使获取锁失败也继续执行，但可能会有短时间的缓存击穿
	}

	// 没拿到锁时再查一次缓存，可能已被其他进程重建
	if !acquired {
		if data, ok := cacheGet(key); ok {
			if data == "nil" {
				return "", ErrKeyNotFound
			}
			return data, nil
		}
	}

	// 从数据库获取数据
	data, err := queryFunc()

	// 无论成功失败，尝试释放锁
	if acquired {
		if releaseErr := ReleaseLock(lockKey); releaseErr != nil {
			log.Printf("释放缓存锁失败: %v", releaseErr)
		}
	}

	if err != nil {
		return "", err
	}

	// 空结果缓存短时间的空值，防止缓存穿透
	cacheData := data
	if cacheData == "" {
		cacheData = "nil"
		expiration = nullExpiration
	}

	// 添加随机抖动，防止缓存雪崩
	jitter := time.Duration(float64(expiration) * (1 + jitterFactor*(0.5-rand.Float64())))
	cacheSet(key, cacheData, jitter)

	return data, nil
}

// InvalidateKeys 删除一组缓存键，写操作之后调用
func InvalidateKeys(keys ...string) {
	if !initialized || len(keys) == 0 {
		return
	}

	if mockMode {
		mockMutex.Lock()
		for _, key := range keys {
			delete(mockData, key)
		}
		mockMutex.Unlock()
		return
	}

	if err := redisClient.Del(redisCtx, keys...).Err(); err != nil {
		log.Printf("删除缓存键失败: %v, 错误: %v", keys, err)
	}
}

// cacheGet 读取缓存，兼容模拟模式
func cacheGet(key string) (string, bool) {
	if mockMode {
		mockMutex.Lock()
		defer mockMutex.Unlock()
		data, exists := mockData[key]
		return data, exists
	}

	data, err := redisClient.Get(redisCtx, key).Result()
	if err == nil {
		return data, true
	}
	if err != redis.Nil {
		log.Printf("查询缓存失败: %v", err)
	}
	return "", false
}

// cacheSet 写入缓存，兼容模拟模式
func cacheSet(key, value string, expiration time.Duration) {
	if mockMode {
		mockMutex.Lock()
		mockData[key] = value
		mockMutex.Unlock()
		return
	}

	if err := redisClient.Set(redisCtx, key, value, expiration).Err(); err != nil {
		log.Printf("设置缓存失败: %v", err)
	}
}

// CloseRedis 关闭Redis连接
func CloseRedis() {
	if initialized && !mockMode && redisClient != nil {
		err := redisClient.Close()
		if err != nil {
			log.Printf("关闭Redis连接错误: %v", err)
		}
		log.Println("Redis连接已关闭")
	}
}
