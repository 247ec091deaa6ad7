package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EmailMessage 待发送的邮件消息
type EmailMessage struct {
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Timestamp int64  `json:"timestamp"`
	MessageID string `json:"message_id"`
}

// 消息队列的队列名称常量
const (
	MainQueueName       = "email_queue"       // 主队列
	ProcessingQueueName = "email_processing"  // 处理中队列
	DeadLetterQueueName = "email_dead_letter" // 死信队列
	RetriesHashName     = "email_retries"     // 重试次数记录
	MessageIDSetName    = "email_message_ids" // 幂等性集合
)

// EmailMQ 基于Redis实现的邮件发送队列，
// 验证码邮件经它异步发出，注册接口不等待SMTP
type EmailMQ struct {
	client            *redis.Client
	ctx               context.Context
	sendHandler       func(msg EmailMessage) error
	isRunning         bool
	stopChan          chan struct{}
	wg                sync.WaitGroup
	processingTimeout time.Duration // 消息处理超时时间
	retryDelay        time.Duration // 重试延迟
	maxRetries        int           // 最大重试次数
}

// NewEmailMQ 创建新的邮件队列
func NewEmailMQ(redisClient *redis.Client) *EmailMQ {
	return &EmailMQ{
		client:            redisClient,
		ctx:               context.Background(),
		isRunning:         false,
		stopChan:          make(chan struct{}),
		processingTimeout: 5 * time.Minute,  // 默认5分钟超时
		retryDelay:        30 * time.Second, // 默认30秒重试延迟
		maxRetries:        3,                // 默认最大重试3次
	}
}

// RegisterHandler 注册实际发送邮件的处理函数
func (r *EmailMQ) RegisterHandler(handler func(msg EmailMessage) error) {
	r.sendHandler = handler
}

// Enqueue 发送邮件消息到队列
func (r *EmailMQ) Enqueue(to, subject, body string) error {
	msg := EmailMessage{
		To:        to,
		Subject:   subject,
		Body:      body,
		Timestamp: time.Now().Unix(),
		MessageID: uuid.New().String(),
	}

	// 序列化消息
	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %v", err)
	}

	// 幂等性检查 - 检查该消息是否已在处理队列中
	exists, err := r.client.SIsMember(r.ctx, MessageIDSetName, msg.MessageID).Result()
	if err != nil {
		// 继续处理，不因此阻止业务 - 但记录错误
		log.Printf("检查消息幂等性出错: %v", err)
	} else if exists {
		log.Printf("消息已处理过，跳过: %s", msg.MessageID)
		return nil
	}

	// 添加消息ID到集合，用于幂等性检查
	if err := r.client.SAdd(r.ctx, MessageIDSetName, msg.MessageID).Err(); err != nil {
		log.Printf("添加消息ID到幂等性集合出错: %v", err)
	}
	// 设置过期时间，避免集合无限增长
	r.client.Expire(r.ctx, MessageIDSetName, 48*time.Hour)

	// 发送消息到主队列
	if err := r.client.LPush(r.ctx, MainQueueName, jsonData).Err(); err != nil {
		return fmt.Errorf("发送消息到队列失败: %v", err)
	}

	log.Printf("邮件消息成功入队: %s, 消息ID: %s", msg.To, msg.MessageID)
	return nil
}

// Start 启动消费者
func (r *EmailMQ) Start() error {
	if r.sendHandler == nil {
		return fmt.Errorf("处理函数未注册")
	}

	if r.isRunning {
		return nil // 已经在运行中
	}

	r.isRunning = true
	log.Println("邮件队列消费者启动中...")

	// 启动主消费循环
	r.wg.Add(1)
	go r.consumeLoop()

	// 启动处理中消息的超时检查
	r.wg.Add(1)
	go r.timeoutCheckLoop()

	log.Println("邮件队列消费者已启动")
	return nil
}

// Stop 关闭消费者
func (r *EmailMQ) Stop() {
	if !r.isRunning {
		return
	}

	log.Println("正在关闭邮件队列消费者...")
	close(r.stopChan)
	r.wg.Wait()
	r.isRunning = false
	log.Println("邮件队列消费者已关闭")
}

// 主消费循环
func (r *EmailMQ) consumeLoop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.stopChan:
			return
		default:
			// 使用BRPOPLPUSH原子操作从主队列获取并移动到处理中队列
			result, err := r.client.BRPopLPush(r.ctx, MainQueueName, ProcessingQueueName, 1*time.Second).Result()

			if err != nil {
				if err != redis.Nil { // 忽略超时错误
					log.Printf("从队列获取消息失败: %v", err)
				}
				continue
			}

			// 异步处理消息
			go r.processMessage(result)
		}
	}
}

// 超时检查循环
func (r *EmailMQ) timeoutCheckLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.checkTimeouts()
		}
	}
}

// 检查消息处理超时
func (r *EmailMQ) checkTimeouts() {
	// 获取处理中队列的所有消息
	messages, err := r.client.LRange(r.ctx, ProcessingQueueName, 0, -1).Result()
	if err != nil {
		log.Printf("获取处理中队列消息失败: %v", err)
		return
	}

	now := time.Now().Unix()

	for _, msgData := range messages {
		var msg EmailMessage
		if err := json.Unmarshal([]byte(msgData), &msg); err != nil {
			log.Printf("解析消息数据失败: %v", err)
			continue
		}

		// 如果消息处理时间超过timeout，重新入队
		if now-msg.Timestamp > int64(r.processingTimeout.Seconds()) {
			retries, _ := r.client.HGet(r.ctx, RetriesHashName, msg.MessageID).Int()

			if retries >= r.maxRetries {
				// 超过最大重试次数，移至死信队列
				log.Printf("消息 %s 超过最大重试次数，移至死信队列", msg.MessageID)
				r.moveToDeadLetter(msgData)
			} else {
				// 增加重试计数
				r.client.HIncrBy(r.ctx, RetriesHashName, msg.MessageID, 1)

				// 更新时间戳
				msg.Timestamp = now
				updatedData, _ := json.Marshal(msg)

				// 从处理中队列删除
				r.client.LRem(r.ctx, ProcessingQueueName, 1, msgData)

				// 延迟一段时间后重新入队
				time.AfterFunc(r.retryDelay, func() {
					r.client.LPush(r.ctx, MainQueueName, updatedData)
					log.Printf("消息 %s 重新入队，重试次数: %d", msg.MessageID, retries+1)
				})
			}
		}
	}
}

// 处理单个消息
func (r *EmailMQ) processMessage(msgData string) {
	var msg EmailMessage
	if err := json.Unmarshal([]byte(msgData), &msg); err != nil {
		log.Printf("解析消息失败: %v", err)
		r.moveToDeadLetter(msgData)
		return
	}

	log.Printf("发送邮件: To=%s, MessageID=%s", msg.To, msg.MessageID)

	// 调用处理函数
	if err := r.sendHandler(msg); err != nil {
		log.Printf("发送邮件失败: %v", err)

		// 获取当前重试次数
		retries, _ := r.client.HGet(r.ctx, RetriesHashName, msg.MessageID).Int()

		if retries >= r.maxRetries {
			// 超过最大重试次数，移至死信队列
			log.Printf("消息 %s 超过最大重试次数，移至死信队列", msg.MessageID)
			r.moveToDeadLetter(msgData)
		} else {
			// 增加重试计数
			r.client.HIncrBy(r.ctx, RetriesHashName, msg.MessageID, 1)

			// 更新时间戳
			msg.Timestamp = time.Now().Unix()
			updatedData, _ := json.Marshal(msg)

			// 延迟重试
			time.AfterFunc(r.retryDelay, func() {
				r.client.LPush(r.ctx, MainQueueName, updatedData)
				log.Printf("消息 %s 重新入队，重试次数: %d", msg.MessageID, retries+1)
			})
		}
	} else {
		log.Printf("邮件发送成功: %s", msg.MessageID)
	}

	// 无论成功失败，都从处理中队列移除
	r.client.LRem(r.ctx, ProcessingQueueName, 1, msgData)
}

// 将消息移动到死信队列
func (r *EmailMQ) moveToDeadLetter(msgData string) {
	r.client.LPush(r.ctx, DeadLetterQueueName, msgData)
	r.client.LRem(r.ctx, ProcessingQueueName, 1, msgData)
}

// RetryDeadLetters 重新处理死信队列中的消息
func (r *EmailMQ) RetryDeadLetters() error {
	// 获取死信队列中的所有消息
	messages, err := r.client.LRange(r.ctx, DeadLetterQueueName, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("获取死信队列消息失败: %v", err)
	}

	count := 0
	for _, msgData := range messages {
		// 重新入队到主队列
		if err := r.client.LPush(r.ctx, MainQueueName, msgData).Err(); err != nil {
			log.Printf("重新入队消息失败: %v", err)
			continue
		}

		// 从死信队列移除
		r.client.LRem(r.ctx, DeadLetterQueueName, 1, msgData)

		// 重置重试计数
		var msg EmailMessage
		if json.Unmarshal([]byte(msgData), &msg) == nil {
			r.client.HDel(r.ctx, RetriesHashName, msg.MessageID)
		}

		count++
	}

	log.Printf("成功将 %d 条消息从死信队列移回主队列", count)
	return nil
}

// GetQueueStats 获取各队列的消息数量统计
func (r *EmailMQ) GetQueueStats() map[string]int64 {
	stats := make(map[string]int64)

	mainLen, _ := r.client.LLen(r.ctx, MainQueueName).Result()
	procLen, _ := r.client.LLen(r.ctx, ProcessingQueueName).Result()
	deadLen, _ := r.client.LLen(r.ctx, DeadLetterQueueName).Result()

	stats["main_queue"] = mainLen
	stats["processing_queue"] = procLen
	stats["dead_letter_queue"] = deadLen

	return stats
}
