package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"evote-backend/cache"
	"evote-backend/database"
	"evote-backend/handlers"
	"evote-backend/mailer"
	"evote-backend/mq"
	"evote-backend/repository"
	"evote-backend/routes"
	"evote-backend/service"
	"evote-backend/translate"
	"evote-backend/websocket"
)

func main() {
	// 初始化数据库连接
	if err := database.InitDB(); err != nil {
		log.Fatalf("无法初始化数据库: %v", err)
	}

	// 初始化Redis连接，失败时自动进入模拟模式
	if err := cache.InitRedis(); err != nil {
		log.Printf("警告: Redis初始化失败: %v", err)
	}

	// 初始化分布式锁和布隆过滤器
	cache.InitDistLock()
	bloomFilter := cache.InitPollBloomFilter()

	// 数据仓库
	pollRepo := repository.NewPollRepository(database.DB)
	voteRepo := repository.NewVoteRepository(database.DB)
	userRepo := repository.NewUserRepository(database.DB)
	inquiryRepo := repository.NewInquiryRepository(database.DB)

	// WebSocket消息中心
	hub := websocket.NewHub()
	go hub.Run()

	// 邮件投递：Redis可用时走异步队列，否则直接发送
	smtpMailer := mailer.NewFromEnv()
	var emailSender service.EmailSender = &service.DirectSender{Mailer: smtpMailer}

	var emailQueue *mq.EmailMQ
	if client, err := cache.GetClient(); err == nil {
		emailQueue = mq.NewEmailMQ(client)
		emailQueue.RegisterHandler(func(msg mq.EmailMessage) error {
			return smtpMailer.Send(msg.To, msg.Subject, msg.Body)
		})
		if err := emailQueue.Start(); err != nil {
			log.Printf("警告: 邮件队列启动失败: %v", err)
		} else {
			emailSender = emailQueue
		}
	}

	// 业务服务
	authService := service.NewAuthService(userRepo, emailSender)
	pollService := service.NewPollService(pollRepo, bloomFilter)
	voteService := service.NewVoteService(pollRepo, voteRepo, bloomFilter, cache.GetLockService(), hub)
	inquiryService := service.NewInquiryService(inquiryRepo, userRepo)

	// 布隆过滤器预热
	go pollService.PrewarmBloom(context.Background())

	// 注入处理程序
	handlers.InitHandler(authService, pollService, voteService, inquiryService,
		translate.NewClient(), hub)
	handlers.InitAdminHandler(emailQueue)

	// 设置路由并启动服务器
	router := routes.SetupRouter(hub)
	srv := routes.StartServer(router)
	log.Println("服务器启动成功")

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("关闭服务器...")

	// 创建一个5秒超时的上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 不接受新请求并等待现有请求完成
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务器强制关闭: %v", err)
	}

	// 关闭邮件队列、数据库和Redis连接
	if emailQueue != nil {
		emailQueue.Stop()
	}
	database.CloseDB()
	cache.CloseRedis()

	log.Println("服务器优雅关闭")
}
