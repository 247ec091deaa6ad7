package routes

import (
	"log"
	"net/http"
	"os"
	"time"

	"evote-backend/handlers"
	"evote-backend/middleware"
	"evote-backend/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server 是HTTP服务器的封装
type Server struct {
	*http.Server
}

// SetupRouter 设置和配置Gin路由
func SetupRouter(hub *websocket.Hub) *gin.Engine {
	// 创建Gin路由器
	router := gin.Default()

	// 配置CORS中间件
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // 生产环境中应限制为前端域名
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 初始化限流器
	handlers.InitRateLimiters()

	// WebSocket实时结果推送
	wsHandler := websocket.NewHandler(hub)
	wsHandler.RegisterRoutes(router)

	// 定义API路由
	api := router.Group("/api")
	{
		// 健康检查端点
		api.GET("/health", handlers.HealthCheck)
		api.GET("/status", handlers.SystemStatus)

		// 认证端点
		auth := api.Group("/auth")
		{
			auth.POST("/otp", handlers.RequestOTP)
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.GET("/me", middleware.RequireAuth(), handlers.Me)
		}

		// 翻译端点，对未登录用户也开放，外部服务调用量走滑动窗口限流
		api.POST("/translate", handlers.TranslateRateLimitMiddleware(), handlers.Translate)

		// 聚合结果
		api.GET("/results", handlers.GetResults)

		// 投票端点
		polls := api.Group("/polls")
		{
			polls.GET("", handlers.GetPolls)
			polls.GET("/:id", handlers.GetPoll)
			polls.GET("/:id/results", handlers.GetPollResults)

			// 写操作需要登录，投票提交额外挂限流
			polls.POST("/:id/vote", middleware.RequireAuth(), handlers.RateLimitMiddleware(), handlers.SubmitVote)
		}

		// 当前用户的投票记录
		api.GET("/votes/mine", middleware.RequireAuth(), handlers.GetMyVotes)

		// 客服工单
		inquiries := api.Group("/inquiries", middleware.RequireAuth())
		{
			inquiries.POST("", handlers.CreateInquiry)
			inquiries.GET("", handlers.GetInquiries)
			inquiries.GET("/:id", handlers.GetInquiry)
			inquiries.POST("/:id/messages", handlers.PostInquiryMessage)
		}

		// 管理员相关API，角色由服务端令牌判定
		admin := api.Group("/admin", middleware.RequireAuth(), middleware.RequireAdmin())
		{
			admin.POST("/polls", handlers.CreatePoll)
			admin.PUT("/polls/:id/status", handlers.UpdatePollStatus)
			admin.POST("/inquiries/:id/close", handlers.CloseInquiry)
			admin.GET("/ratelimit/stats", handlers.GetRateLimiterStats)
			admin.GET("/emailqueue/stats", handlers.GetEmailQueueStats)
			admin.POST("/emailqueue/retry", handlers.RetryDeadLetters)
			admin.POST("/cache/clean", handlers.ClearResultsCache)
		}
	}

	return router
}

// StartServer 启动HTTP服务器
func StartServer(router *gin.Engine) *Server {
	// 从环境变量获取端口，默认为8090
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8090" // 默认端口
	}

	addr := ":" + port

	srv := &Server{
		&http.Server{
			Addr:    addr,
			Handler: router,
		},
	}

	// 在单独的goroutine中启动服务器
	go func() {
		log.Printf("服务器启动在 %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	return srv
}
