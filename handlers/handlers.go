package handlers

import (
	"log"

	"evote-backend/service"
	"evote-backend/translate"
	"evote-backend/websocket"
)

// 全局服务引用，路由处理函数共享
var (
	authService    *service.AuthService
	pollService    *service.PollService
	voteService    *service.VoteService
	inquiryService *service.InquiryService
	translator     *translate.Client
	wsHub          *websocket.Hub
)

// InitHandler 初始化处理程序，注入各业务服务
func InitHandler(
	auth *service.AuthService,
	polls *service.PollService,
	votes *service.VoteService,
	inquiries *service.InquiryService,
	tr *translate.Client,
	hub *websocket.Hub,
) {
	authService = auth
	pollService = polls
	voteService = votes
	inquiryService = inquiries
	translator = tr
	wsHub = hub
	log.Println("业务服务已设置到处理程序")
}
