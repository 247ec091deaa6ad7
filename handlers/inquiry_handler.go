package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"evote-backend/middleware"
	"evote-backend/models"
	"evote-backend/service"
)

// isAdminRequest 从请求上下文判断是否为管理员
func isAdminRequest(c *gin.Context) bool {
	role, _ := c.Get("role")
	return role == models.RoleAdmin
}

// CreateInquiry 用户提交客服工单
func CreateInquiry(c *gin.Context) {
	var input service.InquiryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.CurrentUserID(c)

	inquiry, err := inquiryService.CreateInquiry(c.Request.Context(), userID, &input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create inquiry"})
		return
	}

	c.JSON(http.StatusCreated, inquiry)
}

// GetInquiries 列出工单，普通用户只看到自己的
func GetInquiries(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	inquiries, err := inquiryService.ListInquiries(c.Request.Context(), userID, isAdminRequest(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve inquiries"})
		return
	}

	c.JSON(http.StatusOK, inquiries)
}

// GetInquiry 获取工单详情和消息线程
func GetInquiry(c *gin.Context) {
	inquiryID, ok := parseIDParam(c)
	if !ok {
		return
	}

	userID := middleware.CurrentUserID(c)

	inquiry, messages, err := inquiryService.GetInquiry(c.Request.Context(), inquiryID, userID, isAdminRequest(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"inquiry":  inquiry,
		"messages": messages,
	})
}

// MessageInput 工单消息输入
type MessageInput struct {
	Content string `json:"content" binding:"required"`
}

// PostInquiryMessage 向工单追加一条消息
func PostInquiryMessage(c *gin.Context) {
	inquiryID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var input MessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.CurrentUserID(c)

	msg, err := inquiryService.PostMessage(c.Request.Context(), inquiryID, userID, isAdminRequest(c), input.Content)
	if err != nil {
		if errors.Is(err, service.ErrInquiryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post message"})
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// CloseInquiry 管理员将工单标记为solved
func CloseInquiry(c *gin.Context) {
	inquiryID, ok := parseIDParam(c)
	if !ok {
		return
	}

	adminID := middleware.CurrentUserID(c)

	inquiry, err := inquiryService.CloseInquiry(c.Request.Context(), inquiryID, adminID)
	if err != nil {
		if errors.Is(err, service.ErrInquiryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close inquiry"})
		return
	}

	c.JSON(http.StatusOK, inquiry)
}
