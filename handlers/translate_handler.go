package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// TranslateInput 翻译请求输入
type TranslateInput struct {
	Text       string `json:"text" binding:"required"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang" binding:"required"`
}

// Translate 调用外部翻译服务翻译界面文案。
// 翻译是尽力而为的：外部服务失败时返回原文，不报错
func Translate(c *gin.Context) {
	var input TranslateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	translated, err := translator.Translate(c.Request.Context(), input.Text, input.SourceLang, input.TargetLang)
	if err != nil {
		log.Printf("翻译失败，回退为原文: %v", err)
		c.JSON(http.StatusOK, gin.H{
			"translated": input.Text,
			"fallback":   true,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"translated": translated,
		"fallback":   false,
	})
}
