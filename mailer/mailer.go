package mailer

import (
	"fmt"
	"log"
	"os"
	"strconv"

	mail "gopkg.in/mail.v2"
)

// Mailer SMTP邮件发送器，负责验证码邮件的实际投递
type Mailer struct {
	dialer *mail.Dialer
	from   string
}

// NewFromEnv 从环境变量构建Mailer。
// 未配置SMTP_HOST时返回nil，调用方按禁用处理
func NewFromEnv() *Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		log.Println("未配置SMTP_HOST，邮件发送已禁用")
		return nil
	}

	port := 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	user := os.Getenv("SMTP_USER")
	password := os.Getenv("SMTP_PASSWORD")

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = user
	}

	return &Mailer{
		dialer: mail.NewDialer(host, port, user, password),
		from:   from,
	}
}

// Send 发送一封纯文本邮件。Mailer为nil时仅记录日志，不报错，
// 本地开发无SMTP也能跑通注册流程
func (m *Mailer) Send(to, subject, body string) error {
	if m == nil {
		log.Printf("邮件发送已禁用，丢弃邮件: to=%s subject=%q", to, subject)
		return nil
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("发送邮件失败: %v", err)
	}

	return nil
}

// OTPBody 生成验证码邮件正文
func OTPBody(code string) string {
	return fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code)
}
