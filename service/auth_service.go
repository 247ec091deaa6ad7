package service

import (
	"context"
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"evote-backend/cache"
	"evote-backend/mailer"
	"evote-backend/middleware"
	"evote-backend/models"
	"evote-backend/repository"
)

// EmailSender 抽象邮件发送方式。
// 生产环境是Redis队列异步投递，测试里可以直接落到内存
type EmailSender interface {
	Enqueue(to, subject, body string) error
}

// DirectSender 不经过队列直接发送，Redis不可用时的降级路径
type DirectSender struct {
	Mailer *mailer.Mailer
}

// Enqueue 直接同步发送
func (d *DirectSender) Enqueue(to, subject, body string) error {
	return d.Mailer.Send(to, subject, body)
}

// AuthService 注册、登录和邮箱验证
type AuthService struct {
	users  *repository.UserRepository
	sender EmailSender
}

// NewAuthService 创建认证服务
func NewAuthService(users *repository.UserRepository, sender EmailSender) *AuthService {
	return &AuthService{users: users, sender: sender}
}

// StartRegistration 生成验证码并发送到邮箱。
// 邮箱已注册时直接报错，不发验证码
func (s *AuthService) StartRegistration(ctx context.Context, email string) error {
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailTaken
	}

	code, err := cache.GenerateOTP()
	if err != nil {
		return err
	}

	if err := cache.StoreOTP(email, code); err != nil {
		return err
	}

	if s.sender != nil {
		if err := s.sender.Enqueue(email, "Your verification code", mailer.OTPBody(code)); err != nil {
			// 入队失败只记录日志，验证码已在Redis中，
			// 用户可以重新请求发送
			log.Printf("验证码邮件入队失败: %v", err)
		}
	}

	return nil
}

// RegistrationInput 完成注册的输入
type RegistrationInput struct {
	Email    string `json:"email" binding:"required,email"`
	Code     string `json:"code" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// CompleteRegistration 校验验证码并创建账户，成功后返回登录令牌
func (s *AuthService) CompleteRegistration(ctx context.Context, input *RegistrationInput) (*models.User, string, error) {
	if err := cache.VerifyOTP(input.Email, input.Code); err != nil {
		return nil, "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: string(hashed),
		Role:         models.RoleUser,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Login 校验邮箱和密码，返回令牌
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrBadCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrBadCredentials
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// GetUser 按ID获取用户
func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
