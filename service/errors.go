package service

import "errors"

// 业务错误定义，handlers据此映射HTTP状态码
var (
	ErrPollNotFound    = errors.New("poll not found")
	ErrOptionNotFound  = errors.New("option not found")
	ErrPollClosed      = errors.New("poll is closed")
	ErrAlreadyVoted    = errors.New("user already voted")
	ErrTitleTaken      = errors.New("poll title already taken")
	ErrStatusConflict  = errors.New("poll status transition conflict")
	ErrInvalidStatus   = errors.New("invalid poll status")
	ErrInquiryNotFound = errors.New("inquiry not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrBadCredentials  = errors.New("invalid email or password")
	ErrUserNotFound    = errors.New("user not found")
)
