package cache

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// OTP相关参数
const (
	otpKeyPrefix = "otp:"
	otpLength    = 6
	// OTPExpiration 验证码有效期
	OTPExpiration = 10 * time.Minute
)

// GenerateOTP 生成6位数字验证码
func GenerateOTP() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < otpLength; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("生成验证码失败: %v", err)
	}

	return fmt.Sprintf("%0*d", otpLength, n), nil
}

// StoreOTP 保存邮箱对应的验证码，覆盖旧值
func StoreOTP(email, code string) error {
	if !initialized {
		return fmt.Errorf("Redis未初始化")
	}

	key := otpKeyPrefix + email

	if mockMode {
		mockMutex.Lock()
		mockData[key] = code
		mockMutex.Unlock()
		return nil
	}

	return redisClient.Set(redisCtx, key, code, OTPExpiration).Err()
}

// VerifyOTP 校验验证码，校验通过后立即删除，一次性使用
func VerifyOTP(email, code string) error {
	if !initialized {
		return fmt.Errorf("Redis未初始化")
	}

	key := otpKeyPrefix + email

	if mockMode {
		mockMutex.Lock()
		defer mockMutex.Unlock()

		stored, exists := mockData[key]
		if !exists || stored != code {
			return ErrOTPMismatch
		}
		delete(mockData, key)
		return nil
	}

	stored, err := redisClient.Get(redisCtx, key).Result()
	if err != nil || stored != code {
		return ErrOTPMismatch
	}

	redisClient.Del(redisCtx, key)
	return nil
}
