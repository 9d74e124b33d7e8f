package services

import (
	"log"

	"github.com/dchest/captcha"
)

// CaptchaService 图形验证码服务
// 使用captcha库自带的内存存储（默认10分钟过期，一次性使用），
// 单机部署无需外部存储
type CaptchaService struct{}

// NewCaptchaService 创建图形验证码服务
func NewCaptchaService() *CaptchaService {
	return &CaptchaService{}
}

// GenerateCaptcha 生成图形验证码
func (s *CaptchaService) GenerateCaptcha() (string, error) {
	id := captcha.NewLen(6) // 6位数字
	log.Printf("INFO: Captcha generated: %s", id)
	return id, nil
}

// VerifyCaptcha 验证图形验证码（验证即失效）
func (s *CaptchaService) VerifyCaptcha(id, value string) bool {
	if !captcha.VerifyString(id, value) {
		log.Printf("WARN: Invalid or expired captcha value for id: %s", id)
		return false
	}

	log.Printf("INFO: Captcha verified successfully: %s", id)
	return true
}
