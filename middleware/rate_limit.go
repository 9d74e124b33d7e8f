package middleware

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter 限流中间件（进程内滑动窗口）
// 单机嵌入式存储部署，无外部依赖，窗口记录直接存内存
type RateLimiter struct {
	mu   sync.Mutex
	hits map[string][]int64 // key -> 窗口内的请求时间戳（纳秒）
}

// NewRateLimiter 创建限流中间件
func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{
		hits: make(map[string][]int64),
	}

	// 启动清理过期记录的goroutine
	go rl.cleanupLoop()

	return rl
}

// GlobalLimit 全局限流中间件（100请求/分钟/IP）
func (rl *RateLimiter) GlobalLimit() gin.HandlerFunc {
	return rl.limitByIP("global", 100, time.Minute)
}

// LoginLimit 登录限流中间件（5次/分钟/IP）
func (rl *RateLimiter) LoginLimit() gin.HandlerFunc {
	return rl.limitByIP("login", 5, time.Minute)
}

// RegisterLimit 注册限流中间件（3次/分钟/IP）
func (rl *RateLimiter) RegisterLimit() gin.HandlerFunc {
	return rl.limitByIP("register", 3, time.Minute)
}

// limitByIP 基于IP的限流
func (rl *RateLimiter) limitByIP(prefix string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		key := fmt.Sprintf("rate_limit:%s:%s", prefix, ip)

		if !rl.checkLimit(key, limit, window) {
			log.Printf("WARN: Rate limit exceeded for %s from IP: %s", prefix, ip)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": "请求过于频繁，请稍后再试",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// checkLimit 检查限流（滑动窗口算法）
func (rl *RateLimiter) checkLimit(key string, limit int, window time.Duration) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now().UnixNano()
	windowStart := now - window.Nanoseconds()

	// 1. 删除窗口外的旧记录
	kept := rl.hits[key][:0]
	for _, ts := range rl.hits[key] {
		if ts > windowStart {
			kept = append(kept, ts)
		}
	}

	// 2. 检查是否超过限制（在添加之前检查）
	if len(kept) >= limit {
		rl.hits[key] = kept
		return false
	}

	// 3. 添加当前请求（只有在未超限时才添加）
	rl.hits[key] = append(kept, now)
	return true
}

// cleanupLoop 定期清理空闲key，防止map无限增长
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		cutoff := time.Now().Add(-time.Minute).UnixNano()
		count := 0

		for key, timestamps := range rl.hits {
			if len(timestamps) == 0 || timestamps[len(timestamps)-1] < cutoff {
				delete(rl.hits, key)
				count++
			}
		}

		if count > 0 {
			log.Printf("INFO: Cleaned up %d idle rate limit keys", count)
		}
		rl.mu.Unlock()
	}
}
