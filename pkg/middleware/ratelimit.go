package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/loanapplication/pkg/config"
	"github.com/wyfcoding/loanapplication/pkg/logger"
	"github.com/wyfcoding/loanapplication/pkg/ratelimit"
	"github.com/wyfcoding/loanapplication/pkg/response"
)

// RateLimitMiddleware 按客户端 IP 限流，限流器故障时放行
func RateLimitMiddleware(limiter ratelimit.RateLimiter, cfg config.RateLimitConfig) gin.HandlerFunc {
	limit := ratelimit.PerSecond(cfg.QPS, cfg.Burst)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}
		enforce(c, limiter, ratelimit.Key("ip", c.ClientIP()), limit)
	}
}

// SubmissionRateLimitMiddleware 按已认证申请人限制提交频率，须挂在 Require 之后；
// 未认证时退回按 IP 计数
func SubmissionRateLimitMiddleware(limiter ratelimit.RateLimiter, limit ratelimit.Limit) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limit.Valid() {
			c.Next()
			return
		}

		subject := c.ClientIP()
		if identity, ok := IdentityFrom(c); ok {
			subject = identity.Subject
		}
		enforce(c, limiter, ratelimit.Key("submission", subject), limit)
	}
}

// enforce 执行限流判定；限流器故障时放行
func enforce(c *gin.Context, limiter ratelimit.RateLimiter, key string, limit ratelimit.Limit) {
	res, err := limiter.Allow(c.Request.Context(), key, limit)
	if err != nil {
		logger.Warn(c.Request.Context(), "rate limiter unavailable", "key", key, "error", err)
		c.Next()
		return
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Burst))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(res.ResetAfter/time.Second), 10))

	if !res.Allowed {
		c.Header("Retry-After", strconv.FormatInt(int64(res.RetryAfter/time.Second)+1, 10))
		response.ErrorWithStatus(c, http.StatusTooManyRequests, "too many requests", "RATE_LIMITED")
		return
	}

	c.Next()
}
