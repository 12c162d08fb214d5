// Package ratelimit 基于 Redis GCRA 的分布式限流
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// RateLimiter 限流器
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit Limit) (*Result, error)
}

// Limit 限流规则
type Limit struct {
	Rate   int
	Period time.Duration
	Burst  int
}

// PerSecond 每秒 rate 次，突发 burst
func PerSecond(rate, burst int) Limit {
	return Limit{Rate: rate, Period: time.Second, Burst: burst}
}

// PerMinute 每分钟 rate 次，突发 burst；burst 不大于 0 时取 rate
func PerMinute(rate, burst int) Limit {
	if burst <= 0 {
		burst = rate
	}
	return Limit{Rate: rate, Period: time.Minute, Burst: burst}
}

// Valid 规则是否可用
func (l Limit) Valid() bool {
	return l.Rate > 0 && l.Period > 0 && l.Burst > 0
}

// Key 构造限流键 loanapplication:ratelimit:<scope>:<subject>，subject 统一小写
func Key(scope, subject string) string {
	return fmt.Sprintf("loanapplication:ratelimit:%s:%s", scope, strings.ToLower(strings.TrimSpace(subject)))
}

// Result 限流判定结果
type Result struct {
	Allowed    bool
	Remaining  int
	ResetAfter time.Duration
	RetryAfter time.Duration
}

// RedisRateLimiter 基于 redis_rate 的实现
type RedisRateLimiter struct {
	limiter *redis_rate.Limiter
}

// NewRedisRateLimiter 创建限流器
func NewRedisRateLimiter(rdb *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{limiter: redis_rate.NewLimiter(rdb)}
}

// Allow 判定单次请求
func (r *RedisRateLimiter) Allow(ctx context.Context, key string, limit Limit) (*Result, error) {
	if !limit.Valid() {
		return nil, fmt.Errorf("invalid rate limit for %s: %+v", key, limit)
	}
	res, err := r.limiter.Allow(ctx, key, redis_rate.Limit{
		Rate:   limit.Rate,
		Period: limit.Period,
		Burst:  limit.Burst,
	})
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	return &Result{
		Allowed:    res.Allowed > 0,
		Remaining:  res.Remaining,
		ResetAfter: res.ResetAfter,
		RetryAfter: res.RetryAfter,
	}, nil
}
