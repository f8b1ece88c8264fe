package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter QPS限制器,用于控制对视频站点的请求节奏
// 每次拉取元数据或枚举列表前先取令牌,避免高频请求触发风控
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter 创建新的速率限制器
// qps: 每秒允许的请求数,为0或负数则不限制
func NewRateLimiter(qps int) *RateLimiter {
	if qps <= 0 {
		return &RateLimiter{
			limiter: rate.NewLimiter(rate.Inf, 1),
		}
	}

	// 令牌桶,桶大小为QPS,允许短时突发
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(qps), qps),
	}
}

// Wait 阻塞直到获得令牌,ctx取消时返回错误
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// Allow 检查是否允许当前请求,不阻塞
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// SetQPS 动态调整QPS限制
func (r *RateLimiter) SetQPS(qps int) {
	if qps <= 0 {
		r.limiter.SetLimit(rate.Inf)
		r.limiter.SetBurst(1)
	} else {
		r.limiter.SetLimit(rate.Limit(qps))
		r.limiter.SetBurst(qps)
	}
}

// GetQPS 获取当前QPS限制,0表示无限制
func (r *RateLimiter) GetQPS() int {
	limit := r.limiter.Limit()
	if limit == rate.Inf {
		return 0
	}
	return int(limit)
}
