// Package ratelimit 提供按键（客户端 IP 等）的进程内令牌桶限流
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limit 限流规则
type Limit struct {
	// 每秒补充的令牌数
	Rate float64
	// 桶容量
	Burst int
}

// Limiter 按键维护一组令牌桶。不活跃的键会被定期清理。
type Limiter struct {
	mu      sync.Mutex
	limit   Limit
	buckets map[string]*bucket
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter 创建限流器
func NewLimiter(limit Limit) *Limiter {
	l := &Limiter{
		limit:   limit,
		buckets: make(map[string]*bucket),
	}
	go l.cleanupLoop()
	return l
}

// Allow 判断 key 的一次请求是否放行
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(l.limit.Rate), l.limit.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = time.Now()
	return b.limiter.Allow()
}

func (l *Limiter) cleanupLoop() {
	for range time.Tick(time.Minute) {
		l.mu.Lock()
		for key, b := range l.buckets {
			if time.Since(b.lastSeen) > 3*time.Minute {
				delete(l.buckets, key)
			}
		}
		l.mu.Unlock()
	}
}
