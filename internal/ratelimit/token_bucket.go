package ratelimit

import (
	"sync"
	"time"
)

type LimiterConfig struct {
	Capacity int64
	RatePS   float64 // tokens/秒
}

func GetDefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		Capacity: 5,
		RatePS:   1,
	}
}

type bucket struct {
	tokens       float64
	lastRefilled time.Time
}

/*
TokenBucket 依 key 各自維護一個 bucket
取用時才補充 token，不需要背景 goroutine
*/
type TokenBucket struct {
	LimiterConfig
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

func NewTokenBucket(config *LimiterConfig) *TokenBucket {
	t := &TokenBucket{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
	if config != nil {
		t.LimiterConfig = *config
	} else {
		t.LimiterConfig = GetDefaultLimiterConfig()
	}
	return t
}

func (t *TokenBucket) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	b, ok := t.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(t.Capacity), lastRefilled: now}
		t.buckets[key] = b
	}

	elapsed := now.Sub(b.lastRefilled).Seconds()
	if elapsed > 0 {
		b.tokens = min(float64(t.Capacity), b.tokens+elapsed*t.RatePS)
		b.lastRefilled = now
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Prune 移除已補滿的 bucket，避免 key 無限增長
func (t *TokenBucket) Prune() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for key, b := range t.buckets {
		if b.tokens+now.Sub(b.lastRefilled).Seconds()*t.RatePS >= float64(t.Capacity) {
			delete(t.buckets, key)
		}
	}
}
