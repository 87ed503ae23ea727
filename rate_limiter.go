package httpadapter

import (
	"sync/atomic"
	"time"
)

// RateLimiter is a token bucket gating dispatch attempts. It is lock-free
// and safe for concurrent use.
type RateLimiter struct {
	tokens     int64
	maxTokens  int64
	refillRate time.Duration
	lastRefill int64
}

// NewRateLimiter creates a limiter holding maxTokens tokens, refilling one
// token every refillRate.
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	return &RateLimiter{
		maxTokens:  int64(maxTokens),
		tokens:     int64(maxTokens),
		refillRate: refillRate,
		lastRefill: time.Now().UnixNano(),
	}
}

// Allow reports whether a dispatch attempt may proceed, consuming one token
// when it does.
func (rl *RateLimiter) Allow() bool {
	rl.refill()
	return rl.consume()
}

// Tokens returns the number of currently available tokens.
func (rl *RateLimiter) Tokens() int {
	return int(atomic.LoadInt64(&rl.tokens))
}

func (rl *RateLimiter) refill() {
	now := time.Now().UnixNano()

	for {
		currentTokens := atomic.LoadInt64(&rl.tokens)
		lastRefill := atomic.LoadInt64(&rl.lastRefill)

		elapsed := now - lastRefill
		tokensToAdd := int64(0)
		if rl.refillRate > 0 {
			tokensToAdd = elapsed / int64(rl.refillRate)
		}
		if tokensToAdd == 0 {
			return
		}

		newTokens := currentTokens + tokensToAdd
		if newTokens > rl.maxTokens {
			newTokens = rl.maxTokens
		}
		newLastRefill := lastRefill + tokensToAdd*int64(rl.refillRate)

		// lastRefill is the linearization point; retry when it moved.
		if !atomic.CompareAndSwapInt64(&rl.lastRefill, lastRefill, newLastRefill) {
			continue
		}
		atomic.StoreInt64(&rl.tokens, newTokens)
		return
	}
}

func (rl *RateLimiter) consume() bool {
	for {
		currentTokens := atomic.LoadInt64(&rl.tokens)
		if currentTokens <= 0 {
			return false
		}
		if atomic.CompareAndSwapInt64(&rl.tokens, currentTokens, currentTokens-1) {
			return true
		}
	}
}
