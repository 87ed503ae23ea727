package httpadapter

import (
	"sync"
	"testing"
	"time"
)

func TestRateLimiterConsumesTokens(t *testing.T) {
	limiter := NewRateLimiter(2, time.Hour)

	if !limiter.Allow() {
		t.Error("first request denied")
	}
	if !limiter.Allow() {
		t.Error("second request denied")
	}
	if limiter.Allow() {
		t.Error("third request allowed with empty bucket")
	}
	if limiter.Tokens() != 0 {
		t.Errorf("tokens = %d, want 0", limiter.Tokens())
	}
}

func TestRateLimiterRefills(t *testing.T) {
	limiter := NewRateLimiter(1, 20*time.Millisecond)

	if !limiter.Allow() {
		t.Fatal("initial token missing")
	}
	if limiter.Allow() {
		t.Fatal("bucket not empty")
	}

	time.Sleep(25 * time.Millisecond)
	if !limiter.Allow() {
		t.Error("token not refilled after interval")
	}
}

func TestRateLimiterCapsAtMax(t *testing.T) {
	limiter := NewRateLimiter(2, time.Millisecond)

	time.Sleep(10 * time.Millisecond)
	limiter.refill()
	if limiter.Tokens() > 2 {
		t.Errorf("tokens = %d, want capped at 2", limiter.Tokens())
	}
}

func TestRateLimiterConcurrentAccess(t *testing.T) {
	limiter := NewRateLimiter(100, time.Hour)

	var wg sync.WaitGroup
	allowed := make([]bool, 200)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			allowed[i] = limiter.Allow()
		}(i)
	}
	wg.Wait()

	granted := 0
	for _, ok := range allowed {
		if ok {
			granted++
		}
	}
	if granted != 100 {
		t.Errorf("granted %d requests, want exactly 100", granted)
	}
}
