package api

import (
	"testing"
	"time"
)

func TestRateLimiter_BurstThenDeny(t *testing.T) {
	limiter := newRateLimiter(3, 1)

	for i := 0; i < 3; i++ {
		if !limiter.allow() {
			t.Fatalf("allow() = false on burst token %d", i+1)
		}
	}
	if limiter.allow() {
		t.Error("allow() = true with the bucket drained")
	}
}

func TestRateLimiter_Refills(t *testing.T) {
	limiter := newRateLimiter(2, 5)
	limiter.allow()
	limiter.allow()
	if limiter.allow() {
		t.Fatal("allow() = true with the bucket drained")
	}

	limiter.mu.Lock()
	limiter.lastRefill = time.Now().Add(-time.Second)
	limiter.mu.Unlock()
	if !limiter.allow() {
		t.Error("allow() = false after a refill interval elapsed")
	}
}

func TestRateLimiter_RefillCappedAtBurst(t *testing.T) {
	limiter := newRateLimiter(2, 5)
	limiter.allow()
	limiter.allow()

	limiter.mu.Lock()
	limiter.lastRefill = time.Now().Add(-time.Minute)
	limiter.mu.Unlock()

	for i := 0; i < 2; i++ {
		if !limiter.allow() {
			t.Fatalf("allow() = false on refilled token %d", i+1)
		}
	}
	if limiter.allow() {
		t.Error("refill exceeded the bucket capacity")
	}
}
