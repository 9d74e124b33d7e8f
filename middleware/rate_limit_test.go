package middleware

import (
	"testing"
	"time"
)

func TestCheckLimit_BlocksOverLimit(t *testing.T) {
	rl := &RateLimiter{hits: make(map[string][]int64)}

	for i := 0; i < 5; i++ {
		if !rl.checkLimit("rate_limit:login:1.2.3.4", 5, time.Minute) {
			t.Fatalf("Request %d should be allowed", i+1)
		}
	}

	if rl.checkLimit("rate_limit:login:1.2.3.4", 5, time.Minute) {
		t.Error("Sixth request within the window must be blocked")
	}
}

func TestCheckLimit_BlockedRequestNotCounted(t *testing.T) {
	rl := &RateLimiter{hits: make(map[string][]int64)}

	for i := 0; i < 5; i++ {
		rl.checkLimit("k", 5, time.Minute)
	}
	// Blocked attempts must not extend the window
	rl.checkLimit("k", 5, time.Minute)
	rl.checkLimit("k", 5, time.Minute)

	if len(rl.hits["k"]) != 5 {
		t.Errorf("Expected 5 recorded hits, got %d", len(rl.hits["k"]))
	}
}

func TestCheckLimit_WindowSlides(t *testing.T) {
	rl := &RateLimiter{hits: make(map[string][]int64)}

	// Seed hits that are already outside the window
	old := time.Now().Add(-2 * time.Minute).UnixNano()
	rl.hits["k"] = []int64{old, old, old, old, old}

	if !rl.checkLimit("k", 5, time.Minute) {
		t.Error("Expired hits must not count against the limit")
	}
	if len(rl.hits["k"]) != 1 {
		t.Errorf("Expected expired hits pruned, got %d records", len(rl.hits["k"]))
	}
}

func TestCheckLimit_KeysIndependent(t *testing.T) {
	rl := &RateLimiter{hits: make(map[string][]int64)}

	for i := 0; i < 5; i++ {
		rl.checkLimit("rate_limit:login:1.2.3.4", 5, time.Minute)
	}

	if !rl.checkLimit("rate_limit:login:5.6.7.8", 5, time.Minute) {
		t.Error("One IP hitting its limit must not affect another")
	}
}
