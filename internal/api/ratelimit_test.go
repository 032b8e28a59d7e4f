package api

import (
	"testing"
	"time"
)

func TestRateLimiter_Burst(t *testing.T) {
	rl := newRateLimiter(60, 3)

	for i := 0; i < 3; i++ {
		if !rl.allow("a") {
			t.Fatalf("request %d denied within burst", i)
		}
	}
	if rl.allow("a") {
		t.Error("request beyond burst allowed")
	}
	if !rl.allow("b") {
		t.Error("independent key denied")
	}
	if got := rl.size(); got != 2 {
		t.Errorf("size() = %d, want 2", got)
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := newRateLimiter(0, 1)
	for i := 0; i < 100; i++ {
		if !rl.allow("a") {
			t.Fatal("disabled limiter denied a request")
		}
	}
	if rl.size() != 0 {
		t.Error("disabled limiter tracked keys")
	}
}

func TestRateLimiter_Defaults(t *testing.T) {
	tests := []struct {
		rpm, burst     int
		wantBurst      int
		wantRetryAfter int
	}{
		{60, 0, defaultBurst, 1},
		{30, 2, 2, 2},
		{7, 1, 1, 9},
		{600, 10, 10, 1},
	}

	for _, tt := range tests {
		rl := newRateLimiter(tt.rpm, tt.burst)
		if rl.burst != tt.wantBurst {
			t.Errorf("newRateLimiter(%d, %d).burst = %d, want %d", tt.rpm, tt.burst, rl.burst, tt.wantBurst)
		}
		if got := rl.retryAfter(); got != tt.wantRetryAfter {
			t.Errorf("newRateLimiter(%d, %d).retryAfter() = %d, want %d", tt.rpm, tt.burst, got, tt.wantRetryAfter)
		}
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := newRateLimiter(60, 1)
	rl.allow("a")
	rl.allow("b")

	rl.cleanup(time.Now().Add(-time.Hour))
	if got := rl.size(); got != 2 {
		t.Fatalf("size() after no-op cleanup = %d, want 2", got)
	}

	rl.cleanup(time.Now().Add(time.Second))
	if got := rl.size(); got != 0 {
		t.Errorf("size() after cleanup = %d, want 0", got)
	}
}
