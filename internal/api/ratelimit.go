package api

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Rate limiter housekeeping.
const (
	defaultBurst       = 5
	limiterCleanupTick = 5 * time.Minute
	limiterIdleTTL     = 10 * time.Minute
)

// rateLimiter enforces per-key request rates with a token bucket per key.
type rateLimiter struct {
	limiters sync.Map // key -> *limiterEntry
	r        rate.Limit
	burst    int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// newRateLimiter creates a limiter allowing rpm requests per minute per key
// with the given burst. rpm <= 0 disables limiting.
func newRateLimiter(rpm, burst int) *rateLimiter {
	if burst <= 0 {
		burst = defaultBurst
	}
	r := rate.Limit(0)
	if rpm > 0 {
		r = rate.Limit(float64(rpm) / 60.0)
	}
	return &rateLimiter{r: r, burst: burst}
}

// allow reports whether a request for key may proceed now.
func (rl *rateLimiter) allow(key string) bool {
	if rl.r == 0 {
		return true
	}
	entry := rl.getOrCreate(key)
	entry.lastSeen.Store(time.Now().UnixNano())
	return entry.limiter.Allow()
}

// retryAfter is the whole-second wait for one token at the refill rate.
func (rl *rateLimiter) retryAfter() int {
	if rl.r <= 0 {
		return 0
	}
	return int(math.Ceil(1 / float64(rl.r)))
}

func (rl *rateLimiter) getOrCreate(key string) *limiterEntry {
	if v, ok := rl.limiters.Load(key); ok {
		return v.(*limiterEntry) //nolint:forcetypeassert // only *limiterEntry is stored
	}
	entry := &limiterEntry{limiter: rate.NewLimiter(rl.r, rl.burst)}
	entry.lastSeen.Store(time.Now().UnixNano())
	actual, _ := rl.limiters.LoadOrStore(key, entry)
	return actual.(*limiterEntry) //nolint:forcetypeassert // only *limiterEntry is stored
}

// run evicts idle entries until ctx is cancelled.
func (rl *rateLimiter) run(ctx context.Context) {
	ticker := time.NewTicker(limiterCleanupTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.cleanup(now.Add(-limiterIdleTTL))
		}
	}
}

// cleanup removes entries not seen since cutoff.
func (rl *rateLimiter) cleanup(cutoff time.Time) {
	rl.limiters.Range(func(key, value any) bool {
		entry := value.(*limiterEntry) //nolint:forcetypeassert // only *limiterEntry is stored
		if entry.lastSeen.Load() < cutoff.UnixNano() {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// size returns the number of tracked keys.
func (rl *rateLimiter) size() int {
	n := 0
	rl.limiters.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
