package httpserver

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter throttles events per session.
type RateLimiter struct {
	mu     sync.Mutex
	limits map[string]*rate.Limiter
	every  rate.Limit
	burst  int
	now    func() time.Time
	calls  int
}

// NewRateLimiter creates a limiter allowing perSecond events with the given
// burst. A non-positive perSecond disables limiting.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	every := rate.Limit(perSecond)
	if perSecond <= 0 {
		every = rate.Inf
	}
	return &RateLimiter{
		limits: make(map[string]*rate.Limiter),
		every:  every,
		burst:  burst,
		now:    time.Now,
	}
}

// Allow checks if an event is allowed for the given session.
func (rl *RateLimiter) Allow(key string) bool {
	if rl.every == rate.Inf {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.calls++
	if rl.calls%256 == 0 {
		rl.prune(now)
	}
	limiter, ok := rl.limits[key]
	if !ok {
		limiter = rate.NewLimiter(rl.every, rl.burst)
		rl.limits[key] = limiter
	}
	return limiter.AllowN(now, 1)
}

// prune drops limiters that have refilled completely; a fresh limiter
// behaves the same.
func (rl *RateLimiter) prune(now time.Time) {
	for key, l := range rl.limits {
		if l.TokensAt(now) >= float64(rl.burst) {
			delete(rl.limits, key)
		}
	}
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limits)
}
