package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter allows limit requests per window for each key, refilling
// continuously. Keys idle for longer than ttl are forgotten.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	window    time.Duration
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(limit int, window, ttl time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 100
	}
	if window <= 0 {
		window = time.Minute
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Limit(float64(limit) / window.Seconds()),
		burst:    limit,
		window:   window,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.ttl {
		rl.sweep(now)
	}

	entry, exists := rl.limiters[key]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = now

	return entry.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) sweep(now time.Time) {
	for key, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > rl.ttl {
			delete(rl.limiters, key)
		}
	}
	rl.lastSweep = now
}

// Len reports how many keys are currently tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			tooManyRequests(c, "rate limit exceeded", limiter.window)
			return
		}
		c.Next()
	}
}

func tooManyRequests(c *gin.Context, msg string, retryAfter time.Duration) {
	seconds := int(retryAfter.Seconds())
	c.Header("Retry-After", strconv.Itoa(seconds))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":       msg,
		"retry_after": seconds,
	})
}
