package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// EndpointRateLimiter gives selected route templates their own budget on
// top of the global one. Authenticated callers are limited per user, the
// rest per client IP.
type EndpointRateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*RateLimiter
	ttl      time.Duration
}

func NewEndpointRateLimiter(ttl time.Duration) *EndpointRateLimiter {
	return &EndpointRateLimiter{
		limiters: make(map[string]*RateLimiter),
		ttl:      ttl,
	}
}

func (erl *EndpointRateLimiter) AddEndpoint(path string, limit int, window time.Duration) {
	erl.mu.Lock()
	defer erl.mu.Unlock()
	erl.limiters[path] = NewRateLimiter(limit, window, erl.ttl)
}

func (erl *EndpointRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		erl.mu.RLock()
		limiter, exists := erl.limiters[c.FullPath()]
		erl.mu.RUnlock()

		if exists && !limiter.Allow(callerKey(c)) {
			tooManyRequests(c, "rate limit exceeded for this endpoint", limiter.window)
			return
		}

		c.Next()
	}
}

func callerKey(c *gin.Context) string {
	if username := GetUsername(c); username != "" {
		return "user:" + username
	}
	return "ip:" + c.ClientIP()
}

// AuthRateLimiter guards the login endpoint with a per-IP budget.
func AuthRateLimiter(limit int, ttl time.Duration) gin.HandlerFunc {
	limiter := NewRateLimiter(limit, time.Minute, ttl)

	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			tooManyRequests(c, "too many authentication attempts, please try again later", limiter.window)
			return
		}

		c.Next()
	}
}
