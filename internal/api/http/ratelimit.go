package http

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/spec-kit/task-service/internal/config"
	apperrors "github.com/spec-kit/task-service/pkg/util"
)

// ipRateLimiter keeps one token bucket per client IP.
type ipRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func (rl *ipRateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, ok := rl.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

// AuthRateLimit throttles requests per client IP on the public auth routes
// to slow credential brute forcing.
func AuthRateLimit(cfg config.RateLimitConfig) fiber.Handler {
	if cfg.AuthRequestsPerMinute <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	burst := cfg.AuthBurst
	if burst <= 0 {
		burst = cfg.AuthRequestsPerMinute
	}

	rl := &ipRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(float64(cfg.AuthRequestsPerMinute) / time.Minute.Seconds()),
		burst:    burst,
	}
	return func(c *fiber.Ctx) error {
		if !rl.get(c.IP()).Allow() {
			return apperrors.NewRateLimited("too many requests")
		}
		return c.Next()
	}
}
