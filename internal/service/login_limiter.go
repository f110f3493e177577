package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/task-service/pkg/util"
)

// LoginLimiter throttles login attempts per username+IP using a Redis
// counter. Redis being unreachable never blocks logins; the limiter degrades
// open with a warning.
type LoginLimiter struct {
	client      *redis.Client
	logger      *zap.Logger
	maxAttempts int
	window      time.Duration
}

// NewLoginLimiter builds the limiter.
func NewLoginLimiter(client *redis.Client, logger *zap.Logger, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		client:      client,
		logger:      logger,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// Enforce counts the attempt and rejects once the window budget is spent.
func (l *LoginLimiter) Enforce(ctx context.Context, username, ip string) error {
	if l == nil || l.client == nil || l.maxAttempts <= 0 {
		return nil
	}

	key := loginAttemptKey(username, ip)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("login limiter unavailable; allowing attempt", zap.Error(err))
		return nil
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			l.logger.Warn("login limiter expire failed", zap.Error(err))
		}
	}
	if count > int64(l.maxAttempts) {
		return apperrors.NewRateLimited("too many login attempts")
	}
	return nil
}

func loginAttemptKey(username, ip string) string {
	return fmt.Sprintf("login_attempts:%s:%s", username, ip)
}
