package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/task-service/pkg/util"
)

func TestLoginLimiterEnforcesWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewLoginLimiter(client, zap.NewNop(), 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Enforce(ctx, "alice", "1.2.3.4"))
	}

	err := limiter.Enforce(ctx, "alice", "1.2.3.4")
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, "RATE_LIMITED", domainErr.Code)

	// Distinct username or IP keeps its own budget.
	require.NoError(t, limiter.Enforce(ctx, "alice", "5.6.7.8"))
	require.NoError(t, limiter.Enforce(ctx, "bob", "1.2.3.4"))
}

func TestLoginLimiterWindowExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewLoginLimiter(client, zap.NewNop(), 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, limiter.Enforce(ctx, "alice", "1.2.3.4"))
	require.Error(t, limiter.Enforce(ctx, "alice", "1.2.3.4"))

	mr.FastForward(2 * time.Minute)
	require.NoError(t, limiter.Enforce(ctx, "alice", "1.2.3.4"))
}

func TestLoginLimiterDegradesOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewLoginLimiter(client, zap.NewNop(), 1, time.Minute)
	ctx := context.Background()

	mr.Close()
	require.NoError(t, limiter.Enforce(ctx, "alice", "1.2.3.4"))

	var nilLimiter *LoginLimiter
	require.NoError(t, nilLimiter.Enforce(ctx, "alice", "1.2.3.4"))
}
