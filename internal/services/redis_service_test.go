package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"signaling-service/internal/config"
)

// isRedisAvailable lets the suite run without a local redis.
func isRedisAvailable() bool {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}

func newTestRedisService(t *testing.T) *RedisService {
	t.Helper()
	if !isRedisAvailable() {
		t.Skip("redis not available on localhost:6379")
	}

	svc, err := NewRedisService(config.RedisConfig{
		URI:          "redis://localhost:6379/0",
		MaxRetries:   1,
		DialTimeout:  time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     5,
		MinIdleConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestCheckRateLimit(t *testing.T) {
	svc := newTestRedisService(t)
	ctx := context.Background()

	key := fmt.Sprintf("test:ratelimit:%d", time.Now().UnixNano())
	t.Cleanup(func() { _ = svc.Delete(ctx, key) })

	for i := 0; i < 3; i++ {
		allowed, err := svc.CheckRateLimit(ctx, key, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should pass", i+1)
	}

	allowed, err := svc.CheckRateLimit(ctx, key, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed, "request over the limit must be rejected")
}

func TestChannelMembership(t *testing.T) {
	svc := newTestRedisService(t)
	ctx := context.Background()

	channelID := uint(time.Now().UnixNano() % 1_000_000)
	t.Cleanup(func() {
		_ = svc.Delete(ctx, fmt.Sprintf("channel:%d:members", channelID))
	})

	require.NoError(t, svc.AddChannelMember(ctx, channelID, 42))

	member, err := svc.IsChannelMember(ctx, channelID, 42)
	require.NoError(t, err)
	assert.True(t, member)

	member, err = svc.IsChannelMember(ctx, channelID, 99)
	require.NoError(t, err)
	assert.False(t, member)
}

func TestPing(t *testing.T) {
	svc := newTestRedisService(t)
	assert.NoError(t, svc.Ping(context.Background()))
}
