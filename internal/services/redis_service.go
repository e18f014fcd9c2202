package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"signaling-service/internal/config"
)

// RedisService backs the edge concerns that need shared state with the main
// application: rate limiting, the channel membership sets the CRUD layer
// maintains, and health checks. Realtime presence itself stays in memory.
type RedisService struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisService(cfg config.RedisConfig, log *zap.Logger) (*RedisService, error) {
	opts, err := redis.ParseURL(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.MaxRetries = cfg.MaxRetries
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisService{client: client, log: log}, nil
}

// Ping reports broker health for the readiness endpoint.
func (r *RedisService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// CheckRateLimit implements a sliding window over a sorted set: old entries
// are trimmed, the current request is scored by timestamp, and the request
// passes while the window still has room.
func (r *RedisService) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window).Unix()

	pipe := r.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart))
	count := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.Unix()), Member: now.UnixNano()})
	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return count.Val() < int64(limit), nil
}

// IsChannelMember checks the membership set the CRUD layer maintains for
// each channel.
func (r *RedisService) IsChannelMember(ctx context.Context, channelID, userID uint) (bool, error) {
	key := fmt.Sprintf("channel:%d:members", channelID)
	member, err := r.client.SIsMember(ctx, key, fmt.Sprintf("%d", userID)).Result()
	if err != nil {
		r.log.Error("membership check failed",
			zap.Uint("channel_id", channelID),
			zap.Uint("user_id", userID),
			zap.Error(err))
		return false, err
	}
	return member, nil
}

// AddChannelMember is used by tests and local tooling to seed membership the
// way the CRUD layer does in production.
func (r *RedisService) AddChannelMember(ctx context.Context, channelID, userID uint) error {
	key := fmt.Sprintf("channel:%d:members", channelID)
	return r.client.SAdd(ctx, key, fmt.Sprintf("%d", userID)).Err()
}

// Delete removes keys. Used by tests and operational tooling.
func (r *RedisService) Delete(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisService) Close() error {
	return r.client.Close()
}
