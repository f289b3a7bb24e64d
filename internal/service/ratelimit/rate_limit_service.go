package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/baikalhq/groupware/internal/ports"
	"github.com/baikalhq/groupware/internal/service/logger"
)

// Config configures the Redis-backed rate limiter
type Config struct {
	Enabled  bool
	RedisURL string
}

// New creates a rate limit service. When disabled it returns a no-op
// implementation that always allows.
func New(config Config, log logger.Logger) (ports.RateLimitService, error) {
	if !config.Enabled {
		log.Info(context.Background(), "rate limiting disabled", nil)
		return &noopRateLimitService{}, nil
	}

	opt, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info(ctx, "rate limiting service initialized", nil)
	return &redisRateLimitService{client: client, log: log}, nil
}

type redisRateLimitService struct {
	client *redis.Client
	log    logger.Logger
}

// CheckLimit reports whether the key is still under the limit
func (s *redisRateLimitService) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := s.client.Get(ctx, key).Int()
	if err != nil {
		if err == redis.Nil {
			return true, nil
		}
		return false, fmt.Errorf("failed to get rate limit counter: %w", err)
	}

	underLimit := count < limit
	if !underLimit {
		s.log.Warn(ctx, "rate limit reached", map[string]interface{}{
			"key":   key,
			"count": count,
			"limit": limit,
		})
	}
	return underLimit, nil
}

// Increment bumps the counter and refreshes its expiry window
func (s *redisRateLimitService) Increment(ctx context.Context, key string, window time.Duration) error {
	pipeline := s.client.Pipeline()
	pipeline.Incr(ctx, key)
	pipeline.Expire(ctx, key, window)

	if _, err := pipeline.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment rate limit: %w", err)
	}
	return nil
}

// noopRateLimitService always allows
type noopRateLimitService struct{}

func (n *noopRateLimitService) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return true, nil
}

func (n *noopRateLimitService) Increment(ctx context.Context, key string, window time.Duration) error {
	return nil
}
