package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiterInterface defines the contract for rate limiting operations.
type RateLimiterInterface interface {
	CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error)
}

// RateLimitResult describes the state of one fixed window after a request was counted.
type RateLimitResult struct {
	Allowed   bool
	Remaining int
	// ResetIn is the time until the window closes.
	ResetIn time.Duration
}

// RateLimitService counts requests per key in fixed windows using Redis.
// The window starts with the first request and is never extended by later ones,
// which requires EXPIRE NX (Redis 7.0+).
type RateLimitService struct {
	redis     redis.UniversalClient
	keyPrefix string
}

func NewRateLimitService(redisClient redis.UniversalClient) *RateLimitService {
	return &RateLimitService{
		redis:     redisClient,
		keyPrefix: "ratelimit:",
	}
}

// CheckLimit counts one request against key. Any Redis error is returned as is;
// callers decide whether to fail open.
func (s *RateLimitService) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error) {
	rKey := s.keyPrefix + key

	pipe := s.redis.TxPipeline()
	incr := pipe.Incr(ctx, rKey)
	pipe.ExpireNX(ctx, rKey, window)
	ttl := pipe.TTL(ctx, rKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return RateLimitResult{}, err
	}

	resetIn := ttl.Val()
	if resetIn <= 0 || resetIn > window {
		resetIn = window
	}

	count := incr.Val()
	if count > int64(limit) {
		return RateLimitResult{Allowed: false, Remaining: 0, ResetIn: resetIn}, nil
	}

	return RateLimitResult{
		Allowed:   true,
		Remaining: limit - int(count),
		ResetIn:   resetIn,
	}, nil
}
