package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter implements sliding window rate limiting using Redis
// ⭐ SSOT: 분산 레이트 리밋은 여기서만 (여러 프로세스가 같은 provider 한도를 공유)
type RateLimiter struct {
	client *Client
	prefix string
}

// RateLimitConfig defines rate limit parameters
type RateLimitConfig struct {
	Key    string        // Unique identifier (e.g., "yahoo", "naver")
	Limit  int           // Maximum requests allowed
	Window time.Duration // Time window
}

// slidingWindow atomic ZSET sliding-window check
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])
	local member = ARGV[5]

	-- Remove old entries outside the window
	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	-- Count current requests in window
	local count = redis.call('ZCARD', key)

	if count < limit then
		redis.call('ZADD', key, now, member)
		redis.call('PEXPIRE', key, window_ms)
		return {1, limit - count - 1}
	else
		return {0, 0}
	end
`)

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *Client, prefix string) *RateLimiter {
	return &RateLimiter{
		client: client,
		prefix: prefix,
	}
}

// Allow checks if a request is allowed under the rate limit
// Returns (allowed, remaining, error)
func (r *RateLimiter) Allow(ctx context.Context, cfg RateLimitConfig) (bool, int, error) {
	if !r.client.Enabled() {
		// If Redis is disabled, allow all requests
		return true, cfg.Limit, nil
	}

	key := fmt.Sprintf("%s:ratelimit:%s", r.prefix, cfg.Key)
	now := time.Now()
	windowStart := now.UnixMilli() - cfg.Window.Milliseconds()

	result, err := slidingWindow.Run(ctx, r.client.Redis(), []string{key},
		now.UnixMilli(),
		windowStart,
		cfg.Limit,
		cfg.Window.Milliseconds(),
		now.UnixNano(),
	).Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit script failed: %w", err)
	}
	if len(result) != 2 {
		return false, 0, fmt.Errorf("rate limit script returned %d values", len(result))
	}

	allowed, _ := result[0].(int64)
	remaining, _ := result[1].(int64)
	return allowed == 1, int(remaining), nil
}

// Wait blocks until a request is allowed or context is cancelled
func (r *RateLimiter) Wait(ctx context.Context, cfg RateLimitConfig) error {
	for {
		allowed, _, err := r.Allow(ctx, cfg)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}

		// Wait before retrying
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
			// Retry
		}
	}
}

// Predefined rate limit configs for price providers
var (
	// Yahoo chart API: 비공식 한도, 보수적으로 초당 2회
	YahooRateLimit = RateLimitConfig{
		Key:    "yahoo",
		Limit:  2,
		Window: time.Second,
	}

	// Naver Finance: 초당 5회 (보수적)
	NaverRateLimit = RateLimitConfig{
		Key:    "naver",
		Limit:  5,
		Window: time.Second,
	}
)
