package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCorrupt a cached value no longer decodes into the requested type
var ErrCorrupt = errors.New("cache entry corrupt")

// Cache provides typed JSON caching utilities
// ⭐ SSOT: 캐시 헬퍼는 여기서만
// nil *Cache는 비활성 캐시로 동작
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

func (c *Cache) fullKey(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, key)
}

// Get retrieves a cached value
// 키 없음은 오류가 아님 (found=false)
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c == nil || !c.client.Enabled() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrCorrupt, key, err)
	}

	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c == nil || !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	if err := c.client.Redis().Set(ctx, c.fullKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if c == nil || !c.client.Enabled() {
		return nil
	}

	return c.client.Redis().Del(ctx, c.fullKey(key)).Err()
}

// Predefined TTLs
const (
	TTLShort    = 1 * time.Minute
	TTLAnalysis = 6 * time.Hour  // 분석 스냅샷 기본값
	TTLDaily    = 24 * time.Hour // 일별 종가
)

// AnalysisKey snapshot key for one analysis run
// 형식: analysis:<ticker>:<start>:<end>:<capital>
func AnalysisKey(ticker, start, end string, capital float64) string {
	return fmt.Sprintf("analysis:%s:%s:%s:%s",
		strings.ToUpper(ticker), start, end, strconv.FormatFloat(capital, 'f', -1, 64))
}

// PriceKey cached close series for a ticker and range
func PriceKey(ticker, start, end string) string {
	return fmt.Sprintf("price:%s:%s:%s", strings.ToUpper(ticker), start, end)
}
