package pricedata

import (
	"context"
	"time"

	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/internal/telemetry"
	"github.com/wonny/riskscope/pkg/logger"
	"github.com/wonny/riskscope/pkg/redis"
)

// Cached keeps recently fetched series in Redis
type Cached struct {
	next    Provider
	cache   *redis.Cache
	ttl     time.Duration
	logger  *logger.Logger
	metrics *telemetry.Metrics
}

// NewCached wraps next with a Redis read-through cache
func NewCached(next Provider, cache *redis.Cache, ttl time.Duration, log *logger.Logger, metrics *telemetry.Metrics) *Cached {
	if ttl <= 0 {
		ttl = redis.TTLDaily
	}
	return &Cached{next: next, cache: cache, ttl: ttl, logger: log, metrics: metrics}
}

// Name implements Provider
func (c *Cached) Name() string {
	return c.next.Name()
}

// FetchPrices implements Provider
// 캐시 오류는 조회를 막지 않음 (경고 후 원본 조회)
func (c *Cached) FetchPrices(ctx context.Context, ticker string, from, to time.Time) (contracts.PriceSeries, error) {
	key := redis.PriceKey(ticker, from.Format(contracts.DateLayout), to.Format(contracts.DateLayout))

	var points []contracts.PricePoint
	found, err := c.cache.Get(ctx, key, &points)
	switch {
	case err != nil:
		c.metrics.ObserveCache("prices", "error")
		c.logger.WithError(err).WithField("key", key).Warn("Price cache read failed")
	case found:
		if series, verr := contracts.NewPriceSeries(points); verr == nil && series.Len() > 0 {
			c.metrics.ObserveCache("prices", "hit")
			return series, nil
		}
		c.metrics.ObserveCache("prices", "error")
	default:
		c.metrics.ObserveCache("prices", "miss")
	}

	series, err := c.next.FetchPrices(ctx, ticker, from, to)
	if err != nil {
		if IsPartial(err) && series.Len() > 0 {
			// 불완전한 데이터는 캐시하지 않음: 원본 복구 후 바로 재조회
			c.logger.WithError(err).WithField("key", key).Warn("Partial prices not cached")
			return series, err
		}
		return nil, err
	}

	if err := c.cache.Set(ctx, key, series, c.ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Price cache write failed")
	}
	return series, nil
}
