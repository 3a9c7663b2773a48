package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/riskscope/internal/analysis"
	"github.com/wonny/riskscope/internal/api"
	"github.com/wonny/riskscope/internal/pricedata"
	"github.com/wonny/riskscope/internal/profile"
	"github.com/wonny/riskscope/internal/telemetry"
	"github.com/wonny/riskscope/pkg/config"
	"github.com/wonny/riskscope/pkg/database"
	"github.com/wonny/riskscope/pkg/logger"
	"github.com/wonny/riskscope/pkg/redis"
)

// keyPrefix Redis 키 네임스페이스
const keyPrefix = "riskscope"

// app holds the wired dependencies shared by every command
// 가격 경로: Cached(StoreBacked(Router)) → Runner
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *telemetry.Metrics
	profile *profile.Profile
	runner  *analysis.Runner

	db    *database.DB
	redis *redis.Client
}

// bootstrap loads config and wires the analysis stack
// Redis와 PostgreSQL은 선택: 연결 실패 시 경고 후 비활성으로 계속
func bootstrap(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	a := &app{cfg: cfg, log: log}
	if cfg.MetricsEnabled {
		a.metrics = telemetry.New()
	}

	// 3. Profile
	a.profile, err = loadProfile(cfg)
	if err != nil {
		return nil, err
	}

	// 4. Redis (snapshot cache + shared rate limit)
	a.redis = redis.Disabled()
	if !noCache {
		client, err := redis.New(ctx, cfg)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, continuing without cache")
		} else {
			a.redis = client
		}
	}

	// 5. Price store (optional)
	var store pricedata.Store
	a.db, err = database.New(ctx, cfg)
	switch {
	case errors.Is(err, database.ErrDisabled):
		log.Debug("DATABASE_URL not set, price store disabled")
	case err != nil:
		log.WithError(err).Warn("Database unavailable, price store disabled")
	default:
		if err := a.db.EnsureSchema(ctx); err != nil {
			a.db.Close()
			return nil, err
		}
		store = pricedata.NewRepository(a.db.Pool)
	}

	// 6. Price path
	limiter := redis.NewRateLimiter(a.redis, keyPrefix)
	cache := redis.NewCache(a.redis, keyPrefix)

	priceLog := log.Component("pricedata")
	var provider pricedata.Provider = pricedata.NewDefaultRouter(cfg, priceLog, a.metrics, limiter)
	if store != nil {
		provider = pricedata.NewStoreBacked(provider, store, priceLog)
	}
	provider = pricedata.NewCached(provider, cache, redis.TTLDaily, priceLog, a.metrics)

	// 7. Runner
	a.runner = analysis.NewRunner(cfg, log.Component("analysis"), provider, cache, a.metrics).WithProfile(a.profile)

	log.WithFields(map[string]interface{}{
		"profile":     a.profile.Meta.ProfileID,
		"redis":       a.redis.Enabled(),
		"price_store": store != nil,
		"metrics":     a.metrics != nil,
	}).Debug("Application wired")

	return a, nil
}

// close releases connections
func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close Redis client")
	}
}

// healthChecks probes for every optional dependency that was connected
func (a *app) healthChecks() map[string]api.HealthCheck {
	checks := make(map[string]api.HealthCheck)
	if a.db != nil {
		checks["postgres"] = func(ctx context.Context) (interface{}, error) {
			return a.db.HealthCheck(ctx)
		}
	}
	if a.redis.Enabled() {
		checks["redis"] = func(ctx context.Context) (interface{}, error) {
			latency, err := a.redis.Ping(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"latency_ms": latency.Milliseconds()}, nil
		}
	}
	return checks
}

// loadProfile reads --profile, then PROFILE_PATH, else builds the default profile
func loadProfile(cfg *config.Config) (*profile.Profile, error) {
	path := profilePath
	if path == "" {
		path = cfg.ProfilePath
	}
	if path == "" {
		return profile.Default(cfg), nil
	}

	p, _, err := profile.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}
