// Package analysis orchestrates one full risk analysis of a ticker.
//
// A run fetches the subject and benchmark series, computes every metric
// category plus drawdown episodes and the buy-and-hold simulation, and
// returns a Report. A failing category is recorded in Report.Skipped
// instead of failing the whole run; only a subject fetch failure is fatal.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/internal/drawdown"
	"github.com/wonny/riskscope/internal/metrics"
	"github.com/wonny/riskscope/internal/pricedata"
	"github.com/wonny/riskscope/internal/profile"
	"github.com/wonny/riskscope/internal/simulation"
	"github.com/wonny/riskscope/internal/telemetry"
	"github.com/wonny/riskscope/pkg/config"
	"github.com/wonny/riskscope/pkg/logger"
	"github.com/wonny/riskscope/pkg/redis"
)

// ErrSubjectFetch wraps a failure to load the subject's prices
var ErrSubjectFetch = errors.New("subject price fetch failed")

// Runner executes analysis runs
// ⭐ SSOT: 분석 파이프라인 진입점 (CLI, API, 스케줄러 공통)
type Runner struct {
	provider    pricedata.Provider
	cache       *redis.Cache
	cacheTTL    time.Duration
	defaults    Params
	profileHash string
	logger      *logger.Logger
	metrics     *telemetry.Metrics
	now         func() time.Time
}

// NewRunner creates a Runner with defaults taken from cfg.Analysis
// cache and metrics may be nil.
func NewRunner(cfg *config.Config, log *logger.Logger, provider pricedata.Provider, cache *redis.Cache, m *telemetry.Metrics) *Runner {
	ttl := cfg.Analysis.CacheTTL
	if ttl <= 0 {
		ttl = redis.TTLAnalysis
	}
	return &Runner{
		provider: provider,
		cache:    cache,
		cacheTTL: ttl,
		defaults: ParamsFromConfig(cfg),
		logger:   log,
		metrics:  m,
		now:      time.Now,
	}
}

// WithProfile makes the profile's analysis section the default parameters
// and stamps its hash on every report.
func (r *Runner) WithProfile(p *profile.Profile) *Runner {
	r.defaults = ParamsFromProfile(p)
	if hash, err := profile.Hash(p); err == nil {
		r.profileHash = hash
	} else {
		r.logger.WithError(err).Warn("Failed to hash profile")
	}
	return r
}

// Defaults returns the parameters applied to unset request fields
func (r *Runner) Defaults() Params {
	return r.defaults
}

// Run executes one analysis
func (r *Runner) Run(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()

	req, params := req.resolve(r.defaults)
	if err := validate(req, params); err != nil {
		r.metrics.ObserveRun(telemetry.OutcomeError, time.Since(start))
		return nil, err
	}

	startDate := req.From.Format(contracts.DateLayout)
	endDate := req.To.Format(contracts.DateLayout)
	key := redis.AnalysisKey(req.Ticker, startDate, endDate, params.InitialCapital)

	log := r.logger.WithFields(map[string]interface{}{
		"ticker":    req.Ticker,
		"benchmark": params.Benchmark,
		"start":     startDate,
		"end":       endDate,
	})

	// === 1. Snapshot cache ===
	if !req.Refresh {
		if cached, ok := r.lookup(ctx, key, params); ok {
			log.Debug("Analysis served from cache")
			r.metrics.ObserveRun(telemetry.OutcomeCached, time.Since(start))
			return cached, nil
		}
	}

	// === 2. Prices (subject + benchmark 병렬) ===
	f, err := r.fetch(ctx, req.Ticker, params.Benchmark, req.From, req.To)
	if err != nil {
		log.WithError(err).Error("Subject price fetch failed")
		r.metrics.ObserveRun(telemetry.OutcomeError, time.Since(start))
		return nil, err
	}

	// === 3. Categories ===
	report := r.compute(req.Ticker, f.subject, f.bench, f.benchErr, params)
	report.StartDate = startDate
	report.EndDate = endDate
	report.Degraded = f.degraded()

	for category, reason := range report.Skipped {
		log.WithField("category", category).WithField("reason", reason).Warn("Category skipped")
	}

	// === 4. Store snapshot ===
	// 일시적 장애로 불완전한 리포트는 캐시하지 않음
	if len(report.Degraded) > 0 {
		log.WithField("degraded", report.Degraded).Warn("Degraded report not cached")
	} else if err := r.cache.Set(ctx, key, report, r.cacheTTL); err != nil {
		log.WithError(err).Warn("Failed to cache analysis report")
	}

	r.metrics.ObserveRun(telemetry.OutcomeOK, time.Since(start))
	log.WithFields(map[string]interface{}{
		"run_id":       report.RunID,
		"observations": report.Observations,
		"episodes":     len(report.Drawdowns.Episodes),
		"skipped":      len(report.Skipped),
	}).WithDuration("duration", time.Since(start)).Info("Analysis completed")

	return report, nil
}

// lookup returns a cached report computed with the same parameters
func (r *Runner) lookup(ctx context.Context, key string, params Params) (*Report, bool) {
	var cached Report
	found, err := r.cache.Get(ctx, key, &cached)
	switch {
	case err != nil:
		r.metrics.ObserveCache("analysis", "error")
		r.logger.WithError(err).WithField("key", key).Warn("Analysis cache read failed")
		// 스키마가 바뀐 스냅샷은 지워서 다음 실행이 다시 쓰도록
		if errors.Is(err, redis.ErrCorrupt) {
			if derr := r.cache.Delete(ctx, key); derr != nil {
				r.logger.WithError(derr).WithField("key", key).Warn("Failed to evict corrupt snapshot")
			}
		}
		return nil, false
	case !found:
		r.metrics.ObserveCache("analysis", "miss")
		return nil, false
	case cached.Params != params:
		// 같은 키, 다른 추정 파라미터 → 재계산
		r.metrics.ObserveCache("analysis", "miss")
		return nil, false
	}
	r.metrics.ObserveCache("analysis", "hit")
	cached.Cached = true
	return &cached, true
}

// fetched subject and benchmark series of one run
type fetched struct {
	subject, bench contracts.PriceSeries
	benchErr       error
	// partial data notes (pricedata.ErrPartial)
	subjectPartial, benchPartial error
}

// degraded lists transient problems that make the report unfit for caching
// 존재하지 않는 벤치마크는 재시도해도 같으므로 제외
func (f fetched) degraded() []string {
	var out []string
	if f.subjectPartial != nil {
		out = append(out, "subject: "+f.subjectPartial.Error())
	}
	if f.benchPartial != nil {
		out = append(out, "benchmark: "+f.benchPartial.Error())
	}
	if f.benchErr != nil && !pricedata.IsNotFound(f.benchErr) {
		out = append(out, f.benchErr.Error())
	}
	return out
}

// fetch loads subject and benchmark concurrently
// 벤치마크 실패는 치명적이지 않음: market 카테고리만 건너뜀
// Partial series are accepted and noted.
func (r *Runner) fetch(ctx context.Context, ticker, benchmark string, from, to time.Time) (fetched, error) {
	var f fetched
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s, ferr := r.provider.FetchPrices(gctx, ticker, from, to)
		if ferr != nil {
			if !pricedata.IsPartial(ferr) || s.Len() == 0 {
				return fmt.Errorf("%w: %s: %w", ErrSubjectFetch, ticker, ferr)
			}
			f.subjectPartial = ferr
		}
		f.subject = s
		return nil
	})
	g.Go(func() error {
		b, ferr := r.provider.FetchPrices(gctx, benchmark, from, to)
		if ferr != nil {
			if !pricedata.IsPartial(ferr) || b.Len() == 0 {
				f.benchErr = fmt.Errorf("benchmark %s: %w", benchmark, ferr)
				return nil
			}
			f.benchPartial = ferr
		}
		f.bench = b
		return nil
	})

	if err := g.Wait(); err != nil {
		return fetched{}, err
	}
	return f, nil
}

// compute runs every category in parallel over one subject series
func (r *Runner) compute(ticker string, prices, bench contracts.PriceSeries, benchErr error, params Params) *Report {
	report := &Report{
		RunID:        uuid.NewString(),
		Ticker:       ticker,
		GeneratedAt:  r.now().UTC(),
		ProfileHash:  r.profileHash,
		Params:       params,
		Observations: prices.Len(),
		Skipped:      make(map[string]string),
	}
	if prices.Len() > 0 {
		report.FirstDate = prices.First().Date.Format(contracts.DateLayout)
		report.LastDate = prices.Last().Date.Format(contracts.DateLayout)
	}

	var mu sync.Mutex
	record := func(category string, err error) {
		if err == nil {
			r.metrics.ObserveCategory(category, telemetry.OutcomeOK)
			return
		}
		r.metrics.ObserveCategory(category, telemetry.OutcomeSkipped)
		mu.Lock()
		report.Skipped[category] = err.Error()
		mu.Unlock()
	}

	// 카테고리는 서로 독립: 각 고루틴은 자기 필드만 씀
	var g errgroup.Group

	g.Go(func() error {
		m, err := metrics.Growth(prices)
		if err == nil {
			report.Growth = &m
		}
		record(CategoryGrowth, err)
		return nil
	})
	g.Go(func() error {
		m, err := metrics.Risk(prices, params.TradingDays)
		if err == nil {
			report.Risk = &m
		}
		record(CategoryRisk, err)
		return nil
	})
	g.Go(func() error {
		m, err := metrics.RiskAdjusted(prices, params.RiskFreeRate, params.TradingDays)
		if err == nil {
			report.RiskAdjusted = &m
		}
		record(CategoryRiskAdjusted, err)
		return nil
	})
	g.Go(func() error {
		m, err := metrics.TailRisk(prices, params.ConfidenceLevel)
		if err == nil {
			report.TailRisk = &m
		}
		record(CategoryTailRisk, err)
		return nil
	})
	g.Go(func() error {
		m, err := marketSensitivity(prices, bench, benchErr, params.TradingDays)
		if err == nil {
			report.Market = &m
		}
		record(CategoryMarket, err)
		return nil
	})
	g.Go(func() error {
		m, err := metrics.Stability(prices, params.RollingWindow, params.TradingDays)
		if err == nil {
			report.Stability = &m
		}
		record(CategoryStability, err)
		return nil
	})
	g.Go(func() error {
		m, err := simulation.Simulate(prices, params.InitialCapital)
		if err == nil {
			report.Simulation = &m
		}
		record(CategorySimulation, err)
		return nil
	})
	g.Go(func() error {
		episodes := drawdown.Extract(prices)
		if episodes == nil {
			episodes = []contracts.DrawdownEpisode{}
		}
		report.Drawdowns = &DrawdownReport{
			Episodes:   episodes,
			Highlights: drawdown.Summarize(episodes),
		}
		r.metrics.ObserveEpisodes(len(episodes))
		record(CategoryDrawdowns, nil)
		return nil
	})

	_ = g.Wait()

	if len(report.Skipped) == 0 {
		report.Skipped = nil
	}
	return report
}

func marketSensitivity(prices, bench contracts.PriceSeries, benchErr error, tradingDays int) (metrics.MarketMetrics, error) {
	if benchErr != nil {
		return metrics.MarketMetrics{}, benchErr
	}
	subjectReturns, err := metrics.LogReturns(prices)
	if err != nil {
		return metrics.MarketMetrics{}, err
	}
	benchReturns, err := metrics.LogReturns(bench)
	if err != nil {
		return metrics.MarketMetrics{}, fmt.Errorf("benchmark: %w", err)
	}
	return metrics.MarketSensitivity(subjectReturns, benchReturns, tradingDays)
}
