// Package pricedata acquires daily close series for the estimators.
//
// Providers are composed as decorators: Cached(StoreBacked(Router(naver, yahoo))).
// Every layer honours the same [from, to) range semantics.
package pricedata

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/internal/external/naver"
	"github.com/wonny/riskscope/internal/external/yahoo"
	"github.com/wonny/riskscope/internal/telemetry"
	"github.com/wonny/riskscope/pkg/config"
	"github.com/wonny/riskscope/pkg/logger"
	"github.com/wonny/riskscope/pkg/redis"
)

var (
	// ErrNotFound the ticker is unknown or has no closes in the range
	ErrNotFound = errors.New("price data not found")
	// ErrPartial the series returned alongside is usable but may not cover the range
	ErrPartial = errors.New("partial price data")
)

// Provider fetches a validated daily close series over [from, to)
// ⭐ SSOT: 가격 조회 경로는 이 인터페이스 하나
// An ErrPartial error may come with a non-empty series; callers may use it but must not cache it.
type Provider interface {
	Name() string
	FetchPrices(ctx context.Context, ticker string, from, to time.Time) (contracts.PriceSeries, error)
}

// IsNotFound reports whether err means "no data" rather than a provider failure
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, yahoo.ErrNoData) ||
		errors.Is(err, yahoo.ErrUnknownSymbol) ||
		errors.Is(err, naver.ErrNoData)
}

// IsPartial reports whether err marks a degraded but usable series
func IsPartial(err error) bool {
	return errors.Is(err, ErrPartial)
}

var krxCodeRe = regexp.MustCompile(`^\d{6}$`)

// IsKRXCode reports whether ticker is a bare 6-digit KRX code (e.g. 005930)
func IsKRXCode(ticker string) bool {
	return krxCodeRe.MatchString(ticker)
}

// NormalizeTicker trims and upper-cases a ticker
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Router sends KRX codes to the domestic provider and everything else to the global one
type Router struct {
	krx     Provider
	global  Provider
	metrics *telemetry.Metrics
}

// NewRouter creates a router over two providers
func NewRouter(krx, global Provider, metrics *telemetry.Metrics) *Router {
	return &Router{krx: krx, global: global, metrics: metrics}
}

// NewDefaultRouter wires Naver (KRX) and Yahoo (global) from config
// limiter may be nil (로컬 rate limit만 적용)
func NewDefaultRouter(cfg *config.Config, log *logger.Logger, metrics *telemetry.Metrics, limiter *redis.RateLimiter) *Router {
	return NewRouter(naver.NewFromConfig(cfg, log, limiter), yahoo.NewFromConfig(cfg, log, limiter), metrics)
}

// Name implements Provider
func (r *Router) Name() string {
	return "router"
}

// Route returns the provider responsible for ticker
func (r *Router) Route(ticker string) Provider {
	if IsKRXCode(ticker) {
		return r.krx
	}
	return r.global
}

// FetchPrices implements Provider
func (r *Router) FetchPrices(ctx context.Context, ticker string, from, to time.Time) (contracts.PriceSeries, error) {
	p := r.Route(ticker)

	start := time.Now()
	series, err := p.FetchPrices(ctx, ticker, from, to)

	outcome := telemetry.OutcomeOK
	if err != nil {
		outcome = telemetry.OutcomeError
	}
	r.metrics.ObserveFetch(p.Name(), outcome, time.Since(start))
	return series, err
}
