// Package naver fetches daily closes for KRX-listed stocks from Naver Finance.
package naver

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/wonny/riskscope/pkg/config"
	"github.com/wonny/riskscope/pkg/httputil"
	"github.com/wonny/riskscope/pkg/logger"
	"github.com/wonny/riskscope/pkg/redis"
)

const (
	defaultChartURL = "https://api.finance.naver.com"
	defaultPageURL  = "https://finance.naver.com"
	userAgent       = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
)

// Client handles communication with Naver Finance
// ⭐ SSOT: Naver Finance API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	chartURL   string // siseJson (fchart) endpoint host
	pageURL    string // sise_day HTML host
}

// NewClient creates a new Naver Finance client
func NewClient(httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		chartURL:   defaultChartURL,
		pageURL:    defaultPageURL,
	}
}

// NewFromConfig builds the client with its own throttled, breaker-guarded HTTP client
// limiter may be nil.
func NewFromConfig(cfg *config.Config, log *logger.Logger, limiter *redis.RateLimiter) *Client {
	httpClient := httputil.NewWithTimeout(cfg, log, cfg.Naver.Timeout).
		WithRateLimit(cfg.Naver.RateLimit).
		WithBreaker("naver").
		WithHeader("User-Agent", userAgent).
		WithHeader("Referer", defaultPageURL+"/")
	if limiter != nil {
		httpClient.WithRateLimiter(limiter, redis.NaverRateLimit)
	}

	c := NewClient(httpClient, log)
	if cfg.Naver.BaseURL != "" {
		c.chartURL = cfg.Naver.BaseURL
	}
	return c
}

// WithBaseURLs overrides both hosts (tests, mirrors)
func (c *Client) WithBaseURLs(chartURL, pageURL string) *Client {
	c.chartURL = chartURL
	c.pageURL = pageURL
	return c
}

// Name identifies the provider in logs and metrics
func (c *Client) Name() string {
	return "naver"
}

// fetchText fetches a page body as text
func (c *Client) fetchText(ctx context.Context, base, path string, params url.Values) (string, error) {
	fullURL := fmt.Sprintf("%s%s", base, path)
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	body, err := c.httpClient.GetBody(ctx, fullURL)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	return string(body), nil
}

// PriceData represents one daily OHLCV row
type PriceData struct {
	TradeDate  time.Time
	OpenPrice  int64
	HighPrice  int64
	LowPrice   int64
	ClosePrice int64
	Volume     int64
}
