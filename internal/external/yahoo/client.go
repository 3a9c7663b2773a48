// Package yahoo fetches daily closes from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/pkg/config"
	"github.com/wonny/riskscope/pkg/httputil"
	"github.com/wonny/riskscope/pkg/logger"
	"github.com/wonny/riskscope/pkg/redis"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

var (
	// ErrNoData Yahoo returned no usable closes for the range
	ErrNoData = errors.New("yahoo: no price data")
	// ErrUnknownSymbol Yahoo does not know the ticker
	ErrUnknownSymbol = errors.New("yahoo: unknown symbol")
)

// Client handles communication with the Yahoo chart API
// ⭐ SSOT: Yahoo Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Yahoo client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// NewFromConfig builds the client with its own throttled, breaker-guarded HTTP client
// limiter (nil 허용) shares the request budget across processes through Redis.
func NewFromConfig(cfg *config.Config, log *logger.Logger, limiter *redis.RateLimiter) *Client {
	httpClient := httputil.NewWithTimeout(cfg, log, cfg.Yahoo.Timeout).
		WithRateLimit(cfg.Yahoo.RateLimit).
		WithBreaker("yahoo").
		WithHeader("User-Agent", userAgent)
	if limiter != nil {
		httpClient.WithRateLimiter(limiter, redis.YahooRateLimit)
	}
	return NewClient(httpClient, log, cfg.Yahoo.BaseURL)
}

// Name identifies the provider in logs and metrics
func (c *Client) Name() string {
	return "yahoo"
}

// chartResponse /v8/finance/chart payload (only the fields we read)
// 값이 null일 수 있으므로 포인터 슬라이스 사용
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol           string `json:"symbol"`
				ExchangeTimezone string `json:"exchangeTimezoneName"`
				GMTOffset        int    `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchPrices fetches daily closes over [from, to)
// 수정주가(adjclose) 우선, 없으면 종가. null 값은 제외
func (c *Client) FetchPrices(ctx context.Context, ticker string, from, to time.Time) (contracts.PriceSeries, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(contracts.CivilDate(from).Unix(), 10))
	params.Set("period2", strconv.FormatInt(contracts.CivilDate(to).Unix(), 10))
	params.Set("interval", "1d")
	params.Set("events", "div,split")

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), params.Encode())

	var chart chartResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &chart); err != nil {
		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == 404 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, ticker)
		}
		return nil, fmt.Errorf("yahoo chart %s: %w", ticker, err)
	}

	series, err := chart.toSeries(from, to)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", ticker, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  series.Len(),
	}).Debug("Fetched prices")
	return series, nil
}

// toSeries converts the payload into a validated series clipped to [from, to)
func (r *chartResponse) toSeries(from, to time.Time) (contracts.PriceSeries, error) {
	if r.Chart.Error != nil {
		if r.Chart.Error.Code == "Not Found" {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, r.Chart.Error.Description)
		}
		return nil, fmt.Errorf("api error %s: %s", r.Chart.Error.Code, r.Chart.Error.Description)
	}
	if len(r.Chart.Result) == 0 || len(r.Chart.Result[0].Timestamp) == 0 {
		return nil, ErrNoData
	}

	result := r.Chart.Result[0]
	var closes []*float64
	if len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) == len(result.Timestamp) {
		closes = result.Indicators.AdjClose[0].AdjClose
	} else if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}

	// 거래소 현지 날짜 기준 (UTC 타임스탬프를 그대로 쓰면 아시아 시장이 하루 밀림)
	loc := time.FixedZone(result.Meta.ExchangeTimezone, result.Meta.GMTOffset)
	lo, hi := contracts.CivilDate(from), contracts.CivilDate(to)

	points := make([]contracts.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil || !(*closes[i] > 0) {
			continue
		}
		d := contracts.CivilDate(time.Unix(ts, 0).In(loc))
		if d.Before(lo) || !d.Before(hi) {
			continue
		}
		// 같은 날짜가 두 번 오면 (장중 스냅샷) 마지막 값 사용
		if n := len(points); n > 0 && !d.After(points[n-1].Date) {
			if d.Equal(points[n-1].Date) {
				points[n-1].Price = *closes[i]
			}
			continue
		}
		points = append(points, contracts.PricePoint{Date: d, Price: *closes[i]})
	}

	if len(points) == 0 {
		return nil, ErrNoData
	}
	return contracts.NewPriceSeries(points)
}
