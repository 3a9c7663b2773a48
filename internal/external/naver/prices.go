package naver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/riskscope/internal/contracts"
)

// ErrNoData Naver returned no rows for the requested range
var ErrNoData = errors.New("naver: no price data")

var chartRowRe = regexp.MustCompile(`\["(\d{8})",\s*(\d+),\s*(\d+),\s*(\d+),\s*(\d+),\s*(\d+)`)

// FetchPrices fetches daily closes for a KRX code over [from, to)
// ⭐ SSOT: Naver Finance 가격 API 호출은 이 함수에서만
// fchart(siseJson) 우선, 실패/빈 응답이면 sise_day HTML 페이지로 대체
func (c *Client) FetchPrices(ctx context.Context, stockCode string, from, to time.Time) (contracts.PriceSeries, error) {
	rows, err := c.fetchChart(ctx, stockCode, from, to)
	if err != nil || len(rows) == 0 {
		c.logger.WithFields(map[string]interface{}{
			"stock_code": stockCode,
			"error":      errString(err),
		}).Warn("siseJson unavailable, falling back to sise_day pages")

		rows, err = c.fetchDailyPages(ctx, stockCode, from)
		if err != nil {
			return nil, err
		}
	}

	series, err := toSeries(rows, from, to)
	if err != nil {
		return nil, err
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("%w: %s %s..%s", ErrNoData, stockCode,
			from.Format(contracts.DateLayout), to.Format(contracts.DateLayout))
	}

	c.logger.WithFields(map[string]interface{}{
		"stock_code": stockCode,
		"count":      series.Len(),
	}).Debug("Fetched prices")
	return series, nil
}

// fetchChart calls the siseJson endpoint (inclusive end date)
func (c *Client) fetchChart(ctx context.Context, stockCode string, from, to time.Time) ([]PriceData, error) {
	params := url.Values{}
	params.Set("symbol", stockCode)
	params.Set("requestType", "1")
	params.Set("startTime", from.Format("20060102"))
	params.Set("endTime", to.Format("20060102"))
	params.Set("timeframe", "day")

	body, err := c.fetchText(ctx, c.chartURL, "/siseJson.naver", params)
	if err != nil {
		return nil, err
	}
	return parsePriceResponse(body)
}

// parsePriceResponse parses the siseJson payload (single-quoted pseudo JSON)
func parsePriceResponse(body string) ([]PriceData, error) {
	body = strings.TrimSpace(body)
	body = strings.ReplaceAll(body, "'", "\"")

	// Try JSON parsing first
	var rawData [][]interface{}
	if err := json.Unmarshal([]byte(body), &rawData); err == nil {
		return parsePriceJSON(rawData), nil
	}

	// Fallback to regex parsing
	return parsePriceRegex(body), nil
}

// parsePriceJSON parses JSON array format; row 0 is the header
func parsePriceJSON(rawData [][]interface{}) []PriceData {
	var prices []PriceData
	for i, row := range rawData {
		if i == 0 || len(row) < 6 {
			continue // Skip header
		}

		dateStr, ok := row[0].(string)
		if !ok {
			continue
		}
		tradeDate, err := time.Parse("20060102", strings.TrimSpace(dateStr))
		if err != nil {
			continue
		}

		prices = append(prices, PriceData{
			TradeDate:  tradeDate,
			OpenPrice:  toInt64(row[1]),
			HighPrice:  toInt64(row[2]),
			LowPrice:   toInt64(row[3]),
			ClosePrice: toInt64(row[4]),
			Volume:     toInt64(row[5]),
		})
	}
	return prices
}

// parsePriceRegex parses using regex (fallback)
func parsePriceRegex(body string) []PriceData {
	matches := chartRowRe.FindAllStringSubmatch(body, -1)

	var prices []PriceData
	for _, match := range matches {
		tradeDate, err := time.Parse("20060102", match[1])
		if err != nil {
			continue
		}

		openPrice, _ := strconv.ParseInt(match[2], 10, 64)
		highPrice, _ := strconv.ParseInt(match[3], 10, 64)
		lowPrice, _ := strconv.ParseInt(match[4], 10, 64)
		closePrice, _ := strconv.ParseInt(match[5], 10, 64)
		volume, _ := strconv.ParseInt(match[6], 10, 64)

		prices = append(prices, PriceData{
			TradeDate:  tradeDate,
			OpenPrice:  openPrice,
			HighPrice:  highPrice,
			LowPrice:   lowPrice,
			ClosePrice: closePrice,
			Volume:     volume,
		})
	}
	return prices
}

// toSeries sorts, de-duplicates, drops non-positive closes and clips to [from, to)
func toSeries(rows []PriceData, from, to time.Time) (contracts.PriceSeries, error) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TradeDate.Before(rows[j].TradeDate)
	})

	lo, hi := contracts.CivilDate(from), contracts.CivilDate(to)
	points := make([]contracts.PricePoint, 0, len(rows))
	for _, r := range rows {
		d := contracts.CivilDate(r.TradeDate)
		if d.Before(lo) || !d.Before(hi) || r.ClosePrice <= 0 {
			continue
		}
		if n := len(points); n > 0 && points[n-1].Date.Equal(d) {
			points[n-1].Price = float64(r.ClosePrice)
			continue
		}
		points = append(points, contracts.PricePoint{Date: d, Price: float64(r.ClosePrice)})
	}
	return contracts.NewPriceSeries(points)
}

// toInt64 converts various types to int64
func toInt64(v interface{}) int64 {
	switch val := v.(type) {
	case float64:
		return int64(val)
	case int64:
		return val
	case int:
		return int64(val)
	case string:
		n, _ := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		return n
	default:
		return 0
	}
}

func errString(err error) string {
	if err == nil {
		return "empty response"
	}
	return err.Error()
}
