package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/riskscope/internal/analysis"
	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/internal/profile"
)

// DefaultLookback range used when neither start nor lookback is given
const DefaultLookback = "5y"

// parseRequest builds an analysis request from path vars and query
//
//	start, end       YYYY-MM-DD, end exclusive (default: tomorrow)
//	lookback         5y | 18m | 90d, alternative to start
//	benchmark, capital, risk_free_rate, trading_days, window, confidence
//	refresh          true → bypass the snapshot cache
func parseRequest(ticker string, q url.Values, now time.Time) (analysis.Request, error) {
	req := analysis.Request{Ticker: ticker, Benchmark: q.Get("benchmark")}

	from, to, err := parseRange(q, now)
	if err != nil {
		return req, err
	}
	req.From, req.To = from, to

	if req.InitialCapital, err = floatParam(q, "capital"); err != nil {
		return req, err
	}
	if q.Get("risk_free_rate") != "" {
		rf, err := floatParam(q, "risk_free_rate")
		if err != nil {
			return req, err
		}
		req.RiskFreeRate = &rf
	}
	if req.TradingDays, err = intParam(q, "trading_days"); err != nil {
		return req, err
	}
	if req.RollingWindow, err = intParam(q, "window"); err != nil {
		return req, err
	}
	if req.ConfidenceLevel, err = floatParam(q, "confidence"); err != nil {
		return req, err
	}
	if v := q.Get("refresh"); v != "" {
		if req.Refresh, err = strconv.ParseBool(v); err != nil {
			return req, fmt.Errorf("%w: refresh must be a boolean", contracts.ErrInvalidParameter)
		}
	}
	return req, nil
}

func parseRange(q url.Values, now time.Time) (time.Time, time.Time, error) {
	start, end, lookback := q.Get("start"), q.Get("end"), q.Get("lookback")
	if start != "" && lookback != "" {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start and lookback are mutually exclusive", contracts.ErrInvalidParameter)
	}

	to := contracts.CivilDate(now).AddDate(0, 0, 1)
	if end != "" {
		t, err := time.Parse(contracts.DateLayout, end)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: end must be YYYY-MM-DD", contracts.ErrInvalidParameter)
		}
		to = t
	}

	if start != "" {
		from, err := time.Parse(contracts.DateLayout, start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start must be YYYY-MM-DD", contracts.ErrInvalidParameter)
		}
		return from, to, nil
	}

	if lookback == "" {
		lookback = DefaultLookback
	}
	from, err := profile.ApplyLookback(to, lookback)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", contracts.ErrInvalidParameter, err)
	}
	return from, to, nil
}

func floatParam(q url.Values, name string) (float64, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", contracts.ErrInvalidParameter, name)
	}
	return f, nil
}

func intParam(q url.Values, name string) (int, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", contracts.ErrInvalidParameter, name)
	}
	return n, nil
}

// limitParam top-N limit (default 10, 0 → all)
func limitParam(r *http.Request) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 10, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: limit must be a non-negative integer", contracts.ErrInvalidParameter)
	}
	return n, nil
}
