// Package profile loads the YAML analysis profile: estimator parameters,
// the watchlist refreshed by the scheduler, and its schedule.
package profile

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/pkg/config"
)

// Profile is the full analysis profile
type Profile struct {
	Meta      Meta        `yaml:"meta" json:"meta"`
	Analysis  Params      `yaml:"analysis" json:"analysis"`
	Watchlist []WatchItem `yaml:"watchlist" json:"watchlist"`
	Schedule  Schedule    `yaml:"schedule" json:"schedule"`
}

// Meta 메타 정보
type Meta struct {
	ProfileID string `yaml:"profile_id" json:"profile_id"`
	Version   string `yaml:"version" json:"version"`
}

// Params estimator parameters shared by every watchlist entry
type Params struct {
	Benchmark       string  `yaml:"benchmark" json:"benchmark"`
	InitialCapital  float64 `yaml:"initial_capital" json:"initial_capital"`
	RiskFreeRate    float64 `yaml:"risk_free_rate" json:"risk_free_rate"`
	TradingDays     int     `yaml:"trading_days" json:"trading_days"`
	RollingWindow   int     `yaml:"rolling_window" json:"rolling_window"`
	ConfidenceLevel float64 `yaml:"confidence_level" json:"confidence_level"`
}

// WatchItem one ticker analysed on every refresh
// lookback(예: 5y, 18m, 90d) 또는 start/end 중 하나만 지정
type WatchItem struct {
	Ticker    string `yaml:"ticker" json:"ticker"`
	Benchmark string `yaml:"benchmark,omitempty" json:"benchmark,omitempty"`
	Lookback  string `yaml:"lookback,omitempty" json:"lookback,omitempty"`
	Start     string `yaml:"start,omitempty" json:"start,omitempty"` // YYYY-MM-DD
	End       string `yaml:"end,omitempty" json:"end,omitempty"`     // YYYY-MM-DD, exclusive
}

// Schedule cron expression (seconds field first) for the warm-cache job
type Schedule struct {
	RefreshCron string `yaml:"refresh_cron" json:"refresh_cron"`
}

// DefaultRefreshCron 평일 07:30 (장 시작 전)
const DefaultRefreshCron = "0 30 7 * * 1-5"

// Default builds a profile with an empty watchlist from config defaults
func Default(cfg *config.Config) *Profile {
	return &Profile{
		Meta: Meta{ProfileID: "default", Version: "1"},
		Analysis: Params{
			Benchmark:       cfg.Analysis.Benchmark,
			InitialCapital:  cfg.Analysis.InitialCapital,
			RiskFreeRate:    cfg.Analysis.RiskFreeRate,
			TradingDays:     cfg.Analysis.TradingDays,
			RollingWindow:   cfg.Analysis.RollingWindow,
			ConfidenceLevel: cfg.Analysis.ConfidenceLevel,
		},
		Schedule: Schedule{RefreshCron: DefaultRefreshCron},
	}
}

// BenchmarkFor returns the entry's benchmark or the profile default
func (p *Profile) BenchmarkFor(item WatchItem) string {
	if item.Benchmark != "" {
		return item.Benchmark
	}
	return p.Analysis.Benchmark
}

// Range resolves the entry's [from, to) window relative to now
func (w WatchItem) Range(now time.Time) (time.Time, time.Time, error) {
	if w.Lookback != "" {
		to := contracts.CivilDate(now).AddDate(0, 0, 1)
		from, err := ApplyLookback(to, w.Lookback)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return from, to, nil
	}

	from, err := time.Parse(contracts.DateLayout, w.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start: %w", err)
	}
	to := contracts.CivilDate(now).AddDate(0, 0, 1)
	if w.End != "" {
		if to, err = time.Parse(contracts.DateLayout, w.End); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("end: %w", err)
		}
	}
	return from, to, nil
}

// ApplyLookback subtracts a lookback like "5y", "18m" or "90d" from end
func ApplyLookback(end time.Time, lookback string) (time.Time, error) {
	s := strings.TrimSpace(strings.ToLower(lookback))
	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid lookback %q", lookback)
	}

	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return time.Time{}, fmt.Errorf("invalid lookback %q", lookback)
	}

	switch s[len(s)-1] {
	case 'y':
		return end.AddDate(-n, 0, 0), nil
	case 'm':
		return end.AddDate(0, -n, 0), nil
	case 'd':
		return end.AddDate(0, 0, -n), nil
	default:
		return time.Time{}, fmt.Errorf("invalid lookback unit in %q (use y, m or d)", lookback)
	}
}
