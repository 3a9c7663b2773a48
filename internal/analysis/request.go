package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/internal/pricedata"
	"github.com/wonny/riskscope/internal/profile"
	"github.com/wonny/riskscope/pkg/config"
)

// Params estimator parameters recorded with every report
type Params struct {
	Benchmark       string  `json:"benchmark"`
	InitialCapital  float64 `json:"initial_capital"`
	RiskFreeRate    float64 `json:"risk_free_rate"`
	TradingDays     int     `json:"trading_days"`
	RollingWindow   int     `json:"rolling_window"`
	ConfidenceLevel float64 `json:"confidence_level"`
}

// DefaultParams 기본값: ^GSPC, 100,000, rf 0, 252일, 30일 윈도우, 95%
func DefaultParams() Params {
	return Params{
		Benchmark:       "^GSPC",
		InitialCapital:  100_000,
		RiskFreeRate:    0,
		TradingDays:     252,
		RollingWindow:   30,
		ConfidenceLevel: 0.95,
	}
}

// ParamsFromConfig reads the analysis defaults from config
func ParamsFromConfig(cfg *config.Config) Params {
	p := Params{
		Benchmark:       cfg.Analysis.Benchmark,
		InitialCapital:  cfg.Analysis.InitialCapital,
		RiskFreeRate:    cfg.Analysis.RiskFreeRate,
		TradingDays:     cfg.Analysis.TradingDays,
		RollingWindow:   cfg.Analysis.RollingWindow,
		ConfidenceLevel: cfg.Analysis.ConfidenceLevel,
	}
	return p.merge(DefaultParams())
}

// ParamsFromProfile reads the analysis section of a profile
func ParamsFromProfile(p *profile.Profile) Params {
	return Params{
		Benchmark:       p.Analysis.Benchmark,
		InitialCapital:  p.Analysis.InitialCapital,
		RiskFreeRate:    p.Analysis.RiskFreeRate,
		TradingDays:     p.Analysis.TradingDays,
		RollingWindow:   p.Analysis.RollingWindow,
		ConfidenceLevel: p.Analysis.ConfidenceLevel,
	}.merge(DefaultParams())
}

// merge fills zero fields of p from d (RiskFreeRate 0 is a valid value and is kept)
func (p Params) merge(d Params) Params {
	if p.Benchmark == "" {
		p.Benchmark = d.Benchmark
	}
	if p.InitialCapital == 0 {
		p.InitialCapital = d.InitialCapital
	}
	if p.TradingDays == 0 {
		p.TradingDays = d.TradingDays
	}
	if p.RollingWindow == 0 {
		p.RollingWindow = d.RollingWindow
	}
	if p.ConfidenceLevel == 0 {
		p.ConfidenceLevel = d.ConfidenceLevel
	}
	return p
}

// Request one full-analysis run
// 0 값 필드는 Runner 기본값으로 채움 (RiskFreeRate는 포인터로 "미지정" 구분)
type Request struct {
	Ticker          string
	Benchmark       string
	From            time.Time // inclusive
	To              time.Time // exclusive
	InitialCapital  float64
	RiskFreeRate    *float64
	TradingDays     int
	RollingWindow   int
	ConfidenceLevel float64

	// Refresh skips the snapshot cache read (the result is still written)
	Refresh bool
}

// resolve normalises the ticker and fills unset parameters from defaults
func (r Request) resolve(defaults Params) (Request, Params) {
	r.Ticker = pricedata.NormalizeTicker(r.Ticker)
	r.Benchmark = pricedata.NormalizeTicker(r.Benchmark)
	r.From = contracts.CivilDate(r.From)
	r.To = contracts.CivilDate(r.To)

	p := Params{
		Benchmark:       r.Benchmark,
		InitialCapital:  r.InitialCapital,
		TradingDays:     r.TradingDays,
		RollingWindow:   r.RollingWindow,
		ConfidenceLevel: r.ConfidenceLevel,
		RiskFreeRate:    defaults.RiskFreeRate,
	}
	if r.RiskFreeRate != nil {
		p.RiskFreeRate = *r.RiskFreeRate
	}
	return r, p.merge(defaults)
}

// validate checks the resolved request; every failure wraps ErrInvalidParameter
func validate(r Request, p Params) error {
	switch {
	case strings.TrimSpace(r.Ticker) == "":
		return fmt.Errorf("%w: ticker is required", contracts.ErrInvalidParameter)
	case r.From.IsZero() || r.To.IsZero():
		return fmt.Errorf("%w: start and end dates are required", contracts.ErrInvalidParameter)
	case !r.From.Before(r.To):
		return fmt.Errorf("%w: start %s must be before end %s", contracts.ErrInvalidParameter,
			r.From.Format(contracts.DateLayout), r.To.Format(contracts.DateLayout))
	case !(p.InitialCapital > 0):
		return fmt.Errorf("%w: initial capital must be > 0", contracts.ErrInvalidParameter)
	case p.TradingDays < 1:
		return fmt.Errorf("%w: trading days must be >= 1", contracts.ErrInvalidParameter)
	case p.RollingWindow < 1:
		return fmt.Errorf("%w: rolling window must be >= 1", contracts.ErrInvalidParameter)
	case !(p.ConfidenceLevel > 0 && p.ConfidenceLevel < 1):
		return fmt.Errorf("%w: confidence level must be in (0, 1)", contracts.ErrInvalidParameter)
	}
	return nil
}
