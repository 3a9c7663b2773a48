package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/riskscope/internal/contracts"
)

// RiskMetrics risk category
type RiskMetrics struct {
	AnnualizedVolatility contracts.Metric `json:"annualized_volatility"`
	DownsideVolatility   contracts.Metric `json:"downside_volatility"`
	MaxDrawdown          float64          `json:"max_drawdown"`
}

// AnnualizedVolatility sample stdev (ddof=1) × √tradingDays
// 관측치 1개면 표본 표준편차가 정의되지 않으므로 Undefined
func AnnualizedVolatility(returns contracts.ReturnSeries, tradingDays int) (contracts.Metric, error) {
	if err := requireReturns(returns); err != nil {
		return contracts.Undefined(), err
	}
	if err := checkTradingDays(tradingDays); err != nil {
		return contracts.Undefined(), err
	}
	return annualizedStdDev(returns.Values(), tradingDays), nil
}

// DownsideVolatility volatility of the strictly negative returns
// 음수 수익률이 없으면 0 (하방 변동 없음, 오류 아님)
func DownsideVolatility(returns contracts.ReturnSeries, tradingDays int) (contracts.Metric, error) {
	if err := requireReturns(returns); err != nil {
		return contracts.Undefined(), err
	}
	if err := checkTradingDays(tradingDays); err != nil {
		return contracts.Undefined(), err
	}

	downside := negatives(returns.Values())
	if len(downside) == 0 {
		return contracts.Defined(0), nil
	}
	return annualizedStdDev(downside, tradingDays), nil
}

// MaxDrawdown worst (price - running max) / running max over the whole series, ≤ 0
func MaxDrawdown(prices contracts.PriceSeries) (float64, error) {
	if err := requirePrices(prices); err != nil {
		return 0, err
	}

	worst := 0.0
	for _, dd := range drawdowns(prices) {
		if dd < worst {
			worst = dd
		}
	}
	return worst, nil
}

// Risk computes the risk category
func Risk(prices contracts.PriceSeries, tradingDays int) (RiskMetrics, error) {
	returns, err := LogReturns(prices)
	if err != nil {
		return RiskMetrics{}, err
	}

	vol, err := AnnualizedVolatility(returns, tradingDays)
	if err != nil {
		return RiskMetrics{}, err
	}
	down, err := DownsideVolatility(returns, tradingDays)
	if err != nil {
		return RiskMetrics{}, err
	}
	mdd, err := MaxDrawdown(prices)
	if err != nil {
		return RiskMetrics{}, err
	}

	return RiskMetrics{
		AnnualizedVolatility: vol,
		DownsideVolatility:   down,
		MaxDrawdown:          mdd,
	}, nil
}

func annualizedStdDev(values []float64, tradingDays int) contracts.Metric {
	if len(values) < 2 {
		return contracts.Undefined()
	}
	return contracts.Defined(stat.StdDev(values, nil) * math.Sqrt(float64(tradingDays)))
}

func negatives(values []float64) []float64 {
	var out []float64
	for _, v := range values {
		if v < 0 {
			out = append(out, v)
		}
	}
	return out
}

// drawdowns (p - cummax) / cummax, aligned with prices
func drawdowns(prices contracts.PriceSeries) []float64 {
	out := make([]float64, len(prices))
	runningMax := math.Inf(-1)
	for i, p := range prices {
		if p.Price > runningMax {
			runningMax = p.Price
		}
		out[i] = (p.Price - runningMax) / runningMax
	}
	return out
}
