// Package metrics implements the pure risk/return estimators.
//
// ⭐ SSOT: 성장/리스크/꼬리위험/시장민감도/안정성 지표 계산은 여기서만
// Every function is stateless and safe for concurrent use. Fatal input
// problems are returned as wrapped contracts sentinels; numeric degeneracy
// (zero variance, zero drawdown) is reported as an undefined Metric.
package metrics

import (
	"fmt"
	"math"

	"github.com/wonny/riskscope/internal/contracts"
)

// DefaultTradingDays annualisation factor for daily data
const DefaultTradingDays = 252

// LogReturns derives ln(p[t]/p[t-1]) for t ≥ 1
// 반환 시계열의 날짜는 뒤쪽 가격의 날짜
func LogReturns(prices contracts.PriceSeries) (contracts.ReturnSeries, error) {
	if len(prices) < 2 {
		return nil, fmt.Errorf("%w: log returns need at least 2 prices, got %d",
			contracts.ErrEmptyInput, len(prices))
	}

	out := make(contracts.ReturnSeries, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		out[i-1] = contracts.ReturnPoint{
			Date:  prices[i].Date,
			Value: math.Log(prices[i].Price / prices[i-1].Price),
		}
	}
	return out, nil
}

func checkTradingDays(tradingDays int) error {
	if tradingDays <= 0 {
		return fmt.Errorf("%w: trading days must be positive, got %d",
			contracts.ErrInvalidParameter, tradingDays)
	}
	return nil
}

func requirePrices(prices contracts.PriceSeries) error {
	if len(prices) == 0 {
		return fmt.Errorf("%w: price series is empty", contracts.ErrEmptyInput)
	}
	return nil
}

func requireReturns(returns contracts.ReturnSeries) error {
	if len(returns) == 0 {
		return fmt.Errorf("%w: return series is empty", contracts.ErrEmptyInput)
	}
	return nil
}

// isConstant reports whether every value equals the first (zero dispersion)
func isConstant(values []float64) bool {
	if len(values) == 0 {
		return true
	}
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
