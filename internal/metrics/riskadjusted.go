package metrics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/riskscope/internal/contracts"
)

// RiskAdjustedMetrics risk-adjusted category
type RiskAdjustedMetrics struct {
	Sharpe  contracts.Metric `json:"sharpe_ratio"`
	Sortino contracts.Metric `json:"sortino_ratio"`
	Calmar  contracts.Metric `json:"calmar_ratio"`
}

// SharpeRatio (mean×tradingDays - riskFree) / annualized volatility
// 변동성이 0 또는 정의되지 않으면 Undefined
func SharpeRatio(returns contracts.ReturnSeries, riskFreeRate float64, tradingDays int) (contracts.Metric, error) {
	vol, err := AnnualizedVolatility(returns, tradingDays)
	if err != nil {
		return contracts.Undefined(), err
	}
	return excessOver(returns, riskFreeRate, tradingDays, vol), nil
}

// SortinoRatio same numerator as Sharpe, downside volatility denominator
func SortinoRatio(returns contracts.ReturnSeries, riskFreeRate float64, tradingDays int) (contracts.Metric, error) {
	down, err := DownsideVolatility(returns, tradingDays)
	if err != nil {
		return contracts.Undefined(), err
	}
	return excessOver(returns, riskFreeRate, tradingDays, down), nil
}

// CalmarRatio CAGR / |max drawdown|
// MDD가 0이면 CAGR 계산 전에 Undefined 반환
func CalmarRatio(prices contracts.PriceSeries) (contracts.Metric, error) {
	mdd, err := MaxDrawdown(prices)
	if err != nil {
		return contracts.Undefined(), err
	}
	if mdd == 0 {
		return contracts.Undefined(), nil
	}

	cagr, err := CAGR(prices)
	if err != nil {
		return contracts.Undefined(), err
	}
	c, ok := cagr.Get()
	if !ok {
		return contracts.Undefined(), nil
	}
	return contracts.Defined(c / -mdd), nil
}

// RiskAdjusted computes the risk-adjusted category
func RiskAdjusted(prices contracts.PriceSeries, riskFreeRate float64, tradingDays int) (RiskAdjustedMetrics, error) {
	returns, err := LogReturns(prices)
	if err != nil {
		return RiskAdjustedMetrics{}, err
	}

	sharpe, err := SharpeRatio(returns, riskFreeRate, tradingDays)
	if err != nil {
		return RiskAdjustedMetrics{}, err
	}
	sortino, err := SortinoRatio(returns, riskFreeRate, tradingDays)
	if err != nil {
		return RiskAdjustedMetrics{}, err
	}
	calmar, err := CalmarRatio(prices)
	if err != nil {
		return RiskAdjustedMetrics{}, err
	}

	return RiskAdjustedMetrics{Sharpe: sharpe, Sortino: sortino, Calmar: calmar}, nil
}

func excessOver(returns contracts.ReturnSeries, riskFreeRate float64, tradingDays int, denom contracts.Metric) contracts.Metric {
	d, ok := denom.Get()
	if !ok || d == 0 {
		return contracts.Undefined()
	}
	annualReturn := stat.Mean(returns.Values(), nil) * float64(tradingDays)
	return contracts.Defined((annualReturn - riskFreeRate) / d)
}
