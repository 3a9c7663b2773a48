package metrics

import (
	"fmt"
	"math"

	"github.com/wonny/riskscope/internal/contracts"
)

// daysPerYear calendar year length used by CAGR
const daysPerYear = 365.25

// GrowthMetrics growth category
type GrowthMetrics struct {
	TotalReturn float64          `json:"total_return"`
	CAGR        contracts.Metric `json:"cagr"`
}

// TotalReturn last/first - 1
func TotalReturn(prices contracts.PriceSeries) (float64, error) {
	if err := requirePrices(prices); err != nil {
		return 0, err
	}
	return prices.Last().Price/prices.First().Price - 1, nil
}

// CAGR compound annual growth rate over the calendar span of the series
// 짧은 구간의 큰 변동으로 Pow가 overflow 하면 Undefined
func CAGR(prices contracts.PriceSeries) (contracts.Metric, error) {
	if err := requirePrices(prices); err != nil {
		return contracts.Undefined(), err
	}

	years := float64(contracts.DaysBetween(prices.First().Date, prices.Last().Date)) / daysPerYear
	if years <= 0 {
		return contracts.Undefined(), fmt.Errorf("%w: series spans %.4f years", contracts.ErrInsufficientRange, years)
	}

	ratio := prices.Last().Price / prices.First().Price
	return contracts.Defined(math.Pow(ratio, 1/years) - 1), nil
}

// Growth computes the growth category
func Growth(prices contracts.PriceSeries) (GrowthMetrics, error) {
	total, err := TotalReturn(prices)
	if err != nil {
		return GrowthMetrics{}, err
	}
	cagr, err := CAGR(prices)
	if err != nil {
		return GrowthMetrics{}, err
	}
	return GrowthMetrics{TotalReturn: total, CAGR: cagr}, nil
}
