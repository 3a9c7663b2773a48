// Package simulation replays a fixed initial capital through a price series.
package simulation

import (
	"fmt"

	"github.com/wonny/riskscope/internal/contracts"
)

// DefaultCapital initial investment used when none is given
const DefaultCapital = 100_000.0

// Simulate normalises prices to 1.0 at the first observation and scales by capital
// ⭐ 동률(min/max/일별 최대 손익)은 가장 이른 날짜 우선
func Simulate(prices contracts.PriceSeries, capital float64) (contracts.SimulationResult, error) {
	if len(prices) == 0 {
		return contracts.SimulationResult{}, fmt.Errorf("%w: price series is empty", contracts.ErrEmptyInput)
	}
	if !(capital > 0) {
		return contracts.SimulationResult{}, fmt.Errorf("%w: initial investment must be positive, got %v",
			contracts.ErrInvalidParameter, capital)
	}

	base := prices.First().Price
	curve := make([]contracts.ValuePoint, len(prices))
	for i, p := range prices {
		curve[i] = contracts.ValuePoint{Date: p.Date, Value: capital * p.Price / base}
	}

	result := contracts.SimulationResult{
		InitialInvestment: capital,
		FinalValue:        curve[len(curve)-1].Value,
		MinValue:          contracts.DatedAmount{Date: curve[0].Date, Amount: curve[0].Value},
		MaxValue:          contracts.DatedAmount{Date: curve[0].Date, Amount: curve[0].Value},
		ValueCurve:        curve,
	}

	for i := 1; i < len(curve); i++ {
		v := curve[i]
		if v.Value < result.MinValue.Amount {
			result.MinValue = contracts.DatedAmount{Date: v.Date, Amount: v.Value}
		}
		if v.Value > result.MaxValue.Amount {
			result.MaxValue = contracts.DatedAmount{Date: v.Date, Amount: v.Value}
		}

		// 일별 손익 (첫 관측치는 이전 값이 없으므로 제외)
		change := contracts.DatedAmount{Date: v.Date, Amount: v.Value - curve[i-1].Value}
		if result.LargestDailyGain == nil || change.Amount > result.LargestDailyGain.Amount {
			gain := change
			result.LargestDailyGain = &gain
		}
		if result.LargestDailyLoss == nil || change.Amount < result.LargestDailyLoss.Amount {
			loss := change
			result.LargestDailyLoss = &loss
		}
	}

	return result, nil
}
