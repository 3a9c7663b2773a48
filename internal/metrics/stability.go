package metrics

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/riskscope/internal/contracts"
)

// DefaultRollingWindow rolling Sharpe window in observations
const DefaultRollingWindow = 30

// RollingPoint one rolling-window value
type RollingPoint struct {
	Date  time.Time        `json:"date"`
	Value contracts.Metric `json:"value"`
}

// RollingSummary mean/min/max over the defined rolling values
type RollingSummary struct {
	Window  int              `json:"window"`
	Defined int              `json:"defined"`
	Mean    contracts.Metric `json:"mean"`
	Min     contracts.Metric `json:"min"`
	Max     contracts.Metric `json:"max"`
}

// StabilityMetrics stability category
// RecoveryTime은 전 구간 최악 낙폭 기준의 단일 회복 기간 (에피소드별 회복과 별개)
type StabilityMetrics struct {
	MaxDrawdownDuration int                `json:"max_drawdown_duration_days"`
	RecoveryTime        contracts.Recovery `json:"recovery_time"`
	RollingSharpe       RollingSummary     `json:"rolling_sharpe"`
}

// RollingSharpe annualized Sharpe over each trailing window
// i < window-1 이거나 윈도우 분산이 0이면 Undefined
func RollingSharpe(returns contracts.ReturnSeries, window, tradingDays int) ([]RollingPoint, error) {
	if err := requireReturns(returns); err != nil {
		return nil, err
	}
	if window < 1 {
		return nil, fmt.Errorf("%w: rolling window must be ≥ 1, got %d", contracts.ErrInvalidParameter, window)
	}
	if err := checkTradingDays(tradingDays); err != nil {
		return nil, err
	}

	values := returns.Values()
	scale := float64(tradingDays)
	out := make([]RollingPoint, len(returns))
	for i := range returns {
		out[i] = RollingPoint{Date: returns[i].Date, Value: contracts.Undefined()}
		if i < window-1 || window < 2 {
			continue
		}

		win := values[i-window+1 : i+1]
		if isConstant(win) {
			continue
		}
		mean, std := stat.MeanStdDev(win, nil)
		out[i].Value = contracts.Defined((mean * scale) / (std * math.Sqrt(scale)))
	}
	return out, nil
}

// SummarizeRolling aggregates the defined values of a rolling series
func SummarizeRolling(points []RollingPoint, window int) RollingSummary {
	summary := RollingSummary{
		Window: window,
		Mean:   contracts.Undefined(),
		Min:    contracts.Undefined(),
		Max:    contracts.Undefined(),
	}

	var defined []float64
	for _, p := range points {
		if v, ok := p.Value.Get(); ok {
			defined = append(defined, v)
		}
	}
	if len(defined) == 0 {
		return summary
	}

	lo, hi := defined[0], defined[0]
	for _, v := range defined[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	summary.Defined = len(defined)
	summary.Mean = contracts.Defined(stat.Mean(defined, nil))
	summary.Min = contracts.Defined(lo)
	summary.Max = contracts.Defined(hi)
	return summary
}

// DrawdownSeries per-date (p - running max) / running max
// 에피소드 추출의 기반이 되는 연속 신호
func DrawdownSeries(prices contracts.PriceSeries) ([]contracts.DatedValue, error) {
	if err := requirePrices(prices); err != nil {
		return nil, err
	}

	dd := drawdowns(prices)
	out := make([]contracts.DatedValue, len(prices))
	for i, p := range prices {
		out[i] = contracts.DatedValue{Date: p.Date, Value: dd[i]}
	}
	return out, nil
}

// DrawdownDuration run-length of consecutive underwater observations, aligned with prices
// 고점 회복 시점에 0으로 리셋
func DrawdownDuration(prices contracts.PriceSeries) ([]int, error) {
	if err := requirePrices(prices); err != nil {
		return nil, err
	}

	dd := drawdowns(prices)
	out := make([]int, len(dd))
	for i := 1; i < len(dd); i++ {
		if dd[i] < 0 {
			out[i] = out[i-1] + 1
		}
	}
	return out, nil
}

// MaxDrawdownDuration longest underwater run in observations
func MaxDrawdownDuration(prices contracts.PriceSeries) (int, error) {
	durations, err := DrawdownDuration(prices)
	if err != nil {
		return 0, err
	}

	longest := 0
	for _, d := range durations {
		if d > longest {
			longest = d
		}
	}
	return longest, nil
}

// RecoveryTime calendar days from the global worst trough back to its prior peak price
// 1. drawdown 최저점(첫 발생) → trough
// 2. trough 이전(포함) 최고가(첫 발생) → peak
// 3. trough부터 price ≥ peak 인 첫 날짜 → Recovered, 없으면 Ongoing
func RecoveryTime(prices contracts.PriceSeries) (contracts.Recovery, error) {
	if err := requirePrices(prices); err != nil {
		return contracts.Ongoing(), err
	}

	dd := drawdowns(prices)
	trough := 0
	for i, v := range dd {
		if v < dd[trough] {
			trough = i
		}
	}

	peak := 0
	for i := 0; i <= trough; i++ {
		if prices[i].Price > prices[peak].Price {
			peak = i
		}
	}

	target := prices[peak].Price
	for i := trough; i < len(prices); i++ {
		if prices[i].Price >= target {
			return contracts.Recovered(prices[i].Date, contracts.DaysBetween(prices[trough].Date, prices[i].Date)), nil
		}
	}
	return contracts.Ongoing(), nil
}

// Stability computes the stability category
func Stability(prices contracts.PriceSeries, window, tradingDays int) (StabilityMetrics, error) {
	returns, err := LogReturns(prices)
	if err != nil {
		return StabilityMetrics{}, err
	}

	rolling, err := RollingSharpe(returns, window, tradingDays)
	if err != nil {
		return StabilityMetrics{}, err
	}
	longest, err := MaxDrawdownDuration(prices)
	if err != nil {
		return StabilityMetrics{}, err
	}
	recovery, err := RecoveryTime(prices)
	if err != nil {
		return StabilityMetrics{}, err
	}

	return StabilityMetrics{
		MaxDrawdownDuration: longest,
		RecoveryTime:        recovery,
		RollingSharpe:       SummarizeRolling(rolling, window),
	}, nil
}
