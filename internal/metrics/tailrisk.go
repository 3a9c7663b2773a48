package metrics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/riskscope/internal/contracts"
)

// DefaultConfidenceLevel VaR/CVaR confidence
const DefaultConfidenceLevel = 0.95

// TailRiskMetrics tail-risk category
type TailRiskMetrics struct {
	Skewness               contracts.Metric `json:"skewness"`
	KurtosisExcess         contracts.Metric `json:"kurtosis_excess"`
	ValueAtRisk            float64          `json:"value_at_risk"`
	ConditionalValueAtRisk float64          `json:"conditional_value_at_risk"`
	ConfidenceLevel        float64          `json:"confidence_level"`
}

// Skewness population third standardized moment (biased estimator)
// 분산 0이면 Undefined
func Skewness(returns contracts.ReturnSeries) (contracts.Metric, error) {
	if err := requireReturns(returns); err != nil {
		return contracts.Undefined(), err
	}

	values := returns.Values()
	if isConstant(values) {
		return contracts.Undefined(), nil
	}
	m2 := stat.Moment(2, values, nil)
	return contracts.Defined(stat.Moment(3, values, nil) / math.Pow(m2, 1.5)), nil
}

// KurtosisExcess population fourth standardized moment minus 3 (Fisher)
// 정규분포 → 0
func KurtosisExcess(returns contracts.ReturnSeries) (contracts.Metric, error) {
	if err := requireReturns(returns); err != nil {
		return contracts.Undefined(), err
	}

	values := returns.Values()
	if isConstant(values) {
		return contracts.Undefined(), nil
	}
	m2 := stat.Moment(2, values, nil)
	return contracts.Defined(stat.Moment(4, values, nil)/(m2*m2) - 3), nil
}

// ValueAtRisk historical VaR: the (1 - confidence) empirical percentile
// 손실은 음수로 표현 (신뢰수준 > 50%면 보통 음수)
func ValueAtRisk(returns contracts.ReturnSeries, confidenceLevel float64) (float64, error) {
	if err := requireReturns(returns); err != nil {
		return 0, err
	}
	if err := checkConfidence(confidenceLevel); err != nil {
		return 0, err
	}

	sorted := returns.Values()
	sort.Float64s(sorted)
	return Percentile(sorted, 1-confidenceLevel), nil
}

// ConditionalValueAtRisk mean of returns ≤ VaR (expected shortfall)
// 선형 보간 백분위수 ≥ 최솟값이므로 tail은 항상 비어있지 않음
func ConditionalValueAtRisk(returns contracts.ReturnSeries, confidenceLevel float64) (float64, error) {
	threshold, err := ValueAtRisk(returns, confidenceLevel)
	if err != nil {
		return 0, err
	}

	var tail []float64
	for _, r := range returns {
		if r.Value <= threshold {
			tail = append(tail, r.Value)
		}
	}
	if len(tail) == 0 {
		return threshold, nil
	}

	cvar := stat.Mean(tail, nil)
	// 부동소수 반올림으로 평균이 임계값을 미세하게 넘는 경우 보정
	if cvar > threshold {
		cvar = threshold
	}
	return cvar, nil
}

// TailRisk computes the tail-risk category
func TailRisk(prices contracts.PriceSeries, confidenceLevel float64) (TailRiskMetrics, error) {
	returns, err := LogReturns(prices)
	if err != nil {
		return TailRiskMetrics{}, err
	}

	skew, err := Skewness(returns)
	if err != nil {
		return TailRiskMetrics{}, err
	}
	kurt, err := KurtosisExcess(returns)
	if err != nil {
		return TailRiskMetrics{}, err
	}
	valueAtRisk, err := ValueAtRisk(returns, confidenceLevel)
	if err != nil {
		return TailRiskMetrics{}, err
	}
	cvar, err := ConditionalValueAtRisk(returns, confidenceLevel)
	if err != nil {
		return TailRiskMetrics{}, err
	}

	return TailRiskMetrics{
		Skewness:               skew,
		KurtosisExcess:         kurt,
		ValueAtRisk:            valueAtRisk,
		ConditionalValueAtRisk: cvar,
		ConfidenceLevel:        confidenceLevel,
	}, nil
}

// Percentile linear-interpolated percentile of an ascending slice, p in [0,1]
// index = p × (n-1), numpy 'linear' 방식과 동일
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 || p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}

	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func checkConfidence(level float64) error {
	if !(level > 0 && level < 1) {
		return fmt.Errorf("%w: confidence level must be in (0,1), got %v",
			contracts.ErrInvalidParameter, level)
	}
	return nil
}
