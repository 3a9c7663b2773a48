package metrics

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/riskscope/internal/contracts"
)

// MarketMetrics market-sensitivity category
// ⭐ AlphaAnnual = AlphaDaily × tradingDays (단순 스케일링, 복리 아님)
type MarketMetrics struct {
	Beta         contracts.Metric `json:"beta"`
	AlphaDaily   contracts.Metric `json:"alpha_daily"`
	AlphaAnnual  contracts.Metric `json:"alpha_annual"`
	RSquared     contracts.Metric `json:"r_squared"`
	Observations int              `json:"observations"`
}

// AlignedReturns subject/benchmark returns on their common dates
type AlignedReturns struct {
	Dates     []time.Time
	Subject   []float64
	Benchmark []float64
}

// Len number of aligned observations
func (a AlignedReturns) Len() int {
	return len(a.Dates)
}

// AlignReturns inner-joins the two series on calendar date
// 거래소 시간대가 달라도 같은 달력 날짜면 같은 세션으로 간주
func AlignReturns(subject, benchmark contracts.ReturnSeries) (AlignedReturns, error) {
	byDate := make(map[time.Time]float64, len(benchmark))
	for _, r := range benchmark {
		byDate[contracts.CivilDate(r.Date)] = r.Value
	}

	var out AlignedReturns
	for _, r := range subject {
		b, ok := byDate[contracts.CivilDate(r.Date)]
		if !ok {
			continue
		}
		out.Dates = append(out.Dates, r.Date)
		out.Subject = append(out.Subject, r.Value)
		out.Benchmark = append(out.Benchmark, b)
	}

	if out.Len() == 0 {
		return AlignedReturns{}, fmt.Errorf("%w: subject has %d returns, benchmark has %d",
			contracts.ErrNoOverlap, len(subject), len(benchmark))
	}
	return out, nil
}

// MarketSensitivity OLS of subject returns on benchmark returns
// beta = 기울기, alpha = 절편, R² = 상관계수²
// 정렬된 관측치가 2개 미만이거나 벤치마크 분산이 0이면 회귀 불가 → Undefined
func MarketSensitivity(subject, benchmark contracts.ReturnSeries, tradingDays int) (MarketMetrics, error) {
	if err := checkTradingDays(tradingDays); err != nil {
		return MarketMetrics{}, err
	}

	aligned, err := AlignReturns(subject, benchmark)
	if err != nil {
		return MarketMetrics{}, err
	}

	out := MarketMetrics{
		Beta:         contracts.Undefined(),
		AlphaDaily:   contracts.Undefined(),
		AlphaAnnual:  contracts.Undefined(),
		RSquared:     contracts.Undefined(),
		Observations: aligned.Len(),
	}
	if aligned.Len() < 2 || isConstant(aligned.Benchmark) {
		return out, nil
	}

	alpha, beta := stat.LinearRegression(aligned.Benchmark, aligned.Subject, nil, false)
	out.Beta = contracts.Defined(beta)
	out.AlphaDaily = contracts.Defined(alpha)
	out.AlphaAnnual = contracts.Defined(alpha * float64(tradingDays))

	// 종목 수익률이 상수면 설명할 변동이 없으므로 R² = 0
	if isConstant(aligned.Subject) {
		out.RSquared = contracts.Defined(0)
	} else {
		r := stat.Correlation(aligned.Benchmark, aligned.Subject, nil)
		out.RSquared = contracts.Defined(r * r)
	}
	return out, nil
}
