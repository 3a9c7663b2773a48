package analysis

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/wonny/riskscope/internal/contracts"
)

// Display strings for absent values
const (
	notRecovered = "Not yet recovered"
	ongoing      = "Ongoing"
	undefined    = "undefined"
	notAvailable = "n/a"
)

// Field one formatted key/value
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Section one formatted category
// 필드 순서 보존: 텍스트 출력은 이 순서를 그대로 따름
type Section struct {
	Category string  `json:"category"`
	Title    string  `json:"title"`
	Fields   []Field `json:"fields"`
}

// Map returns the section as a key → value map
func (s Section) Map() map[string]string {
	out := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		out[f.Key] = f.Value
	}
	return out
}

func (s *Section) add(key, value string) {
	s.Fields = append(s.Fields, Field{Key: key, Value: value})
}

// Format renders every metric category of a report for display
// Skipped categories yield a single "skipped" field with the reason.
func Format(r *Report) []Section {
	sections := []Section{
		formatGrowth(r),
		formatRisk(r),
		formatRiskAdjusted(r),
		formatTailRisk(r),
		formatMarket(r),
		formatStability(r),
		formatSimulation(r),
	}
	return sections
}

// FormatMap is Format keyed by category
func FormatMap(r *Report) map[string]map[string]string {
	out := make(map[string]map[string]string)
	for _, s := range Format(r) {
		out[s.Category] = s.Map()
	}
	for name, fields := range FormatDrawdowns(r) {
		out[CategoryDrawdowns+"."+name] = fields
	}
	return out
}

func skippedSection(r *Report, category, title string) (Section, bool) {
	s := Section{Category: category, Title: title}
	if reason, ok := r.Skipped[category]; ok {
		s.add("skipped", reason)
		return s, true
	}
	return s, false
}

func formatGrowth(r *Report) Section {
	s, skipped := skippedSection(r, CategoryGrowth, "Growth Metrics")
	if skipped || r.Growth == nil {
		return s
	}
	s.add("total_return", pct(r.Growth.TotalReturn))
	s.add("cagr", pctMetric(r.Growth.CAGR))
	return s
}

func formatRisk(r *Report) Section {
	s, skipped := skippedSection(r, CategoryRisk, "Risk Metrics")
	if skipped || r.Risk == nil {
		return s
	}
	s.add("annualized_volatility", pctMetric(r.Risk.AnnualizedVolatility))
	s.add("downside_volatility", pctMetric(r.Risk.DownsideVolatility))
	s.add("max_drawdown", pct(r.Risk.MaxDrawdown))
	s.add("rolling_window_days", strconv.Itoa(r.Params.RollingWindow))
	return s
}

func formatRiskAdjusted(r *Report) Section {
	s, skipped := skippedSection(r, CategoryRiskAdjusted, "Risk-Adjusted Metrics")
	if skipped || r.RiskAdjusted == nil {
		return s
	}
	s.add("sharpe_ratio", ratioMetric(r.RiskAdjusted.Sharpe))
	s.add("sortino_ratio", ratioMetric(r.RiskAdjusted.Sortino))
	s.add("calmar_ratio", ratioMetric(r.RiskAdjusted.Calmar))
	s.add("rolling_window_days", strconv.Itoa(r.Params.RollingWindow))
	return s
}

func formatTailRisk(r *Report) Section {
	s, skipped := skippedSection(r, CategoryTailRisk, "Tail Risk Metrics")
	if skipped || r.TailRisk == nil {
		return s
	}
	s.add("skewness", ratioMetric(r.TailRisk.Skewness))
	s.add("kurtosis_excess", ratioMetric(r.TailRisk.KurtosisExcess))
	s.add("value_at_risk", pct(r.TailRisk.ValueAtRisk))
	s.add("conditional_value_at_risk", pct(r.TailRisk.ConditionalValueAtRisk))
	s.add("confidence_level", confidence(r.TailRisk.ConfidenceLevel))
	return s
}

func formatMarket(r *Report) Section {
	s, skipped := skippedSection(r, CategoryMarket, "Market Sensitivity Metrics")
	if skipped || r.Market == nil {
		return s
	}
	s.add("beta", ratioMetric(r.Market.Beta))
	s.add("alpha_annual", pctMetric(r.Market.AlphaAnnual))
	s.add("r_squared", ratioMetric(r.Market.RSquared))
	s.add("market_ticker", r.Params.Benchmark)
	s.add("observations", strconv.Itoa(r.Market.Observations))
	return s
}

func formatStability(r *Report) Section {
	s, skipped := skippedSection(r, CategoryStability, "Stability Metrics")
	if skipped || r.Stability == nil {
		return s
	}
	st := r.Stability
	s.add("max_drawdown_duration_days", strconv.Itoa(st.MaxDrawdownDuration))
	if days, ok := st.RecoveryTime.Days(); ok {
		s.add("recovery_time_days", strconv.Itoa(days))
	} else {
		s.add("recovery_time_days", ongoing)
	}
	s.add("rolling_window_days", strconv.Itoa(st.RollingSharpe.Window))
	s.add("rolling_sharpe_mean", ratioMetric(st.RollingSharpe.Mean))
	s.add("rolling_sharpe_min", ratioMetric(st.RollingSharpe.Min))
	s.add("rolling_sharpe_max", ratioMetric(st.RollingSharpe.Max))
	return s
}

func formatSimulation(r *Report) Section {
	s, skipped := skippedSection(r, CategorySimulation, "Investment Simulation")
	if skipped || r.Simulation == nil {
		return s
	}
	sim := r.Simulation
	s.add("initial_investment", money(sim.InitialInvestment))
	s.add("final_value", money(sim.FinalValue))
	s.add("lowest_value", money(sim.MinValue.Amount))
	s.add("lowest_value_date", date(sim.MinValue.Date))
	s.add("highest_value", money(sim.MaxValue.Amount))
	s.add("highest_value_date", date(sim.MaxValue.Date))
	addDatedAmount(&s, "largest_daily_gain", sim.LargestDailyGain)
	addDatedAmount(&s, "largest_daily_loss", sim.LargestDailyLoss)
	return s
}

func addDatedAmount(s *Section, key string, v *contracts.DatedAmount) {
	if v == nil {
		s.add(key, notAvailable)
		s.add(key+"_date", notAvailable)
		return
	}
	s.add(key, money(v.Amount))
	s.add(key+"_date", date(v.Date))
}

// FormatDrawdowns renders the four highlight episodes
// 해당 에피소드가 없으면 키 자체를 생략
func FormatDrawdowns(r *Report) map[string]map[string]string {
	out := make(map[string]map[string]string)
	if r.Drawdowns == nil {
		return out
	}
	h := r.Drawdowns.Highlights
	for _, item := range []struct {
		name    string
		episode *contracts.DrawdownEpisode
	}{
		{"worst_drawdown", h.WorstDrawdown},
		{"most_recent_drawdown", h.MostRecentDrawdown},
		{"worst_recovery", h.WorstRecovery},
		{"most_recent_recovery", h.MostRecentRecovery},
	} {
		if item.episode != nil {
			out[item.name] = FormatEpisode(*item.episode).Map()
		}
	}
	return out
}

// FormatEpisode renders one drawdown episode
func FormatEpisode(e contracts.DrawdownEpisode) Section {
	s := Section{Category: CategoryDrawdowns}
	s.add("peak_date", date(e.PeakDate))
	s.add("trough_date", date(e.TroughDate))
	if d, ok := e.RecoveryDate(); ok {
		s.add("recovery_date", date(d))
	} else {
		s.add("recovery_date", notRecovered)
	}
	s.add("drawdown_percent", pct(e.DrawdownPct))
	s.add("drawdown_duration_days", strconv.Itoa(e.DrawdownDurationDays))
	if days, ok := e.RecoveryTimeDays(); ok {
		s.add("recovery_time_days", strconv.Itoa(days))
	} else {
		s.add("recovery_time_days", ongoing)
	}
	return s
}

// =============================================================================
// Value formatting
// =============================================================================

// pct fraction → "12.34%"
func pct(x float64) string {
	return fmt.Sprintf("%.2f%%", x*100)
}

func pctMetric(m contracts.Metric) string {
	if v, ok := m.Get(); ok {
		return pct(v)
	}
	return undefined
}

func ratioMetric(m contracts.Metric) string {
	if v, ok := m.Get(); ok {
		return fmt.Sprintf("%.2f", v)
	}
	return undefined
}

func money(x float64) string {
	return fmt.Sprintf("%.2f", x)
}

func date(t time.Time) string {
	return t.Format(contracts.DateLayout)
}

// confidence 0.95 → "95%", 0.975 → "97.5%"
func confidence(level float64) string {
	return strconv.FormatFloat(math.Round(level*10000)/100, 'f', -1, 64) + "%"
}
