package analysis

import (
	"time"

	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/internal/drawdown"
	"github.com/wonny/riskscope/internal/metrics"
)

// Category names, in report order
const (
	CategoryGrowth       = "growth"
	CategoryRisk         = "risk"
	CategoryRiskAdjusted = "risk_adjusted"
	CategoryTailRisk     = "tail_risk"
	CategoryMarket       = "market_sensitivity"
	CategoryStability    = "stability"
	CategorySimulation   = "investment_simulation"
	CategoryDrawdowns    = "drawdown_events"
)

// Categories every category in report order
var Categories = []string{
	CategoryGrowth,
	CategoryRisk,
	CategoryRiskAdjusted,
	CategoryTailRisk,
	CategoryMarket,
	CategoryStability,
	CategorySimulation,
	CategoryDrawdowns,
}

// Report the full analysis snapshot for one ticker and range
// ⭐ SSOT: 캐시/CLI/API 모두 이 구조체를 그대로 직렬화
// A nil category pointer means the category was skipped; the reason is in Skipped.
type Report struct {
	RunID        string    `json:"run_id"`
	Ticker       string    `json:"ticker"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	GeneratedAt  time.Time `json:"generated_at"`
	ProfileHash  string    `json:"profile_hash,omitempty"`
	Params       Params    `json:"params"`
	Observations int       `json:"observations"`
	FirstDate    string    `json:"first_date"`
	LastDate     string    `json:"last_date"`
	Cached       bool      `json:"cached"`

	Growth       *metrics.GrowthMetrics       `json:"growth"`
	Risk         *metrics.RiskMetrics         `json:"risk"`
	RiskAdjusted *metrics.RiskAdjustedMetrics `json:"risk_adjusted"`
	TailRisk     *metrics.TailRiskMetrics     `json:"tail_risk"`
	Market       *metrics.MarketMetrics       `json:"market_sensitivity"`
	Stability    *metrics.StabilityMetrics    `json:"stability"`
	Simulation   *contracts.SimulationResult  `json:"investment_simulation"`
	Drawdowns    *DrawdownReport              `json:"drawdown_events"`

	Skipped map[string]string `json:"skipped,omitempty"`

	// Degraded transient data problems (partial prices, benchmark outage); such reports are not cached
	Degraded []string `json:"degraded,omitempty"`
}

// DrawdownReport extracted episodes plus the highlight selection
type DrawdownReport struct {
	Episodes   []contracts.DrawdownEpisode `json:"episodes"`
	Highlights drawdown.Highlights         `json:"highlights"`
}

// IsSkipped reports whether category was skipped
func (r *Report) IsSkipped(category string) bool {
	_, ok := r.Skipped[category]
	return ok
}
