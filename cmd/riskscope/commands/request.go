package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/riskscope/internal/analysis"
	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/internal/profile"
)

// defaultLookback 기간 미지정 시 최근 5년
const defaultLookback = "5y"

// analysisFlags request flags shared by analyze, drawdowns and simulate
type analysisFlags struct {
	start      string
	end        string
	lookback   string
	benchmark  string
	capital    float64
	riskFree   float64
	days       int
	window     int
	confidence float64
	refresh    bool
}

func (f *analysisFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.start, "start", "", "start date YYYY-MM-DD (inclusive)")
	fl.StringVar(&f.end, "end", "", "end date YYYY-MM-DD (exclusive, default: tomorrow)")
	fl.StringVar(&f.lookback, "lookback", "", "lookback instead of --start, e.g. 5y, 18m, 90d (default 5y)")
	fl.StringVar(&f.benchmark, "benchmark", "", "market benchmark ticker (default from profile/config)")
	fl.Float64Var(&f.capital, "capital", 0, "initial investment (default from profile/config)")
	fl.Float64Var(&f.riskFree, "risk-free-rate", 0, "annual risk-free rate as a decimal")
	fl.IntVar(&f.days, "trading-days", 0, "trading days per year")
	fl.IntVar(&f.window, "window", 0, "rolling window in trading days")
	fl.Float64Var(&f.confidence, "confidence", 0, "VaR/CVaR confidence level in (0,1)")
	fl.BoolVar(&f.refresh, "refresh", false, "recompute even when a cached snapshot exists")
}

// request builds the analysis request; rfSet reports whether --risk-free-rate was given
func (f *analysisFlags) request(ticker string, rfSet bool, now time.Time) (analysis.Request, error) {
	if f.start != "" && f.lookback != "" {
		return analysis.Request{}, fmt.Errorf("%w: --start and --lookback are mutually exclusive", contracts.ErrInvalidParameter)
	}

	to := contracts.CivilDate(now).AddDate(0, 0, 1)
	if f.end != "" {
		t, err := time.Parse(contracts.DateLayout, f.end)
		if err != nil {
			return analysis.Request{}, fmt.Errorf("%w: --end must be YYYY-MM-DD", contracts.ErrInvalidParameter)
		}
		to = t
	}

	var from time.Time
	if f.start != "" {
		t, err := time.Parse(contracts.DateLayout, f.start)
		if err != nil {
			return analysis.Request{}, fmt.Errorf("%w: --start must be YYYY-MM-DD", contracts.ErrInvalidParameter)
		}
		from = t
	} else {
		lookback := f.lookback
		if lookback == "" {
			lookback = defaultLookback
		}
		t, err := profile.ApplyLookback(to, lookback)
		if err != nil {
			return analysis.Request{}, fmt.Errorf("%w: %v", contracts.ErrInvalidParameter, err)
		}
		from = t
	}

	req := analysis.Request{
		Ticker:          ticker,
		Benchmark:       f.benchmark,
		From:            from,
		To:              to,
		InitialCapital:  f.capital,
		TradingDays:     f.days,
		RollingWindow:   f.window,
		ConfidenceLevel: f.confidence,
		Refresh:         f.refresh,
	}
	if rfSet {
		rf := f.riskFree
		req.RiskFreeRate = &rf
	}
	return req, nil
}

// runAnalysis bootstraps the stack and runs one analysis for args[0]
func runAnalysis(cmd *cobra.Command, args []string, flags *analysisFlags) (*app, *analysis.Report, error) {
	req, err := flags.request(args[0], cmd.Flags().Changed("risk-free-rate"), time.Now())
	if err != nil {
		return nil, nil, err
	}

	a, err := bootstrap(cmd.Context())
	if err != nil {
		return nil, nil, err
	}

	report, err := a.runner.Run(cmd.Context(), req)
	if err != nil {
		a.close()
		return nil, nil, fmt.Errorf("analyze %s: %w", args[0], err)
	}
	return a, report, nil
}
