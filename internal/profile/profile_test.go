package profile

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskscope/pkg/config"
)

const validYAML = `
meta:
  profile_id: test
  version: "1"
analysis:
  benchmark: "^GSPC"
  initial_capital: 100000
  risk_free_rate: 0.02
  trading_days: 252
  rolling_window: 30
  confidence_level: 0.95
watchlist:
  - ticker: AAPL
    lookback: 5y
  - ticker: "005930"
    benchmark: "^KS11"
    start: "2020-01-01"
    end: "2024-01-01"
schedule:
  refresh_cron: "0 30 7 * * 1-5"
`

func TestLoadRepositoryProfile(t *testing.T) {
	path := "../../config/profile.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("profile file not found")
	}

	p, data, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, "default", p.Meta.ProfileID)
	assert.NotEmpty(t, p.Watchlist)
}

func TestParse(t *testing.T) {
	p, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, "test", p.Meta.ProfileID)
	assert.Equal(t, 0.02, p.Analysis.RiskFreeRate)
	require.Len(t, p.Watchlist, 2)
	assert.Equal(t, "^GSPC", p.BenchmarkFor(p.Watchlist[0]))
	assert.Equal(t, "^KS11", p.BenchmarkFor(p.Watchlist[1]))
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte(validYAML + "\nextra_field: true\n"))
	require.Error(t, err, "KnownFields must reject typos")
}

func TestParse_DefaultCron(t *testing.T) {
	p, err := Parse([]byte(`
meta: {profile_id: x}
analysis: {benchmark: SPY, initial_capital: 1000, trading_days: 252, rolling_window: 20, confidence_level: 0.99}
`))
	require.NoError(t, err)
	assert.Equal(t, DefaultRefreshCron, p.Schedule.RefreshCron)
	assert.Empty(t, p.Watchlist)
}

func TestValidate(t *testing.T) {
	valid := func() *Profile {
		p, err := Parse([]byte(validYAML))
		require.NoError(t, err)
		return p
	}

	tests := []struct {
		name   string
		mutate func(p *Profile)
		field  string
	}{
		{"missing id", func(p *Profile) { p.Meta.ProfileID = "" }, "meta.profile_id"},
		{"missing benchmark", func(p *Profile) { p.Analysis.Benchmark = " " }, "analysis.benchmark"},
		{"zero capital", func(p *Profile) { p.Analysis.InitialCapital = 0 }, "analysis.initial_capital"},
		{"zero trading days", func(p *Profile) { p.Analysis.TradingDays = 0 }, "analysis.trading_days"},
		{"zero window", func(p *Profile) { p.Analysis.RollingWindow = 0 }, "analysis.rolling_window"},
		{"confidence 1", func(p *Profile) { p.Analysis.ConfidenceLevel = 1 }, "analysis.confidence_level"},
		{"rate in percent", func(p *Profile) { p.Analysis.RiskFreeRate = 4.5 }, "analysis.risk_free_rate"},
		{"empty ticker", func(p *Profile) { p.Watchlist[0].Ticker = "" }, "watchlist[0].ticker"},
		{"duplicate ticker", func(p *Profile) { p.Watchlist[1].Ticker = "aapl" }, "watchlist[1].ticker"},
		{"both lookback and start", func(p *Profile) { p.Watchlist[0].Start = "2020-01-01" }, "watchlist[0]"},
		{"neither lookback nor start", func(p *Profile) { p.Watchlist[0].Lookback = "" }, "watchlist[0]"},
		{"bad lookback", func(p *Profile) { p.Watchlist[0].Lookback = "5w" }, "watchlist[0]"},
		{"inverted range", func(p *Profile) { p.Watchlist[1].End = "2019-01-01" }, "watchlist[1]"},
		{"bad cron", func(p *Profile) { p.Schedule.RefreshCron = "every day" }, "schedule.refresh_cron"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(p)

			err := Validate(p)
			require.Error(t, err)

			var verr ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestHash(t *testing.T) {
	p, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	hash, err := Hash(p)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	// 동일 설정 → 동일 해시
	hash2, _ := Hash(p)
	assert.Equal(t, hash, hash2)

	p.Analysis.RollingWindow = 60
	hash3, _ := Hash(p)
	assert.NotEqual(t, hash, hash3)
}

func TestWatchItemRange(t *testing.T) {
	now := time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		item     WatchItem
		wantFrom string
		wantTo   string
	}{
		{"years", WatchItem{Lookback: "5y"}, "2019-06-16", "2024-06-16"},
		{"months", WatchItem{Lookback: "18m"}, "2022-12-16", "2024-06-16"},
		{"days", WatchItem{Lookback: "90d"}, "2024-03-18", "2024-06-16"},
		{"explicit", WatchItem{Start: "2020-01-01", End: "2024-01-01"}, "2020-01-01", "2024-01-01"},
		{"open end", WatchItem{Start: "2020-01-01"}, "2020-01-01", "2024-06-16"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, err := tt.item.Range(now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, from.Format("2006-01-02"))
			assert.Equal(t, tt.wantTo, to.Format("2006-01-02"))
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := &config.Config{Analysis: config.AnalysisConfig{
		Benchmark:       "^GSPC",
		InitialCapital:  100000,
		TradingDays:     252,
		RollingWindow:   30,
		ConfidenceLevel: 0.95,
	}}

	p := Default(cfg)
	require.NoError(t, Validate(p))
	assert.Empty(t, p.Watchlist)
}
