package drawdown

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/internal/metrics"
)

func day(i int) time.Time {
	return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func daily(t *testing.T, prices ...float64) contracts.PriceSeries {
	t.Helper()
	points := make([]contracts.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = contracts.PricePoint{Date: day(i), Price: p}
	}
	series, err := contracts.NewPriceSeries(points)
	require.NoError(t, err)
	return series
}

func TestExtract_Scenarios(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   []contracts.DrawdownEpisode
	}{
		{
			name:   "recovered episode",
			prices: []float64{100, 90, 80, 95, 110},
			want: []contracts.DrawdownEpisode{{
				PeakDate: day(0), PeakPrice: 100,
				TroughDate: day(2), TroughPrice: 80,
				Recovery:             contracts.Recovered(day(4), 2),
				DrawdownPct:          -0.2,
				DrawdownDurationDays: 2,
			}},
		},
		{
			name:   "never recovers",
			prices: []float64{100, 90, 80},
			want: []contracts.DrawdownEpisode{{
				PeakDate: day(0), PeakPrice: 100,
				TroughDate: day(2), TroughPrice: 80,
				Recovery:             contracts.Ongoing(),
				DrawdownPct:          -0.2,
				DrawdownDurationDays: 2,
			}},
		},
		{
			name:   "equal price closes the episode",
			prices: []float64{100, 50, 100, 100},
			want: []contracts.DrawdownEpisode{{
				PeakDate: day(0), PeakPrice: 100,
				TroughDate: day(1), TroughPrice: 50,
				Recovery:             contracts.Recovered(day(2), 1),
				DrawdownPct:          -0.5,
				DrawdownDurationDays: 1,
			}},
		},
		{
			name:   "partial bounce keeps the trough",
			prices: []float64{100, 70, 90, 80, 101, 95},
			want: []contracts.DrawdownEpisode{
				{
					PeakDate: day(0), PeakPrice: 100,
					TroughDate: day(1), TroughPrice: 70,
					Recovery:             contracts.Recovered(day(4), 3),
					DrawdownPct:          -0.3,
					DrawdownDurationDays: 1,
				},
				{
					PeakDate: day(4), PeakPrice: 101,
					TroughDate: day(5), TroughPrice: 95,
					Recovery:             contracts.Ongoing(),
					DrawdownPct:          (95.0 - 101.0) / 101.0,
					DrawdownDurationDays: 1,
				},
			},
		},
		{
			name:   "flat series",
			prices: []float64{50, 50, 50},
			want:   []contracts.DrawdownEpisode{},
		},
		{
			name:   "monotonic rise",
			prices: []float64{1, 2, 3, 4},
			want:   []contracts.DrawdownEpisode{},
		},
		{
			name:   "single point",
			prices: []float64{42},
			want:   []contracts.DrawdownEpisode{},
		},
		{
			name:   "empty",
			prices: nil,
			want:   []contracts.DrawdownEpisode{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(daily(t, tt.prices...))
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i].DrawdownPct, got[i].DrawdownPct, 1e-12)
				got[i].DrawdownPct = tt.want[i].DrawdownPct
				assert.Equal(t, tt.want[i], got[i])
			}
		})
	}
}

func TestExtract_CalendarDays(t *testing.T) {
	// 주말을 건너뛰는 거래일 시계열
	prices := contracts.PriceSeries{
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Price: 100}, // Fri
		{Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Price: 90},  // Mon
		{Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Price: 85},
		{Date: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), Price: 100},
	}

	episodes := Extract(prices)
	require.Len(t, episodes, 1)
	assert.Equal(t, 4, episodes[0].DrawdownDurationDays)
	days, ok := episodes[0].RecoveryTimeDays()
	require.True(t, ok)
	assert.Equal(t, 6, days)
}

func TestExtract_Invariants(t *testing.T) {
	for seed := int64(1); seed <= 30; seed++ {
		rng := rand.New(rand.NewSource(seed))
		raw := make([]float64, 250)
		raw[0] = 100
		for i := 1; i < len(raw); i++ {
			raw[i] = raw[i-1] * math.Exp(rng.NormFloat64()*0.02)
		}
		prices := daily(t, raw...)

		episodes := Extract(prices)
		ongoing := 0
		for i, e := range episodes {
			assert.False(t, e.TroughDate.Before(e.PeakDate), "seed %d", seed)
			assert.LessOrEqual(t, e.DrawdownPct, 0.0)
			if date, ok := e.RecoveryDate(); ok {
				assert.False(t, date.Before(e.TroughDate), "seed %d", seed)
			} else {
				ongoing++
				assert.Equal(t, len(episodes)-1, i, "ongoing episode must be last (seed %d)", seed)
			}
			if i > 0 {
				prevEnd, ok := episodes[i-1].RecoveryDate()
				require.True(t, ok)
				assert.False(t, e.PeakDate.Before(prevEnd), "episodes overlap (seed %d)", seed)
			}
		}
		assert.LessOrEqual(t, ongoing, 1)

		// 전 구간 MDD = 가장 깊은 에피소드의 낙폭
		mdd, err := metrics.MaxDrawdown(prices)
		require.NoError(t, err)
		if worst, ok := Worst(episodes); ok {
			assert.InDelta(t, mdd, worst.DrawdownPct, 1e-12, "seed %d", seed)
		} else {
			assert.Equal(t, 0.0, mdd)
		}
	}
}

func TestExtract_FreshStatePerCall(t *testing.T) {
	prices := daily(t, 100, 90, 80, 95, 110, 100)
	first := Extract(prices)
	second := Extract(prices)
	assert.Equal(t, first, second)
}

func TestRecoveryTime_DiffersFromEpisodes(t *testing.T) {
	// 최악 낙폭(-50%)은 빨리 회복, 얕은 낙폭은 오래 걸림
	prices := daily(t, 100, 50, 100, 90, 91, 92, 93, 94, 95, 101)

	global, err := metrics.RecoveryTime(prices)
	require.NoError(t, err)
	days, ok := global.Days()
	require.True(t, ok)
	assert.Equal(t, 1, days)

	slowest, ok := SlowestRecovery(Extract(prices))
	require.True(t, ok)
	slowDays, _ := slowest.RecoveryTimeDays()
	assert.Equal(t, 6, slowDays)
}
