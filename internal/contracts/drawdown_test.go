package contracts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecovery(t *testing.T) {
	r := Recovered(day(4), 2)
	assert.True(t, r.IsRecovered())
	assert.Equal(t, StatusRecovered, r.Status())

	date, ok := r.Date()
	assert.True(t, ok)
	assert.Equal(t, day(4), date)

	days, ok := r.Days()
	assert.True(t, ok)
	assert.Equal(t, 2, days)

	o := Ongoing()
	assert.False(t, o.IsRecovered())
	_, ok = o.Days()
	assert.False(t, ok)
	_, ok = o.Date()
	assert.False(t, ok)

	// zero value is ongoing
	var zero Recovery
	assert.Equal(t, StatusOngoing, zero.Status())
}

func TestRecovery_JSON(t *testing.T) {
	tests := []struct {
		name string
		in   Recovery
		want string
	}{
		{"recovered", Recovered(day(4), 2), `{"status":"recovered","date":"2024-01-05","days":2}`},
		{"ongoing", Ongoing(), `{"status":"ongoing","date":null,"days":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))

			var back Recovery
			require.NoError(t, json.Unmarshal(raw, &back))
			assert.Equal(t, tt.in, back)
		})
	}
}

func TestRecovery_UnmarshalRejectsBadInput(t *testing.T) {
	var r Recovery
	assert.Error(t, json.Unmarshal([]byte(`{"status":"recovered"}`), &r))
	assert.Error(t, json.Unmarshal([]byte(`{"status":"healed"}`), &r))
}

func TestDrawdownEpisode_JSON(t *testing.T) {
	closed := DrawdownEpisode{
		PeakDate:             day(0),
		PeakPrice:            100,
		TroughDate:           day(2),
		TroughPrice:          80,
		Recovery:             Recovered(day(4), 2),
		DrawdownPct:          -0.2,
		DrawdownDurationDays: 2,
	}

	raw, err := json.Marshal(closed)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"peak_date":"2024-01-01","peak_price":100,
		"trough_date":"2024-01-03","trough_price":80,
		"recovery_date":"2024-01-05",
		"drawdown_pct":-0.2,"drawdown_duration_days":2,
		"recovery_time_days":2
	}`, string(raw))

	var back DrawdownEpisode
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, closed, back)

	open := closed
	open.Recovery = Ongoing()
	assert.True(t, open.Ongoing())

	raw, err = json.Marshal(open)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Nil(t, fields["recovery_date"])
	assert.Nil(t, fields["recovery_time_days"])

	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.Ongoing())
}
