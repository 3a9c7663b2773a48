package contracts

import "time"

// ValuePoint is the simulated capital on one date
type ValuePoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// DatedAmount is an amount observed on a date
type DatedAmount struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

// SimulationResult is the replay of a fixed initial capital through a price series
// ⭐ ValueCurve는 PriceSeries와 같은 인덱스를 공유하지만 독립된 복사본
type SimulationResult struct {
	InitialInvestment float64      `json:"initial_investment"`
	FinalValue        float64      `json:"final_value"`
	MinValue          DatedAmount  `json:"min_value"`
	MaxValue          DatedAmount  `json:"max_value"`
	LargestDailyGain  *DatedAmount `json:"largest_daily_gain"` // nil: 단일 관측치
	LargestDailyLoss  *DatedAmount `json:"largest_daily_loss"`
	ValueCurve        []ValuePoint `json:"value_curve"`
}
