package contracts

import (
	"fmt"
	"time"
)

// PricePoint is one trading-session observation
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// PriceSeries is an ordered daily price history for one ticker
// ⭐ SSOT: 모든 estimator 입력은 이 타입으로 통일
// Dates are strictly increasing and prices are positive. Treat it as
// read-only once built.
type PriceSeries []PricePoint

// NewPriceSeries validates points and returns them as a PriceSeries
// 입력 계약 위반(정렬/중복/음수 가격)은 ErrInvalidSeries
func NewPriceSeries(points []PricePoint) (PriceSeries, error) {
	for i, p := range points {
		if !(p.Price > 0) {
			return nil, fmt.Errorf("%w: non-positive price %v at %s",
				ErrInvalidSeries, p.Price, p.Date.Format(DateLayout))
		}
		if i > 0 && !p.Date.After(points[i-1].Date) {
			return nil, fmt.Errorf("%w: dates not strictly increasing at %s",
				ErrInvalidSeries, p.Date.Format(DateLayout))
		}
	}

	series := make(PriceSeries, len(points))
	copy(series, points)
	return series, nil
}

// Len returns the number of observations
func (s PriceSeries) Len() int {
	return len(s)
}

// Prices returns a copy of the price column
func (s PriceSeries) Prices() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Price
	}
	return out
}

// First returns the first observation
func (s PriceSeries) First() PricePoint {
	return s[0]
}

// Last returns the last observation
func (s PriceSeries) Last() PricePoint {
	return s[len(s)-1]
}

// ReturnPoint is the return realised on Date relative to the previous session
type ReturnPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// ReturnSeries is derived from a PriceSeries, one point shorter
type ReturnSeries []ReturnPoint

// Values returns a copy of the return column
func (s ReturnSeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, r := range s {
		out[i] = r.Value
	}
	return out
}

// DatedValue is a generic per-date signal value
type DatedValue struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// DateLayout is the calendar-date format used across reports
const DateLayout = "2006-01-02"

// CivilDate truncates t to its calendar date in its own location, expressed in UTC
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b
// 시간대/DST 영향을 피하기 위해 달력 날짜 기준으로 계산
func DaysBetween(a, b time.Time) int {
	return int(CivilDate(b).Sub(CivilDate(a)).Hours() / 24)
}
