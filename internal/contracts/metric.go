package contracts

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Metric is a numeric result that may be undefined
// ⭐ SSOT: NaN sentinel 대신 명시적 optional 사용
// An undefined Metric marks a degenerate-but-valid input (flat prices, no
// drawdown). Callers must go through Get to read the value.
type Metric struct {
	value float64
	ok    bool
}

// Defined wraps x. NaN and ±Inf collapse to Undefined.
func Defined(x float64) Metric {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Metric{}
	}
	return Metric{value: x, ok: true}
}

// Undefined returns the empty Metric
func Undefined() Metric {
	return Metric{}
}

// Get returns the value and whether it is defined
func (m Metric) Get() (float64, bool) {
	return m.value, m.ok
}

// Valid reports whether the metric is defined
func (m Metric) Valid() bool {
	return m.ok
}

// Or returns the value, or fallback when undefined
func (m Metric) Or(fallback float64) float64 {
	if !m.ok {
		return fallback
	}
	return m.value
}

// String renders the value with full precision, or "undefined"
func (m Metric) String() string {
	if !m.ok {
		return "undefined"
	}
	return strconv.FormatFloat(m.value, 'g', -1, 64)
}

// MarshalJSON encodes undefined as null
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.ok {
		return []byte("null"), nil
	}
	return json.Marshal(m.value)
}

// UnmarshalJSON decodes null as undefined
func (m *Metric) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = Metric{}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Defined(v)
	return nil
}
