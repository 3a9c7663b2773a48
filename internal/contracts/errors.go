package contracts

import "errors"

// =============================================================================
// Error taxonomy
// =============================================================================
// ⭐ SSOT: 치명적 오류는 여기 정의된 sentinel로만 표현
// 수치적 퇴화(변동성 0, 낙폭 0)는 오류가 아니라 Undefined Metric

var (
	// ErrEmptyInput an estimator received zero eligible observations
	ErrEmptyInput = errors.New("empty input")

	// ErrInsufficientRange a time-denominated calculation spans no time
	ErrInsufficientRange = errors.New("insufficient time range")

	// ErrInvalidParameter a caller-supplied parameter is outside its domain
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNoOverlap subject and benchmark share no common dates
	ErrNoOverlap = errors.New("no overlapping dates")

	// ErrInvalidSeries the price series violates the input contract
	ErrInvalidSeries = errors.New("invalid price series")
)
