package profile

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/riskscope/internal/contracts"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validate checks every field; the first violation is returned
func Validate(p *Profile) error {
	// === Meta ===
	if p.Meta.ProfileID == "" {
		return ValidationError{"meta.profile_id", "required"}
	}

	// === Analysis ===
	a := p.Analysis
	if strings.TrimSpace(a.Benchmark) == "" {
		return ValidationError{"analysis.benchmark", "required"}
	}
	if !(a.InitialCapital > 0) {
		return ValidationError{"analysis.initial_capital", "must be > 0"}
	}
	if a.TradingDays < 1 {
		return ValidationError{"analysis.trading_days", "must be >= 1"}
	}
	if a.RollingWindow < 1 {
		return ValidationError{"analysis.rolling_window", "must be >= 1"}
	}
	if !(a.ConfidenceLevel > 0 && a.ConfidenceLevel < 1) {
		return ValidationError{"analysis.confidence_level", "must be in (0, 1)"}
	}
	if a.RiskFreeRate < -1 || a.RiskFreeRate > 1 {
		return ValidationError{"analysis.risk_free_rate", "must be an annual decimal rate in [-1, 1]"}
	}

	// === Watchlist ===
	seen := make(map[string]bool, len(p.Watchlist))
	for i, item := range p.Watchlist {
		field := fmt.Sprintf("watchlist[%d]", i)
		if strings.TrimSpace(item.Ticker) == "" {
			return ValidationError{field + ".ticker", "required"}
		}
		key := strings.ToUpper(item.Ticker)
		if seen[key] {
			return ValidationError{field + ".ticker", "duplicate ticker " + item.Ticker}
		}
		seen[key] = true

		if err := validateRange(item); err != nil {
			return ValidationError{field, err.Error()}
		}
	}

	// === Schedule ===
	if _, err := cronParser.Parse(p.Schedule.RefreshCron); err != nil {
		return ValidationError{"schedule.refresh_cron", err.Error()}
	}

	return nil
}

func validateRange(item WatchItem) error {
	hasLookback := item.Lookback != ""
	hasStart := item.Start != ""
	if hasLookback == hasStart {
		return fmt.Errorf("exactly one of lookback or start is required")
	}
	if hasLookback {
		if item.End != "" {
			return fmt.Errorf("end cannot be combined with lookback")
		}
		_, err := ApplyLookback(time.Now(), item.Lookback)
		return err
	}

	start, err := time.Parse(contracts.DateLayout, item.Start)
	if err != nil {
		return fmt.Errorf("start must be YYYY-MM-DD")
	}
	if item.End != "" {
		end, err := time.Parse(contracts.DateLayout, item.End)
		if err != nil {
			return fmt.Errorf("end must be YYYY-MM-DD")
		}
		if !start.Before(end) {
			return fmt.Errorf("start must be before end")
		}
	}
	return nil
}
