package contracts

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// Recovery (tagged variant)
// =============================================================================

// RecoveryStatus tags a Recovery
type RecoveryStatus string

const (
	StatusRecovered RecoveryStatus = "recovered"
	StatusOngoing   RecoveryStatus = "ongoing" // 시계열 종료 시점까지 미회복
)

// Recovery is either Recovered{date, days} or Ongoing
// ⭐ SSOT: "-1 = 미회복" 정수 sentinel 대신 사용
type Recovery struct {
	status RecoveryStatus
	date   time.Time
	days   int
}

// Recovered builds the recovered variant
func Recovered(date time.Time, days int) Recovery {
	return Recovery{status: StatusRecovered, date: date, days: days}
}

// Ongoing builds the unrecovered variant
func Ongoing() Recovery {
	return Recovery{status: StatusOngoing}
}

// Status returns the variant tag
func (r Recovery) Status() RecoveryStatus {
	if r.status == "" {
		return StatusOngoing
	}
	return r.status
}

// IsRecovered reports whether the price regained its peak
func (r Recovery) IsRecovered() bool {
	return r.status == StatusRecovered
}

// Date returns the recovery date when recovered
func (r Recovery) Date() (time.Time, bool) {
	if !r.IsRecovered() {
		return time.Time{}, false
	}
	return r.date, true
}

// Days returns the calendar days from trough to recovery when recovered
func (r Recovery) Days() (int, bool) {
	if !r.IsRecovered() {
		return 0, false
	}
	return r.days, true
}

type recoveryJSON struct {
	Status RecoveryStatus `json:"status"`
	Date   *string        `json:"date"`
	Days   *int           `json:"days"`
}

// MarshalJSON encodes {"status","date","days"} with nulls for Ongoing
func (r Recovery) MarshalJSON() ([]byte, error) {
	out := recoveryJSON{Status: r.Status()}
	if r.IsRecovered() {
		d := r.date.Format(DateLayout)
		days := r.days
		out.Date = &d
		out.Days = &days
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON
func (r *Recovery) UnmarshalJSON(data []byte) error {
	var in recoveryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	switch in.Status {
	case StatusRecovered:
		if in.Date == nil || in.Days == nil {
			return fmt.Errorf("recovered status requires date and days")
		}
		date, err := time.Parse(DateLayout, *in.Date)
		if err != nil {
			return fmt.Errorf("parse recovery date: %w", err)
		}
		*r = Recovered(date, *in.Days)
	case StatusOngoing, "":
		*r = Ongoing()
	default:
		return fmt.Errorf("unknown recovery status %q", in.Status)
	}
	return nil
}

// =============================================================================
// DrawdownEpisode
// =============================================================================

// DrawdownEpisode is one contiguous underwater interval
// peak → trough → recovery (또는 진행 중)
type DrawdownEpisode struct {
	PeakDate             time.Time
	PeakPrice            float64
	TroughDate           time.Time
	TroughPrice          float64
	Recovery             Recovery
	DrawdownPct          float64 // (trough - peak) / peak, ≤ 0
	DrawdownDurationDays int     // trough - peak, calendar days
}

// RecoveryDate returns the first date the price regained the peak
func (e DrawdownEpisode) RecoveryDate() (time.Time, bool) {
	return e.Recovery.Date()
}

// RecoveryTimeDays returns calendar days from trough to recovery
func (e DrawdownEpisode) RecoveryTimeDays() (int, bool) {
	return e.Recovery.Days()
}

// Ongoing reports whether the series ended still underwater
func (e DrawdownEpisode) Ongoing() bool {
	return !e.Recovery.IsRecovered()
}

type episodeJSON struct {
	PeakDate             string  `json:"peak_date"`
	PeakPrice            float64 `json:"peak_price"`
	TroughDate           string  `json:"trough_date"`
	TroughPrice          float64 `json:"trough_price"`
	RecoveryDate         *string `json:"recovery_date"`
	DrawdownPct          float64 `json:"drawdown_pct"`
	DrawdownDurationDays int     `json:"drawdown_duration_days"`
	RecoveryTimeDays     *int    `json:"recovery_time_days"`
}

// MarshalJSON flattens the episode; recovery fields are null when ongoing
func (e DrawdownEpisode) MarshalJSON() ([]byte, error) {
	out := episodeJSON{
		PeakDate:             e.PeakDate.Format(DateLayout),
		PeakPrice:            e.PeakPrice,
		TroughDate:           e.TroughDate.Format(DateLayout),
		TroughPrice:          e.TroughPrice,
		DrawdownPct:          e.DrawdownPct,
		DrawdownDurationDays: e.DrawdownDurationDays,
	}
	if date, ok := e.RecoveryDate(); ok {
		d := date.Format(DateLayout)
		out.RecoveryDate = &d
	}
	if days, ok := e.RecoveryTimeDays(); ok {
		out.RecoveryTimeDays = &days
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON
func (e *DrawdownEpisode) UnmarshalJSON(data []byte) error {
	var in episodeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	peak, err := time.Parse(DateLayout, in.PeakDate)
	if err != nil {
		return fmt.Errorf("parse peak_date: %w", err)
	}
	trough, err := time.Parse(DateLayout, in.TroughDate)
	if err != nil {
		return fmt.Errorf("parse trough_date: %w", err)
	}

	recovery := Ongoing()
	if in.RecoveryDate != nil {
		date, err := time.Parse(DateLayout, *in.RecoveryDate)
		if err != nil {
			return fmt.Errorf("parse recovery_date: %w", err)
		}
		days := DaysBetween(trough, date)
		if in.RecoveryTimeDays != nil {
			days = *in.RecoveryTimeDays
		}
		recovery = Recovered(date, days)
	}

	*e = DrawdownEpisode{
		PeakDate:             peak,
		PeakPrice:            in.PeakPrice,
		TroughDate:           trough,
		TroughPrice:          in.TroughPrice,
		Recovery:             recovery,
		DrawdownPct:          in.DrawdownPct,
		DrawdownDurationDays: in.DrawdownDurationDays,
	}
	return nil
}
