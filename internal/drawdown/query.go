package drawdown

import (
	"sort"

	"github.com/wonny/riskscope/internal/contracts"
)

// =============================================================================
// Episode queries
// =============================================================================
// 정렬은 조회 관심사: Extract 결과 순서는 절대 변경하지 않음 (항상 복사본 정렬)
// 동률은 추출 순서(시간순) 우선

// Highlights the four episodes surfaced in reports
type Highlights struct {
	WorstDrawdown      *contracts.DrawdownEpisode `json:"worst_drawdown"`
	MostRecentDrawdown *contracts.DrawdownEpisode `json:"most_recent_drawdown"`
	WorstRecovery      *contracts.DrawdownEpisode `json:"worst_recovery"`
	MostRecentRecovery *contracts.DrawdownEpisode `json:"most_recent_recovery"`
}

// Summarize picks the highlight episodes; absent ones stay nil
func Summarize(episodes []contracts.DrawdownEpisode) Highlights {
	var h Highlights
	if e, ok := Worst(episodes); ok {
		h.WorstDrawdown = &e
	}
	if e, ok := MostRecent(episodes); ok {
		h.MostRecentDrawdown = &e
	}
	if e, ok := SlowestRecovery(episodes); ok {
		h.WorstRecovery = &e
	}
	if e, ok := MostRecentRecovery(episodes); ok {
		h.MostRecentRecovery = &e
	}
	return h
}

// Worst deepest episode (lowest drawdown pct)
func Worst(episodes []contracts.DrawdownEpisode) (contracts.DrawdownEpisode, bool) {
	return first(TopByDepth(episodes, 1))
}

// SlowestRecovery recovered episode with the longest trough → recovery time
func SlowestRecovery(episodes []contracts.DrawdownEpisode) (contracts.DrawdownEpisode, bool) {
	return first(TopByRecoveryTime(episodes, 1))
}

// MostRecent episode with the latest trough
func MostRecent(episodes []contracts.DrawdownEpisode) (contracts.DrawdownEpisode, bool) {
	return first(RecentByTrough(episodes, 1))
}

// MostRecentRecovery recovered episode with the latest recovery date
func MostRecentRecovery(episodes []contracts.DrawdownEpisode) (contracts.DrawdownEpisode, bool) {
	return first(RecentRecoveries(episodes, 1))
}

// TopByDepth n deepest episodes, deepest first (n ≤ 0 → all)
func TopByDepth(episodes []contracts.DrawdownEpisode, n int) []contracts.DrawdownEpisode {
	return top(episodes, n, func(a, b contracts.DrawdownEpisode) bool {
		return a.DrawdownPct < b.DrawdownPct
	})
}

// TopByRecoveryTime n slowest recovered episodes (ongoing episodes excluded)
func TopByRecoveryTime(episodes []contracts.DrawdownEpisode, n int) []contracts.DrawdownEpisode {
	return top(recovered(episodes), n, func(a, b contracts.DrawdownEpisode) bool {
		da, _ := a.RecoveryTimeDays()
		db, _ := b.RecoveryTimeDays()
		return da > db
	})
}

// RecentByTrough n episodes with the latest troughs, newest first
func RecentByTrough(episodes []contracts.DrawdownEpisode, n int) []contracts.DrawdownEpisode {
	return top(episodes, n, func(a, b contracts.DrawdownEpisode) bool {
		return a.TroughDate.After(b.TroughDate)
	})
}

// RecentRecoveries n latest recoveries, newest first
func RecentRecoveries(episodes []contracts.DrawdownEpisode, n int) []contracts.DrawdownEpisode {
	return top(recovered(episodes), n, func(a, b contracts.DrawdownEpisode) bool {
		ra, _ := a.RecoveryDate()
		rb, _ := b.RecoveryDate()
		return ra.After(rb)
	})
}

func top(episodes []contracts.DrawdownEpisode, n int, less func(a, b contracts.DrawdownEpisode) bool) []contracts.DrawdownEpisode {
	sorted := make([]contracts.DrawdownEpisode, len(episodes))
	copy(sorted, episodes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})

	if n > 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

func recovered(episodes []contracts.DrawdownEpisode) []contracts.DrawdownEpisode {
	out := make([]contracts.DrawdownEpisode, 0, len(episodes))
	for _, e := range episodes {
		if !e.Ongoing() {
			out = append(out, e)
		}
	}
	return out
}

func first(episodes []contracts.DrawdownEpisode) (contracts.DrawdownEpisode, bool) {
	if len(episodes) == 0 {
		return contracts.DrawdownEpisode{}, false
	}
	return episodes[0], true
}
