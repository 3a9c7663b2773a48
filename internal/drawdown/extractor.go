// Package drawdown segments a price history into drawdown/recovery episodes.
//
// ⭐ SSOT: 에피소드 추출은 Extract 한 곳에서만 (단일 패스 상태 머신)
package drawdown

import (
	"time"

	"github.com/wonny/riskscope/internal/contracts"
)

// state of the extractor automaton
type state int

const (
	atPeak     state = iota // 고점 또는 고점 이상
	inDrawdown              // 고점 아래 (underwater)
)

// machine carries the accumulator of one Extract call
// 호출마다 새로 생성되며 외부로 노출되지 않음
type machine struct {
	state       state
	peakPrice   float64
	peakDate    time.Time
	troughPrice float64
	troughDate  time.Time
	episodes    []contracts.DrawdownEpisode
}

func newMachine(first contracts.PricePoint) *machine {
	m := &machine{state: atPeak}
	m.resetPeak(first)
	return m
}

// step applies the transition for one observation
// price ≥ peak → 회복 (같은 가격도 회복으로 간주)
// price < peak → underwater, trough는 더 낮은 가격으로만 이동
func (m *machine) step(p contracts.PricePoint) {
	if p.Price >= m.peakPrice {
		if m.state == inDrawdown {
			m.emit(contracts.Recovered(p.Date, contracts.DaysBetween(m.troughDate, p.Date)))
		}
		m.resetPeak(p)
		m.state = atPeak
		return
	}

	m.state = inDrawdown
	if p.Price < m.troughPrice {
		m.troughPrice = p.Price
		m.troughDate = p.Date
	}
}

// finish closes an episode still open at the end of the scan
func (m *machine) finish() []contracts.DrawdownEpisode {
	if m.state == inDrawdown {
		m.emit(contracts.Ongoing())
	}
	return m.episodes
}

func (m *machine) resetPeak(p contracts.PricePoint) {
	m.peakPrice = p.Price
	m.peakDate = p.Date
	m.troughPrice = p.Price
	m.troughDate = p.Date
}

// emit records the open episode against the old peak
func (m *machine) emit(recovery contracts.Recovery) {
	m.episodes = append(m.episodes, contracts.DrawdownEpisode{
		PeakDate:             m.peakDate,
		PeakPrice:            m.peakPrice,
		TroughDate:           m.troughDate,
		TroughPrice:          m.troughPrice,
		Recovery:             recovery,
		DrawdownPct:          (m.troughPrice - m.peakPrice) / m.peakPrice,
		DrawdownDurationDays: contracts.DaysBetween(m.peakDate, m.troughDate),
	})
}

// Extract scans prices once and returns episodes ordered by peak date
// 빈 시계열/단일 관측치 → 에피소드 없음 (오류 아님)
// 미회복 에피소드는 최대 1개이며 항상 마지막
func Extract(prices contracts.PriceSeries) []contracts.DrawdownEpisode {
	if len(prices) < 2 {
		return []contracts.DrawdownEpisode{}
	}

	m := newMachine(prices[0])
	for _, p := range prices[1:] {
		m.step(p)
	}

	episodes := m.finish()
	if episodes == nil {
		return []contracts.DrawdownEpisode{}
	}
	return episodes
}
