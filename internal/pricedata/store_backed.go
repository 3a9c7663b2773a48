package pricedata

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/pkg/logger"
)

const (
	// coverageSlackDays tolerated gap at either end of a stored range (holidays, weekends)
	coverageSlackDays = 5
	// maxGapDays longest calendar gap between neighbouring stored closes (추석/설 연휴 포함)
	maxGapDays = 10
)

// StoreBacked serves closes from the price store when it covers the range,
// otherwise fetches remotely and persists the result.
// A remote failure falls back to whatever the store has, flagged with ErrPartial.
type StoreBacked struct {
	remote Provider
	store  Store
	logger *logger.Logger
	now    func() time.Time
}

// NewStoreBacked creates a store-backed provider; a nil store disables persistence
func NewStoreBacked(remote Provider, store Store, log *logger.Logger) *StoreBacked {
	return &StoreBacked{
		remote: remote,
		store:  store,
		logger: log,
		now:    time.Now,
	}
}

// Name implements Provider
func (s *StoreBacked) Name() string {
	return s.remote.Name()
}

// FetchPrices implements Provider
func (s *StoreBacked) FetchPrices(ctx context.Context, ticker string, from, to time.Time) (contracts.PriceSeries, error) {
	var stored contracts.PriceSeries
	if s.store != nil {
		var err error
		stored, err = s.store.Load(ctx, ticker, from, to)
		if err != nil {
			s.logger.WithError(err).WithField("ticker", ticker).Warn("Price store read failed")
			stored = nil
		} else if s.covers(stored, from, to) {
			s.logger.WithFields(map[string]interface{}{
				"ticker": ticker,
				"count":  stored.Len(),
			}).Debug("Serving prices from store")
			return stored, nil
		}
	}

	series, err := s.remote.FetchPrices(ctx, ticker, from, to)
	if err != nil {
		if stored.Len() > 0 && !IsNotFound(err) {
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"ticker": ticker,
				"count":  stored.Len(),
			}).Warn("Remote fetch failed, serving partial stored prices")
			return stored, fmt.Errorf("%w: %d stored closes for %s: %w", ErrPartial, stored.Len(), ticker, err)
		}
		return nil, err
	}

	if s.store != nil {
		if err := s.store.Save(ctx, ticker, s.remote.Name(), series); err != nil {
			s.logger.WithError(err).WithField("ticker", ticker).Warn("Price store write failed")
		}
	}
	return series, nil
}

// covers reports whether stored spans [from, to) up to coverageSlackDays at each end
// with no hole longer than maxGapDays in between
// 미래 날짜가 포함된 구간은 내일까지만 비교
func (s *StoreBacked) covers(stored contracts.PriceSeries, from, to time.Time) bool {
	if stored.Len() == 0 {
		return false
	}
	for i := 1; i < stored.Len(); i++ {
		if contracts.DaysBetween(stored[i-1].Date, stored[i].Date) > maxGapDays {
			return false
		}
	}

	end := contracts.CivilDate(to)
	if tomorrow := contracts.CivilDate(s.now()).AddDate(0, 0, 1); end.After(tomorrow) {
		end = tomorrow
	}
	lastWanted := end.AddDate(0, 0, -1)

	return contracts.DaysBetween(from, stored.First().Date) <= coverageSlackDays &&
		contracts.DaysBetween(stored.Last().Date, lastWanted) <= coverageSlackDays
}
