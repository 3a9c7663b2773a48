package pricedata

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/riskscope/internal/contracts"
)

// Store persists daily closes
type Store interface {
	Load(ctx context.Context, ticker string, from, to time.Time) (contracts.PriceSeries, error)
	Save(ctx context.Context, ticker, source string, series contracts.PriceSeries) error
}

// Repository stores daily closes in market.daily_closes
// ⭐ SSOT: 가격 데이터 저장소는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new price repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Load returns stored closes for ticker over [from, to), ordered by date
func (r *Repository) Load(ctx context.Context, ticker string, from, to time.Time) (contracts.PriceSeries, error) {
	query := `
		SELECT trade_date, close_price
		FROM market.daily_closes
		WHERE ticker = $1 AND trade_date >= $2 AND trade_date < $3
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, ticker, contracts.CivilDate(from), contracts.CivilDate(to))
	if err != nil {
		return nil, fmt.Errorf("query daily closes: %w", err)
	}
	defer rows.Close()

	var points []contracts.PricePoint
	for rows.Next() {
		var p contracts.PricePoint
		if err := rows.Scan(&p.Date, &p.Price); err != nil {
			return nil, fmt.Errorf("scan daily close: %w", err)
		}
		p.Date = contracts.CivilDate(p.Date)
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return contracts.NewPriceSeries(points)
}

// Save upserts every point of series
func (r *Repository) Save(ctx context.Context, ticker, source string, series contracts.PriceSeries) error {
	if series.Len() == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO market.daily_closes (ticker, trade_date, close_price, source, fetched_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (ticker, trade_date) DO UPDATE SET
			close_price = EXCLUDED.close_price,
			source = EXCLUDED.source,
			fetched_at = EXCLUDED.fetched_at`

	for _, p := range series {
		batch.Queue(query, ticker, contracts.CivilDate(p.Date), p.Price, source)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range series {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert daily close: %w", err)
		}
	}
	return nil
}
