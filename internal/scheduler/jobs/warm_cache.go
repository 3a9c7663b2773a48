package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/riskscope/internal/analysis"
	"github.com/wonny/riskscope/internal/profile"
	"github.com/wonny/riskscope/pkg/logger"
)

// ErrAllFailed every watchlist entry failed in one run
var ErrAllFailed = errors.New("all watchlist analyses failed")

// defaultWorkers 동시 분석 수 (공급자 rate limit 고려)
const defaultWorkers = 4

// Runner runs one analysis (satisfied by *analysis.Runner)
type Runner interface {
	Run(ctx context.Context, req analysis.Request) (*analysis.Report, error)
}

// WarmSummary outcome of one warm-cache run
type WarmSummary struct {
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    map[string]string `json:"failed,omitempty"`
	Duration  time.Duration     `json:"duration"`
}

// WarmCacheJob recomputes the analysis of every watchlist entry
// ⭐ SSOT: 스냅샷 캐시 예열은 이 Job에서만
// 한 종목 실패는 기록만 하고 계속 진행, 전부 실패하면 Job 실패
type WarmCacheJob struct {
	runner  Runner
	profile *profile.Profile
	logger  *logger.Logger
	workers int
	now     func() time.Time

	mu   sync.Mutex
	last WarmSummary
}

// NewWarmCacheJob creates a new warm-cache job over the profile's watchlist
func NewWarmCacheJob(runner Runner, p *profile.Profile, log *logger.Logger) *WarmCacheJob {
	return &WarmCacheJob{
		runner:  runner,
		profile: p,
		logger:  log,
		workers: defaultWorkers,
		now:     time.Now,
	}
}

// WithWorkers sets the number of concurrent analyses
func (j *WarmCacheJob) WithWorkers(n int) *WarmCacheJob {
	if n > 0 {
		j.workers = n
	}
	return j
}

// Name returns the job name
func (j *WarmCacheJob) Name() string {
	return "warm_cache"
}

// Schedule returns the profile's refresh cron
func (j *WarmCacheJob) Schedule() string {
	return j.profile.Schedule.RefreshCron
}

// LastSummary returns the outcome of the most recent run
func (j *WarmCacheJob) LastSummary() WarmSummary {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.last
}

// Run executes the warm-up
func (j *WarmCacheJob) Run(ctx context.Context) error {
	start := time.Now()
	items := j.profile.Watchlist

	summary := WarmSummary{Total: len(items), Failed: map[string]string{}}
	if len(items) == 0 {
		j.logger.Info("Watchlist is empty, nothing to warm")
		j.store(summary, start)
		return nil
	}

	j.logger.WithFields(map[string]interface{}{
		"tickers": len(items),
		"workers": j.workers,
	}).Info("Starting cache warm-up")

	now := j.now()
	var mu sync.Mutex
	fail := func(ticker string, err error) {
		mu.Lock()
		summary.Failed[ticker] = err.Error()
		mu.Unlock()
		j.logger.WithError(err).WithField("ticker", ticker).Warn("Warm-up analysis failed")
	}

	// 개별 실패가 다른 종목을 취소하지 않도록 errgroup.WithContext 미사용
	var g errgroup.Group
	g.SetLimit(j.workers)

	for _, item := range items {
		item := item
		g.Go(func() error {
			if ctx.Err() != nil {
				fail(item.Ticker, ctx.Err())
				return nil
			}

			from, to, err := item.Range(now)
			if err != nil {
				fail(item.Ticker, err)
				return nil
			}

			report, err := j.runner.Run(ctx, analysis.Request{
				Ticker:    item.Ticker,
				Benchmark: j.profile.BenchmarkFor(item),
				From:      from,
				To:        to,
				Refresh:   true,
			})
			if err != nil {
				fail(item.Ticker, err)
				return nil
			}

			mu.Lock()
			summary.Succeeded++
			mu.Unlock()

			j.logger.WithFields(map[string]interface{}{
				"ticker":  report.Ticker,
				"run_id":  report.RunID,
				"skipped": len(report.Skipped),
			}).Debug("Ticker warmed")
			return nil
		})
	}
	_ = g.Wait()

	j.store(summary, start)

	j.logger.WithFields(map[string]interface{}{
		"total":     summary.Total,
		"succeeded": summary.Succeeded,
		"failed":    len(summary.Failed),
	}).WithDuration("duration", time.Since(start)).Info("Cache warm-up completed")

	if summary.Succeeded == 0 {
		return fmt.Errorf("%w: %d tickers", ErrAllFailed, summary.Total)
	}
	return nil
}

func (j *WarmCacheJob) store(summary WarmSummary, start time.Time) {
	summary.Duration = time.Since(start)
	if len(summary.Failed) == 0 {
		summary.Failed = nil
	}
	j.mu.Lock()
	j.last = summary
	j.mu.Unlock()
}
