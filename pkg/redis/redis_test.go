package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	"github.com/wonny/riskscope/pkg/config"
)

type snapshot struct {
	Ticker string  `json:"ticker"`
	Value  float64 `json:"value"`
}

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Enabled: false,
		},
	}

	client, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if client.Enabled() {
		t.Error("Expected client to be disabled")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(Disabled(), "test")

	// When Redis is disabled, all requests should be allowed
	allowed, remaining, err := limiter.Allow(context.Background(), YahooRateLimit)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Error("Expected request to be allowed when Redis disabled")
	}
	if remaining != YahooRateLimit.Limit {
		t.Errorf("Expected remaining = %d, got %d", YahooRateLimit.Limit, remaining)
	}
	if err := limiter.Wait(context.Background(), NaverRateLimit); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(Disabled(), "test")
	ctx := context.Background()

	// When Redis is disabled, cache operations should be no-ops
	var result snapshot
	found, err := cache.Get(ctx, "key", &result)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Expected cache miss when Redis disabled")
	}
	if err := cache.Set(ctx, "key", snapshot{Ticker: "X"}, time.Minute); err != nil {
		t.Errorf("Set() error = %v", err)
	}
}

func TestCache_WithRedis(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewCache(Wrap(db), "riskscope")
	ctx := context.Background()
	key := AnalysisKey("aapl", "2020-01-01", "2024-12-31", 100000)
	fullKey := "riskscope:cache:" + key

	t.Run("miss", func(t *testing.T) {
		mock.ExpectGet(fullKey).RedisNil()

		var got snapshot
		found, err := cache.Get(ctx, key, &got)
		if err != nil {
			t.Fatalf("Get should not fail on miss: %v", err)
		}
		if found {
			t.Error("Expected cache miss")
		}
	})

	t.Run("set", func(t *testing.T) {
		mock.ExpectSet(fullKey, []byte(`{"ticker":"AAPL","value":1.5}`), time.Hour).SetVal("OK")

		if err := cache.Set(ctx, key, snapshot{Ticker: "AAPL", Value: 1.5}, time.Hour); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	})

	t.Run("hit", func(t *testing.T) {
		mock.ExpectGet(fullKey).SetVal(`{"ticker":"AAPL","value":1.5}`)

		var got snapshot
		found, err := cache.Get(ctx, key, &got)
		if err != nil || !found {
			t.Fatalf("Expected hit, found=%v err=%v", found, err)
		}
		if got.Ticker != "AAPL" || got.Value != 1.5 {
			t.Errorf("Unexpected value %+v", got)
		}
	})

	t.Run("backend error", func(t *testing.T) {
		mock.ExpectGet(fullKey).SetErr(errors.New("connection reset"))

		var got snapshot
		if _, err := cache.Get(ctx, key, &got); err == nil {
			t.Error("Expected error when Redis fails")
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Redis expectations not met: %v", err)
	}
}

func TestCacheKeys(t *testing.T) {
	tests := []struct {
		name     string
		fn       func() string
		expected string
	}{
		{
			name:     "AnalysisKey",
			fn:       func() string { return AnalysisKey("aapl", "2020-01-01", "2024-12-31", 100000) },
			expected: "analysis:AAPL:2020-01-01:2024-12-31:100000",
		},
		{
			name:     "AnalysisKey fractional capital",
			fn:       func() string { return AnalysisKey("005930", "2023-01-02", "2023-12-28", 2500.5) },
			expected: "analysis:005930:2023-01-02:2023-12-28:2500.5",
		},
		{
			name:     "PriceKey",
			fn:       func() string { return PriceKey("^gspc", "2024-01-01", "2024-06-30") },
			expected: "price:^GSPC:2024-01-01:2024-06-30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestClient_Ping(t *testing.T) {
	if _, err := Disabled().Ping(context.Background()); !errors.Is(err, ErrDisabled) {
		t.Errorf("Expected ErrDisabled, got %v", err)
	}

	rdb, mock := redismock.NewClientMock()
	client := Wrap(rdb)

	mock.ExpectPing().SetVal("PONG")
	if _, err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	mock.ExpectPing().SetErr(errors.New("connection refused"))
	if _, err := client.Ping(context.Background()); err == nil {
		t.Error("Expected ping error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCache_CorruptEntry(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cache := NewCache(Wrap(rdb), "test")
	fullKey := "test:cache:analysis:AAPL"

	mock.ExpectGet(fullKey).SetVal(`{"ticker":`)
	var got snapshot
	found, err := cache.Get(context.Background(), "analysis:AAPL", &got)
	if found {
		t.Error("Expected found=false for corrupt entry")
	}
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Expected ErrCorrupt, got %v", err)
	}

	mock.ExpectDel(fullKey).SetVal(1)
	if err := cache.Delete(context.Background(), "analysis:AAPL"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
