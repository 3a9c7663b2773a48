package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskscope/pkg/config"
	"github.com/wonny/riskscope/pkg/logger"
)

func testClient() *Client {
	cfg := &config.Config{Env: "test", LogLevel: "error"}
	return New(cfg, logger.Nop())
}

func TestNew(t *testing.T) {
	client := testClient()
	require.NotNil(t, client)

	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.logger)
	assert.Equal(t, 3, client.retryConfig.MaxRetries)
	assert.Nil(t, client.limiter)
	assert.Equal(t, "closed", client.BreakerState())
}

func TestNewWithTimeout(t *testing.T) {
	cfg := &config.Config{Env: "test", LogLevel: "error"}

	client := NewWithTimeout(cfg, logger.Nop(), 5*time.Second)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)

	// zero keeps the default
	client = NewWithTimeout(cfg, logger.Nop(), 0)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

func TestOptions(t *testing.T) {
	client := testClient().WithRetry(5, 2*time.Second)
	assert.Equal(t, 5, client.retryConfig.MaxRetries)
	assert.Equal(t, 2*time.Second, client.retryConfig.InitialDelay)

	client.DisableRetry()
	assert.False(t, client.retryConfig.Enabled)

	client.WithRateLimit(10)
	require.NotNil(t, client.limiter)
	client.WithRateLimit(0)
	assert.Nil(t, client.limiter)
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "riskscope-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := testClient().WithHeader("User-Agent", "riskscope-test")

	var out struct {
		Status string `json:"status"`
	}
	require.NoError(t, client.GetJSON(context.Background(), server.URL, &out))
	assert.Equal(t, "ok", out.Status)
}

func TestGetBody_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such ticker", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testClient().GetBody(context.Background(), server.URL)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "no such ticker")
}

func TestRetryOn5xx(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			// Return 503 for first 2 attempts
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		// Success on 3rd attempt
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := testClient().WithRetry(3, 10*time.Millisecond)

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err, "request failed after retries")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestRetryExhausted(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := testClient().WithRetry(2, time.Millisecond)

	_, err := client.Get(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrUpstreamStatus)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestBreakerOpens(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient().DisableRetry().WithBreaker("test-upstream")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := client.Get(ctx, server.URL)
		assert.ErrorIs(t, err, ErrUpstreamStatus)
	}
	assert.Equal(t, "open", client.BreakerState())

	// Open breaker rejects without contacting the server
	_, err := client.Get(ctx, server.URL)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestRetryStopsOnCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := testClient().WithRetry(5, time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Get(ctx, server.URL)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		statusCode int
		want       bool
	}{
		{200, false},
		{201, false},
		{400, false},
		{404, false},
		{429, true}, // Too Many Requests - should retry
		{500, true}, // Internal Server Error
		{502, true}, // Bad Gateway
		{503, true}, // Service Unavailable
		{504, true}, // Gateway Timeout
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.statusCode), func(t *testing.T) {
			got := IsRetryableError(tt.statusCode)
			if got != tt.want {
				t.Errorf("IsRetryableError(%d) = %v, want %v", tt.statusCode, got, tt.want)
			}
		})
	}
}
